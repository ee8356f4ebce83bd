package service

import (
	"context"
	"errors"

	"github.com/chain-board/model"
)

// fakeChain scripts the node answers the services would normally get from a
// blockchain.Client.
type fakeChain struct {
	head       uint64
	headErr    error
	receipts   map[string]*model.TxReceipt
	receiptErr error
	past       []model.PastMessage
	pastErr    error

	receiptCalls int
	fromBlocks   []uint64
	closed       int
}

func (f *fakeChain) HeadBlock(ctx context.Context) (uint64, error) {
	return f.head, f.headErr
}

func (f *fakeChain) Receipt(ctx context.Context, txHash string) (*model.TxReceipt, error) {
	f.receiptCalls++
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	return f.receipts[txHash], nil
}

func (f *fakeChain) PastMessages(ctx context.Context, fromBlock uint64) ([]model.PastMessage, error) {
	f.fromBlocks = append(f.fromBlocks, fromBlock)
	if f.pastErr != nil {
		return nil, f.pastErr
	}
	return f.past, nil
}

func (f *fakeChain) Close() {
	f.closed++
}

func dialTo(f *fakeChain) ChainDialer {
	return func(ctx context.Context, info model.ContractInfo) (ChainReader, error) {
		return f, nil
	}
}

type fakeInfo struct {
	err error
}

func (f fakeInfo) Fetch(ctx context.Context) (model.ContractInfo, error) {
	return model.ContractInfo{Endpoint: "http://node", Address: "0xC0"}, f.err
}

var errNode = errors.New("node unreachable")
