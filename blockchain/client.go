package blockchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/chain-board/model"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is a connection to the node that serves the record contract. It is
// dialed from a fetched ContractInfo and closed by the caller when done.
type Client struct {
	eth      *ethclient.Client
	contract common.Address
	abi      abi.ABI
}

func Dial(ctx context.Context, info model.ContractInfo) (*Client, error) {
	parsed, err := abi.JSON(bytes.NewReader(info.ABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	eth, err := ethclient.DialContext(ctx, info.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", info.Endpoint, err)
	}
	return &Client{
		eth:      eth,
		contract: common.HexToAddress(info.Address),
		abi:      parsed,
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

// HeadBlock returns the current block height of the node.
func (c *Client) HeadBlock(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// Receipt fetches the receipt for txHash. A transaction that is not mined yet
// yields (nil, nil) so callers can keep polling.
func (c *Client) Receipt(ctx context.Context, txHash string) (*model.TxReceipt, error) {
	ret, err := c.eth.TransactionReceipt(ctx, common.HexToHash(txHash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := &model.TxReceipt{
		TxHash: txHash,
		Status: ret.Status,
	}
	if ret.BlockNumber != nil {
		rec.BlockNumber = ret.BlockNumber.Uint64()
	}
	return rec, nil
}

// PastMessages queries the contract's event logs from fromBlock to the chain
// head and decodes every event that carries a message payload.
func (c *Client) PastMessages(ctx context.Context, fromBlock uint64) ([]model.PastMessage, error) {
	logs, err := c.eth.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{c.contract},
	})
	if err != nil {
		return nil, err
	}
	return messagesFromLogs(c.abi, logs), nil
}

// messagesFromLogs unpacks the "message" argument of each recognized event.
// Logs for events outside the ABI, or without a string message, are skipped.
func messagesFromLogs(parsed abi.ABI, logs []types.Log) []model.PastMessage {
	out := make([]model.PastMessage, 0, len(logs))
	for _, lg := range logs {
		if len(lg.Topics) == 0 {
			continue
		}
		ev, err := parsed.EventByID(lg.Topics[0])
		if err != nil {
			continue
		}
		vals := make(map[string]interface{})
		if err := parsed.UnpackIntoMap(vals, ev.Name, lg.Data); err != nil {
			continue
		}
		text, ok := vals["message"].(string)
		if !ok {
			continue
		}
		out = append(out, model.PastMessage{
			TxHash: lg.TxHash.Hex(),
			Text:   text,
		})
	}
	return out
}
