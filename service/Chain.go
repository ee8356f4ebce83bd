package service

import (
	"context"
	"time"

	"github.com/chain-board/model"
)

// ChainReader is the slice of the node client the services need. It is
// satisfied by blockchain.Client and by fakes in tests.
type ChainReader interface {
	HeadBlock(ctx context.Context) (uint64, error)
	Receipt(ctx context.Context, txHash string) (*model.TxReceipt, error)
	PastMessages(ctx context.Context, fromBlock uint64) ([]model.PastMessage, error)
	Close()
}

// ChainDialer opens a fresh node connection from a fetched ContractInfo.
type ChainDialer func(ctx context.Context, info model.ContractInfo) (ChainReader, error)

// InfoFetcher supplies the contract connection bundle. Satisfied by
// ContractInfoProvider.
type InfoFetcher interface {
	Fetch(ctx context.Context) (model.ContractInfo, error)
}

// TxWatcher accepts transaction hashes to poll for confirmation. Satisfied by
// ReceiptWatcher.
type TxWatcher interface {
	Watch(txHash string)
}

// Config carries the tunables of the board services.
type Config struct {
	BackendURL   string        `mapstructure:"backend_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
	FailBudget   int           `mapstructure:"fail_budget"`
	SyncWindow   uint64        `mapstructure:"sync_window"`
}

func DefaultConfig() Config {
	return Config{
		BackendURL:   "http://127.0.0.1:3000",
		PollInterval: time.Second,
		MaxWait:      2 * time.Minute,
		FailBudget:   5,
		SyncWindow:   1000,
	}
}
