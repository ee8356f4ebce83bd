package model

import "encoding/json"

// Lifecycle of a board message as seen by connected views.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// MessageRecord is one board entry, keyed by its transaction hash in the store.
type MessageRecord struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

func (r MessageRecord) Pending() bool {
	return r.Status == StatusPending
}

// ContractInfo is the connection bundle served by the backend: the node RPC
// endpoint, the contract ABI and the deployed address. Immutable once fetched.
type ContractInfo struct {
	Endpoint string          `json:"endpoint"`
	ABI      json.RawMessage `json:"abi"`
	Address  string          `json:"address"`
}

// SubmitResponse is the backend's answer to a record submission.
type SubmitResponse struct {
	Status string `json:"status"`
	Hash   string `json:"hash"`
	URL    string `json:"url"`
}

// TxReceipt is the slice of a node receipt the board cares about.
type TxReceipt struct {
	TxHash      string `json:"tx_hash"`
	Status      uint64 `json:"status"`
	BlockNumber uint64 `json:"block_number"`
}

func (r TxReceipt) Succeeded() bool {
	return r.Status == 1
}

// PastMessage is a historical record event pulled from the contract's logs.
type PastMessage struct {
	TxHash string `json:"tx_hash"`
	Text   string `json:"text"`
}

// RecordUpdate is pushed to views whenever a record is inserted or changes state.
type RecordUpdate struct {
	Hash   string        `json:"hash"`
	Record MessageRecord `json:"record"`
}
