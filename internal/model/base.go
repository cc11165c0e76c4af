package model

// BaseEventParams carries the on-chain position of an event.
type BaseEventParams struct {
	Address    string `json:"address"`
	Block      uint64 `json:"block"`
	BlockHash  string `json:"block_hash"`
	TxHash     string `json:"tx_hash"`
	TxIndex    uint64 `json:"tx_index"`
	LogIndex   uint64 `json:"log_index"`
	BatchIndex uint64 `json:"batch_index"`
	Timestamp  uint64 `json:"timestamp"`
}

// Block is the persisted block metadata keyed by number.
type Block struct {
	Number    uint64 `json:"number"`
	Hash      string `json:"hash"`
	Timestamp uint64 `json:"timestamp"`
}
