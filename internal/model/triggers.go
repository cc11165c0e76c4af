package model

// TriggerKind tags the reason a downstream recheck is requested.
type TriggerKind string

const (
	TriggerCancel         TriggerKind = "cancel"
	TriggerSale           TriggerKind = "sale"
	TriggerNewOrder       TriggerKind = "new-order"
	TriggerApprovalChange TriggerKind = "approval-change"
)

// OrderTrigger asks the order-update queue to revalidate a single order.
// Context is the idempotence key: replaying the same on-chain event yields
// the same context and must not create duplicate side effects.
type OrderTrigger struct {
	Context     string      `json:"context"`
	OrderID     string      `json:"order_id"`
	Trigger     TriggerKind `json:"trigger"`
	TxHash      string      `json:"tx_hash"`
	TxTimestamp uint64      `json:"tx_timestamp"`
	LogIndex    uint64      `json:"log_index,omitempty"`
	BatchIndex  uint64      `json:"batch_index,omitempty"`
	BlockHash   string      `json:"block_hash,omitempty"`
}

// FillTrigger notifies the fill-update queue about an executed trade.
type FillTrigger struct {
	Context   string    `json:"context"`
	OrderID   string    `json:"order_id"`
	OrderSide OrderSide `json:"order_side"`
	Contract  string    `json:"contract"`
	TokenID   string    `json:"token_id"`
	Amount    string    `json:"amount"`
	Price     string    `json:"price"`
	Maker     string    `json:"maker"`
	Taker     string    `json:"taker"`
	Timestamp uint64    `json:"timestamp"`
}

// ApprovalKind distinguishes which side of the maker's approvals to recheck.
type ApprovalKind string

const (
	BuyApproval  ApprovalKind = "buy-approval"
	SellApproval ApprovalKind = "sell-approval"
)

// MakerApprovalTrigger signals that an ERC-20 transfer co-occurred with a
// fill and the maker's allowance to the exchange should be rechecked.
type MakerApprovalTrigger struct {
	Context     string       `json:"context"`
	Maker       string       `json:"maker"`
	Trigger     TriggerKind  `json:"trigger"`
	TxHash      string       `json:"tx_hash"`
	TxTimestamp uint64       `json:"tx_timestamp"`
	Kind        ApprovalKind `json:"kind"`
	Contract    string       `json:"contract"`
	OrderKind   string       `json:"order_kind"`
}

// NewOrder is an order reconstructed from on-chain data (eg. a Seaport
// validate call) to be ingested by the orderbook.
type NewOrder struct {
	OrderKind string      `json:"order_kind"`
	OrderID   string      `json:"order_id"`
	Maker     string      `json:"maker"`
	Params    interface{} `json:"params"`
}

// Activity is the feed entry derived from a fill.
type Activity struct {
	Kind        string `json:"kind"`
	Contract    string `json:"contract"`
	TokenID     string `json:"token_id"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Price       string `json:"price"`
	Amount      string `json:"amount"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	BatchIndex  uint64 `json:"batch_index"`
	BlockHash   string `json:"block_hash"`
	Timestamp   uint64 `json:"timestamp"`
	OrderID     string `json:"order_id"`
}
