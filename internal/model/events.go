package model

// OrderSide distinguishes listings from bids.
type OrderSide string

const (
	SideSell OrderSide = "sell"
	SideBuy  OrderSide = "buy"
)

// FillEvent is the unified trade record produced by protocol handlers.
// Price is always the native-token price; a fill that cannot resolve a
// native price is never emitted.
type FillEvent struct {
	OrderKind          string          `json:"order_kind"`
	OrderID            string          `json:"order_id"`
	OrderSide          OrderSide       `json:"order_side"`
	Maker              string          `json:"maker"`
	Taker              string          `json:"taker"`
	Price              string          `json:"price"`
	Currency           string          `json:"currency"`
	CurrencyPrice      string          `json:"currency_price"`
	USDPrice           string          `json:"usd_price,omitempty"`
	Contract           string          `json:"contract"`
	TokenID            string          `json:"token_id"`
	Amount             string          `json:"amount"`
	OrderSourceID      *int64          `json:"order_source_id,omitempty"`
	AggregatorSourceID *int64          `json:"aggregator_source_id,omitempty"`
	FillSourceID       *int64          `json:"fill_source_id,omitempty"`
	BaseEventParams    BaseEventParams `json:"base_event_params"`
}

// CancelEvent records that a specific order was invalidated on-chain.
type CancelEvent struct {
	OrderKind       string          `json:"order_kind"`
	OrderID         string          `json:"order_id"`
	BaseEventParams BaseEventParams `json:"base_event_params"`
}

// NonceCancelEvent invalidates the orders of a maker carrying a specific nonce.
type NonceCancelEvent struct {
	OrderKind       string          `json:"order_kind"`
	Maker           string          `json:"maker"`
	Nonce           string          `json:"nonce"`
	BaseEventParams BaseEventParams `json:"base_event_params"`
}

// BulkCancelEvent invalidates all orders of a maker below MinNonce. The
// stored minimum is monotonic: replaying an older event never lowers it.
type BulkCancelEvent struct {
	OrderKind       string          `json:"order_kind"`
	Maker           string          `json:"maker"`
	MinNonce        string          `json:"min_nonce"`
	BaseEventParams BaseEventParams `json:"base_event_params"`
}
