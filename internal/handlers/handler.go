package handlers

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/chain"
	"marketScope/internal/model"
	"marketScope/internal/prices"
)

// ClassifiedEvent is a raw log matched against the event catalog, with its
// on-chain position attached. Consumed exactly once by one handler.
type ClassifiedEvent struct {
	Kind            catalog.Kind
	Entry           catalog.Entry
	BaseEventParams model.BaseEventParams
	Log             types.Log
}

// OnChainData collects the canonical records produced by one handler pass.
type OnChainData struct {
	Fills         []model.FillEvent
	Cancels       []model.CancelEvent
	NonceCancels  []model.NonceCancelEvent
	BulkCancels   []model.BulkCancelEvent
	OrderTriggers []model.OrderTrigger
	FillTriggers  []model.FillTrigger
	MakerTriggers []model.MakerApprovalTrigger
	NewOrders     []model.NewOrder

	// nonceFloors tracks the highest bulk-cancel nonce seen per
	// (orderKind, maker) so that replays never lower the floor.
	nonceFloors map[string]*big.Int
}

// ApplyBulkCancel records a bulk cancel, keeping the per-maker nonce floor
// monotonic: a later event with a lower nonce is stored but never lowers
// the floor.
func (d *OnChainData) ApplyBulkCancel(event model.BulkCancelEvent) {
	d.BulkCancels = append(d.BulkCancels, event)

	minNonce, ok := new(big.Int).SetString(event.MinNonce, 10)
	if !ok {
		return
	}
	if d.nonceFloors == nil {
		d.nonceFloors = make(map[string]*big.Int)
	}
	key := event.OrderKind + ":" + event.Maker
	if current, ok := d.nonceFloors[key]; !ok || minNonce.Cmp(current) > 0 {
		d.nonceFloors[key] = minNonce
	}
}

// NonceFloor returns the highest bulk-cancel nonce recorded for a maker in
// this pass.
func (d *OnChainData) NonceFloor(orderKind, maker string) (*big.Int, bool) {
	floor, ok := d.nonceFloors[orderKind+":"+maker]
	return floor, ok
}

// ChainReader is the subset of chain access handlers need for calldata and
// trace based reconstruction.
type ChainReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error)
	CallTrace(ctx context.Context, hash common.Hash) (*chain.CallFrame, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Env carries the collaborators a handler may use. All dependencies are
// explicit; handlers never reach for ambient state.
type Env struct {
	Chain       ChainReader
	Prices      prices.Oracle
	Attribution attribution.Resolver
	Logger      *zap.Logger
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Func processes one protocol's classified events, in transaction-grouped
// log-index order, and appends canonical records to out. Per-event failures
// are logged and skipped; only fatal conditions return an error.
type Func func(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error

// For returns the handler for a protocol. The switch is exhaustive over
// the closed protocol set; adding a protocol without a handler is a
// startup error, not a silent skip.
func For(protocol catalog.Protocol) (Func, error) {
	switch protocol {
	case catalog.ProtocolSeaport:
		return HandleSeaport, nil
	case catalog.ProtocolLooksRare:
		return HandleLooksRare, nil
	case catalog.ProtocolX2Y2:
		return HandleX2Y2, nil
	case catalog.ProtocolZeroExV4:
		return HandleZeroExV4, nil
	case catalog.ProtocolElement:
		return HandleElement, nil
	case catalog.ProtocolRarible:
		return HandleRarible, nil
	case catalog.ProtocolUniverse:
		return HandleUniverse, nil
	case catalog.ProtocolForward:
		return HandleForward, nil
	case catalog.ProtocolSuperRare:
		return HandleSuperRare, nil
	case catalog.ProtocolERC20:
		// ERC-20 events are routed into the partitions of the protocols
		// that need them; they have no standalone handler.
		return nil, fmt.Errorf("protocol %q has no standalone handler", protocol)
	default:
		return nil, fmt.Errorf("no handler for protocol %q", protocol)
	}
}
