package attribution

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Data is the attribution of a trade: who actually took it and which
// referring sources should be credited. All fields are optional.
type Data struct {
	Taker              *common.Address
	OrderSourceID      *int64
	AggregatorSourceID *int64
	FillSourceID       *int64
}

// Resolver determines trade attribution for a transaction.
type Resolver interface {
	Resolve(ctx context.Context, txHash common.Hash, orderKind string, orderID string) (Data, error)
}

// Func adapts a plain function to the Resolver interface.
type Func func(ctx context.Context, txHash common.Hash, orderKind string, orderID string) (Data, error)

// Resolve calls f.
func (f Func) Resolve(ctx context.Context, txHash common.Hash, orderKind string, orderID string) (Data, error) {
	return f(ctx, txHash, orderKind, orderID)
}

// Source is a known referring application.
type Source struct {
	ID     int64
	Domain string
	// Router, when set, is the aggregator contract the source routes
	// trades through.
	Router *common.Address
	// CalldataMarker, when set, is the marker the source's SDK appends to
	// transaction calldata.
	CalldataMarker []byte
}

// TxReader fetches transactions for calldata inspection.
type TxReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error)
}

// CalldataResolver attributes trades by matching the transaction target
// against known aggregator routers and the calldata tail against known
// source markers.
type CalldataResolver struct {
	txs     TxReader
	chainID *big.Int
	sources []Source
	logger  *zap.Logger
}

// NewCalldataResolver builds a resolver over a static source registry.
func NewCalldataResolver(txs TxReader, chainID *big.Int, sources []Source, logger *zap.Logger) *CalldataResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalldataResolver{
		txs:     txs,
		chainID: chainID,
		sources: sources,
		logger:  logger,
	}
}

// Resolve implements Resolver. An unknown transaction simply yields empty
// attribution; only transport failures surface as errors.
func (r *CalldataResolver) Resolve(ctx context.Context, txHash common.Hash, orderKind string, orderID string) (Data, error) {
	tx, err := r.txs.TransactionByHash(ctx, txHash)
	if err != nil {
		return Data{}, err
	}

	var data Data
	input := tx.Data()
	for i := range r.sources {
		source := &r.sources[i]

		if source.Router != nil && tx.To() != nil && *tx.To() == *source.Router {
			id := source.ID
			data.AggregatorSourceID = &id
			data.FillSourceID = &id
			// For routed fills the order recipient in the log is the
			// router; the real taker is the transaction sender.
			if sender, err := types.Sender(types.LatestSignerForChainID(r.chainID), tx); err == nil {
				taker := sender
				data.Taker = &taker
			}
		}

		if len(source.CalldataMarker) > 0 && bytes.HasSuffix(input, source.CalldataMarker) {
			id := source.ID
			data.FillSourceID = &id
			if data.OrderSourceID == nil {
				data.OrderSourceID = &id
			}
		}
	}

	return data, nil
}
