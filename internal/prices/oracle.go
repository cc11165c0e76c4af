package prices

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Conversion is the result of resolving a raw currency price. A nil
// NativePrice is the canonical "drop this fill" signal: handlers never emit
// a fill without it.
type Conversion struct {
	// NativePrice is the price in the chain's native token (wei).
	NativePrice *big.Int
	// USDPrice is a 6-decimal fixed-point USD value, nil when unknown.
	USDPrice *big.Int
}

// Oracle converts a raw per-unit price in an arbitrary payment currency to
// native-token and USD terms at a point in time.
type Oracle interface {
	ResolvePrices(ctx context.Context, currency common.Address, currencyPrice *big.Int, timestamp uint64) (Conversion, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, currency common.Address, currencyPrice *big.Int, timestamp uint64) (Conversion, error)

// ResolvePrices calls f.
func (f Func) ResolvePrices(ctx context.Context, currency common.Address, currencyPrice *big.Int, timestamp uint64) (Conversion, error) {
	return f(ctx, currency, currencyPrice, timestamp)
}
