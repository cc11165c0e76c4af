package prices

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketScope/internal/catalog"
)

const nativeDecimals = 18

// usdScale is the fixed-point scale of USD prices (6 decimals).
var usdScale = big.NewInt(1_000_000)

// Rate is the USD value of one whole token at a point in time.
type Rate struct {
	USD      *big.Rat
	Decimals uint8
}

// RateSource supplies per-day USD rates, typically backed by the usd_prices
// table.
type RateSource interface {
	USDRate(ctx context.Context, currency common.Address, timestamp uint64) (Rate, bool, error)
}

// StoreOracle resolves prices from a persisted rate source with an
// in-memory per-day cache. Native and wrapped-native currencies short-cut
// to an identity conversion so fills in the native token never depend on
// rate availability.
type StoreOracle struct {
	rates  RateSource
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[rateKey]Rate
}

type rateKey struct {
	currency common.Address
	day      uint64
}

// NewStoreOracle builds an oracle over the given rate source.
func NewStoreOracle(rates RateSource, logger *zap.Logger) *StoreOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreOracle{
		rates:  rates,
		logger: logger,
		cache:  make(map[rateKey]Rate),
	}
}

// ResolvePrices implements Oracle. A missing rate yields a Conversion with
// a nil NativePrice and no error: unknown currencies drop fills, they do
// not abort passes.
func (o *StoreOracle) ResolvePrices(ctx context.Context, currency common.Address, currencyPrice *big.Int, timestamp uint64) (Conversion, error) {
	if currencyPrice == nil {
		return Conversion{}, nil
	}

	if isNative(currency) {
		conversion := Conversion{NativePrice: new(big.Int).Set(currencyPrice)}
		if nativeRate, ok, err := o.rate(ctx, common.Address{}, timestamp); err == nil && ok {
			conversion.USDPrice = toUSD(currencyPrice, nativeRate)
		}
		return conversion, nil
	}

	currencyRate, ok, err := o.rate(ctx, currency, timestamp)
	if err != nil {
		return Conversion{}, err
	}
	if !ok {
		return Conversion{}, nil
	}
	nativeRate, ok, err := o.rate(ctx, common.Address{}, timestamp)
	if err != nil {
		return Conversion{}, err
	}
	if !ok || nativeRate.USD.Sign() == 0 {
		return Conversion{}, nil
	}

	// native = price * currencyUSD / 10^currencyDecimals * 10^18 / nativeUSD
	value := new(big.Rat).SetInt(currencyPrice)
	value.Mul(value, currencyRate.USD)
	value.Quo(value, new(big.Rat).SetInt(pow10(int(currencyRate.Decimals))))
	value.Mul(value, new(big.Rat).SetInt(pow10(nativeDecimals)))
	value.Quo(value, nativeRate.USD)

	return Conversion{
		NativePrice: ratFloor(value),
		USDPrice:    toUSD(currencyPrice, currencyRate),
	}, nil
}

func (o *StoreOracle) rate(ctx context.Context, currency common.Address, timestamp uint64) (Rate, bool, error) {
	key := rateKey{currency: currency, day: timestamp / 86400}

	o.mu.RLock()
	cached, ok := o.cache[key]
	o.mu.RUnlock()
	if ok {
		return cached, true, nil
	}

	rate, ok, err := o.rates.USDRate(ctx, currency, timestamp)
	if err != nil || !ok {
		return Rate{}, false, err
	}

	o.mu.Lock()
	o.cache[key] = rate
	o.mu.Unlock()

	return rate, true, nil
}

func isNative(currency common.Address) bool {
	return currency == (common.Address{}) || currency == common.HexToAddress(catalog.WrappedNative)
}

func toUSD(amount *big.Int, rate Rate) *big.Int {
	value := new(big.Rat).SetInt(amount)
	value.Mul(value, rate.USD)
	value.Quo(value, new(big.Rat).SetInt(pow10(int(rate.Decimals))))
	value.Mul(value, new(big.Rat).SetInt(usdScale))
	return ratFloor(value)
}

func pow10(exp int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

func ratFloor(value *big.Rat) *big.Int {
	return new(big.Int).Quo(value.Num(), value.Denom())
}
