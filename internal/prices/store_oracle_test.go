package prices

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

type fakeRates struct {
	rates map[common.Address]Rate
	calls int
}

func (f *fakeRates) USDRate(_ context.Context, currency common.Address, _ uint64) (Rate, bool, error) {
	f.calls++
	rate, ok := f.rates[currency]
	return rate, ok, nil
}

func weiRat(value int64) *big.Rat {
	return new(big.Rat).SetInt64(value)
}

func TestResolvePricesNativeIdentity(t *testing.T) {
	rates := &fakeRates{rates: map[common.Address]Rate{
		{}: {USD: weiRat(2000), Decimals: 18},
	}}
	oracle := NewStoreOracle(rates, nil)

	price := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil) // 1 ETH
	conversion, err := oracle.ResolvePrices(context.Background(), common.Address{}, price, 1680000000)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if conversion.NativePrice.Cmp(price) != 0 {
		t.Fatalf("native currency must convert 1:1, got %s", conversion.NativePrice)
	}
	// 1 ETH at $2000 in 6-decimal fixed point.
	if conversion.USDPrice.Cmp(big.NewInt(2000_000000)) != 0 {
		t.Fatalf("unexpected USD price: %s", conversion.USDPrice)
	}
}

func TestResolvePricesWrappedNativeIdentity(t *testing.T) {
	oracle := NewStoreOracle(&fakeRates{rates: map[common.Address]Rate{}}, nil)

	weth := common.HexToAddress("0xC02aaa39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	price := big.NewInt(12345)
	conversion, err := oracle.ResolvePrices(context.Background(), weth, price, 1680000000)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if conversion.NativePrice.Cmp(price) != 0 {
		t.Fatalf("wrapped native must convert 1:1 even without rates, got %v", conversion.NativePrice)
	}
	if conversion.USDPrice != nil {
		t.Fatalf("without a native rate the USD price stays unknown")
	}
}

func TestResolvePricesERC20Conversion(t *testing.T) {
	usdc := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	rates := &fakeRates{rates: map[common.Address]Rate{
		{}:   {USD: weiRat(2000), Decimals: 18},
		usdc: {USD: weiRat(1), Decimals: 6},
	}}
	oracle := NewStoreOracle(rates, nil)

	// 2000 USDC should equal exactly 1 ETH.
	price := big.NewInt(2000_000000)
	conversion, err := oracle.ResolvePrices(context.Background(), usdc, price, 1680000000)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	oneEth := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	if conversion.NativePrice.Cmp(oneEth) != 0 {
		t.Fatalf("unexpected native price: %s", conversion.NativePrice)
	}
	if conversion.USDPrice.Cmp(big.NewInt(2000_000000)) != 0 {
		t.Fatalf("unexpected USD price: %s", conversion.USDPrice)
	}
}

func TestResolvePricesUnknownCurrencyDropsFill(t *testing.T) {
	rates := &fakeRates{rates: map[common.Address]Rate{
		{}: {USD: weiRat(2000), Decimals: 18},
	}}
	oracle := NewStoreOracle(rates, nil)

	unknown := common.HexToAddress("0x00000000000000000000000000000000000000dd")
	conversion, err := oracle.ResolvePrices(context.Background(), unknown, big.NewInt(100), 1680000000)
	if err != nil {
		t.Fatalf("a missing rate is not an error: %v", err)
	}
	if conversion.NativePrice != nil {
		t.Fatalf("unknown currencies must yield no native price")
	}
}

func TestResolvePricesCachesPerDay(t *testing.T) {
	usdc := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	rates := &fakeRates{rates: map[common.Address]Rate{
		{}:   {USD: weiRat(2000), Decimals: 18},
		usdc: {USD: weiRat(1), Decimals: 6},
	}}
	oracle := NewStoreOracle(rates, nil)

	for i := 0; i < 3; i++ {
		if _, err := oracle.ResolvePrices(context.Background(), usdc, big.NewInt(100), 1680000000+uint64(i)); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
	}
	// One lookup for the currency, one for the native rate.
	if rates.calls != 2 {
		t.Fatalf("same-day rates must be served from cache, got %d lookups", rates.calls)
	}

	// A timestamp on the next day misses the cache.
	if _, err := oracle.ResolvePrices(context.Background(), usdc, big.NewInt(100), 1680000000+86400); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if rates.calls != 4 {
		t.Fatalf("a new day must refetch rates, got %d lookups", rates.calls)
	}
}
