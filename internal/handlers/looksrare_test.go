package handlers

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/catalog"
	"marketScope/internal/model"
	"marketScope/internal/prices"
)

var (
	takerAskTopic = common.HexToHash("0x68cd251d4d267c6e2034ff0088b990352b97b2002c0476587d0c4da889c11330")
	takerBidTopic = common.HexToHash("0x95fb6205e23ff6bda16a2d1dba56b9ad7c783f67c96fa149785052f47696f2be")
)

// identityOracle resolves every currency 1:1 into native terms.
var identityOracle = prices.Func(func(_ context.Context, _ common.Address, currencyPrice *big.Int, _ uint64) (prices.Conversion, error) {
	return prices.Conversion{NativePrice: new(big.Int).Set(currencyPrice)}, nil
})

func dataWords(values ...common.Hash) []byte {
	out := make([]byte, 0, len(values)*32)
	for _, value := range values {
		out = append(out, value.Bytes()...)
	}
	return out
}

func looksRareFillEvent(kind catalog.Kind, topic common.Hash, txHash string, logIndex uint64) ClassifiedEvent {
	taker := common.HexToAddress("0x0000000000000000000000000000000000000011")
	maker := common.HexToAddress("0x0000000000000000000000000000000000000022")
	strategy := common.HexToAddress("0x0000000000000000000000000000000000000033")
	weth := common.HexToAddress(catalog.WrappedNative)
	collection := common.HexToAddress("0x0000000000000000000000000000000000000044")

	log := types.Log{
		Address: common.HexToAddress(catalog.LooksRareExchangeAddress),
		Topics: []common.Hash{
			topic,
			common.BytesToHash(taker.Bytes()),
			common.BytesToHash(maker.Bytes()),
			common.BytesToHash(strategy.Bytes()),
		},
		Data: dataWords(
			common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001"), // orderHash
			common.BigToHash(big.NewInt(9)),        // orderNonce
			common.BytesToHash(weth.Bytes()),       // currency
			common.BytesToHash(collection.Bytes()), // collection
			common.BigToHash(big.NewInt(42)),       // tokenId
			common.BigToHash(big.NewInt(1)),        // amount
			common.BigToHash(big.NewInt(1000)),     // price
		),
		TxHash: common.HexToHash(txHash),
		Index:  uint(logIndex),
	}

	return ClassifiedEvent{
		Kind:  kind,
		Entry: catalog.Lookup(kind)[0],
		BaseEventParams: model.BaseEventParams{
			Address:    "0x59728544b08ab483533076417fbbb2fd0b17ce3a",
			TxHash:     txHash,
			LogIndex:   logIndex,
			BatchIndex: 1,
			Timestamp:  1680000000,
		},
		Log: log,
	}
}

func TestHandleLooksRareTakerBidFill(t *testing.T) {
	env := &Env{Prices: identityOracle}
	event := looksRareFillEvent(catalog.KindLooksRareTakerBid, takerBidTopic, "0x01", 5)

	var out OnChainData
	if err := HandleLooksRare(context.Background(), env, []ClassifiedEvent{event}, &out); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if len(out.Fills) != 1 {
		t.Fatalf("expected one fill, got %d", len(out.Fills))
	}
	fill := out.Fills[0]
	if fill.OrderSide != model.SideSell {
		t.Fatalf("a taker bid fills a listing, got side %s", fill.OrderSide)
	}
	if fill.Maker != "0x0000000000000000000000000000000000000022" {
		t.Fatalf("unexpected maker: %s", fill.Maker)
	}
	if fill.Taker != "0x0000000000000000000000000000000000000011" {
		t.Fatalf("unexpected taker: %s", fill.Taker)
	}
	if fill.Price != "1000" || fill.CurrencyPrice != "1000" {
		t.Fatalf("unexpected price: %s / %s", fill.Price, fill.CurrencyPrice)
	}
	if fill.TokenID != "42" || fill.Amount != "1" {
		t.Fatalf("unexpected token: %s x%s", fill.TokenID, fill.Amount)
	}

	// The filled order's nonce is consumed.
	if len(out.NonceCancels) != 1 || out.NonceCancels[0].Nonce != "9" {
		t.Fatalf("expected the fill to consume nonce 9: %+v", out.NonceCancels)
	}
	if len(out.OrderTriggers) != 1 || len(out.FillTriggers) != 1 {
		t.Fatalf("expected one order and one fill trigger")
	}
	// Sell-side fills never touch the maker's payment allowance.
	if len(out.MakerTriggers) != 0 {
		t.Fatalf("unexpected maker triggers: %+v", out.MakerTriggers)
	}
}

func TestHandleLooksRareDropsFillWithoutNativePrice(t *testing.T) {
	noPrice := prices.Func(func(context.Context, common.Address, *big.Int, uint64) (prices.Conversion, error) {
		return prices.Conversion{}, nil
	})
	env := &Env{Prices: noPrice}
	event := looksRareFillEvent(catalog.KindLooksRareTakerBid, takerBidTopic, "0x01", 5)

	var out OnChainData
	if err := HandleLooksRare(context.Background(), env, []ClassifiedEvent{event}, &out); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if len(out.Fills) != 0 || len(out.OrderTriggers) != 0 || len(out.FillTriggers) != 0 {
		t.Fatalf("a fill without a native price must be dropped entirely: %+v", out)
	}
}

func TestHandleLooksRareTakerAskEmitsApprovalTrigger(t *testing.T) {
	env := &Env{Prices: identityOracle}

	weth := common.HexToAddress(catalog.WrappedNative)
	transfer := ClassifiedEvent{
		Kind:  catalog.KindERC20Transfer,
		Entry: catalog.Lookup(catalog.KindERC20Transfer)[0],
		BaseEventParams: model.BaseEventParams{
			TxHash:     "0x01",
			LogIndex:   4,
			BatchIndex: 1,
			Timestamp:  1680000000,
		},
		Log: types.Log{
			Address: weth,
			Topics: []common.Hash{
				erc20TransferTopic,
				common.HexToHash("0x01"),
				common.HexToHash("0x02"),
			},
		},
	}
	fill := looksRareFillEvent(catalog.KindLooksRareTakerAsk, takerAskTopic, "0x01", 5)

	var out OnChainData
	if err := HandleLooksRare(context.Background(), env, []ClassifiedEvent{transfer, fill}, &out); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if len(out.Fills) != 1 || out.Fills[0].OrderSide != model.SideBuy {
		t.Fatalf("a taker ask fills a bid: %+v", out.Fills)
	}
	if len(out.MakerTriggers) != 1 {
		t.Fatalf("expected a buy-approval recheck, got %d", len(out.MakerTriggers))
	}
	trigger := out.MakerTriggers[0]
	if trigger.Context != "0x01-buy-approval" || trigger.Kind != model.BuyApproval {
		t.Fatalf("unexpected trigger: %+v", trigger)
	}
	if trigger.Contract != "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2" {
		t.Fatalf("trigger must carry the moved token: %s", trigger.Contract)
	}
}
