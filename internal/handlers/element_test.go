package handlers

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

var hashNonceTopic = common.HexToHash("0x4cf3e8a83c6bf8a510613208458629675b4ae99b8029e3ab6cb6a86e5f01fd31")

func TestHandleElementHashNonceCoversBothFamilies(t *testing.T) {
	maker := common.HexToAddress("0x0000000000000000000000000000000000000055")

	event := ClassifiedEvent{
		Kind:  catalog.KindElementHashNonceIncremented,
		Entry: catalog.Lookup(catalog.KindElementHashNonceIncremented)[0],
		BaseEventParams: model.BaseEventParams{
			Address:    "0x20f780a973856b93f63670377900c1d2a50a77c4",
			TxHash:     "0xbeef",
			LogIndex:   7,
			BatchIndex: 1,
			Timestamp:  1680000000,
		},
		Log: types.Log{
			Address: common.HexToAddress(catalog.ElementExchangeAddress),
			Topics:  []common.Hash{hashNonceTopic},
			Data: dataWords(
				common.BytesToHash(maker.Bytes()),
				common.BigToHash(big.NewInt(12)),
			),
			TxHash: common.HexToHash("0xbeef"),
			Index:  7,
		},
	}

	var out OnChainData
	if err := HandleElement(context.Background(), &Env{}, []ClassifiedEvent{event}, &out); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if len(out.BulkCancels) != 2 {
		t.Fatalf("expected a bulk cancel per order family, got %d", len(out.BulkCancels))
	}

	kinds := map[string]model.BulkCancelEvent{}
	positions := map[string]bool{}
	for _, cancel := range out.BulkCancels {
		kinds[cancel.OrderKind] = cancel
		params := cancel.BaseEventParams
		positions[fmt.Sprintf("%s:%d:%d", params.TxHash, params.LogIndex, params.BatchIndex)] = true
	}
	if _, ok := kinds["element-erc721"]; !ok {
		t.Fatalf("missing erc721 bulk cancel: %+v", out.BulkCancels)
	}
	if _, ok := kinds["element-erc1155"]; !ok {
		t.Fatalf("missing erc1155 bulk cancel: %+v", out.BulkCancels)
	}

	// Both records must survive the (tx_hash, log_index, batch_index)
	// insert key, so the two batch indexes have to differ.
	if len(positions) != 2 {
		t.Fatalf("bulk cancels share an event position: %+v", out.BulkCancels)
	}
	if kinds["element-erc721"].BaseEventParams.BatchIndex != 1 ||
		kinds["element-erc1155"].BaseEventParams.BatchIndex != 2 {
		t.Fatalf("unexpected batch indexes: erc721=%d erc1155=%d",
			kinds["element-erc721"].BaseEventParams.BatchIndex,
			kinds["element-erc1155"].BaseEventParams.BatchIndex)
	}

	for _, orderKind := range []string{"element-erc721", "element-erc1155"} {
		floor, ok := out.NonceFloor(orderKind, "0x0000000000000000000000000000000000000055")
		if !ok || floor.Cmp(big.NewInt(12)) != 0 {
			t.Fatalf("missing nonce floor for %s", orderKind)
		}
	}
}
