package handlers

import (
	"math/big"
	"testing"

	"marketScope/internal/model"
)

func TestApplyBulkCancelKeepsFloorMonotonic(t *testing.T) {
	var data OnChainData

	data.ApplyBulkCancel(model.BulkCancelEvent{OrderKind: "looks-rare", Maker: "0xaa", MinNonce: "10"})
	data.ApplyBulkCancel(model.BulkCancelEvent{OrderKind: "looks-rare", Maker: "0xaa", MinNonce: "5"})

	if len(data.BulkCancels) != 2 {
		t.Fatalf("every event must be recorded, got %d", len(data.BulkCancels))
	}

	floor, ok := data.NonceFloor("looks-rare", "0xaa")
	if !ok {
		t.Fatalf("expected a nonce floor")
	}
	if floor.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("an older event must not lower the floor, got %s", floor)
	}

	data.ApplyBulkCancel(model.BulkCancelEvent{OrderKind: "looks-rare", Maker: "0xaa", MinNonce: "12"})
	floor, _ = data.NonceFloor("looks-rare", "0xaa")
	if floor.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("a newer event must raise the floor, got %s", floor)
	}
}

func TestNonceFloorScopedPerKindAndMaker(t *testing.T) {
	var data OnChainData

	data.ApplyBulkCancel(model.BulkCancelEvent{OrderKind: "looks-rare", Maker: "0xaa", MinNonce: "3"})

	if _, ok := data.NonceFloor("seaport", "0xaa"); ok {
		t.Fatalf("floor must not leak across order kinds")
	}
	if _, ok := data.NonceFloor("looks-rare", "0xbb"); ok {
		t.Fatalf("floor must not leak across makers")
	}
}
