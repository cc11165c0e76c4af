package handlers

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestZeroExOrderIDStable(t *testing.T) {
	maker := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	first := zeroExOrderID("zeroex-v4-erc721", maker, big.NewInt(1))
	second := zeroExOrderID("zeroex-v4-erc721", maker, big.NewInt(1))
	if first != second {
		t.Fatalf("order id must be deterministic: %s != %s", first, second)
	}
	if len(first) != 66 || first[:2] != "0x" {
		t.Fatalf("order id must be a 32-byte hex hash: %s", first)
	}

	if first == zeroExOrderID("zeroex-v4-erc721", maker, big.NewInt(2)) {
		t.Fatalf("different nonces must yield different ids")
	}
	if first == zeroExOrderID("zeroex-v4-erc1155", maker, big.NewInt(1)) {
		t.Fatalf("different kinds must yield different ids")
	}
}
