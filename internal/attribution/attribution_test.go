package attribution

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeTxs struct {
	tx *types.Transaction
}

func (f *fakeTxs) TransactionByHash(context.Context, common.Hash) (*types.Transaction, error) {
	return f.tx, nil
}

func TestCalldataResolverMatchesRouter(t *testing.T) {
	router := common.HexToAddress("0x00000000000000000000000000000000000000ee")
	sources := []Source{{ID: 5, Domain: "aggregator.io", Router: &router}}

	tx := types.NewTx(&types.LegacyTx{To: &router, Data: []byte{0x01, 0x02}})
	resolver := NewCalldataResolver(&fakeTxs{tx: tx}, big.NewInt(1), sources, nil)

	data, err := resolver.Resolve(context.Background(), tx.Hash(), "seaport", "0x01")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if data.AggregatorSourceID == nil || *data.AggregatorSourceID != 5 {
		t.Fatalf("router match must credit the aggregator: %+v", data)
	}
	if data.FillSourceID == nil || *data.FillSourceID != 5 {
		t.Fatalf("router match must credit the fill source: %+v", data)
	}
}

func TestCalldataResolverMatchesMarkerSuffix(t *testing.T) {
	marker := []byte{0xaa, 0xbb, 0xcc, 0xdd}
	sources := []Source{{ID: 9, Domain: "marketplace.io", CalldataMarker: marker}}

	exchange := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	data := append([]byte{0x01, 0x02, 0x03}, marker...)
	tx := types.NewTx(&types.LegacyTx{To: &exchange, Data: data})
	resolver := NewCalldataResolver(&fakeTxs{tx: tx}, big.NewInt(1), sources, nil)

	attr, err := resolver.Resolve(context.Background(), tx.Hash(), "seaport", "0x01")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if attr.FillSourceID == nil || *attr.FillSourceID != 9 {
		t.Fatalf("marker match must credit the fill source: %+v", attr)
	}
	if attr.OrderSourceID == nil || *attr.OrderSourceID != 9 {
		t.Fatalf("marker match must credit the order source: %+v", attr)
	}
	if attr.AggregatorSourceID != nil {
		t.Fatalf("a plain marker match is not an aggregator: %+v", attr)
	}
}

func TestCalldataResolverUnknownTransaction(t *testing.T) {
	router := common.HexToAddress("0x00000000000000000000000000000000000000ee")
	sources := []Source{{ID: 5, Domain: "aggregator.io", Router: &router}}

	other := common.HexToAddress("0x0000000000000000000000000000000000000001")
	tx := types.NewTx(&types.LegacyTx{To: &other, Data: []byte{0x01}})
	resolver := NewCalldataResolver(&fakeTxs{tx: tx}, big.NewInt(1), sources, nil)

	data, err := resolver.Resolve(context.Background(), tx.Hash(), "seaport", "0x01")
	if err != nil {
		t.Fatalf("unknown transactions are not errors: %v", err)
	}
	if data.Taker != nil || data.FillSourceID != nil || data.OrderSourceID != nil || data.AggregatorSourceID != nil {
		t.Fatalf("expected empty attribution: %+v", data)
	}
}
