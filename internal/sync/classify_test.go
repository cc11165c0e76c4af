package sync

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/catalog"
	"marketScope/internal/handlers"
	"marketScope/internal/model"
)

var (
	cancelAllTopic     = common.HexToHash("0x1e7178d84f0b0825c65795cd62e7972809ad3aac6917843aaec596161b2c0a97")
	erc20TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	seaportCancelTopic = common.HexToHash("0x6bacc01dbe442496068f7d234edd811f1a5f833243e0aec824f86ab861f3c90d")
)

func TestClassifyCancelAllOrders(t *testing.T) {
	block := model.Block{Number: 17000000, Hash: "0xabc", Timestamp: 1680000000}
	log := types.Log{
		Address:     common.HexToAddress(catalog.LooksRareExchangeAddress),
		Topics:      []common.Hash{cancelAllTopic, common.HexToHash("0x01")},
		BlockNumber: 17000000,
		TxHash:      common.HexToHash("0xbeef"),
		TxIndex:     3,
		Index:       7,
	}

	event, ok := classify(log, block)
	if !ok {
		t.Fatalf("expected log to classify")
	}
	if event.Kind != catalog.KindLooksRareCancelAllOrders {
		t.Fatalf("unexpected kind: %s", event.Kind)
	}
	if event.BaseEventParams.Address != "0x59728544b08ab483533076417fbbb2fd0b17ce3a" {
		t.Fatalf("address not lowercased: %s", event.BaseEventParams.Address)
	}
	if event.BaseEventParams.BatchIndex != 1 {
		t.Fatalf("batch index should start at 1, got %d", event.BaseEventParams.BatchIndex)
	}
	if event.BaseEventParams.Timestamp != block.Timestamp {
		t.Fatalf("timestamp should come from the block")
	}
	if event.BaseEventParams.LogIndex != 7 || event.BaseEventParams.TxIndex != 3 {
		t.Fatalf("log position not carried over: %+v", event.BaseEventParams)
	}
}

func TestClassifyRejectsWrongEmitter(t *testing.T) {
	block := model.Block{Number: 1, Timestamp: 1}
	log := types.Log{
		Address: common.HexToAddress("0x000000000000000000000000000000000000dead"),
		Topics:  []common.Hash{cancelAllTopic, common.HexToHash("0x01")},
	}

	if _, ok := classify(log, block); ok {
		t.Fatalf("allow-listed event from an unknown emitter must not classify")
	}
}

func TestClassifyRejectsTopicCountMismatch(t *testing.T) {
	// An ERC-721 Transfer shares the ERC-20 topic0 but carries four topics.
	block := model.Block{Number: 1, Timestamp: 1}
	log := types.Log{
		Address: common.HexToAddress("0x000000000000000000000000000000000000beef"),
		Topics: []common.Hash{
			erc20TransferTopic,
			common.HexToHash("0x01"),
			common.HexToHash("0x02"),
			common.HexToHash("0x03"),
		},
	}

	if _, ok := classify(log, block); ok {
		t.Fatalf("four-topic transfer must not classify as ERC-20")
	}
}

func TestPartitionCopiesERC20IntoConsumers(t *testing.T) {
	erc20 := handlers.ClassifiedEvent{
		Kind:  catalog.KindERC20Transfer,
		Entry: catalog.Lookup(catalog.KindERC20Transfer)[0],
	}
	cancel := handlers.ClassifiedEvent{
		Kind:  catalog.KindLooksRareCancelAllOrders,
		Entry: catalog.Lookup(catalog.KindLooksRareCancelAllOrders)[0],
	}

	partitions := partition([]handlers.ClassifiedEvent{erc20, cancel})

	if got := len(partitions[catalog.ProtocolLooksRare]); got != 2 {
		t.Fatalf("looks-rare partition should hold its own event plus the transfer, got %d", got)
	}
	if got := len(partitions[catalog.ProtocolSeaport]); got != 1 {
		t.Fatalf("seaport partition should receive the transfer, got %d", got)
	}
	if _, ok := partitions[catalog.ProtocolSuperRare]; ok {
		t.Fatalf("superrare never consumes ERC-20 events")
	}
	if _, ok := partitions[catalog.ProtocolERC20]; ok {
		t.Fatalf("erc20 must not form a partition of its own")
	}
}
