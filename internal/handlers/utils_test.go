package handlers

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

func TestTxLogBufferResetsPerTransaction(t *testing.T) {
	var buffer txLogBuffer

	logs := buffer.Observe(model.BaseEventParams{TxHash: "0x01"}, types.Log{Index: 0})
	if len(logs) != 1 {
		t.Fatalf("expected one buffered log, got %d", len(logs))
	}
	logs = buffer.Observe(model.BaseEventParams{TxHash: "0x01"}, types.Log{Index: 1})
	if len(logs) != 2 {
		t.Fatalf("expected two buffered logs, got %d", len(logs))
	}

	logs = buffer.Observe(model.BaseEventParams{TxHash: "0x02"}, types.Log{Index: 0})
	if len(logs) != 1 {
		t.Fatalf("buffer must reset on a new transaction, got %d logs", len(logs))
	}
}

func TestFindERC20TransferIgnoresERC721(t *testing.T) {
	token := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	logs := []types.Log{
		{
			// ERC-721 Transfer: same topic0, four topics.
			Topics: []common.Hash{
				erc20TransferTopic,
				common.HexToHash("0x01"),
				common.HexToHash("0x02"),
				common.HexToHash("0x03"),
			},
		},
		{
			Address: token,
			Topics: []common.Hash{
				erc20TransferTopic,
				common.HexToHash("0x01"),
				common.HexToHash("0x02"),
			},
		},
	}

	found, ok := findERC20Transfer(logs)
	if !ok {
		t.Fatalf("expected to find the ERC-20 transfer")
	}
	if found != token {
		t.Fatalf("unexpected token: %s", found.Hex())
	}

	if _, ok := findERC20Transfer(logs[:1]); ok {
		t.Fatalf("four-topic transfer must not count as ERC-20")
	}
}

func TestUnitPrice(t *testing.T) {
	total := big.NewInt(100)

	if got := unitPrice(total, big.NewInt(4)); got.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("unexpected unit price: %s", got)
	}
	if got := unitPrice(total, big.NewInt(0)); got.Cmp(total) != 0 {
		t.Fatalf("zero amount must fall back to the total, got %s", got)
	}
	if got := unitPrice(total, nil); got.Cmp(total) != 0 {
		t.Fatalf("nil amount must fall back to the total, got %s", got)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	sentinel := common.HexToAddress(catalog.NativeTokenSentinel)
	if got := normalizeCurrency(sentinel); got != (common.Address{}) {
		t.Fatalf("sentinel must normalize to the zero address, got %s", got.Hex())
	}

	weth := common.HexToAddress(catalog.WrappedNative)
	if got := normalizeCurrency(weth); got != weth {
		t.Fatalf("regular currencies must pass through, got %s", got.Hex())
	}
}
