package handlers

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

var (
	erc20TransferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	wrappedNative      = common.HexToAddress(catalog.WrappedNative)
	nativeSentinel     = common.HexToAddress(catalog.NativeTokenSentinel)
)

// txLogBuffer keeps all logs seen so far within the currently processing
// transaction. It is reset whenever the tx hash changes, which requires the
// input sequence to be strictly transaction-grouped.
type txLogBuffer struct {
	txHash string
	logs   []types.Log
}

// Observe appends the log to the buffer, resetting on a new transaction,
// and returns the buffer contents for the current transaction.
func (b *txLogBuffer) Observe(params model.BaseEventParams, log types.Log) []types.Log {
	if b.txHash != params.TxHash {
		b.txHash = params.TxHash
		b.logs = b.logs[:0]
	}
	b.logs = append(b.logs, log)
	return b.logs
}

// findERC20Transfer returns the token contract of the first ERC-20 transfer
// in the given logs, if any. An ERC-20 transfer is identified by the
// Transfer topic with exactly three topics (the ERC-721 variant has four).
func findERC20Transfer(logs []types.Log) (common.Address, bool) {
	for _, log := range logs {
		if len(log.Topics) == 3 && log.Topics[0] == erc20TransferTopic {
			return log.Address, true
		}
	}
	return common.Address{}, false
}

// unitPrice divides a total price by a fill amount, guarding zero.
func unitPrice(total, amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() == 0 {
		return new(big.Int).Set(total)
	}
	return new(big.Int).Div(total, amount)
}

// normalizeCurrency maps the 0xeeee... native-token placeholder to the
// canonical zero-address sentinel.
func normalizeCurrency(currency common.Address) common.Address {
	if currency == nativeSentinel {
		return common.Address{}
	}
	return currency
}

// lower renders an address as lowercase hex; records always store
// lowercase identifiers.
func lower(address common.Address) string {
	return "0x" + common.Bytes2Hex(address.Bytes())
}
