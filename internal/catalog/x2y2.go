package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindX2Y2OrderCancelled Kind = "x2y2-order-cancelled"
	KindX2Y2OrderFilled    Kind = "x2y2-order-filled"
)

// X2Y2ExchangeAddress is the X2Y2 exchange (mainnet).
const X2Y2ExchangeAddress = "0x74312363e45DCaBA76c59ec49a7Aa8A65a67EeD3"

const x2y2ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "itemHash", "type": "bytes32"}
    ],
    "name": "EvCancel",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "itemHash", "type": "bytes32"},
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "orderSalt", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "settleSalt", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "intent", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "delegateType", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "bytes", "name": "dataMask", "type": "bytes"},
      {"indexed": false, "internalType": "struct OrderItem", "name": "item", "type": "tuple", "components": [
        {"internalType": "uint256", "name": "price", "type": "uint256"},
        {"internalType": "bytes", "name": "data", "type": "bytes"}
      ]},
      {"indexed": false, "internalType": "struct SettleDetail", "name": "detail", "type": "tuple", "components": [
        {"internalType": "uint8", "name": "op", "type": "uint8"},
        {"internalType": "uint256", "name": "orderIdx", "type": "uint256"},
        {"internalType": "uint256", "name": "itemIdx", "type": "uint256"},
        {"internalType": "uint256", "name": "price", "type": "uint256"},
        {"internalType": "bytes32", "name": "itemHash", "type": "bytes32"},
        {"internalType": "address", "name": "executionDelegate", "type": "address"},
        {"internalType": "bytes", "name": "dataReplacement", "type": "bytes"},
        {"internalType": "uint256", "name": "bidIncentivePct", "type": "uint256"},
        {"internalType": "uint256", "name": "aucMinIncrementPct", "type": "uint256"},
        {"internalType": "uint256", "name": "aucIncDurationSecs", "type": "uint256"},
        {"internalType": "struct Fee[]", "name": "fees", "type": "tuple[]", "components": [
          {"internalType": "uint256", "name": "percentage", "type": "uint256"},
          {"internalType": "address", "name": "to", "type": "address"}
        ]}
      ]}
    ],
    "name": "EvInventory",
    "type": "event"
  }
]`

var x2y2ABI = mustABI(x2y2ABIJSON)

func init() {
	exchange := allowList(X2Y2ExchangeAddress)

	register(
		Entry{
			Kind:      KindX2Y2OrderCancelled,
			Protocol:  ProtocolX2Y2,
			Topic:     common.HexToHash("0x5b0b06d07e20243724d90e17a20034972f339eb28bd1c9437a71999bd15a1e7a"),
			NumTopics: 2,
			Addresses: exchange,
			ABI:       x2y2ABI,
		},
		Entry{
			Kind:      KindX2Y2OrderFilled,
			Protocol:  ProtocolX2Y2,
			Topic:     common.HexToHash("0x3cbb63f144840e5b1b0a38a7c19211d2e89de4d7c5faf8b2d3c1776c302d1d33"),
			NumTopics: 2,
			Addresses: exchange,
			ABI:       x2y2ABI,
		},
	)
}
