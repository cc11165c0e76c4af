package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindForwardOrderFilled        Kind = "forward-order-filled"
	KindForwardCounterIncremented Kind = "forward-counter-incremented"
)

// ForwardExchangeAddress is the Forward exchange (mainnet).
const ForwardExchangeAddress = "0x221Fd5cbB51466b23aCA96B0C0a0F8f3D171C28E"

const forwardABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "identifier", "type": "uint256"},
      {"indexed": false, "internalType": "uint128", "name": "filledAmount", "type": "uint128"},
      {"indexed": false, "internalType": "uint256", "name": "unitPrice", "type": "uint256"}
    ],
    "name": "OrderFilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "newCounter", "type": "uint256"}
    ],
    "name": "CounterIncremented",
    "type": "event"
  }
]`

var forwardABI = mustABI(forwardABIJSON)

func init() {
	exchange := allowList(ForwardExchangeAddress)

	register(
		Entry{
			Kind:      KindForwardOrderFilled,
			Protocol:  ProtocolForward,
			Topic:     common.HexToHash("0x93a10e2a77b61344921f8b6c0860010fc8f365f97a0f7bc5d077a0941522b562"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       forwardABI,
		},
		Entry{
			Kind:      KindForwardCounterIncremented,
			Protocol:  ProtocolForward,
			Topic:     common.HexToHash("0x59950fb23669ee30425f6d79758e75fae698a6c88b2982f2980638d8bcd9397d"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       forwardABI,
		},
	)
}
