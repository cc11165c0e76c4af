package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindLooksRareTakerAsk             Kind = "looks-rare-taker-ask"
	KindLooksRareTakerBid             Kind = "looks-rare-taker-bid"
	KindLooksRareCancelAllOrders      Kind = "looks-rare-cancel-all-orders"
	KindLooksRareCancelMultipleOrders Kind = "looks-rare-cancel-multiple-orders"
)

// LooksRareExchangeAddress is the LooksRare exchange (mainnet).
const LooksRareExchangeAddress = "0x59728544B08AB483533076417FbBB2fD0B17CE3a"

const looksRareABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "orderNonce", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "strategy", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "collection", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "name": "TakerAsk",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "orderNonce", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "strategy", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "currency", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "collection", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}
    ],
    "name": "TakerBid",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "newMinNonce", "type": "uint256"}
    ],
    "name": "CancelAllOrders",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint256[]", "name": "orderNonces", "type": "uint256[]"}
    ],
    "name": "CancelMultipleOrders",
    "type": "event"
  }
]`

var looksRareABI = mustABI(looksRareABIJSON)

func init() {
	exchange := allowList(LooksRareExchangeAddress)

	register(
		Entry{
			Kind:      KindLooksRareTakerAsk,
			Protocol:  ProtocolLooksRare,
			Topic:     common.HexToHash("0x68cd251d4d267c6e2034ff0088b990352b97b2002c0476587d0c4da889c11330"),
			NumTopics: 4,
			Addresses: exchange,
			ABI:       looksRareABI,
		},
		Entry{
			Kind:      KindLooksRareTakerBid,
			Protocol:  ProtocolLooksRare,
			Topic:     common.HexToHash("0x95fb6205e23ff6bda16a2d1dba56b9ad7c783f67c96fa149785052f47696f2be"),
			NumTopics: 4,
			Addresses: exchange,
			ABI:       looksRareABI,
		},
		Entry{
			Kind:      KindLooksRareCancelAllOrders,
			Protocol:  ProtocolLooksRare,
			Topic:     common.HexToHash("0x1e7178d84f0b0825c65795cd62e7972809ad3aac6917843aaec596161b2c0a97"),
			NumTopics: 2,
			Addresses: exchange,
			ABI:       looksRareABI,
		},
		Entry{
			Kind:      KindLooksRareCancelMultipleOrders,
			Protocol:  ProtocolLooksRare,
			Topic:     common.HexToHash("0xfa0ae5d80fe3763c880a3839fab0294171a6f730d1f82c4cd5392c6f67b41732"),
			NumTopics: 2,
			Addresses: exchange,
			ABI:       looksRareABI,
		},
	)
}
