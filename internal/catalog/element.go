package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindElementERC721SellOrderFilled  Kind = "element-erc721-sell-order-filled"
	KindElementERC721BuyOrderFilled   Kind = "element-erc721-buy-order-filled"
	KindElementERC1155SellOrderFilled Kind = "element-erc1155-sell-order-filled"
	KindElementERC1155BuyOrderFilled  Kind = "element-erc1155-buy-order-filled"
	KindElementERC721OrderCancelled   Kind = "element-erc721-order-cancelled"
	KindElementERC1155OrderCancelled  Kind = "element-erc1155-order-cancelled"
	KindElementHashNonceIncremented   Kind = "element-hash-nonce-incremented"
)

// ElementExchangeAddress is the Element exchange (mainnet).
const ElementExchangeAddress = "0x20F780A973856B93f63670377900C1d2a50a77c4"

const elementABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "erc20Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc20TokenAmount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc721Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc721TokenId", "type": "uint256"},
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"}
    ],
    "name": "ERC721SellOrderFilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "erc20Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc20TokenAmount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc721Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc721TokenId", "type": "uint256"},
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"}
    ],
    "name": "ERC721BuyOrderFilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "erc20Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc20FillAmount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc1155Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc1155TokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint128", "name": "erc1155FillAmount", "type": "uint128"},
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"}
    ],
    "name": "ERC1155SellOrderFilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "erc20Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc20FillAmount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc1155Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc1155TokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint128", "name": "erc1155FillAmount", "type": "uint128"},
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"}
    ],
    "name": "ERC1155BuyOrderFilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "nonce", "type": "uint256"}
    ],
    "name": "ERC721OrderCancelled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "nonce", "type": "uint256"}
    ],
    "name": "ERC1155OrderCancelled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "nonce", "type": "uint256"}
    ],
    "name": "HashNonceIncremented",
    "type": "event"
  }
]`

var elementABI = mustABI(elementABIJSON)

func init() {
	exchange := allowList(ElementExchangeAddress)

	register(
		Entry{
			Kind:      KindElementERC721SellOrderFilled,
			Protocol:  ProtocolElement,
			Topic:     common.HexToHash("0x8a0f8e04e7a35efabdc150b7d106308198a4f965a5d11badf768c5b8b273ac94"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       elementABI,
		},
		Entry{
			Kind:      KindElementERC721BuyOrderFilled,
			Protocol:  ProtocolElement,
			Topic:     common.HexToHash("0xa24193d56ccdf64ce1df60c80ca683da965a1da3363efa67c14abf62b2d7d493"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       elementABI,
		},
		Entry{
			Kind:      KindElementERC1155SellOrderFilled,
			Protocol:  ProtocolElement,
			Topic:     common.HexToHash("0x3ae452568bed7ccafe4345f10048675bae78660c7ea37eb5112b572648d4f116"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       elementABI,
		},
		Entry{
			Kind:      KindElementERC1155BuyOrderFilled,
			Protocol:  ProtocolElement,
			Topic:     common.HexToHash("0x020486beb4ea38db8dc504078b03c4f758de372097584b434a8b8f53583eecac"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       elementABI,
		},
		Entry{
			Kind:      KindElementERC721OrderCancelled,
			Protocol:  ProtocolElement,
			Topic:     common.HexToHash("0xa015ad2dc32f266993958a0fd9884c746b971b254206f3478bc43e2f125c7b9e"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       elementABI,
		},
		Entry{
			Kind:      KindElementERC1155OrderCancelled,
			Protocol:  ProtocolElement,
			Topic:     common.HexToHash("0x4d5ea7da64f50a4a329921b8d2cab52dff4ebcc58b61d10ff839e28e91445684"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       elementABI,
		},
		Entry{
			Kind:      KindElementHashNonceIncremented,
			Protocol:  ProtocolElement,
			Topic:     common.HexToHash("0x4cf3e8a83c6bf8a510613208458629675b4ae99b8029e3ab6cb6a86e5f01fd31"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       elementABI,
		},
	)
}
