package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindZeroExV4ERC721OrderFilled     Kind = "zeroex-v4-erc721-order-filled"
	KindZeroExV4ERC1155OrderFilled    Kind = "zeroex-v4-erc1155-order-filled"
	KindZeroExV4ERC721OrderCancelled  Kind = "zeroex-v4-erc721-order-cancelled"
	KindZeroExV4ERC1155OrderCancelled Kind = "zeroex-v4-erc1155-order-cancelled"
)

// ZeroExV4ExchangeAddress is the 0x v4 exchange proxy (mainnet).
const ZeroExV4ExchangeAddress = "0xDef1C0ded9bec7F1a1670819833240f027b25EfF"

const zeroExV4ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint8", "name": "direction", "type": "uint8"},
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "nonce", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc20Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc20TokenAmount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc721Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc721TokenId", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "matcher", "type": "address"}
    ],
    "name": "ERC721OrderFilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint8", "name": "direction", "type": "uint8"},
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "nonce", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc20Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc20FillAmount", "type": "uint256"},
      {"indexed": false, "internalType": "address", "name": "erc1155Token", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "erc1155TokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint128", "name": "erc1155FillAmount", "type": "uint128"},
      {"indexed": false, "internalType": "address", "name": "matcher", "type": "address"}
    ],
    "name": "ERC1155OrderFilled",
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
  }
]`

var zeroExV4ABI = mustABI(zeroExV4ABIJSON)

func init() {
	exchange := allowList(ZeroExV4ExchangeAddress)

	register(
		Entry{
			Kind:      KindZeroExV4ERC721OrderFilled,
			Protocol:  ProtocolZeroExV4,
			Topic:     common.HexToHash("0x50273fa02273cceea9cf085b42de5c8af60624140168bd71357db833535877af"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       zeroExV4ABI,
		},
		Entry{
			Kind:      KindZeroExV4ERC1155OrderFilled,
			Protocol:  ProtocolZeroExV4,
			Topic:     common.HexToHash("0x20cca81b0e269b265b3229d6b537da91ef475ca0ef55caed7dd30731700ba98d"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       zeroExV4ABI,
		},
		Entry{
			Kind:      KindZeroExV4ERC721OrderCancelled,
			Protocol:  ProtocolZeroExV4,
			Topic:     common.HexToHash("0xa015ad2dc32f266993958a0fd9884c746b971b254206f3478bc43e2f125c7b9e"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       zeroExV4ABI,
		},
		Entry{
			Kind:      KindZeroExV4ERC1155OrderCancelled,
			Protocol:  ProtocolZeroExV4,
			Topic:     common.HexToHash("0x4d5ea7da64f50a4a329921b8d2cab52dff4ebcc58b61d10ff839e28e91445684"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       zeroExV4ABI,
		},
	)
}
