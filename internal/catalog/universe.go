package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindUniverseMatch  Kind = "universe-match"
	KindUniverseCancel Kind = "universe-cancel"
)

// UniverseExchangeAddress is the Universe marketplace (mainnet).
const UniverseExchangeAddress = "0x160C404B2b49CBC3240055CEaEE026df1e8497A0"

// Unlike Rarible, the Universe Match event embeds both assets, so no
// calldata reconstruction is needed.
const universeABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "leftHash", "type": "bytes32"},
      {"indexed": false, "internalType": "bytes32", "name": "rightHash", "type": "bytes32"},
      {"indexed": false, "internalType": "address", "name": "leftMaker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "rightMaker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "newLeftFill", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "newRightFill", "type": "uint256"},
      {"indexed": false, "internalType": "struct AssetType", "name": "leftAsset", "type": "tuple", "components": [
        {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
        {"internalType": "bytes", "name": "data", "type": "bytes"}
      ]},
      {"indexed": false, "internalType": "struct AssetType", "name": "rightAsset", "type": "tuple", "components": [
        {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
        {"internalType": "bytes", "name": "data", "type": "bytes"}
      ]}
    ],
    "name": "Match",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "hash", "type": "bytes32"},
      {"indexed": false, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "struct AssetType", "name": "makeAssetType", "type": "tuple", "components": [
        {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
        {"internalType": "bytes", "name": "data", "type": "bytes"}
      ]},
      {"indexed": false, "internalType": "struct AssetType", "name": "takeAssetType", "type": "tuple", "components": [
        {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
        {"internalType": "bytes", "name": "data", "type": "bytes"}
      ]}
    ],
    "name": "Cancel",
    "type": "event"
  }
]`

var universeABI = mustABI(universeABIJSON)

func init() {
	exchange := allowList(UniverseExchangeAddress)

	register(
		Entry{
			Kind:      KindUniverseMatch,
			Protocol:  ProtocolUniverse,
			Topic:     common.HexToHash("0x268820db288a211986b26a8fda86b1e0046281b21206936bb0e61c67b5c79ef4"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       universeABI,
		},
		Entry{
			Kind:      KindUniverseCancel,
			Protocol:  ProtocolUniverse,
			Topic:     common.HexToHash("0xbbdc98cb2835f4f846e6a63700d0498b4674f0e8858fd50c6379314227afa04e"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       universeABI,
		},
	)
}
