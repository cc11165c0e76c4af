package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindRaribleMatch  Kind = "rarible-match"
	KindRaribleCancel Kind = "rarible-cancel"
)

// RaribleExchangeAddress is the Rarible ExchangeV2 proxy (mainnet).
const RaribleExchangeAddress = "0x9757F2d2b135150BBeb65308D4a91804107cd8D6"

// The Match event only carries the two order hashes and fill amounts; the
// side, maker, asset and currency are reconstructed from the transaction
// calldata by the handler.
const raribleABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "leftHash", "type": "bytes32"},
      {"indexed": false, "internalType": "bytes32", "name": "rightHash", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "newLeftFill", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "newRightFill", "type": "uint256"}
    ],
    "name": "Match",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "hash", "type": "bytes32"}
    ],
    "name": "Cancel",
    "type": "event"
  }
]`

var raribleABI = mustABI(raribleABIJSON)

func init() {
	exchange := allowList(RaribleExchangeAddress)

	register(
		Entry{
			Kind:      KindRaribleMatch,
			Protocol:  ProtocolRarible,
			Topic:     common.HexToHash("0x956cd63ee4cdcd81fda5f0ec7c6c36dceda99e1b412f4a650a5d26055dc3c450"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       raribleABI,
		},
		Entry{
			Kind:      KindRaribleCancel,
			Protocol:  ProtocolRarible,
			Topic:     common.HexToHash("0xe8d9861dbc9c663ed3accd261bbe2fe01e0d3d9e5f51fa38523b265c7757a93a"),
			NumTopics: 1,
			Addresses: exchange,
			ABI:       raribleABI,
		},
	)
}
