package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindSuperRareSold           Kind = "superrare-sold"
	KindSuperRareAcceptOffer    Kind = "superrare-accept-offer"
	KindSuperRareAuctionSettled Kind = "superrare-auction-settled"
)

// SuperRareBazaarAddress is the SuperRare bazaar (mainnet).
const SuperRareBazaarAddress = "0x6D7c44773C52D396F43c2D511B81aa168E9a7a42"

const superRareABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "originContract", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "buyer", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "seller", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"}
    ],
    "name": "Sold",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "originContract", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "bidder", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "seller", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "currencyAddress", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"}
    ],
    "name": "AcceptOffer",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "contractAddress", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "bidder", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "seller", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "auctionLength", "type": "uint256"}
    ],
    "name": "AuctionSettled",
    "type": "event"
  }
]`

var superRareABI = mustABI(superRareABIJSON)

func init() {
	bazaar := allowList(SuperRareBazaarAddress)

	register(
		Entry{
			Kind:      KindSuperRareSold,
			Protocol:  ProtocolSuperRare,
			Topic:     common.HexToHash("0x5764dbcef91eb6f946584f4ea671217c686fa7e858ce4f9f42d08422b86556a9"),
			NumTopics: 4,
			Addresses: bazaar,
			ABI:       superRareABI,
		},
		Entry{
			Kind:      KindSuperRareAcceptOffer,
			Protocol:  ProtocolSuperRare,
			Topic:     common.HexToHash("0xfbcbc0563eea972b3255840602ad332c99f1dd741f22356f8ba6f78f0ec7ca9e"),
			NumTopics: 4,
			Addresses: bazaar,
			ABI:       superRareABI,
		},
		Entry{
			Kind:      KindSuperRareAuctionSettled,
			Protocol:  ProtocolSuperRare,
			Topic:     common.HexToHash("0x0ed8d351d4e58127371143396a594b147004877679a7f2befeefcb0225dc43f3"),
			NumTopics: 4,
			Addresses: bazaar,
			ABI:       superRareABI,
		},
	)
}
