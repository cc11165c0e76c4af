package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindSeaportOrderFilled           Kind = "seaport-order-filled"
	KindSeaportOrderCancelled        Kind = "seaport-order-cancelled"
	KindSeaportCounterIncremented    Kind = "seaport-counter-incremented"
	KindSeaportOrderValidated        Kind = "seaport-order-validated"
	KindSeaportV14OrderFilled        Kind = "seaport-v1.4-order-filled"
	KindSeaportV14OrderCancelled     Kind = "seaport-v1.4-order-cancelled"
	KindSeaportV14CounterIncremented Kind = "seaport-v1.4-counter-incremented"
	KindSeaportV14OrderValidated     Kind = "seaport-v1.4-order-validated"
)

// Seaport v1.1 and v1.4 exchange addresses (mainnet).
const (
	SeaportV11Address = "0x00000000006c3852cbEf3e08E8dF289169EdE581"
	SeaportV14Address = "0x00000000000001ad428e4906aE43D8F9852d0dD6"
)

const seaportABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "offerer", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "zone", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "recipient", "type": "address"},
      {"indexed": false, "internalType": "struct SpentItem[]", "name": "offer", "type": "tuple[]", "components": [
        {"internalType": "uint8", "name": "itemType", "type": "uint8"},
        {"internalType": "address", "name": "token", "type": "address"},
        {"internalType": "uint256", "name": "identifier", "type": "uint256"},
        {"internalType": "uint256", "name": "amount", "type": "uint256"}
      ]},
      {"indexed": false, "internalType": "struct ReceivedItem[]", "name": "consideration", "type": "tuple[]", "components": [
        {"internalType": "uint8", "name": "itemType", "type": "uint8"},
        {"internalType": "address", "name": "token", "type": "address"},
        {"internalType": "uint256", "name": "identifier", "type": "uint256"},
        {"internalType": "uint256", "name": "amount", "type": "uint256"},
        {"internalType": "address", "name": "recipient", "type": "address"}
      ]}
    ],
    "name": "OrderFulfilled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "offerer", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "zone", "type": "address"}
    ],
    "name": "OrderCancelled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "newCounter", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "offerer", "type": "address"}
    ],
    "name": "CounterIncremented",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": true, "internalType": "address", "name": "offerer", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "zone", "type": "address"}
    ],
    "name": "OrderValidated",
    "type": "event"
  }
]`

const seaportV14ValidatedABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "struct OrderParameters", "name": "orderParameters", "type": "tuple", "components": [
        {"internalType": "address", "name": "offerer", "type": "address"},
        {"internalType": "address", "name": "zone", "type": "address"},
        {"internalType": "struct OfferItem[]", "name": "offer", "type": "tuple[]", "components": [
          {"internalType": "uint8", "name": "itemType", "type": "uint8"},
          {"internalType": "address", "name": "token", "type": "address"},
          {"internalType": "uint256", "name": "identifierOrCriteria", "type": "uint256"},
          {"internalType": "uint256", "name": "startAmount", "type": "uint256"},
          {"internalType": "uint256", "name": "endAmount", "type": "uint256"}
        ]},
        {"internalType": "struct ConsiderationItem[]", "name": "consideration", "type": "tuple[]", "components": [
          {"internalType": "uint8", "name": "itemType", "type": "uint8"},
          {"internalType": "address", "name": "token", "type": "address"},
          {"internalType": "uint256", "name": "identifierOrCriteria", "type": "uint256"},
          {"internalType": "uint256", "name": "startAmount", "type": "uint256"},
          {"internalType": "uint256", "name": "endAmount", "type": "uint256"},
          {"internalType": "address", "name": "recipient", "type": "address"}
        ]},
        {"internalType": "uint8", "name": "orderType", "type": "uint8"},
        {"internalType": "uint256", "name": "startTime", "type": "uint256"},
        {"internalType": "uint256", "name": "endTime", "type": "uint256"},
        {"internalType": "bytes32", "name": "zoneHash", "type": "bytes32"},
        {"internalType": "uint256", "name": "salt", "type": "uint256"},
        {"internalType": "bytes32", "name": "conduitKey", "type": "bytes32"},
        {"internalType": "uint256", "name": "totalOriginalConsiderationItems", "type": "uint256"}
      ]}
    ],
    "name": "OrderValidated",
    "type": "event"
  }
]`

var (
	seaportABI             = mustABI(seaportABIJSON)
	seaportV14ValidatedABI = mustABI(seaportV14ValidatedABIJSON)
)

func init() {
	v11 := allowList(SeaportV11Address)
	v14 := allowList(SeaportV14Address)

	register(
		Entry{
			Kind:      KindSeaportOrderFilled,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0x9d9af8e38d66c62e2c12f0225249fd9d721c54b83f48d9352c97c6cacdcb6f31"),
			NumTopics: 3,
			Addresses: v11,
			ABI:       seaportABI,
		},
		Entry{
			Kind:      KindSeaportOrderCancelled,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0x6bacc01dbe442496068f7d234edd811f1a5f833243e0aec824f86ab861f3c90d"),
			NumTopics: 3,
			Addresses: v11,
			ABI:       seaportABI,
		},
		Entry{
			Kind:      KindSeaportCounterIncremented,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0x721c20121297512b72821b97f5326877ea8ecf4bb9948fea5bfcb6453074d37f"),
			NumTopics: 2,
			Addresses: v11,
			ABI:       seaportABI,
		},
		Entry{
			Kind:      KindSeaportOrderValidated,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0xfde361574a066b44b3b5fe98a87108b7565e327327954c4faeea56a4e6491a0a"),
			NumTopics: 3,
			Addresses: v11,
			ABI:       seaportABI,
		},
		Entry{
			Kind:      KindSeaportV14OrderFilled,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0x9d9af8e38d66c62e2c12f0225249fd9d721c54b83f48d9352c97c6cacdcb6f31"),
			NumTopics: 3,
			Addresses: v14,
			ABI:       seaportABI,
		},
		Entry{
			Kind:      KindSeaportV14OrderCancelled,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0x6bacc01dbe442496068f7d234edd811f1a5f833243e0aec824f86ab861f3c90d"),
			NumTopics: 3,
			Addresses: v14,
			ABI:       seaportABI,
		},
		Entry{
			Kind:      KindSeaportV14CounterIncremented,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0x721c20121297512b72821b97f5326877ea8ecf4bb9948fea5bfcb6453074d37f"),
			NumTopics: 2,
			Addresses: v14,
			ABI:       seaportABI,
		},
		Entry{
			Kind:      KindSeaportV14OrderValidated,
			Protocol:  ProtocolSeaport,
			Topic:     common.HexToHash("0xf280791efe782edcf06ce15c8f4dff17601db3b88eb3805a0db7d77faf757f04"),
			NumTopics: 1,
			Addresses: v14,
			ABI:       seaportV14ValidatedABI,
		},
	)
}
