package handlers

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EIP-712 typehashes of the Seaport order components.
var (
	seaportOrderTypehash             = common.HexToHash("0xfa445660b7e21515a59617fcd68910b487aa5808b8abda3d78bc85df364b2c2f")
	seaportOfferItemTypehash         = common.HexToHash("0xa66999307ad1bb4fde44d13a5d710bd7718e0c87c1eef68a571629fbf5b93d02")
	seaportConsiderationItemTypehash = common.HexToHash("0x42d81c6929ffdc4eb27a0808e40e82516ad42296c166065de7f812492304ff6e")
)

type seaportOfferItem struct {
	ItemType             uint8          `json:"item_type"`
	Token                common.Address `json:"token"`
	IdentifierOrCriteria *big.Int       `json:"identifier_or_criteria"`
	StartAmount          *big.Int       `json:"start_amount"`
	EndAmount            *big.Int       `json:"end_amount"`
}

type seaportConsiderationItem struct {
	ItemType             uint8          `json:"item_type"`
	Token                common.Address `json:"token"`
	IdentifierOrCriteria *big.Int       `json:"identifier_or_criteria"`
	StartAmount          *big.Int       `json:"start_amount"`
	EndAmount            *big.Int       `json:"end_amount"`
	Recipient            common.Address `json:"recipient"`
}

type seaportOrderParameters struct {
	Offerer                         common.Address             `json:"offerer"`
	Zone                            common.Address             `json:"zone"`
	Offer                           []seaportOfferItem         `json:"offer"`
	Consideration                   []seaportConsiderationItem `json:"consideration"`
	OrderType                       uint8                      `json:"order_type"`
	StartTime                       *big.Int                   `json:"start_time"`
	EndTime                         *big.Int                   `json:"end_time"`
	ZoneHash                        [32]byte                   `json:"zone_hash"`
	Salt                            *big.Int                   `json:"salt"`
	ConduitKey                      [32]byte                   `json:"conduit_key"`
	TotalOriginalConsiderationItems *big.Int                   `json:"total_original_consideration_items"`
}

// hash computes the EIP-712 struct hash of the order components for the
// given counter. It must reproduce the contract's _deriveOrderHash exactly,
// otherwise on-chain validated orders fail verification and are dropped.
func (p *seaportOrderParameters) hash(counter *big.Int) common.Hash {
	offerHashes := make([]byte, 0, len(p.Offer)*common.HashLength)
	for i := range p.Offer {
		offerHashes = append(offerHashes, p.Offer[i].hash()...)
	}
	considerationHashes := make([]byte, 0, len(p.Consideration)*common.HashLength)
	for i := range p.Consideration {
		considerationHashes = append(considerationHashes, p.Consideration[i].hash()...)
	}

	encoded := make([]byte, 0, 12*common.HashLength)
	encoded = append(encoded, seaportOrderTypehash.Bytes()...)
	encoded = append(encoded, addressWord(p.Offerer)...)
	encoded = append(encoded, addressWord(p.Zone)...)
	encoded = append(encoded, crypto.Keccak256(offerHashes)...)
	encoded = append(encoded, crypto.Keccak256(considerationHashes)...)
	encoded = append(encoded, uintWord(big.NewInt(int64(p.OrderType)))...)
	encoded = append(encoded, uintWord(p.StartTime)...)
	encoded = append(encoded, uintWord(p.EndTime)...)
	encoded = append(encoded, p.ZoneHash[:]...)
	encoded = append(encoded, uintWord(p.Salt)...)
	encoded = append(encoded, p.ConduitKey[:]...)
	encoded = append(encoded, uintWord(counter)...)
	return crypto.Keccak256Hash(encoded)
}

func (item *seaportOfferItem) hash() []byte {
	encoded := make([]byte, 0, 6*common.HashLength)
	encoded = append(encoded, seaportOfferItemTypehash.Bytes()...)
	encoded = append(encoded, uintWord(big.NewInt(int64(item.ItemType)))...)
	encoded = append(encoded, addressWord(item.Token)...)
	encoded = append(encoded, uintWord(item.IdentifierOrCriteria)...)
	encoded = append(encoded, uintWord(item.StartAmount)...)
	encoded = append(encoded, uintWord(item.EndAmount)...)
	return crypto.Keccak256(encoded)
}

func (item *seaportConsiderationItem) hash() []byte {
	encoded := make([]byte, 0, 7*common.HashLength)
	encoded = append(encoded, seaportConsiderationItemTypehash.Bytes()...)
	encoded = append(encoded, uintWord(big.NewInt(int64(item.ItemType)))...)
	encoded = append(encoded, addressWord(item.Token)...)
	encoded = append(encoded, uintWord(item.IdentifierOrCriteria)...)
	encoded = append(encoded, uintWord(item.StartAmount)...)
	encoded = append(encoded, uintWord(item.EndAmount)...)
	encoded = append(encoded, addressWord(item.Recipient)...)
	return crypto.Keccak256(encoded)
}

func addressWord(address common.Address) []byte {
	return common.BytesToHash(address.Bytes()).Bytes()
}

func uintWord(value *big.Int) []byte {
	if value == nil {
		value = new(big.Int)
	}
	return common.BigToHash(value).Bytes()
}

// ABI fragments for reconstructing validated orders: the validate(...)
// calldata carries the full order parameters, getCounter supplies the
// missing counter component.
const seaportFunctionsABIJSON = `[
  {
    "inputs": [
      {"components": [
        {"components": [
          {"internalType": "address", "name": "offerer", "type": "address"},
          {"internalType": "address", "name": "zone", "type": "address"},
          {"components": [
            {"internalType": "uint8", "name": "itemType", "type": "uint8"},
            {"internalType": "address", "name": "token", "type": "address"},
            {"internalType": "uint256", "name": "identifierOrCriteria", "type": "uint256"},
            {"internalType": "uint256", "name": "startAmount", "type": "uint256"},
            {"internalType": "uint256", "name": "endAmount", "type": "uint256"}
          ], "internalType": "struct OfferItem[]", "name": "offer", "type": "tuple[]"},
          {"components": [
            {"internalType": "uint8", "name": "itemType", "type": "uint8"},
            {"internalType": "address", "name": "token", "type": "address"},
            {"internalType": "uint256", "name": "identifierOrCriteria", "type": "uint256"},
            {"internalType": "uint256", "name": "startAmount", "type": "uint256"},
            {"internalType": "uint256", "name": "endAmount", "type": "uint256"},
            {"internalType": "address", "name": "recipient", "type": "address"}
          ], "internalType": "struct ConsiderationItem[]", "name": "consideration", "type": "tuple[]"},
          {"internalType": "uint8", "name": "orderType", "type": "uint8"},
          {"internalType": "uint256", "name": "startTime", "type": "uint256"},
          {"internalType": "uint256", "name": "endTime", "type": "uint256"},
          {"internalType": "bytes32", "name": "zoneHash", "type": "bytes32"},
          {"internalType": "uint256", "name": "salt", "type": "uint256"},
          {"internalType": "bytes32", "name": "conduitKey", "type": "bytes32"},
          {"internalType": "uint256", "name": "totalOriginalConsiderationItems", "type": "uint256"}
        ], "internalType": "struct OrderParameters", "name": "parameters", "type": "tuple"},
        {"internalType": "bytes", "name": "signature", "type": "bytes"}
      ], "internalType": "struct Order[]", "name": "orders", "type": "tuple[]"}
    ],
    "name": "validate",
    "outputs": [{"internalType": "bool", "name": "validated", "type": "bool"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "offerer", "type": "address"}],
    "name": "getCounter",
    "outputs": [{"internalType": "uint256", "name": "counter", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	seaportFunctionsABI = mustParseABI(seaportFunctionsABIJSON)

	seaportValidateSelector = []byte{0x88, 0x14, 0x77, 0x32}
)

type seaportOrder struct {
	Parameters seaportOrderParameters
	Signature  []byte
}

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
