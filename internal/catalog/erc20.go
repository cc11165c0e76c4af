package catalog

import "github.com/ethereum/go-ethereum/common"

const (
	KindERC20Transfer  Kind = "erc20-transfer"
	KindERC20Approval  Kind = "erc20-approval"
	KindWethDeposit    Kind = "weth-deposit"
	KindWethWithdrawal Kind = "weth-withdrawal"
)

// Well-known currency addresses (mainnet).
const (
	// NativeToken is the conventional sentinel for the chain's native token.
	NativeToken = "0x0000000000000000000000000000000000000000"
	// NativeTokenSentinel is the 0xeeee... placeholder some protocols use.
	NativeTokenSentinel = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
	// WrappedNative is WETH.
	WrappedNative = "0xC02aaa39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)

const erc20ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "spender", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "Approval",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "Deposit",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "Withdrawal",
    "type": "event"
  }
]`

var erc20ABI = mustABI(erc20ABIJSON)

func init() {
	weth := allowList(WrappedNative)

	register(
		Entry{
			Kind:      KindERC20Transfer,
			Protocol:  ProtocolERC20,
			Topic:     common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
			NumTopics: 3,
			ABI:       erc20ABI,
		},
		Entry{
			Kind:      KindERC20Approval,
			Protocol:  ProtocolERC20,
			Topic:     common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925"),
			NumTopics: 3,
			ABI:       erc20ABI,
		},
		Entry{
			Kind:      KindWethDeposit,
			Protocol:  ProtocolERC20,
			Topic:     common.HexToHash("0xe1fffcc4923d04b559f4d29a8bfc6cda04eb5b0d3c460751c2402c5c5cc9109c"),
			NumTopics: 2,
			Addresses: weth,
			ABI:       erc20ABI,
		},
		Entry{
			Kind:      KindWethWithdrawal,
			Protocol:  ProtocolERC20,
			Topic:     common.HexToHash("0x7fcf532c15f0a6db0bd6d0e038bea71d30d808c7d98cb3bf7268a95bf5081b65"),
			NumTopics: 2,
			Addresses: weth,
			ABI:       erc20ABI,
		},
	)
}
