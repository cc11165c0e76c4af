package chain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps go-ethereum RPC and provides helper methods. Each call is
// independent: a failure never corrupts cached state.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	mu      sync.RWMutex
	txCache map[common.Hash]*types.Transaction
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		txCache:   make(map[common.Hash]*types.Transaction),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// HeaderByNumber returns the block header by number.
func (c *Client) HeaderByNumber(ctx context.Context, number uint64) (*types.Header, error) {
	return c.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
}

// TransactionByHash returns the transaction, using an in-memory cache so
// handlers decoding calldata for multiple events of one transaction only
// pay for a single round trip.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, error) {
	c.mu.RLock()
	tx, ok := c.txCache[hash]
	c.mu.RUnlock()
	if ok {
		return tx, nil
	}

	tx, _, err := c.ethClient.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.txCache[hash] = tx
	c.mu.Unlock()

	return tx, nil
}

// TransactionReceipt returns the receipt for a transaction.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return c.ethClient.TransactionReceipt(ctx, hash)
}

// FilterLogs returns logs in the given range matching the topic0 filter.
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, topic0 []common.Hash) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
	}
	if len(topic0) > 0 {
		query.Topics = [][]common.Hash{topic0}
	}
	return c.ethClient.FilterLogs(ctx, query)
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// CallTrace returns the call trace of a transaction via
// debug_traceTransaction with the callTracer.
func (c *Client) CallTrace(ctx context.Context, hash common.Hash) (*CallFrame, error) {
	var frame CallFrame
	err := c.rpcClient.CallContext(ctx, &frame, "debug_traceTransaction", hash, map[string]interface{}{
		"tracer": "callTracer",
	})
	if err != nil {
		return nil, err
	}
	return &frame, nil
}
