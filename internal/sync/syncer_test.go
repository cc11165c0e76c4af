package sync

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/catalog"
	"marketScope/internal/chain"
	"marketScope/internal/handlers"
	"marketScope/internal/model"
	"marketScope/internal/queue"
)

type fakeChain struct {
	latest      uint64
	headers     map[uint64]*types.Header
	logs        []types.Log
	filterCalls int
}

func (c *fakeChain) LatestBlockNumber(context.Context) (uint64, error) { return c.latest, nil }

func (c *fakeChain) HeaderByNumber(_ context.Context, number uint64) (*types.Header, error) {
	header, ok := c.headers[number]
	if !ok {
		return nil, fmt.Errorf("no header %d", number)
	}
	return header, nil
}

func (c *fakeChain) FilterLogs(_ context.Context, fromBlock, toBlock uint64, _ []common.Hash) ([]types.Log, error) {
	c.filterCalls++
	out := make([]types.Log, 0, len(c.logs))
	for _, log := range c.logs {
		if log.BlockNumber >= fromBlock && log.BlockNumber <= toBlock {
			out = append(out, log)
		}
	}
	return out, nil
}

func (c *fakeChain) TransactionByHash(context.Context, common.Hash) (*types.Transaction, error) {
	return nil, errors.New("no transactions in fake")
}

func (c *fakeChain) CallTrace(context.Context, common.Hash) (*chain.CallFrame, error) {
	return nil, errors.New("no traces in fake")
}

func (c *fakeChain) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("no calls in fake")
}

type fakeStore struct {
	blocks       map[uint64][]model.Block
	fills        []model.FillEvent
	cancels      []model.CancelEvent
	nonceCancels []model.NonceCancelEvent
	bulkCancels  []model.BulkCancelEvent
	removed      []string
	deleted      []string
	checkpoints  map[string]uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blocks:      make(map[uint64][]model.Block),
		checkpoints: make(map[string]uint64),
	}
}

func (s *fakeStore) SaveBlock(_ context.Context, block model.Block) error {
	for _, stored := range s.blocks[block.Number] {
		if stored.Hash == block.Hash {
			return nil
		}
	}
	s.blocks[block.Number] = append(s.blocks[block.Number], block)
	return nil
}

func (s *fakeStore) BlocksByNumber(_ context.Context, number uint64) ([]model.Block, error) {
	return s.blocks[number], nil
}

func (s *fakeStore) DeleteBlock(_ context.Context, number uint64, hash string) error {
	s.deleted = append(s.deleted, fmt.Sprintf("%d:%s", number, hash))
	return nil
}

func (s *fakeStore) InsertFillEvents(_ context.Context, fills []model.FillEvent) error {
	s.fills = append(s.fills, fills...)
	return nil
}

func (s *fakeStore) InsertCancelEvents(_ context.Context, cancels []model.CancelEvent) error {
	s.cancels = append(s.cancels, cancels...)
	return nil
}

func (s *fakeStore) InsertNonceCancelEvents(_ context.Context, cancels []model.NonceCancelEvent) error {
	s.nonceCancels = append(s.nonceCancels, cancels...)
	return nil
}

func (s *fakeStore) InsertBulkCancelEvents(_ context.Context, cancels []model.BulkCancelEvent) error {
	s.bulkCancels = append(s.bulkCancels, cancels...)
	return nil
}

func (s *fakeStore) RemoveBlockEvents(_ context.Context, number uint64, blockHash string) error {
	s.removed = append(s.removed, fmt.Sprintf("%d:%s", number, blockHash))
	return nil
}

func (s *fakeStore) LoadCheckpoint(_ context.Context, name string) (uint64, bool, error) {
	block, ok := s.checkpoints[name]
	return block, ok, nil
}

func (s *fakeStore) SaveCheckpoint(_ context.Context, name string, block uint64) error {
	s.checkpoints[name] = block
	return nil
}

type publishedMessage struct {
	queue   string
	payload interface{}
	delay   time.Duration
}

type fakePublisher struct {
	published []publishedMessage
	delayed   []publishedMessage
}

func (p *fakePublisher) Publish(_ context.Context, queueName string, payload interface{}) error {
	p.published = append(p.published, publishedMessage{queue: queueName, payload: payload})
	return nil
}

func (p *fakePublisher) PublishDelayed(_ context.Context, queueName string, payload interface{}, delay time.Duration) error {
	p.delayed = append(p.delayed, publishedMessage{queue: queueName, payload: payload, delay: delay})
	return nil
}

func testHeader(number uint64, timestamp uint64) *types.Header {
	return &types.Header{
		Number:     new(big.Int).SetUint64(number),
		Time:       timestamp,
		Difficulty: big.NewInt(0),
	}
}

func cancelAllLog(block uint64, user common.Address, minNonce int64) types.Log {
	return types.Log{
		Address: common.HexToAddress(catalog.LooksRareExchangeAddress),
		Topics: []common.Hash{
			cancelAllTopic,
			common.BytesToHash(user.Bytes()),
		},
		Data:        common.BigToHash(big.NewInt(minNonce)).Bytes(),
		BlockNumber: block,
		TxHash:      common.HexToHash("0xbeef"),
		Index:       0,
	}
}

func TestSyncPersistsEventsAndCheckpoints(t *testing.T) {
	user := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	chainSource := &fakeChain{
		latest:  100,
		headers: map[uint64]*types.Header{100: testHeader(100, 1680000000)},
		logs:    []types.Log{cancelAllLog(100, user, 7)},
	}
	store := newFakeStore()
	publisher := &fakePublisher{}

	syncer := New(chainSource, store, publisher, &handlers.Env{Chain: chainSource}, nil, Options{
		Checkpoint: "test",
	})

	if err := syncer.Sync(context.Background(), 100, 100, false); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if len(store.bulkCancels) != 1 {
		t.Fatalf("expected one bulk cancel, got %d", len(store.bulkCancels))
	}
	cancel := store.bulkCancels[0]
	if cancel.MinNonce != "7" {
		t.Fatalf("unexpected min nonce: %s", cancel.MinNonce)
	}
	if cancel.Maker != "0x00000000000000000000000000000000000000aa" {
		t.Fatalf("unexpected maker: %s", cancel.Maker)
	}

	if len(store.blocks[100]) != 1 {
		t.Fatalf("expected the synced block to be stored")
	}
	if store.checkpoints["test"] != 100 {
		t.Fatalf("checkpoint not saved: %v", store.checkpoints)
	}

	// One head block means one delayed recheck at the standard delay.
	if len(publisher.delayed) != 1 {
		t.Fatalf("expected one delayed recheck, got %d", len(publisher.delayed))
	}
	if publisher.delayed[0].queue != queue.BlockChecks || publisher.delayed[0].delay != time.Minute {
		t.Fatalf("unexpected recheck: %+v", publisher.delayed[0])
	}
}

func TestSyncReorgInProgressGetsQuickRechecks(t *testing.T) {
	user := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	chainSource := &fakeChain{
		latest:  100,
		headers: map[uint64]*types.Header{100: testHeader(100, 1680000000)},
		logs:    []types.Log{cancelAllLog(100, user, 1)},
	}
	store := newFakeStore()
	// A different hash already stored at the same height.
	store.blocks[100] = []model.Block{{Number: 100, Hash: "0xstale", Timestamp: 1679999988}}
	publisher := &fakePublisher{}

	syncer := New(chainSource, store, publisher, &handlers.Env{Chain: chainSource}, nil, Options{})

	if err := syncer.Sync(context.Background(), 100, 100, false); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	if len(store.blocks[100]) != 2 {
		t.Fatalf("both sibling blocks should be stored, got %d", len(store.blocks[100]))
	}
	if len(publisher.delayed) != 3 {
		t.Fatalf("expected standard plus two quick rechecks, got %d", len(publisher.delayed))
	}
	delays := map[time.Duration]bool{}
	for _, message := range publisher.delayed {
		delays[message.delay] = true
	}
	if !delays[10*time.Second] || !delays[30*time.Second] || !delays[time.Minute] {
		t.Fatalf("unexpected recheck delays: %+v", publisher.delayed)
	}
}

func seaportCancelLog(block uint64, offerer common.Address, orderHash common.Hash) types.Log {
	return types.Log{
		Address: common.HexToAddress(catalog.SeaportV11Address),
		Topics: []common.Hash{
			seaportCancelTopic,
			common.BytesToHash(offerer.Bytes()),
			common.Hash{}, // zone
		},
		Data:        orderHash.Bytes(),
		BlockNumber: block,
		TxHash:      common.HexToHash("0xbeef"),
		Index:       0,
	}
}

func TestSyncBackfillKeepsFanoutSkipsRechecks(t *testing.T) {
	offerer := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	orderHash := common.HexToHash("0xcc00000000000000000000000000000000000000000000000000000000000001")

	newFixtures := func() (*fakeChain, *fakeStore, *fakePublisher) {
		chainSource := &fakeChain{
			latest:  100,
			headers: map[uint64]*types.Header{100: testHeader(100, 1680000000)},
			logs:    []types.Log{seaportCancelLog(100, offerer, orderHash)},
		}
		return chainSource, newFakeStore(), &fakePublisher{}
	}

	chainSource, store, publisher := newFixtures()
	syncer := New(chainSource, store, publisher, &handlers.Env{Chain: chainSource}, nil, Options{})
	if err := syncer.Sync(context.Background(), 100, 100, true); err != nil {
		t.Fatalf("backfill sync failed: %v", err)
	}

	if len(store.cancels) != 1 {
		t.Fatalf("backfill must still persist events, got %d", len(store.cancels))
	}
	if len(publisher.published) != 1 || publisher.published[0].queue != queue.OrderUpdates {
		t.Fatalf("backfill must still fan triggers out: %+v", publisher.published)
	}
	if len(publisher.delayed) != 0 {
		t.Fatalf("backfill must not schedule rechecks: %+v", publisher.delayed)
	}

	// A live sync of the same log publishes the same triggers.
	liveChain, liveStore, livePublisher := newFixtures()
	liveSyncer := New(liveChain, liveStore, livePublisher, &handlers.Env{Chain: liveChain}, nil, Options{})
	if err := liveSyncer.Sync(context.Background(), 100, 100, false); err != nil {
		t.Fatalf("live sync failed: %v", err)
	}
	if len(livePublisher.published) != len(publisher.published) {
		t.Fatalf("live and backfill fanout differ: %d != %d",
			len(livePublisher.published), len(publisher.published))
	}
	if len(livePublisher.delayed) != 1 {
		t.Fatalf("live sync should schedule the standard recheck, got %d", len(livePublisher.delayed))
	}
}

func TestSyncResumesFromCheckpoint(t *testing.T) {
	chainSource := &fakeChain{latest: 100}
	store := newFakeStore()
	store.checkpoints["test"] = 100

	syncer := New(chainSource, store, &fakePublisher{}, &handlers.Env{Chain: chainSource}, nil, Options{
		Checkpoint: "test",
	})

	if err := syncer.Sync(context.Background(), 90, 100, false); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if chainSource.filterCalls != 0 {
		t.Fatalf("fully checkpointed range must not be refetched")
	}
}

func TestUnsyncRemovesOnlyTheNamedBlock(t *testing.T) {
	store := newFakeStore()
	syncer := New(&fakeChain{}, store, queue.Nop{}, nil, nil, Options{})

	if err := syncer.Unsync(context.Background(), 100, "0xstale"); err != nil {
		t.Fatalf("unsync failed: %v", err)
	}
	if len(store.removed) != 1 || store.removed[0] != "100:0xstale" {
		t.Fatalf("unexpected event removal: %v", store.removed)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "100:0xstale" {
		t.Fatalf("unexpected block deletion: %v", store.deleted)
	}
}

func TestActivityDirectionFollowsTheToken(t *testing.T) {
	sale := model.FillEvent{OrderSide: model.SideSell, Maker: "0xseller", Taker: "0xbuyer"}
	activity := activityFromFill(sale)
	if activity.FromAddress != "0xseller" || activity.ToAddress != "0xbuyer" {
		t.Fatalf("sell fill should move from maker to taker: %+v", activity)
	}

	bid := model.FillEvent{OrderSide: model.SideBuy, Maker: "0xbuyer", Taker: "0xseller"}
	activity = activityFromFill(bid)
	if activity.FromAddress != "0xseller" || activity.ToAddress != "0xbuyer" {
		t.Fatalf("bid fill should move from taker to maker: %+v", activity)
	}
}
