package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marketScope/internal/catalog"
	"marketScope/internal/handlers"
	"marketScope/internal/model"
	"marketScope/internal/queue"
)

// prewarmLimit caps the number of concurrent header fetches ahead of a
// head-range sync.
const prewarmLimit = 32

// ChainSource is the chain access the syncer needs, a superset of what the
// handlers use.
type ChainSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number uint64) (*types.Header, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, topic0 []common.Hash) ([]types.Log, error)
	handlers.ChainReader
}

// Store is the persistence surface the syncer writes to.
type Store interface {
	SaveBlock(ctx context.Context, block model.Block) error
	BlocksByNumber(ctx context.Context, number uint64) ([]model.Block, error)
	DeleteBlock(ctx context.Context, number uint64, hash string) error
	InsertFillEvents(ctx context.Context, fills []model.FillEvent) error
	InsertCancelEvents(ctx context.Context, cancels []model.CancelEvent) error
	InsertNonceCancelEvents(ctx context.Context, cancels []model.NonceCancelEvent) error
	InsertBulkCancelEvents(ctx context.Context, cancels []model.BulkCancelEvent) error
	RemoveBlockEvents(ctx context.Context, number uint64, blockHash string) error
	LoadCheckpoint(ctx context.Context, name string) (uint64, bool, error)
	SaveCheckpoint(ctx context.Context, name string, block uint64) error
}

// Options holds runtime settings for the syncer.
type Options struct {
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	// Checkpoint names the resume point in the store; empty disables
	// checkpointing.
	Checkpoint string
}

// BlockCheck is the payload of a scheduled reorg recheck.
type BlockCheck struct {
	Block     uint64 `json:"block"`
	BlockHash string `json:"block_hash"`
}

// Syncer drives the fetch-classify-handle-persist pipeline over block
// ranges and fans resulting triggers out to the work queues.
type Syncer struct {
	chain  ChainSource
	store  Store
	queue  queue.Publisher
	env    *handlers.Env
	logger *zap.Logger
	opts   Options
}

// New builds a Syncer with its dependencies.
func New(chain ChainSource, store Store, publisher queue.Publisher, env *handlers.Env, logger *zap.Logger, opts Options) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = queue.Nop{}
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = 100
	}
	return &Syncer{
		chain:  chain,
		store:  store,
		queue:  publisher,
		env:    env,
		logger: logger,
		opts:   opts,
	}
}

// Sync processes the inclusive block range. A zero to-block means the
// current chain head. In backfill mode the header prewarm and the reorg
// rechecks are suppressed; canonical records and the queue fanout are
// produced exactly as in a live sync.
func (s *Syncer) Sync(ctx context.Context, fromBlock, toBlock uint64, backfill bool) error {
	if s.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if s.store == nil {
		return fmt.Errorf("store is nil")
	}

	from := fromBlock
	to := toBlock
	if to == 0 {
		latest, err := s.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if s.opts.Checkpoint != "" {
		checkpoint, ok, err := s.store.LoadCheckpoint(ctx, s.opts.Checkpoint)
		if err != nil {
			return err
		}
		if ok && checkpoint >= from {
			from = checkpoint + 1
			s.logger.Info("resume from checkpoint",
				zap.Uint64("last_synced", checkpoint),
				zap.Uint64("from", from))
		}
	}

	if from > to {
		s.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, s.opts.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.logger.Info("sync range",
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Bool("backfill", backfill))

		if err := s.syncRange(ctx, blockRange, backfill); err != nil {
			return fmt.Errorf("sync range [%d, %d]: %w", blockRange.From, blockRange.To, err)
		}

		if s.opts.Checkpoint != "" {
			if err := s.store.SaveCheckpoint(ctx, s.opts.Checkpoint, blockRange.To); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Syncer) syncRange(ctx context.Context, blockRange BlockRange, backfill bool) error {
	blocks := make(map[uint64]model.Block)

	// Near the head the range is small, so prewarming every header in
	// parallel saves the per-log round trips below.
	span := blockRange.To - blockRange.From + 1
	if !backfill && span <= prewarmLimit {
		headers := make([]*types.Header, span)
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(prewarmLimit)
		for i := uint64(0); i < span; i++ {
			i := i
			group.Go(func() error {
				header, err := s.headerWithRetry(groupCtx, blockRange.From+i)
				if err != nil {
					return err
				}
				headers[i] = header
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return fmt.Errorf("prewarm headers: %w", err)
		}
		for _, header := range headers {
			block := model.Block{
				Number:    header.Number.Uint64(),
				Hash:      header.Hash().Hex(),
				Timestamp: header.Time,
			}
			blocks[block.Number] = block
			if err := s.store.SaveBlock(ctx, block); err != nil {
				return fmt.Errorf("save block %d: %w", block.Number, err)
			}
		}
	}

	logs, err := s.filterLogsWithRetry(ctx, blockRange.From, blockRange.To)
	if err != nil {
		return fmt.Errorf("filter logs: %w", err)
	}

	events := make([]handlers.ClassifiedEvent, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}
		block, ok := blocks[log.BlockNumber]
		if !ok {
			header, err := s.headerWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return fmt.Errorf("header %d: %w", log.BlockNumber, err)
			}
			block = model.Block{
				Number:    header.Number.Uint64(),
				Hash:      header.Hash().Hex(),
				Timestamp: header.Time,
			}
			blocks[log.BlockNumber] = block
			if err := s.store.SaveBlock(ctx, block); err != nil {
				return fmt.Errorf("save block %d: %w", block.Number, err)
			}
		}

		if event, ok := classify(log, block); ok {
			events = append(events, event)
		}
	}

	data := &handlers.OnChainData{}
	partitions := partition(events)
	for _, protocol := range catalog.Protocols {
		partitionEvents := partitions[protocol]
		if len(partitionEvents) == 0 {
			continue
		}
		handler, err := handlers.For(protocol)
		if err != nil {
			return err
		}
		if err := handler(ctx, s.env, partitionEvents, data); err != nil {
			return fmt.Errorf("handle %s: %w", protocol, err)
		}
	}

	if err := s.persist(ctx, data); err != nil {
		return err
	}

	if err := s.fanout(ctx, data); err != nil {
		return err
	}

	// Historical blocks are final; only head blocks get reorg rechecks.
	if backfill {
		return nil
	}
	return s.scheduleRechecks(ctx, blocks)
}

func (s *Syncer) persist(ctx context.Context, data *handlers.OnChainData) error {
	if err := s.store.InsertFillEvents(ctx, data.Fills); err != nil {
		return fmt.Errorf("insert fills: %w", err)
	}
	if err := s.store.InsertCancelEvents(ctx, data.Cancels); err != nil {
		return fmt.Errorf("insert cancels: %w", err)
	}
	if err := s.store.InsertNonceCancelEvents(ctx, data.NonceCancels); err != nil {
		return fmt.Errorf("insert nonce cancels: %w", err)
	}
	if err := s.store.InsertBulkCancelEvents(ctx, data.BulkCancels); err != nil {
		return fmt.Errorf("insert bulk cancels: %w", err)
	}
	return nil
}

func (s *Syncer) fanout(ctx context.Context, data *handlers.OnChainData) error {
	for _, trigger := range data.OrderTriggers {
		if err := s.queue.Publish(ctx, queue.OrderUpdates, trigger); err != nil {
			return err
		}
	}
	for _, trigger := range data.FillTriggers {
		if err := s.queue.Publish(ctx, queue.FillUpdates, trigger); err != nil {
			return err
		}
	}
	for _, trigger := range data.MakerTriggers {
		if err := s.queue.Publish(ctx, queue.MakerApprovals, trigger); err != nil {
			return err
		}
	}
	for _, order := range data.NewOrders {
		if err := s.queue.Publish(ctx, queue.Orders, order); err != nil {
			return err
		}
	}
	for _, fill := range data.Fills {
		if err := s.queue.Publish(ctx, queue.Activities, activityFromFill(fill)); err != nil {
			return err
		}
	}
	return nil
}

// scheduleRechecks arranges delayed verifications of freshly synced
// blocks. Every head block gets one check after a minute; a height that
// already has more than one stored hash is a reorg in progress, so it
// also gets quick rechecks.
func (s *Syncer) scheduleRechecks(ctx context.Context, blocks map[uint64]model.Block) error {
	for number, block := range blocks {
		check := BlockCheck{Block: number, BlockHash: block.Hash}
		if err := s.queue.PublishDelayed(ctx, queue.BlockChecks, check, time.Minute); err != nil {
			return err
		}

		stored, err := s.store.BlocksByNumber(ctx, number)
		if err != nil {
			return err
		}
		if len(stored) > 1 {
			s.logger.Warn("multiple blocks at height", zap.Uint64("block", number))
			for _, delay := range []time.Duration{10 * time.Second, 30 * time.Second} {
				if err := s.queue.PublishDelayed(ctx, queue.BlockChecks, check, delay); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Unsync reverts every event of one specific (block, hash) pair. Keyed by
// hash so that after a reorg only the orphaned sibling is removed.
func (s *Syncer) Unsync(ctx context.Context, number uint64, blockHash string) error {
	if err := s.store.RemoveBlockEvents(ctx, number, blockHash); err != nil {
		return fmt.Errorf("remove block events: %w", err)
	}
	if err := s.store.DeleteBlock(ctx, number, blockHash); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	s.logger.Info("unsynced block", zap.Uint64("block", number), zap.String("hash", blockHash))
	return nil
}

// activityFromFill derives the feed entry for a trade. The NFT always
// moves from seller to buyer: on a bid fill the maker is the buyer, so
// the direction flips.
func activityFromFill(fill model.FillEvent) model.Activity {
	from, to := fill.Maker, fill.Taker
	if fill.OrderSide == model.SideBuy {
		from, to = fill.Taker, fill.Maker
	}
	return model.Activity{
		Kind:        "sale",
		Contract:    fill.Contract,
		TokenID:     fill.TokenID,
		FromAddress: from,
		ToAddress:   to,
		Price:       fill.Price,
		Amount:      fill.Amount,
		TxHash:      fill.BaseEventParams.TxHash,
		LogIndex:    fill.BaseEventParams.LogIndex,
		BatchIndex:  fill.BaseEventParams.BatchIndex,
		BlockHash:   fill.BaseEventParams.BlockHash,
		Timestamp:   fill.BaseEventParams.Timestamp,
		OrderID:     fill.OrderID,
	}
}

func (s *Syncer) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, s.opts.MaxRetries, s.opts.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = s.chain.FilterLogs(ctx, fromBlock, toBlock, catalog.Topics())
		if err != nil {
			s.logger.Warn("filter logs failed", zap.Error(err),
				zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (s *Syncer) headerWithRetry(ctx context.Context, number uint64) (*types.Header, error) {
	var header *types.Header
	err := withRetry(ctx, s.opts.MaxRetries, s.opts.RetryBackoff, func(ctx context.Context) error {
		var err error
		header, err = s.chain.HeaderByNumber(ctx, number)
		if err != nil {
			s.logger.Warn("header fetch failed", zap.Error(err), zap.Uint64("block", number))
		}
		return err
	})
	return header, err
}
