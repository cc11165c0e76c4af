package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketScope/internal/model"
	"marketScope/internal/prices"
)

// Store provides Postgres persistence for blocks, canonical events and
// currency rates.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveBlock upserts block metadata. The table is keyed by (number, hash)
// so reorged siblings of the same height coexist until unsynced.
func (s *Store) SaveBlock(ctx context.Context, block model.Block) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO blocks (number, hash, timestamp, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (number, hash) DO NOTHING
	`, int64(block.Number), block.Hash, int64(block.Timestamp))
	return err
}

// BlocksByNumber returns every stored block at a height. More than one row
// means a reorg left a stale sibling behind.
func (s *Store) BlocksByNumber(ctx context.Context, number uint64) ([]model.Block, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT number, hash, timestamp FROM blocks WHERE number = $1
	`, int64(number))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		var (
			num       int64
			hash      string
			timestamp int64
		)
		if err := rows.Scan(&num, &hash, &timestamp); err != nil {
			return nil, err
		}
		blocks = append(blocks, model.Block{
			Number:    uint64(num),
			Hash:      hash,
			Timestamp: uint64(timestamp),
		})
	}
	return blocks, rows.Err()
}

// DeleteBlock removes a block row, typically after unsyncing its events.
func (s *Store) DeleteBlock(ctx context.Context, number uint64, hash string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM blocks WHERE number = $1 AND hash = $2
	`, int64(number), hash)
	return err
}

// InsertFillEvents batch-inserts fills, ignoring replays of the same
// on-chain position.
func (s *Store) InsertFillEvents(ctx context.Context, fills []model.FillEvent) error {
	if len(fills) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, fill := range fills {
		batch.Queue(`
			INSERT INTO fill_events (
				order_kind, order_id, order_side, maker, taker,
				price, currency, currency_price, usd_price,
				contract, token_id, amount,
				order_source_id, aggregator_source_id, fill_source_id,
				address, block, block_hash, tx_hash, tx_index, log_index, batch_index, timestamp,
				created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,now())
			ON CONFLICT (tx_hash, log_index, batch_index) DO NOTHING
		`,
			fill.OrderKind,
			fill.OrderID,
			string(fill.OrderSide),
			fill.Maker,
			fill.Taker,
			fill.Price,
			fill.Currency,
			fill.CurrencyPrice,
			nullable(fill.USDPrice),
			fill.Contract,
			fill.TokenID,
			fill.Amount,
			fill.OrderSourceID,
			fill.AggregatorSourceID,
			fill.FillSourceID,
			fill.BaseEventParams.Address,
			int64(fill.BaseEventParams.Block),
			fill.BaseEventParams.BlockHash,
			fill.BaseEventParams.TxHash,
			int64(fill.BaseEventParams.TxIndex),
			int64(fill.BaseEventParams.LogIndex),
			int64(fill.BaseEventParams.BatchIndex),
			int64(fill.BaseEventParams.Timestamp),
		)
	}
	return s.sendBatch(ctx, batch, len(fills))
}

// InsertCancelEvents batch-inserts order cancels.
func (s *Store) InsertCancelEvents(ctx context.Context, cancels []model.CancelEvent) error {
	if len(cancels) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, cancel := range cancels {
		batch.Queue(`
			INSERT INTO cancel_events (
				order_kind, order_id,
				address, block, block_hash, tx_hash, tx_index, log_index, batch_index, timestamp,
				created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
			ON CONFLICT (tx_hash, log_index, batch_index) DO NOTHING
		`,
			cancel.OrderKind,
			cancel.OrderID,
			cancel.BaseEventParams.Address,
			int64(cancel.BaseEventParams.Block),
			cancel.BaseEventParams.BlockHash,
			cancel.BaseEventParams.TxHash,
			int64(cancel.BaseEventParams.TxIndex),
			int64(cancel.BaseEventParams.LogIndex),
			int64(cancel.BaseEventParams.BatchIndex),
			int64(cancel.BaseEventParams.Timestamp),
		)
	}
	return s.sendBatch(ctx, batch, len(cancels))
}

// InsertNonceCancelEvents batch-inserts per-nonce cancels.
func (s *Store) InsertNonceCancelEvents(ctx context.Context, cancels []model.NonceCancelEvent) error {
	if len(cancels) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, cancel := range cancels {
		batch.Queue(`
			INSERT INTO nonce_cancel_events (
				order_kind, maker, nonce,
				address, block, block_hash, tx_hash, tx_index, log_index, batch_index, timestamp,
				created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
			ON CONFLICT (tx_hash, log_index, batch_index) DO NOTHING
		`,
			cancel.OrderKind,
			cancel.Maker,
			cancel.Nonce,
			cancel.BaseEventParams.Address,
			int64(cancel.BaseEventParams.Block),
			cancel.BaseEventParams.BlockHash,
			cancel.BaseEventParams.TxHash,
			int64(cancel.BaseEventParams.TxIndex),
			int64(cancel.BaseEventParams.LogIndex),
			int64(cancel.BaseEventParams.BatchIndex),
			int64(cancel.BaseEventParams.Timestamp),
		)
	}
	return s.sendBatch(ctx, batch, len(cancels))
}

// InsertBulkCancelEvents batch-inserts bulk cancels and raises the per-maker
// nonce floors. The floor update uses GREATEST so replaying an old event can
// never lower it.
func (s *Store) InsertBulkCancelEvents(ctx context.Context, cancels []model.BulkCancelEvent) error {
	if len(cancels) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, cancel := range cancels {
		batch.Queue(`
			INSERT INTO bulk_cancel_events (
				order_kind, maker, min_nonce,
				address, block, block_hash, tx_hash, tx_index, log_index, batch_index, timestamp,
				created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
			ON CONFLICT (tx_hash, log_index, batch_index) DO NOTHING
		`,
			cancel.OrderKind,
			cancel.Maker,
			cancel.MinNonce,
			cancel.BaseEventParams.Address,
			int64(cancel.BaseEventParams.Block),
			cancel.BaseEventParams.BlockHash,
			cancel.BaseEventParams.TxHash,
			int64(cancel.BaseEventParams.TxIndex),
			int64(cancel.BaseEventParams.LogIndex),
			int64(cancel.BaseEventParams.BatchIndex),
			int64(cancel.BaseEventParams.Timestamp),
		)
		batch.Queue(`
			INSERT INTO maker_min_nonces (order_kind, maker, min_nonce, updated_at)
			VALUES ($1, $2, $3::numeric, now())
			ON CONFLICT (order_kind, maker)
			DO UPDATE SET
				min_nonce = GREATEST(maker_min_nonces.min_nonce, EXCLUDED.min_nonce),
				updated_at = now()
		`,
			cancel.OrderKind,
			cancel.Maker,
			cancel.MinNonce,
		)
	}
	return s.sendBatch(ctx, batch, len(cancels)*2)
}

// MakerMinNonce returns the stored bulk-cancel floor for a maker.
func (s *Store) MakerMinNonce(ctx context.Context, orderKind, maker string) (*big.Int, bool, error) {
	var raw string
	row := s.pool.QueryRow(ctx, `
		SELECT min_nonce::text FROM maker_min_nonces WHERE order_kind = $1 AND maker = $2
	`, orderKind, maker)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	nonce, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, false, fmt.Errorf("malformed min nonce %q", raw)
	}
	return nonce, true, nil
}

// RemoveBlockEvents deletes every event attributed to the given block hash,
// reverting the block's effects after a reorg.
func (s *Store) RemoveBlockEvents(ctx context.Context, number uint64, blockHash string) error {
	tables := []string{
		"fill_events",
		"cancel_events",
		"nonce_cancel_events",
		"bulk_cancel_events",
	}
	batch := &pgx.Batch{}
	for _, table := range tables {
		batch.Queue(
			fmt.Sprintf(`DELETE FROM %s WHERE block = $1 AND block_hash = $2`, table),
			int64(number), blockHash,
		)
	}
	return s.sendBatch(ctx, batch, len(tables))
}

// USDRate implements prices.RateSource over the usd_prices table, which
// holds one rate per currency per day.
func (s *Store) USDRate(ctx context.Context, currency common.Address, timestamp uint64) (prices.Rate, bool, error) {
	var (
		value    string
		decimals int32
	)
	row := s.pool.QueryRow(ctx, `
		SELECT value::text, decimals FROM usd_prices
		WHERE currency = $1 AND day = $2
	`, "0x"+common.Bytes2Hex(currency.Bytes()), int64(timestamp/86400))
	if err := row.Scan(&value, &decimals); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return prices.Rate{}, false, nil
		}
		return prices.Rate{}, false, err
	}
	usd, ok := new(big.Rat).SetString(value)
	if !ok {
		return prices.Rate{}, false, fmt.Errorf("malformed usd rate %q", value)
	}
	return prices.Rate{USD: usd, Decimals: uint8(decimals)}, true, nil
}

// LoadCheckpoint returns the last fully synced block for a named syncer.
func (s *Store) LoadCheckpoint(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("checkpoint name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_synced_block FROM sync_checkpoints WHERE name = $1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveCheckpoint upserts the last fully synced block for a named syncer.
func (s *Store) SaveCheckpoint(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("checkpoint name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_checkpoints (name, last_synced_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name)
		DO UPDATE SET last_synced_block = EXCLUDED.last_synced_block, updated_at = now()
	`, name, int64(block))
	return err
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, queued int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
