package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"marketScope/internal/attribution"
	"marketScope/internal/chain"
	"marketScope/internal/config"
	"marketScope/internal/handlers"
	"marketScope/internal/prices"
	"marketScope/internal/queue"
	"marketScope/internal/storage/postgres"
	"marketScope/internal/sync"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "NFT marketplace event indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync marketplace events into the store and work queues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, false)
		},
	}
	addSyncFlags(syncCmd)
	root.AddCommand(syncCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Sync a historical range without reorg rechecks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, true)
		},
	}
	addSyncFlags(backfillCmd)
	root.AddCommand(backfillCmd)

	unsyncCmd := &cobra.Command{
		Use:   "unsync",
		Short: "Revert the events of one stored block",
		RunE:  runUnsync,
	}
	unsyncCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	unsyncCmd.Flags().Uint64("block", 0, "block number to revert")
	unsyncCmd.Flags().String("block-hash", "", "hash of the stored block to revert")
	unsyncCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(unsyncCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Ethereum RPC URL")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("redis-addr", "", "Redis address for the work queues")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().String("out", "./data/queues", "JSONL queue directory used when redis-addr is empty")
	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().Uint64("batch-size", 100, "blocks per batch")
	cmd.Flags().String("checkpoint", "events-sync", "checkpoint name in the store")
	cmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("sources", "", "attribution source registry JSON file")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runSync(cmd *cobra.Command, backfill bool) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg-dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	var resolver attribution.Resolver
	if cfg.SourcesFile != "" {
		sources, err := attribution.LoadSources(cfg.SourcesFile)
		if err != nil {
			return err
		}
		chainID, err := chainClient.GetChainID(ctx)
		if err != nil {
			return fmt.Errorf("get chain id: %w", err)
		}
		resolver = attribution.NewCalldataResolver(chainClient, chainID, sources, logger.Named("attribution"))
	} else {
		resolver = attribution.Func(func(context.Context, common.Hash, string, string) (attribution.Data, error) {
			return attribution.Data{}, nil
		})
	}

	var publisher queue.Publisher
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer client.Close()
		publisher = queue.NewRedisPublisher(client)
	default:
		publisher = queue.NewJsonlPublisher(cfg.Out)
	}

	env := &handlers.Env{
		Chain:       chainClient,
		Prices:      prices.NewStoreOracle(store, logger.Named("prices")),
		Attribution: resolver,
		Logger:      logger.Named("handlers"),
	}

	checkpoint := ""
	if cfg.CheckpointEnabled {
		checkpoint = cfg.Checkpoint
	}

	syncer := sync.New(chainClient, store, publisher, env, logger.Named("sync"), sync.Options{
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Checkpoint:   checkpoint,
	})

	logger.Info("sync start",
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Bool("backfill", backfill),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
	)

	return syncer.Sync(ctx, cfg.FromBlock, cfg.ToBlock, backfill)
}

func runUnsync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	block, _ := cmd.Flags().GetUint64("block")
	blockHash, _ := cmd.Flags().GetString("block-hash")
	if cfg.PGDSN == "" {
		return fmt.Errorf("pg-dsn is required")
	}
	if blockHash == "" {
		return fmt.Errorf("block-hash is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	syncer := sync.New(nil, store, queue.Nop{}, nil, logger.Named("sync"), sync.Options{})
	return syncer.Unsync(ctx, block, blockHash)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
