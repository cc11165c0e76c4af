package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL            string
	PGDSN             string
	RedisAddr         string
	RedisDB           int
	Out               string
	FromBlock         uint64
	ToBlock           uint64
	BatchSize         uint64
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	SourcesFile       string
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MARKETSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("batch-size", uint64(100))
	v.SetDefault("out", "./data/queues")
	v.SetDefault("checkpoint", "events-sync")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		PGDSN:             v.GetString("pg-dsn"),
		RedisAddr:         v.GetString("redis-addr"),
		RedisDB:           v.GetInt("redis-db"),
		Out:               v.GetString("out"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		BatchSize:         v.GetUint64("batch-size"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		SourcesFile:       v.GetString("sources"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}
