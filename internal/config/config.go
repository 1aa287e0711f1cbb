package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"presaleLedger/internal/pricing"
)

// Store backends.
const (
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Store           string
	DataDir         string
	PGDSN           string
	RPCURL          string
	Caller          string
	TokenDecimals   uint8
	Journal         string
	MetricsTextfile string
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRESALE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store", StoreBadger)
	v.SetDefault("data-dir", "./data/ledger")
	v.SetDefault("journal", "./data/events.jsonl")
	v.SetDefault("token-decimals", 9)
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

	decimals := v.GetUint("token-decimals")
	if decimals > pricing.MaxDecimals {
		return Config{}, fmt.Errorf("token-decimals out of range: %d", decimals)
	}

	cfg := Config{
		Store:           strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		DataDir:         v.GetString("data-dir"),
		PGDSN:           v.GetString("pg-dsn"),
		RPCURL:          v.GetString("rpc"),
		Caller:          v.GetString("caller"),
		TokenDecimals:   uint8(decimals),
		Journal:         v.GetString("journal"),
		MetricsTextfile: v.GetString("metrics-textfile"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
	}

	switch cfg.Store {
	case StoreBadger:
		if cfg.DataDir == "" {
			return Config{}, fmt.Errorf("data-dir is required for the badger store")
		}
	case StorePostgres:
		if cfg.PGDSN == "" {
			return Config{}, fmt.Errorf("pg-dsn is required for the postgres store")
		}
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}

	return cfg, nil
}
