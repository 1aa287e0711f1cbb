package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"presaleLedger/internal/chain"
	"presaleLedger/internal/config"
	"presaleLedger/internal/journal"
	"presaleLedger/internal/ledger"
	"presaleLedger/internal/ledger/badgerdb"
	"presaleLedger/internal/metrics"
	"presaleLedger/internal/presale"
	"presaleLedger/internal/storage/postgres"
)

// app is everything one command invocation needs.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   ledger.Store
	client  *chain.Client
	metrics *metrics.Metrics
	engine  *presale.Engine
}

// runWith loads config, opens the ledger and runs fn against it.
func runWith(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Close())
	}()

	return fn(ctx, a)
}

func openApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	var clock presale.Clock = chain.NewSystemClock()
	if cfg.RPCURL != "" {
		client, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		chainID, err := client.GetChainID(ctx)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("get chain id: %w", err)
		}
		logger.Info("rpc connected", zap.String("rpc", cfg.RPCURL), zap.String("chain_id", chainID.String()))
		a.client = client
		clock = chain.NewHeadClock(client, cfg.MaxRetries, cfg.RetryBackoff)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		if a.client != nil {
			a.client.Close()
		}
		return nil, err
	}
	a.store = store

	var sink journal.Sink = journal.Discard{}
	if cfg.Journal != "" {
		sink = journal.NewJsonlJournal(cfg.Journal)
	}

	engine, err := presale.NewEngine(presale.Config{
		Store:   store,
		Clock:   clock,
		Journal: sink,
		Metrics: a.metrics,
		Logger:  logger,
	})
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	a.engine = engine

	logger.Debug("ledger opened",
		zap.String("store", cfg.Store),
		zap.Bool("block_clock", a.client != nil),
		zap.String("journal", cfg.Journal),
	)
	return a, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (ledger.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, multierr.Append(err, store.Close())
		}
		return store, nil
	default:
		store, err := badgerdb.Open(badgerdb.Options{Dir: cfg.DataDir, Logger: logger})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// Close flushes metrics and releases the store and RPC client.
func (a *app) Close() error {
	var err error
	if a.cfg.MetricsTextfile != "" {
		err = multierr.Append(err, a.metrics.WriteTextfile(a.cfg.MetricsTextfile))
	}
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}
	if a.client != nil {
		a.client.Close()
	}
	return err
}

func (a *app) caller() (common.Address, error) {
	if a.cfg.Caller == "" {
		return common.Address{}, fmt.Errorf("caller is required")
	}
	return config.ParseAddress(a.cfg.Caller)
}

// tokenDecimals asks the token contract when an RPC is configured.
func (a *app) tokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	if a.client == nil {
		return a.cfg.TokenDecimals, nil
	}
	meta, err := chain.FetchTokenMeta(ctx, a.client, token)
	if err != nil {
		return 0, err
	}
	a.logger.Info("token metadata",
		zap.String("token", token.Hex()),
		zap.String("symbol", meta.Symbol),
		zap.Uint8("decimals", meta.Decimals),
	)
	return meta.Decimals, nil
}

func parseAmount(input string) (uint64, error) {
	amount, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	return amount, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
