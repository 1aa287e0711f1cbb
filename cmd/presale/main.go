package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "presale",
		Short:        "Token presale and staking ledger",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("store", "badger", "ledger store (badger, postgres)")
	flags.String("data-dir", "./data/ledger", "badger data directory")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("rpc", "", "RPC URL used for the block clock and token decimals")
	flags.String("caller", "", "address the operation is executed as")
	flags.Uint8("token-decimals", 9, "token decimals when no RPC is configured")
	flags.String("journal", "./data/events.jsonl", "event journal JSONL path")
	flags.String("metrics-textfile", "", "write prometheus metrics to this file on exit")
	flags.Int("max-retries", 5, "maximum RPC retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial RPC retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newInitCmd(),
		newToggleStatusCmd(),
		newSetPublicCmd(),
		newSetPriceCmd(),
		newSetRateCmd(),
		newSetOwnerCmd(),
		newDepositTokenCmd(),
		newWithdrawTokenCmd(),
		newWithdrawQuoteCmd(),
		newBuyCmd(),
		newStakeCmd(),
		newClaimCmd(),
		newShowCmd(),
		newPositionCmd(),
		newSolvencyCmd(),
		newFundCmd(),
		newHistoryCmd(),
	)
	return root
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
