package main

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"presaleLedger/internal/config"
	"presaleLedger/internal/journal"
	"presaleLedger/internal/model"
	"presaleLedger/internal/pricing"
)

type poolView struct {
	model.Pool
	TokenAmountDisplay string `json:"token_amount_display"`
	StakedDisplay      string `json:"staked_amount_display"`
	PayoutsOwedDisplay string `json:"payouts_owed_display"`
}

func showPool(ctx context.Context, cmd *cobra.Command, a *app) error {
	pool, err := a.engine.Pool(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, poolView{
		Pool:               pool,
		TokenAmountDisplay: pricing.FormatUnits(pool.TokenAmount, pool.TokenDecimals),
		StakedDisplay:      pricing.FormatUnits(pool.StakedAmount, pool.TokenDecimals),
		PayoutsOwedDisplay: pricing.FormatUnits(pool.PayoutsOwed, pool.TokenDecimals),
	})
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(ctx context.Context, a *app) error {
				return showPool(ctx, cmd, a)
			})
		},
	}
}

func newPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position [address]",
		Short: "Print a stake position (defaults to the caller)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, func(ctx context.Context, a *app) error {
				var (
					owner common.Address
					err   error
				)
				if len(args) == 1 {
					owner, err = config.ParseAddress(args[0])
				} else {
					owner, err = a.caller()
				}
				if err != nil {
					return err
				}
				pos, err := a.engine.Position(ctx, owner)
				if err != nil {
					return err
				}
				return printJSON(cmd, pos)
			})
		},
	}
}

func newSolvencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solvency",
		Short: "Compare escrow balances with what the pool owes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(ctx context.Context, a *app) error {
				s, err := a.engine.Solvency(ctx)
				if err != nil {
					return err
				}
				if !s.Solvent {
					a.logger.Sugar().Warnw("pool escrow does not cover its obligations",
						"shortfall", s.Shortfall,
						"payouts_owed", s.PayoutsOwed,
					)
				}
				return printJSON(cmd, s)
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the event journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWith(cmd, func(_ context.Context, a *app) error {
				events, err := journal.ReadAll(a.cfg.Journal)
				if err != nil {
					return err
				}
				if events == nil {
					events = []model.LedgerEvent{}
				}
				return printJSON(cmd, events)
			})
		},
	}
}
