package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"presaleLedger/internal/config"
	"presaleLedger/internal/custody"
	"presaleLedger/internal/ledger"
	"presaleLedger/internal/model"
)

func newBuyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <amount>",
		Short: "Buy tokens (quote units in the private sale, token units in the public sale)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			tokenFlag, _ := cmd.Flags().GetString("token")
			token, err := config.ParseAddress(tokenFlag)
			if err != nil {
				return err
			}

			return runWith(cmd, func(ctx context.Context, a *app) error {
				caller, err := a.caller()
				if err != nil {
					return err
				}
				trade, err := a.engine.Buy(ctx, caller, token, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd, trade)
			})
		},
	}
	cmd.Flags().String("token", "", "sale token address")
	return cmd
}

func newStakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stake <amount>",
		Short: "Buy tokens and lock them in a staking tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			tokenFlag, _ := cmd.Flags().GetString("token")
			token, err := config.ParseAddress(tokenFlag)
			if err != nil {
				return err
			}
			tierFlag, _ := cmd.Flags().GetString("tier")
			tier, err := config.ParseTier(tierFlag)
			if err != nil {
				return err
			}

			return runWith(cmd, func(ctx context.Context, a *app) error {
				caller, err := a.caller()
				if err != nil {
					return err
				}
				trade, err := a.engine.Stake(ctx, caller, token, tier, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd, trade)
			})
		},
	}
	cmd.Flags().String("token", "", "sale token address")
	cmd.Flags().String("tier", "", "staking tier in months (3, 6, 9, 12)")
	return cmd
}

func newClaimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim a matured stake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tierFlag, _ := cmd.Flags().GetString("tier")
			tier, err := config.ParseTier(tierFlag)
			if err != nil {
				return err
			}

			return runWith(cmd, func(ctx context.Context, a *app) error {
				caller, err := a.caller()
				if err != nil {
					return err
				}
				claim, err := a.engine.Claim(ctx, caller, tier)
				if err != nil {
					return err
				}
				return printJSON(cmd, claim)
			})
		},
	}
	cmd.Flags().String("tier", "", "staking tier in months (3, 6, 9, 12)")
	return cmd
}

// newFundCmd credits a wallet in the local ledger. There is no external
// custody behind the embedded stores, so wallets are funded this way.
func newFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund <amount>",
		Short: "Credit a wallet in the local ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			assetFlag, _ := cmd.Flags().GetString("asset")
			asset := model.Asset(assetFlag)
			if !asset.Valid() {
				return fmt.Errorf("invalid asset: %s", assetFlag)
			}
			accountFlag, _ := cmd.Flags().GetString("account")
			account, err := config.ParseAddress(accountFlag)
			if err != nil {
				return err
			}

			return runWith(cmd, func(ctx context.Context, a *app) error {
				balance, err := fundWallet(ctx, a.store, asset, account, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{
					"asset":   asset,
					"account": account,
					"balance": balance,
				})
			})
		},
	}
	cmd.Flags().String("asset", string(model.AssetQuote), "asset to credit (quote, token)")
	cmd.Flags().String("account", "", "wallet address")
	return cmd
}

// fundWallet credits account. The pool is read first so the credit
// serializes with engine operations on stores that lock what they read.
func fundWallet(ctx context.Context, store ledger.Store, asset model.Asset, account common.Address, amount uint64) (uint64, error) {
	var balance uint64
	err := store.Update(ctx, func(tx ledger.Tx) error {
		if _, err := tx.Pool(ctx); err != nil && !errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("lock pool: %w", err)
		}
		book := custody.NewBook(tx)
		if err := book.Credit(ctx, asset, account, amount); err != nil {
			return err
		}
		var err error
		balance, err = book.Balance(ctx, asset, account)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("fund %s: %w", account.Hex(), err)
	}
	return balance, nil
}
