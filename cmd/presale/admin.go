package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"presaleLedger/internal/config"
	"presaleLedger/internal/presale"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the pool and escrow the initial inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tokenFlag, _ := cmd.Flags().GetString("token")
			amount, _ := cmd.Flags().GetUint64("amount")
			price, _ := cmd.Flags().GetUint64("price")
			token, err := config.ParseAddress(tokenFlag)
			if err != nil {
				return err
			}

			return runWith(cmd, func(ctx context.Context, a *app) error {
				caller, err := a.caller()
				if err != nil {
					return err
				}
				decimals, err := a.tokenDecimals(ctx, token)
				if err != nil {
					return fmt.Errorf("token decimals: %w", err)
				}
				if err := a.engine.Initialize(ctx, caller, presale.InitParams{
					Token:         token,
					TokenDecimals: decimals,
					TokenAmount:   amount,
					TokenPrice:    price,
				}); err != nil {
					return err
				}
				return showPool(ctx, cmd, a)
			})
		},
	}
	cmd.Flags().String("token", "", "sale token address")
	cmd.Flags().Uint64("amount", 0, "initial token inventory in base units")
	cmd.Flags().Uint64("price", 0, "quote base units per whole token")
	return cmd
}

// ownerCmd builds a command that runs one owner operation and prints the pool.
func ownerCmd(use, short string, args cobra.PositionalArgs, op func(ctx context.Context, a *app, caller common.Address, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, func(ctx context.Context, a *app) error {
				caller, err := a.caller()
				if err != nil {
					return err
				}
				if err := op(ctx, a, caller, args); err != nil {
					return err
				}
				return showPool(ctx, cmd, a)
			})
		},
	}
}

// amountCmd is an ownerCmd taking a single unsigned integer argument.
func amountCmd(use, short string, op func(e *presale.Engine) func(context.Context, common.Address, uint64) error) *cobra.Command {
	return ownerCmd(use+" <amount>", short, cobra.ExactArgs(1), func(ctx context.Context, a *app, caller common.Address, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return op(a.engine)(ctx, caller, amount)
	})
}

func newToggleStatusCmd() *cobra.Command {
	return ownerCmd("toggle-status", "Enable or disable trading", cobra.NoArgs,
		func(ctx context.Context, a *app, caller common.Address, _ []string) error {
			return a.engine.ToggleStatus(ctx, caller)
		})
}

func newSetPublicCmd() *cobra.Command {
	return ownerCmd("set-public", "Switch to the dynamically priced public sale", cobra.NoArgs,
		func(ctx context.Context, a *app, caller common.Address, _ []string) error {
			return a.engine.SetSaleTypePublic(ctx, caller)
		})
}

func newSetOwnerCmd() *cobra.Command {
	return ownerCmd("set-owner <address>", "Transfer pool ownership", cobra.ExactArgs(1),
		func(ctx context.Context, a *app, caller common.Address, args []string) error {
			newOwner, err := config.ParseAddress(args[0])
			if err != nil {
				return err
			}
			return a.engine.SetOwner(ctx, caller, newOwner)
		})
}

func newSetPriceCmd() *cobra.Command {
	return amountCmd("set-price", "Set the private sale price", func(e *presale.Engine) func(context.Context, common.Address, uint64) error {
		return e.SetTokenPrice
	})
}

func newSetRateCmd() *cobra.Command {
	return amountCmd("set-rate", "Set the public sale price growth rate", func(e *presale.Engine) func(context.Context, common.Address, uint64) error {
		return e.SetRate
	})
}

func newDepositTokenCmd() *cobra.Command {
	return amountCmd("deposit-token", "Add tokens to the sale inventory", func(e *presale.Engine) func(context.Context, common.Address, uint64) error {
		return e.DepositToken
	})
}

func newWithdrawTokenCmd() *cobra.Command {
	return amountCmd("withdraw-token", "Withdraw unsold tokens", func(e *presale.Engine) func(context.Context, common.Address, uint64) error {
		return e.WithdrawToken
	})
}

func newWithdrawQuoteCmd() *cobra.Command {
	return amountCmd("withdraw-quote", "Withdraw collected quote currency", func(e *presale.Engine) func(context.Context, common.Address, uint64) error {
		return e.WithdrawQuote
	})
}
