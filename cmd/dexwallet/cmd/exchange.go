package cmd

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/code-payments/dex-wallet/pkg/liquidity"
	"github.com/code-payments/dex-wallet/pkg/tokenmeta"
)

const (
	slippageFlag = "slippage"
	executeFlag  = "execute"
	noWaitFlag   = "no-wait"
	minOutFlag   = "min-out"
)

type buildFunc func(ctx context.Context, assembler *liquidity.Assembler, payer ed25519.PublicKey) (*liquidity.Description, error)

var createPoolCmd = &cobra.Command{
	Use:   "create-pool [mint-a] [amount-a] [mint-b] [amount-b]",
	Short: "Create a pool seeded with its first liquidity",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		mints, err := parseKeys(args[0], args[2])
		if err != nil {
			return err
		}
		amounts, err := parseAmounts(args[1], args[3])
		if err != nil {
			return err
		}
		slippage, err := slippageFromFlags(cmd)
		if err != nil {
			return err
		}

		return runExchange(cmd, func(ctx context.Context, assembler *liquidity.Assembler, payer ed25519.PublicKey) (*liquidity.Description, error) {
			return assembler.CreatePool(ctx, &liquidity.CreatePoolArgs{
				Payer:           payer,
				MintA:           mints[0],
				MintB:           mints[1],
				AmountA:         amounts[0],
				AmountB:         amounts[1],
				SlippagePercent: slippage,
			})
		})
	},
}

var addLiquidityCmd = &cobra.Command{
	Use:   "add-liquidity [mint-a] [max-amount-a] [mint-b] [max-amount-b]",
	Short: "Deposit liquidity into an existing pool",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		mints, err := parseKeys(args[0], args[2])
		if err != nil {
			return err
		}
		amounts, err := parseAmounts(args[1], args[3])
		if err != nil {
			return err
		}
		slippage, err := slippageFromFlags(cmd)
		if err != nil {
			return err
		}

		return runExchange(cmd, func(ctx context.Context, assembler *liquidity.Assembler, payer ed25519.PublicKey) (*liquidity.Description, error) {
			return assembler.AddLiquidity(ctx, &liquidity.AddLiquidityArgs{
				Payer:           payer,
				MintA:           mints[0],
				MintB:           mints[1],
				MaxAmountA:      amounts[0],
				MaxAmountB:      amounts[1],
				SlippagePercent: slippage,
			})
		})
	},
}

var withdrawLiquidityCmd = &cobra.Command{
	Use:   "withdraw-liquidity [mint-a] [mint-b] [lp-amount]",
	Short: "Burn LP tokens for the underlying reserves",
	Long:  `Burn LP tokens for the underlying reserves. The LP amount is in base units.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		mints, err := parseKeys(args[0], args[1])
		if err != nil {
			return err
		}
		lpAmount, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid lp amount %q", args[2])
		}
		slippage, err := slippageFromFlags(cmd)
		if err != nil {
			return err
		}

		return runExchange(cmd, func(ctx context.Context, assembler *liquidity.Assembler, payer ed25519.PublicKey) (*liquidity.Description, error) {
			return assembler.WithdrawLiquidity(ctx, &liquidity.WithdrawLiquidityArgs{
				Payer:           payer,
				MintA:           mints[0],
				MintB:           mints[1],
				LpAmount:        lpAmount,
				SlippagePercent: slippage,
			})
		})
	},
}

var swapCmd = &cobra.Command{
	Use:   "swap [input-mint] [amount-in] [output-mint]",
	Short: "Swap an exact input amount through a pool",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		mints, err := parseKeys(args[0], args[2])
		if err != nil {
			return err
		}
		amounts, err := parseAmounts(args[1])
		if err != nil {
			return err
		}
		slippage, err := slippageFromFlags(cmd)
		if err != nil {
			return err
		}

		var minOut *decimal.Decimal
		if value, _ := cmd.Flags().GetString(minOutFlag); len(value) > 0 {
			parsed, err := parseAmounts(value)
			if err != nil {
				return err
			}
			minOut = &parsed[0]
		}

		return runExchange(cmd, func(ctx context.Context, assembler *liquidity.Assembler, payer ed25519.PublicKey) (*liquidity.Description, error) {
			return assembler.Swap(ctx, &liquidity.SwapArgs{
				Payer:           payer,
				InputMint:       mints[0],
				OutputMint:      mints[1],
				AmountIn:        amounts[0],
				MinAmountOut:    minOut,
				SlippagePercent: slippage,
			})
		})
	},
}

// runExchange builds the instruction for the configured payer, prints it and,
// with --execute, signs and submits it and waits for confirmation.
func runExchange(cmd *cobra.Command, build buildFunc) error {
	ctx, end := startTransaction(cmd)
	defer end()

	payer, err := loadSigner()
	if err != nil {
		return err
	}

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	sc := newSolanaClient()
	assembler := liquidity.NewAssembler(
		registry,
		tokenmeta.NewCachedProvider(tokenmeta.NewRPCProvider(sc), tokenmeta.WithEnvConfigs()),
		liquidity.NewRPCPoolStateReader(sc),
		liquidity.WithEnvConfigs(),
	)

	desc, err := build(ctx, assembler, payer.PublicKey())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), liquidity.UserMessage(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, desc.String())
	for _, warning := range desc.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), liquidity.UserMessage(warning))
	}

	if execute, _ := cmd.Flags().GetBool(executeFlag); !execute {
		return nil
	}

	executor := liquidity.NewExecutor(sc, payer, liquidity.NewRPCSubmitter(sc), liquidity.WithEnvConfigs())
	sig, err := executor.Execute(ctx, desc, nil)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), liquidity.UserMessage(err))
		return err
	}

	fmt.Fprintf(out, "signature: %s\n", sig.String())

	if noWait, _ := cmd.Flags().GetBool(noWaitFlag); noWait {
		return nil
	}
	return printConfirmation(ctx, cmd, liquidity.NewConfirmer(sc, liquidity.WithEnvConfigs()), sig)
}

func parseAmounts(values ...string) ([]decimal.Decimal, error) {
	amounts := make([]decimal.Decimal, len(values))
	for i, value := range values {
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid amount %q", value)
		}
		amounts[i] = amount
	}
	return amounts, nil
}

func slippageFromFlags(cmd *cobra.Command) (*decimal.Decimal, error) {
	value, _ := cmd.Flags().GetString(slippageFlag)
	if len(value) == 0 {
		return nil, nil
	}

	slippage, err := decimal.NewFromString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid slippage %q", value)
	}
	return &slippage, nil
}

func init() {
	for _, c := range []*cobra.Command{createPoolCmd, addLiquidityCmd, withdrawLiquidityCmd, swapCmd} {
		c.Flags().String(slippageFlag, "", "slippage tolerance in percent (default from LIQUIDITY_SERVICE_DEFAULT_SLIPPAGE_PERCENT)")
		c.Flags().Bool(executeFlag, false, "sign and submit the transaction")
		c.Flags().Bool(noWaitFlag, false, "return after submission without waiting for confirmation")
		rootCmd.AddCommand(c)
	}
	swapCmd.Flags().String(minOutFlag, "", "minimum output amount, overriding the pool estimate")
}
