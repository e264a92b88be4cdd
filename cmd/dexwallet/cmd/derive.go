package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/amm"
	"github.com/code-payments/dex-wallet/pkg/solana/token"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive program addresses offline",
}

var derivePoolCmd = &cobra.Command{
	Use:   "pool [mint] [mint]",
	Short: "Derive every account of the pool for a token pair",
	Long: `Derive the AMM config, pool, LP mint and reserve addresses for a token
pair. The mints may be given in either order.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry()
		if err != nil {
			return err
		}

		mints, err := parseKeys(args...)
		if err != nil {
			return err
		}

		pair, err := amm.NewTokenPair(mints[0], mints[1])
		if err != nil {
			return err
		}

		addresses, err := registry.GetPoolAddresses(pair)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Program:    %s\n", solana.EncodeBase58(registry.Program))
		fmt.Fprintf(out, "Mint X:     %s\n", solana.EncodeBase58(pair.X))
		fmt.Fprintf(out, "Mint Y:     %s\n", solana.EncodeBase58(pair.Y))
		fmt.Fprintf(out, "AMM config: %s (bump %d)\n", solana.EncodeBase58(addresses.AmmConfig), addresses.AmmConfigBump)
		fmt.Fprintf(out, "Pool:       %s (bump %d)\n", solana.EncodeBase58(addresses.Pool), addresses.PoolBump)
		fmt.Fprintf(out, "LP mint:    %s (bump %d)\n", solana.EncodeBase58(addresses.LpMint), addresses.LpMintBump)
		fmt.Fprintf(out, "Reserve X:  %s (bump %d)\n", solana.EncodeBase58(addresses.ReserveX), addresses.ReserveXBump)
		fmt.Fprintf(out, "Reserve Y:  %s (bump %d)\n", solana.EncodeBase58(addresses.ReserveY), addresses.ReserveYBump)
		return nil
	},
}

var deriveAtaCmd = &cobra.Command{
	Use:   "ata [owner] [mint]",
	Short: "Derive the associated token account of an owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := parseKeys(args...)
		if err != nil {
			return err
		}

		ata, err := token.GetAssociatedAccount(keys[0], keys[1])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), solana.EncodeBase58(ata))
		return nil
	},
}

var deriveDiscriminatorCmd = &cobra.Command{
	Use:   "discriminator [instruction]",
	Short: "Print the discriminator of an AMM instruction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := amm.GetDiscriminator(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), d.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)
	deriveCmd.AddCommand(derivePoolCmd)
	deriveCmd.AddCommand(deriveAtaCmd)
	deriveCmd.AddCommand(deriveDiscriminatorCmd)
}
