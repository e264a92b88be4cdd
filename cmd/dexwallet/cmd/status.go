package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/dex-wallet/pkg/liquidity"
	"github.com/code-payments/dex-wallet/pkg/solana"
)

var statusCmd = &cobra.Command{
	Use:   "status [signature]",
	Short: "Wait for a submitted transaction to confirm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := parseSignature(args[0])
		if err != nil {
			return err
		}
		ctx, end := startTransaction(cmd)
		defer end()

		return printConfirmation(ctx, cmd, liquidity.NewConfirmer(newSolanaClient(), liquidity.WithEnvConfigs()), sig)
	},
}

func printConfirmation(ctx context.Context, cmd *cobra.Command, confirmer *liquidity.Confirmer, sig solana.Signature) error {
	status, err := confirmer.Await(ctx, sig)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), liquidity.UserMessage(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "status: %s (slot %d)\n", status.ConfirmationStatus, status.Slot)
	return nil
}

func parseSignature(value string) (solana.Signature, error) {
	var sig solana.Signature

	raw, err := solana.DecodeBase58(value)
	if err != nil {
		return sig, errors.Wrapf(err, "invalid signature %q", value)
	}
	if len(raw) != len(sig) {
		return sig, errors.Errorf("invalid signature %q: expected %d bytes, got %d", value, len(sig), len(raw))
	}

	copy(sig[:], raw)
	return sig, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
