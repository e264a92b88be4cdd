package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code-payments/dex-wallet/pkg/liquidity"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/token"
	"github.com/code-payments/dex-wallet/pkg/tokenmeta"
)

// newTokenProvider is replaced in tests.
var newTokenProvider = func() tokenmeta.Provider {
	return tokenmeta.NewCachedProvider(tokenmeta.NewRPCProvider(newSolanaClient()), tokenmeta.WithEnvConfigs())
}

var tokenCmd = &cobra.Command{
	Use:   "token [mint]",
	Short: "Show the decimals and metadata of a token mint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, end := startTransaction(cmd)
		defer end()

		mints, err := parseKeys(args[0])
		if err != nil {
			return err
		}

		md, err := newTokenProvider().GetMetadata(ctx, mints[0])
		if errors.Is(err, tokenmeta.ErrMetadataFetchFailed) {
			logrus.StandardLogger().WithFields(logrus.Fields{
				"type": "cmd/token",
				"mint": args[0],
			}).WithError(err).Warn("failure fetching token metadata, using fallback")
			fmt.Fprintln(cmd.ErrOrStderr(), liquidity.UserMessage(liquidity.ErrMetadataUnavailable))
			md = tokenmeta.Fallback(mints[0])
		} else if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mint:     %s\n", solana.EncodeBase58(md.Mint))
		fmt.Fprintf(out, "Symbol:   %s\n", md.Symbol)
		fmt.Fprintf(out, "Name:     %s\n", md.Name)
		fmt.Fprintf(out, "Decimals: %d\n", md.Decimals)

		if payer, err := loadSigner(); err == nil {
			ata, err := token.GetAssociatedAccount(payer.PublicKey(), md.Mint)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Payer ATA: %s\n", solana.EncodeBase58(ata))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
