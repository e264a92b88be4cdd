package tokenmeta

import (
	"github.com/code-payments/dex-wallet/pkg/solana"
)

var (
	// UsdcMint is the mainnet USD Coin mint.
	UsdcMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	// WrappedSolMint is the native SOL mint.
	WrappedSolMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	// KinMint is the mainnet Kin mint.
	KinMint = solana.MustPublicKeyFromBase58("kinXdEcpDQeHPEuQnqmUgtYykqKGVFq6CeVX5iAHJq6")
)

// WellKnown is metadata for mints that never changes and never needs a
// network lookup.
var WellKnown = []*Metadata{
	{Mint: UsdcMint, Decimals: 6, Symbol: "USDC", Name: "USD Coin"},
	{Mint: WrappedSolMint, Decimals: 9, Symbol: "SOL", Name: "Wrapped SOL"},
	{Mint: KinMint, Decimals: 5, Symbol: "KIN", Name: "Kin"},
}
