package token

import (
	"crypto/ed25519"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

// GetAssociatedAccount returns the associated token account address of owner
// for mint. The derivation runs under the associated token account program,
// not the token program.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func GetAssociatedAccount(owner, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		AssociatedTokenAccountProgramKey,
		owner,
		ProgramKey,
		mint,
	)
}
