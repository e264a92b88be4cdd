package amm

import (
	"crypto/ed25519"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

// AuthorityInstructionAccounts are used by the pool authority instructions:
// settle, cancel and slash.
type AuthorityInstructionAccounts struct {
	Authority ed25519.PublicKey
	Pool      ed25519.PublicKey
}

func NewSettleInstruction(program ed25519.PublicKey, accounts *AuthorityInstructionAccounts, args ...uint64) solana.Instruction {
	return newAuthorityInstruction(program, InstructionSettle, accounts, args)
}

func NewCancelInstruction(program ed25519.PublicKey, accounts *AuthorityInstructionAccounts, args ...uint64) solana.Instruction {
	return newAuthorityInstruction(program, InstructionCancel, accounts, args)
}

func NewSlashInstruction(program ed25519.PublicKey, accounts *AuthorityInstructionAccounts, args ...uint64) solana.Instruction {
	return newAuthorityInstruction(program, InstructionSlash, accounts, args)
}

func newAuthorityInstruction(program ed25519.PublicKey, name string, accounts *AuthorityInstructionAccounts, args []uint64) solana.Instruction {
	return solana.Instruction{
		Program: program,

		Data: EncodeInstructionData(mustGetDiscriminator(name), args...),

		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}
