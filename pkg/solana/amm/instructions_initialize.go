package amm

import (
	"crypto/ed25519"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/system"
)

type InitializeInstructionArgs struct {
	TradeFeeBps uint64
}

type InitializeInstructionAccounts struct {
	Payer     ed25519.PublicKey
	AmmConfig ed25519.PublicKey
}

func NewInitializeInstruction(
	program ed25519.PublicKey,
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: program,

		Data: EncodeInstructionData(
			mustGetDiscriminator(InstructionInitialize),
			args.TradeFeeBps,
		),

		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.AmmConfig,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  system.ProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}
