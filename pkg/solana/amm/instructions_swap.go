package amm

import (
	"crypto/ed25519"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/system"
	"github.com/code-payments/dex-wallet/pkg/solana/token"
)

type SwapInstructionArgs struct {
	AmountIn     uint64
	MinAmountOut uint64
}

// SwapInstructionAccounts are ordered by trade direction, not by the
// canonical pair order.
type SwapInstructionAccounts struct {
	Payer         ed25519.PublicKey
	AmmConfig     ed25519.PublicKey
	Pool          ed25519.PublicKey
	InputMint     ed25519.PublicKey
	OutputMint    ed25519.PublicKey
	InputReserve  ed25519.PublicKey
	OutputReserve ed25519.PublicKey
	PayerInput    ed25519.PublicKey
	PayerOutput   ed25519.PublicKey
}

func NewSwapInstruction(
	program ed25519.PublicKey,
	accounts *SwapInstructionAccounts,
	args *SwapInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: program,

		Data: EncodeInstructionData(
			mustGetDiscriminator(InstructionSwap),
			args.AmountIn,
			args.MinAmountOut,
		),

		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.AmmConfig,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Pool,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.InputMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.OutputMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.InputReserve,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.OutputReserve,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.PayerInput,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.PayerOutput,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  token.ProgramKey,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  token.AssociatedTokenAccountProgramKey,
				IsWritable: false,
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
