package amm

import (
	"crypto/ed25519"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/system"
	"github.com/code-payments/dex-wallet/pkg/solana/token"
)

// LiquidityInstructionAccounts are the accounts shared by the create pool,
// deposit and withdraw instructions. Mint and reserve fields follow the
// canonical X/Y order of the pool's token pair.
type LiquidityInstructionAccounts struct {
	Payer     ed25519.PublicKey
	AmmConfig ed25519.PublicKey
	Pool      ed25519.PublicKey
	LpMint    ed25519.PublicKey
	MintX     ed25519.PublicKey
	MintY     ed25519.PublicKey
	ReserveX  ed25519.PublicKey
	ReserveY  ed25519.PublicKey
	PayerX    ed25519.PublicKey
	PayerY    ed25519.PublicKey
	PayerLp   ed25519.PublicKey
}

func (a *LiquidityInstructionAccounts) metas() []solana.AccountMeta {
	return []solana.AccountMeta{
		{
			PublicKey:  a.Payer,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  a.AmmConfig,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  a.Pool,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  a.LpMint,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  a.MintX,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  a.MintY,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  a.ReserveX,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  a.ReserveY,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  a.PayerX,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  a.PayerY,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  a.PayerLp,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  token.ProgramKey,
			IsWritable: false,
			IsSigner:   false,
		},
	}
}

type CreatePoolInstructionArgs struct {
	AmountX  uint64
	AmountY  uint64
	MinLpOut uint64
}

// NewCreatePoolInstruction seeds a new pool with its first liquidity and
// mints the initial LP tokens to the payer.
func NewCreatePoolInstruction(
	program ed25519.PublicKey,
	accounts *LiquidityInstructionAccounts,
	args *CreatePoolInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: program,

		Data: EncodeInstructionData(
			mustGetDiscriminator(InstructionCreatePool),
			args.AmountX,
			args.AmountY,
			args.MinLpOut,
		),

		Accounts: append(
			accounts.metas(),
			solana.AccountMeta{
				PublicKey: token.AssociatedTokenAccountProgramKey,
			},
			solana.AccountMeta{
				PublicKey: system.ProgramKey,
			},
			solana.AccountMeta{
				PublicKey: system.RentSysVar,
			},
		),
	}
}

type DepositLiquidityInstructionArgs struct {
	MaxAmountX uint64
	MaxAmountY uint64
	MinLpOut   uint64
}

func NewDepositLiquidityInstruction(
	program ed25519.PublicKey,
	accounts *LiquidityInstructionAccounts,
	args *DepositLiquidityInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: program,

		Data: EncodeInstructionData(
			mustGetDiscriminator(InstructionDepositLiquidity),
			args.MaxAmountX,
			args.MaxAmountY,
			args.MinLpOut,
		),

		Accounts: append(
			accounts.metas(),
			solana.AccountMeta{
				PublicKey: token.AssociatedTokenAccountProgramKey,
			},
			solana.AccountMeta{
				PublicKey: system.ProgramKey,
			},
		),
	}
}

type WithdrawLiquidityInstructionArgs struct {
	LpAmount   uint64
	MinAmountX uint64
	MinAmountY uint64
}

func NewWithdrawLiquidityInstruction(
	program ed25519.PublicKey,
	accounts *LiquidityInstructionAccounts,
	args *WithdrawLiquidityInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: program,

		Data: EncodeInstructionData(
			mustGetDiscriminator(InstructionWithdrawLiquidity),
			args.LpAmount,
			args.MinAmountX,
			args.MinAmountY,
		),

		Accounts: accounts.metas(),
	}
}
