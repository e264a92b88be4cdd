package liquidity

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/amm"
)

type Operation string

const (
	OperationCreatePool        Operation = "create_pool"
	OperationAddLiquidity      Operation = "add_liquidity"
	OperationWithdrawLiquidity Operation = "withdraw_liquidity"
	OperationSwap              Operation = "swap"
)

// Description is a fully built, unsigned exchange instruction. It is handed
// to an Executor, or to any other signer, and then discarded.
type Description struct {
	Operation Operation
	Payer     ed25519.PublicKey

	Instruction solana.Instruction
	Pool        *amm.PoolAddresses

	// Args are the instruction arguments in wire order, in base units.
	Args []uint64

	// Warnings are failures that were recovered from while building, such as
	// ErrMetadataUnavailable.
	Warnings []error
}

func (d *Description) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s payer=%s pool=%s\n", d.Operation, solana.EncodeBase58(d.Payer), solana.EncodeBase58(d.Pool.Pool))
	fmt.Fprintf(&sb, "program: %s\n", solana.EncodeBase58(d.Instruction.Program))
	for i, account := range d.Instruction.Accounts {
		fmt.Fprintf(&sb, "  %2d: %s\n", i, account)
	}
	fmt.Fprintf(&sb, "args: %v\n", d.Args)
	fmt.Fprintf(&sb, "data: %x\n", d.Instruction.Data)
	for _, warning := range d.Warnings {
		fmt.Fprintf(&sb, "warning: %v\n", warning)
	}
	return sb.String()
}
