package computebudget

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/binary"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

var ErrInvalidInstructionData = errors.New("invalid compute budget instruction data")

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

// SetComputeUnitLimit caps the compute units the transaction may consume.
func SetComputeUnitLimit(limit uint32) solana.Instruction {
	data := binary.NewEncoder(1 + 4).
		PutUint8(commandSetComputeUnitLimit).
		PutUint32(limit).
		Bytes()
	return solana.NewInstruction(ProgramKey, data)
}

// SetComputeUnitPrice sets the priority fee in micro-lamports per compute
// unit.
func SetComputeUnitPrice(microLamports uint64) solana.Instruction {
	data := binary.NewEncoder(1 + 8).
		PutUint8(commandSetComputeUnitPrice).
		PutUint64(microLamports).
		Bytes()
	return solana.NewInstruction(ProgramKey, data)
}

func ParseSetComputeUnitLimit(data []byte) (uint32, error) {
	if len(data) != 5 || data[0] != commandSetComputeUnitLimit {
		return 0, ErrInvalidInstructionData
	}
	return binary.NewDecoder(data[1:]).GetUint32(), nil
}

func ParseSetComputeUnitPrice(data []byte) (uint64, error) {
	if len(data) != 9 || data[0] != commandSetComputeUnitPrice {
		return 0, ErrInvalidInstructionData
	}
	return binary.NewDecoder(data[1:]).GetUint64(), nil
}
