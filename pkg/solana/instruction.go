package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// AccountMeta is a single account reference within an instruction, along with
// the permissions the instruction needs on it.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
	isPayer    bool
	isProgram  bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

func (m AccountMeta) String() string {
	var flags []string
	if m.IsSigner {
		flags = append(flags, "signer")
	}
	if m.IsWritable {
		flags = append(flags, "writable")
	}
	if len(flags) == 0 {
		flags = append(flags, "readonly")
	}
	return fmt.Sprintf("%s (%s)", base58.Encode(m.PublicKey), strings.Join(flags, ", "))
}

// compareAccountMetas orders accounts the way a message lists them: the
// payer, then signers before non-signers, writable before readonly within
// each group, and program ids last. Remaining ties fall back to key bytes so
// compilation is deterministic.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
func compareAccountMetas(a, b AccountMeta) int {
	if c := compareFlag(a.isPayer, b.isPayer); c != 0 {
		return c
	}
	if c := compareFlag(!a.isProgram, !b.isProgram); c != 0 {
		return c
	}
	if c := compareFlag(a.IsSigner, b.IsSigner); c != 0 {
		return c
	}
	if c := compareFlag(a.IsWritable, b.IsWritable); c != 0 {
		return c
	}
	return bytes.Compare(a.PublicKey, b.PublicKey)
}

// compareFlag sorts true ahead of false.
func compareFlag(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

// Instruction is an unsigned program invocation: the program id, the ordered
// account list and the raw instruction data.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// Signers returns the accounts that must sign for the instruction, in
// account order.
func (i Instruction) Signers() []ed25519.PublicKey {
	var signers []ed25519.PublicKey
	for _, a := range i.Accounts {
		if a.IsSigner {
			signers = append(signers, a.PublicKey)
		}
	}
	return signers
}

// CompiledInstruction represents an instruction that has been compiled into a transaction.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
