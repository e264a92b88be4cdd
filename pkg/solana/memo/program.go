package memo

import (
	"bytes"
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

// ProgramKey is the SPL memo program.
//
// Current key: Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo
var ProgramKey = ed25519.PublicKey{5, 74, 83, 80, 248, 93, 200, 130, 214, 20, 165, 86, 114, 120, 138, 41, 109, 223, 30, 171, 171, 208, 166, 6, 120, 136, 73, 50, 244, 238, 246, 160}

var (
	ErrIncorrectProgram = errors.New("incorrect program")
	ErrInvalidMemo      = errors.New("memo is not valid utf-8")
)

// Instruction returns a memo instruction carrying data.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/memo/program/src/entrypoint.rs
func Instruction(data string) solana.Instruction {
	return solana.NewInstruction(
		ProgramKey,
		[]byte(data),
	)
}

// Decompile returns the memo text of the instruction at index.
func Decompile(m solana.Message, index int) (string, error) {
	if index >= len(m.Instructions) {
		return "", errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return "", ErrIncorrectProgram
	}
	if !utf8.Valid(i.Data) {
		return "", ErrInvalidMemo
	}
	return string(i.Data), nil
}
