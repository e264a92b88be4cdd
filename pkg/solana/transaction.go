package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

var (
	ErrSignerNotFound      = errors.New("signing account is not in the list of signers")
	ErrTransactionTooLarge = errors.New("transaction exceeds max size")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is the signed portion of a legacy transaction.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a legacy transaction paid for
// by payer. Signature slots are allocated but left empty.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := collectAccounts(payer, instructions)

	var m Message
	m.Accounts = make([]ed25519.PublicKey, len(accounts))
	for i, account := range accounts {
		m.Accounts[i] = account.PublicKey

		switch {
		case account.IsSigner && account.IsWritable:
			m.Header.NumSignatures++
		case account.IsSigner:
			m.Header.NumSignatures++
			m.Header.NumReadonlySigned++
		case !account.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	m.Instructions = make([]CompiledInstruction, len(instructions))
	for i, ixn := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, ixn.Program)),
			Accounts:     make([]byte, len(ixn.Accounts)),
			Data:         ixn.Data,
		}
		for j, account := range ixn.Accounts {
			compiled.Accounts[j] = byte(indexOf(m.Accounts, account.PublicKey))
		}
		m.Instructions[i] = compiled
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// collectAccounts flattens every account referenced by the instructions into
// a deduplicated list in message order.
func collectAccounts(payer ed25519.PublicKey, instructions []Instruction) []AccountMeta {
	all := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true, isPayer: true}}
	for _, ixn := range instructions {
		all = append(all, AccountMeta{PublicKey: ixn.Program, isProgram: true})
		all = append(all, ixn.Accounts...)
	}

	merged := filterUnique(all)
	slices.SortStableFunc(merged, compareAccountMetas)
	return merged
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Signature returns the first (payer) signature, which doubles as the
// transaction id.
func (t *Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

// SetSignature places a signature produced over Message.Marshal() into the
// slot belonging to signer.
func (t *Transaction) SetSignature(signer ed25519.PublicKey, sig Signature) error {
	index := indexOf(t.Message.Accounts, signer)
	if index < 0 || index >= len(t.Signatures) {
		return errors.Wrapf(ErrSignerNotFound, "%s", base58.Encode(signer))
	}

	t.Signatures[index] = sig
	return nil
}

// Sign signs the message with locally held keys.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		var sig Signature
		copy(sig[:], ed25519.Sign(s, messageBytes))

		if err := t.SetSignature(s.Public().(ed25519.PublicKey), sig); err != nil {
			return err
		}
	}

	return nil
}

func (t *Transaction) String() string {
	var sb strings.Builder
	h := t.Message.Header
	fmt.Fprintf(&sb, "blockhash=%s signatures=%d readonly_signed=%d readonly=%d\n",
		base58.Encode(t.Message.RecentBlockhash[:]), h.NumSignatures, h.NumReadonlySigned, h.NumReadOnly)
	for i, sig := range t.Signatures {
		fmt.Fprintf(&sb, "sig[%d] %s\n", i, sig)
	}
	for i, account := range t.Message.Accounts {
		fmt.Fprintf(&sb, "acct[%d] %s\n", i, base58.Encode(account))
	}
	for i, ixn := range t.Message.Instructions {
		fmt.Fprintf(&sb, "ixn[%d] program=%d accounts=%v data=%x\n", i, ixn.ProgramIndex, ixn.Accounts, ixn.Data)
	}
	return sb.String()
}

// filterUnique removes duplicate accounts, promoting the permissions of the
// first occurrence to the union of all occurrences.
func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))
	seen := make(map[string]int, len(accounts))

	for _, a := range accounts {
		j, ok := seen[string(a.PublicKey)]
		if !ok {
			seen[string(a.PublicKey)] = len(filtered)
			filtered = append(filtered, a)
			continue
		}

		filtered[j].IsSigner = filtered[j].IsSigner || a.IsSigner
		filtered[j].IsWritable = filtered[j].IsWritable || a.IsWritable
		filtered[j].isPayer = filtered[j].isPayer || a.isPayer
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
