package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana/shortvec"
)

// Legacy wire format.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#anatomy-of-a-transaction

func (t Transaction) Marshal() []byte {
	var w wireWriter

	w.putLen(len(t.Signatures))
	for i := range t.Signatures {
		w.put(t.Signatures[i][:])
	}
	w.put(t.Message.Marshal())

	return w.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := newWireReader(b)

	signatures := make([]Signature, r.readLen("signature count"))
	for i := range signatures {
		r.readInto("signature", signatures[i][:])
	}
	if r.err != nil {
		return r.err
	}

	t.Signatures = signatures
	return t.Message.Unmarshal(r.remaining())
}

// Marshal returns the bytes that every signer signs.
func (m Message) Marshal() []byte {
	var w wireWriter

	w.put([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	w.putLen(len(m.Accounts))
	for _, account := range m.Accounts {
		w.put(account)
	}

	w.put(m.RecentBlockhash[:])

	w.putLen(len(m.Instructions))
	for _, ixn := range m.Instructions {
		w.put([]byte{ixn.ProgramIndex})
		w.putBytes(ixn.Accounts)
		w.putBytes(ixn.Data)
	}

	return w.Bytes()
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	r := newWireReader(b)

	var header [3]byte
	r.readInto("header", header[:])

	accounts := make([]ed25519.PublicKey, r.readLen("account count"))
	for i := range accounts {
		accounts[i] = r.read("account", ed25519.PublicKeySize)
	}

	var blockhash Blockhash
	r.readInto("recent blockhash", blockhash[:])

	instructions := make([]CompiledInstruction, r.readLen("instruction count"))
	for i := range instructions {
		ixn := &instructions[i]

		var programIndex [1]byte
		r.readInto("program index", programIndex[:])
		ixn.ProgramIndex = programIndex[0]
		ixn.Accounts = r.read("instruction accounts", r.readLen("instruction account count"))
		ixn.Data = r.read("instruction data", r.readLen("instruction data length"))
		if r.err != nil {
			return errors.Wrapf(r.err, "instruction %d", i)
		}

		if int(ixn.ProgramIndex) >= len(accounts) {
			return errors.Errorf("instruction %d: program index %d out of range", i, ixn.ProgramIndex)
		}
		for _, index := range ixn.Accounts {
			if int(index) >= len(accounts) {
				return errors.Errorf("instruction %d: account index %d out of range", i, index)
			}
		}
	}
	if r.err != nil {
		return r.err
	}

	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}
	m.Accounts = accounts
	m.RecentBlockhash = blockhash
	m.Instructions = instructions
	return nil
}

type wireWriter struct {
	bytes.Buffer
}

func (w *wireWriter) putLen(n int) {
	_, _ = shortvec.EncodeLen(&w.Buffer, n)
}

func (w *wireWriter) put(b []byte) {
	_, _ = w.Write(b)
}

// putBytes writes a shortvec length prefixed byte array.
func (w *wireWriter) putBytes(b []byte) {
	w.putLen(len(b))
	w.put(b)
}

// wireReader records the first failure and turns every later read into a
// no-op, so callers check err once per logical unit.
type wireReader struct {
	r   *bytes.Reader
	err error
}

func newWireReader(b []byte) *wireReader {
	return &wireReader{r: bytes.NewReader(b)}
}

func (r *wireReader) readLen(field string) int {
	if r.err != nil {
		return 0
	}

	n, err := shortvec.DecodeLen(r.r)
	if err != nil {
		r.err = errors.Wrapf(err, "failed to read %s", field)
		return 0
	}
	return n
}

func (r *wireReader) read(field string, n int) []byte {
	b := make([]byte, n)
	r.readInto(field, b)
	return b
}

func (r *wireReader) readInto(field string, dst []byte) {
	if r.err != nil {
		return
	}
	if _, err := io.ReadFull(r.r, dst); err != nil {
		r.err = errors.Wrapf(err, "failed to read %s", field)
	}
}

func (r *wireReader) remaining() []byte {
	b := make([]byte, r.r.Len())
	_, _ = r.r.Read(b)
	return b
}
