package token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana/binary"
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L37
const MintSize = 82

var ErrInvalidMint = errors.New("invalid mint account")

// Mint is the SPL token mint account.
type Mint struct {
	// Optional authority used to mint new tokens.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens, in base units.
	Supply uint64
	// Number of base 10 digits to the right of the decimal place.
	Decimals uint8
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

// Unmarshal decodes mint account data. Token-2022 mints carry extensions
// after the base layout, so only the first MintSize bytes are read.
func (m *Mint) Unmarshal(b []byte) error {
	if len(b) < MintSize {
		return errors.Wrapf(ErrInvalidMint, "size %d", len(b))
	}

	d := binary.NewDecoder(b[:MintSize])
	m.MintAuthority = d.GetOptionalKey32()
	m.Supply = d.GetUint64()
	m.Decimals = d.GetUint8()
	m.IsInitialized = d.GetBool()
	m.FreezeAuthority = d.GetOptionalKey32()
	if err := d.Err(); err != nil {
		return errors.Wrap(ErrInvalidMint, err.Error())
	}

	if !m.IsInitialized {
		return errors.Wrap(ErrInvalidMint, "not initialized")
	}
	return nil
}

// Marshal encodes the mint into its 82 byte account layout.
func (m *Mint) Marshal() []byte {
	e := binary.NewEncoder(MintSize)
	putOptionalKey(e, m.MintAuthority)
	e.PutUint64(m.Supply)
	e.PutUint8(m.Decimals)
	if m.IsInitialized {
		e.PutUint8(1)
	} else {
		e.PutUint8(0)
	}
	putOptionalKey(e, m.FreezeAuthority)
	return e.Bytes()
}

func putOptionalKey(e *binary.Encoder, key ed25519.PublicKey) {
	if len(key) == 0 {
		e.PutUint32(0).PutBytes(make([]byte, ed25519.PublicKeySize))
		return
	}
	e.PutUint32(1).PutBytes(key)
}
