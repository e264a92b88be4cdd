package amm

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

// TokenPair is a pair of mints in canonical order: X sorts before Y by raw
// byte comparison.
type TokenPair struct {
	X ed25519.PublicKey
	Y ed25519.PublicKey
}

// NewTokenPair canonicalizes a and b. NewTokenPair(a, b) and
// NewTokenPair(b, a) always produce the same pair.
func NewTokenPair(a, b ed25519.PublicKey) (TokenPair, error) {
	if len(a) != ed25519.PublicKeySize || len(b) != ed25519.PublicKeySize {
		return TokenPair{}, errors.Wrap(solana.ErrInvalidKeyLength, "invalid mint")
	}

	switch bytes.Compare(a, b) {
	case 0:
		return TokenPair{}, ErrIdenticalMints
	case 1:
		a, b = b, a
	}

	return TokenPair{X: a, Y: b}, nil
}

func (p TokenPair) Contains(mint ed25519.PublicKey) bool {
	return p.X.Equal(mint) || p.Y.Equal(mint)
}

// Other returns the counterpart of mint within the pair.
func (p TokenPair) Other(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	switch {
	case p.X.Equal(mint):
		return p.Y, nil
	case p.Y.Equal(mint):
		return p.X, nil
	}
	return nil, ErrMintNotInPair
}

// IsX reports whether mint is the first mint of the canonical pair.
func (p TokenPair) IsX(mint ed25519.PublicKey) bool {
	return p.X.Equal(mint)
}

func (p TokenPair) String() string {
	return solana.EncodeBase58(p.X) + "/" + solana.EncodeBase58(p.Y)
}
