// Package signer provides the capability to sign transaction messages with
// the wallet's key.
package signer

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

var (
	// ErrSigningDeclined is returned when the user declines, or fails, the
	// authentication required to sign.
	ErrSigningDeclined = errors.New("signing declined")

	// ErrSigningFailed is returned when the key could not produce a
	// signature.
	ErrSigningFailed = errors.New("signing failed")
)

// AuthContext carries whatever the signing backend needs to authorize a
// signature, such as a biometric prompt result. Local keys ignore it.
type AuthContext interface{}

// Signer signs serialized transaction messages. Implementations must be safe
// for concurrent use.
type Signer interface {
	// PublicKey returns the key whose signatures Sign produces.
	PublicKey() ed25519.PublicKey

	// Sign returns the ed25519 signature of message.
	Sign(ctx context.Context, message []byte, auth AuthContext) (solana.Signature, error)
}

// LocalKeySigner signs with an in process private key.
type LocalKeySigner struct {
	key ed25519.PrivateKey
}

func NewLocalKeySigner(key ed25519.PrivateKey) (*LocalKeySigner, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid private key length: %d", len(key))
	}
	return &LocalKeySigner{key: key}, nil
}

// NewLocalKeySignerFromBase58 accepts the 64 byte base58 keypair format used
// by Solana wallets.
func NewLocalKeySignerFromBase58(value string) (*LocalKeySigner, error) {
	decoded, err := solana.DecodeBase58(value)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key encoding")
	}
	return NewLocalKeySigner(decoded)
}

func (s *LocalKeySigner) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *LocalKeySigner) Sign(ctx context.Context, message []byte, _ AuthContext) (solana.Signature, error) {
	var sig solana.Signature
	if err := ctx.Err(); err != nil {
		return sig, errors.Wrap(ErrSigningFailed, err.Error())
	}

	copy(sig[:], ed25519.Sign(s.key, message))
	return sig, nil
}
