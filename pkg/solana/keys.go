package solana

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrInvalidBase58    = errors.New("invalid base58 encoding")
	ErrInvalidKeyLength = errors.New("invalid public key length")
)

// EncodeBase58 returns the canonical base58 text of b.
func EncodeBase58(b []byte) string {
	return base58.Encode(b)
}

// DecodeBase58 decodes base58 text into raw bytes. The empty string is not a
// valid encoding.
func DecodeBase58(value string) ([]byte, error) {
	if len(value) == 0 {
		return nil, ErrInvalidBase58
	}

	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidBase58, "%s: %v", value, err)
	}
	return decoded, nil
}

// PublicKeyFromBase58 decodes an address and requires it to be exactly 32 bytes.
func PublicKeyFromBase58(value string) (ed25519.PublicKey, error) {
	decoded, err := DecodeBase58(value)
	if err != nil {
		return nil, err
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "%s decodes to %d bytes", value, len(decoded))
	}
	return decoded, nil
}

// MustPublicKeyFromBase58 is PublicKeyFromBase58 for compile-time constants.
func MustPublicKeyFromBase58(value string) ed25519.PublicKey {
	pub, err := PublicKeyFromBase58(value)
	if err != nil {
		panic(err)
	}
	return pub
}

// Sha256 hashes the concatenation of parts.
func Sha256(parts ...[]byte) [sha256.Size]byte {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}

	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
