package testutil

import (
	"bytes"
	"crypto/ed25519"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateSolanaKeypair returns a fresh private key. Its public half is
// key.Public().
func GenerateSolanaKeypair(t testing.TB) ed25519.PrivateKey {
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return key
}

// GenerateSolanaKeys returns n distinct random addresses.
func GenerateSolanaKeys(t testing.TB, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, 0, n)
	for len(keys) < n {
		key := GenerateSolanaKeypair(t).Public().(ed25519.PublicKey)
		if slices.ContainsFunc(keys, func(existing ed25519.PublicKey) bool { return bytes.Equal(existing, key) }) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// GenerateOrderedSolanaKeys returns n addresses in ascending byte order, the
// order mints take inside a token pair.
func GenerateOrderedSolanaKeys(t testing.TB, n int) []ed25519.PublicKey {
	keys := GenerateSolanaKeys(t, n)
	slices.SortFunc(keys, func(a, b ed25519.PublicKey) int {
		return bytes.Compare(a, b)
	})
	return keys
}
