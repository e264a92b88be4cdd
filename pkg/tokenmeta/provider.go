// Package tokenmeta looks up the decimals, symbol and name of token mints.
package tokenmeta

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

const (
	// DefaultDecimals is assumed for a mint whose metadata is unavailable.
	DefaultDecimals uint8 = 9

	// UnknownSymbol is reported for a mint whose metadata is unavailable.
	UnknownSymbol = "UNKNOWN"
)

var (
	// ErrMetadataFetchFailed wraps every failure to fetch metadata. Callers
	// are expected to recover with Fallback.
	ErrMetadataFetchFailed = errors.New("token metadata fetch failed")
)

// Metadata describes a token mint. Decimals are authoritative for amount
// scaling.
type Metadata struct {
	Mint     ed25519.PublicKey
	Decimals uint8
	Symbol   string
	Name     string
}

func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}

	cloned := *m
	cloned.Mint = append(ed25519.PublicKey(nil), m.Mint...)
	return &cloned
}

func (m *Metadata) String() string {
	return m.Symbol + " (" + solana.EncodeBase58(m.Mint) + ")"
}

// Fallback is the metadata assumed for mint when the provider fails.
func Fallback(mint ed25519.PublicKey) *Metadata {
	return &Metadata{
		Mint:     mint,
		Decimals: DefaultDecimals,
		Symbol:   UnknownSymbol,
		Name:     UnknownSymbol,
	}
}

// Provider fetches token metadata.
type Provider interface {
	// GetDecimals returns the decimals of mint.
	GetDecimals(ctx context.Context, mint ed25519.PublicKey) (uint8, error)

	// GetMetadata returns the full metadata of mint.
	GetMetadata(ctx context.Context, mint ed25519.PublicKey) (*Metadata, error)
}
