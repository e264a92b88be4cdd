package memory

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/tokenmeta"
)

// Provider is an in memory tokenmeta.Provider used for testing
type Provider struct {
	mu       sync.Mutex
	metadata map[string]*tokenmeta.Metadata
	failures map[string]error
	calls    map[string]int
}

var _ tokenmeta.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{
		metadata: make(map[string]*tokenmeta.Metadata),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (p *Provider) Set(md *tokenmeta.Metadata) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.metadata[string(md.Mint)] = md.Clone()
}

// Fail makes lookups of mint return err until cleared with a nil err.
func (p *Provider) Fail(mint ed25519.PublicKey, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		delete(p.failures, string(mint))
		return
	}
	p.failures[string(mint)] = err
}

// Calls returns the number of lookups made for mint.
func (p *Provider) Calls(mint ed25519.PublicKey) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls[string(mint)]
}

func (p *Provider) GetDecimals(ctx context.Context, mint ed25519.PublicKey) (uint8, error) {
	md, err := p.GetMetadata(ctx, mint)
	if err != nil {
		return 0, err
	}
	return md.Decimals, nil
}

func (p *Provider) GetMetadata(ctx context.Context, mint ed25519.PublicKey) (*tokenmeta.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(tokenmeta.ErrMetadataFetchFailed, err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := string(mint)
	p.calls[key]++

	if err, ok := p.failures[key]; ok {
		return nil, err
	}

	md, ok := p.metadata[key]
	if !ok {
		return nil, errors.Wrapf(tokenmeta.ErrMetadataFetchFailed, "unknown mint %s", solana.EncodeBase58(mint))
	}
	return md.Clone(), nil
}
