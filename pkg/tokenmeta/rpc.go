package tokenmeta

import (
	"context"
	"crypto/ed25519"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/metaplex"
	"github.com/code-payments/dex-wallet/pkg/solana/token"
)

const rpcProviderMetricsName = "tokenmeta.rpc_provider"

type rpcProvider struct {
	log      *logrus.Entry
	tokens   *token.Client
	metaplex *metaplex.Client
}

// NewRPCProvider returns a Provider that reads the mint account for decimals
// and the Metaplex metadata account for the symbol and name.
func NewRPCProvider(sc solana.Client) Provider {
	return &rpcProvider{
		log:      logrus.StandardLogger().WithField("type", "tokenmeta/rpc_provider"),
		tokens:   token.NewClient(sc),
		metaplex: metaplex.NewClient(sc),
	}
}

func (p *rpcProvider) GetDecimals(ctx context.Context, mint ed25519.PublicKey) (uint8, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcProviderMetricsName, "GetDecimals")
	defer tracer.End()

	m, err := p.tokens.GetMint(ctx, mint)
	if err != nil {
		tracer.OnError(err)
		return 0, errors.Wrapf(ErrMetadataFetchFailed, "mint %s: %v", solana.EncodeBase58(mint), err)
	}
	return m.Decimals, nil
}

// GetMetadata requires the mint account. A missing or malformed Metaplex
// account only degrades the symbol and name to UnknownSymbol.
func (p *rpcProvider) GetMetadata(ctx context.Context, mint ed25519.PublicKey) (*Metadata, error) {
	tracer := metrics.TraceMethodCall(ctx, rpcProviderMetricsName, "GetMetadata")
	defer tracer.End()

	log := p.log.WithField("mint", solana.EncodeBase58(mint))

	decimals, err := p.GetDecimals(ctx, mint)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res := &Metadata{
		Mint:     mint,
		Decimals: decimals,
		Symbol:   UnknownSymbol,
		Name:     UnknownSymbol,
	}

	onChain, err := p.metaplex.GetMetadata(ctx, mint)
	switch {
	case err == nil:
		if symbol := strings.TrimSpace(onChain.Symbol); len(symbol) > 0 {
			res.Symbol = symbol
		}
		if name := strings.TrimSpace(onChain.Name); len(name) > 0 {
			res.Name = name
		}
	case errors.Is(err, metaplex.ErrMetadataNotFound):
		log.Debug("mint has no metaplex metadata")
	default:
		log.WithError(err).Warn("failure getting metaplex metadata")
	}

	return res, nil
}
