package tokenmeta

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/dex-wallet/pkg/cache"
	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/sync"
)

const cachedProviderMetricsName = "tokenmeta.cached_provider"

type cachedProvider struct {
	log    *logrus.Entry
	conf   *conf
	source Provider

	wellKnown map[string]*Metadata
	cache     cache.Cache[string, *Metadata]
	locks     *sync.StripedLock
}

// NewCachedProvider returns a read through cache in front of source. Entries
// expire after the configured TTL. Concurrent misses for the same mint share
// a single fetch. Well known mints are always served from memory.
func NewCachedProvider(source Provider, configProvider ConfigProvider) Provider {
	conf := configProvider()
	ctx := context.Background()

	p := &cachedProvider{
		log:       logrus.StandardLogger().WithField("type", "tokenmeta/cached_provider"),
		conf:      conf,
		source:    source,
		wellKnown: make(map[string]*Metadata, len(WellKnown)),
		cache:     cache.NewCache[string, *Metadata](int(conf.cacheBudget.Get(ctx))),
		locks:     sync.NewStripedLock(uint(conf.fetchLockStripes.Get(ctx))),
	}

	for _, md := range WellKnown {
		p.wellKnown[string(md.Mint)] = md
	}

	return p
}

func (p *cachedProvider) GetDecimals(ctx context.Context, mint ed25519.PublicKey) (uint8, error) {
	md, err := p.GetMetadata(ctx, mint)
	if err != nil {
		return 0, err
	}
	return md.Decimals, nil
}

func (p *cachedProvider) GetMetadata(ctx context.Context, mint ed25519.PublicKey) (*Metadata, error) {
	tracer := metrics.TraceMethodCall(ctx, cachedProviderMetricsName, "GetMetadata")
	defer tracer.End()

	key := string(mint)
	if md, ok := p.wellKnown[key]; ok {
		return md.Clone(), nil
	}
	if md, ok := p.cache.Retrieve(key); ok {
		tracer.AddAttribute("cache_hit", true)
		return md.Clone(), nil
	}

	unlock := p.locks.Lock(mint)
	defer unlock()

	// Another caller may have populated the entry while we waited.
	if md, ok := p.cache.Retrieve(key); ok {
		tracer.AddAttribute("cache_hit", true)
		return md.Clone(), nil
	}
	tracer.AddAttribute("cache_hit", false)

	start := time.Now()
	md, err := p.source.GetMetadata(ctx, mint)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"mint":     solana.EncodeBase58(mint),
		"symbol":   md.Symbol,
		"decimals": md.Decimals,
		"elapsed":  time.Since(start),
	}).Debug("cached token metadata")

	p.cache.Insert(key, md.Clone(), 1, p.conf.cacheTTL.Get(ctx))
	return md.Clone(), nil
}
