package tokenmeta

import (
	"time"

	"github.com/code-payments/dex-wallet/pkg/config"
	"github.com/code-payments/dex-wallet/pkg/config/env"
)

const (
	envConfigPrefix = "TOKEN_METADATA_"

	CacheTTLConfigEnvName = envConfigPrefix + "CACHE_TTL"
	defaultCacheTTL       = 10 * time.Minute

	CacheBudgetConfigEnvName = envConfigPrefix + "CACHE_BUDGET"
	defaultCacheBudget       = 1000

	FetchLockStripesConfigEnvName = envConfigPrefix + "FETCH_LOCK_STRIPES"
	defaultFetchLockStripes       = 64
)

type conf struct {
	cacheTTL         config.Duration
	cacheBudget      config.Uint64
	fetchLockStripes config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			cacheTTL:         env.NewDurationConfig(CacheTTLConfigEnvName, defaultCacheTTL),
			cacheBudget:      env.NewUint64Config(CacheBudgetConfigEnvName, defaultCacheBudget),
			fetchLockStripes: env.NewUint64Config(FetchLockStripesConfigEnvName, defaultFetchLockStripes),
		}
	}
}
