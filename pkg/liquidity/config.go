package liquidity

import (
	"time"

	"github.com/code-payments/dex-wallet/pkg/config"
	"github.com/code-payments/dex-wallet/pkg/config/env"
	"github.com/code-payments/dex-wallet/pkg/tokenmeta"
)

const (
	envConfigPrefix = "LIQUIDITY_SERVICE_"

	DefaultSlippagePercentConfigEnvName = envConfigPrefix + "DEFAULT_SLIPPAGE_PERCENT"
	defaultDefaultSlippagePercent       = 1.0

	DefaultDecimalsConfigEnvName = envConfigPrefix + "DEFAULT_DECIMALS"
	defaultDefaultDecimals       = uint64(tokenmeta.DefaultDecimals)

	MetadataFetchTimeoutConfigEnvName = envConfigPrefix + "METADATA_FETCH_TIMEOUT"
	defaultMetadataFetchTimeout       = 5 * time.Second

	TradeFeeBpsConfigEnvName = envConfigPrefix + "TRADE_FEE_BPS"
	defaultTradeFeeBps       = 30

	// Zero omits the compute budget instruction
	ComputeUnitLimitConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_LIMIT"
	defaultComputeUnitLimit       = 0

	ComputeUnitPriceConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_PRICE"
	defaultComputeUnitPrice       = 0

	AttachMemoConfigEnvName = envConfigPrefix + "ATTACH_MEMO"
	defaultAttachMemo       = false

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = time.Minute

	ConfirmationPollIntervalConfigEnvName = envConfigPrefix + "CONFIRMATION_POLL_INTERVAL"
	defaultConfirmationPollInterval       = 2 * time.Second
)

type conf struct {
	defaultSlippagePercent config.Float64
	defaultDecimals        config.Uint64
	metadataFetchTimeout   config.Duration
	tradeFeeBps            config.Uint64
	computeUnitLimit       config.Uint64
	computeUnitPrice       config.Uint64
	attachMemo             config.Bool

	confirmationTimeout      config.Duration
	confirmationPollInterval config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			defaultSlippagePercent: env.NewFloat64Config(DefaultSlippagePercentConfigEnvName, defaultDefaultSlippagePercent),
			defaultDecimals:        env.NewUint64Config(DefaultDecimalsConfigEnvName, defaultDefaultDecimals),
			metadataFetchTimeout:   env.NewDurationConfig(MetadataFetchTimeoutConfigEnvName, defaultMetadataFetchTimeout),
			tradeFeeBps:            env.NewUint64Config(TradeFeeBpsConfigEnvName, defaultTradeFeeBps),
			computeUnitLimit:       env.NewUint64Config(ComputeUnitLimitConfigEnvName, defaultComputeUnitLimit),
			computeUnitPrice:       env.NewUint64Config(ComputeUnitPriceConfigEnvName, defaultComputeUnitPrice),
			attachMemo:             env.NewBoolConfig(AttachMemoConfigEnvName, defaultAttachMemo),

			confirmationTimeout:      env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
			confirmationPollInterval: env.NewDurationConfig(ConfirmationPollIntervalConfigEnvName, defaultConfirmationPollInterval),
		}
	}
}
