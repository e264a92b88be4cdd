package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/amm"
)

const (
	appName = "dexwallet"

	defaultShutdownTimeout = 5 * time.Second

	rpcKey                = "rpc"
	rateLimitKey          = "rate_limit"
	programKey            = "program"
	configIndexKey        = "config_index"
	keypairKey            = "keypair"
	logLevelKey           = "log_level"
	newRelicLicenseKeyKey = "new_relic_license_key"
)

var (
	cfgFile string

	metricsProvider *newrelic.Application
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Build and submit exchange transactions against the AMM program",
	Long: `dexwallet derives AMM pool addresses and builds, signs and submits
create-pool, add-liquidity, withdraw-liquidity and swap transactions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		metricsProvider, err = metrics.NewApplication(appName, viper.GetString(newRelicLicenseKeyKey))
		if err != nil {
			return errors.Wrap(err, "error connecting to new relic")
		}

		configureLogger(viper.GetString(logLevelKey), metricsProvider)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if metricsProvider != nil {
			metricsProvider.Shutdown(defaultShutdownTimeout)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dexwallet.yaml)")
	flags.String("rpc", "devnet", "Solana RPC endpoint, or one of devnet, testnet, mainnet")
	flags.Float64("rate-limit", 0, "maximum RPC requests per second, 0 for unlimited")
	flags.String("program", amm.PROGRAM_ADDRESS, "AMM program address")
	flags.Uint32("config-index", amm.DefaultConfigIndex, "AMM config index")
	flags.String("keypair", "", "payer keypair file (JSON byte array) or base58 private key")
	flags.String("log-level", "warn", "log level")

	for key, flag := range map[string]string{
		rpcKey:         "rpc",
		rateLimitKey:   "rate-limit",
		programKey:     "program",
		configIndexKey: "config-index",
		keypairKey:     "keypair",
		logLevelKey:    "log-level",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}

	_ = viper.BindEnv(newRelicLicenseKeyKey, "NEW_RELIC_LICENSE_KEY")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("." + appName)
	}

	viper.SetEnvPrefix(appName)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if _, isConfigNotFound := err.(viper.ConfigFileNotFoundError); err != nil && !isConfigNotFound {
		logrus.StandardLogger().WithError(err).Warn("failed to load config")
	}
}

func configureLogger(logLevel string, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", logLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}

func newSolanaClient() solana.Client {
	return solana.NewWithRateLimit(solana.ResolveEndpoint(viper.GetString(rpcKey)), viper.GetFloat64(rateLimitKey))
}

func newRegistry() (*amm.Registry, error) {
	program, err := solana.PublicKeyFromBase58(viper.GetString(programKey))
	if err != nil {
		return nil, errors.Wrap(err, "invalid program address")
	}
	return amm.NewRegistry(program, viper.GetUint32(configIndexKey)), nil
}

// startTransaction wraps a command run in a New Relic transaction, when
// metrics are enabled.
func startTransaction(cmd *cobra.Command) (context.Context, func()) {
	return metrics.StartTransaction(cmd.Context(), metricsProvider, cmd.CommandPath())
}
