package solana

import "strings"

type Environment string

const (
	EnvironmentDev  Environment = "https://api.devnet.solana.com"
	EnvironmentTest Environment = "https://api.testnet.solana.com"
	EnvironmentProd Environment = "https://api.mainnet-beta.solana.com"
)

// ResolveEndpoint maps a cluster name onto its public RPC endpoint. Any other
// value is assumed to already be an endpoint URL.
func ResolveEndpoint(nameOrURL string) string {
	switch strings.ToLower(strings.TrimSpace(nameOrURL)) {
	case "dev", "devnet":
		return string(EnvironmentDev)
	case "test", "testnet":
		return string(EnvironmentTest)
	case "prod", "mainnet", "mainnet-beta":
		return string(EnvironmentProd)
	}
	return nameOrURL
}
