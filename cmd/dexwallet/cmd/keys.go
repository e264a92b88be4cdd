package cmd

import (
	"crypto/ed25519"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/code-payments/dex-wallet/pkg/signer"
	"github.com/code-payments/dex-wallet/pkg/solana"
)

func parseKeys(values ...string) ([]ed25519.PublicKey, error) {
	keys := make([]ed25519.PublicKey, len(values))
	for i, value := range values {
		key, err := solana.PublicKeyFromBase58(value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid address %q", value)
		}
		keys[i] = key
	}
	return keys, nil
}

// loadSigner reads the payer key from a Solana CLI keypair file, or from a
// base58 encoded private key.
func loadSigner() (*signer.LocalKeySigner, error) {
	value := viper.GetString(keypairKey)
	if len(value) == 0 {
		return nil, errors.New("a payer keypair is required, see --keypair")
	}

	raw, err := os.ReadFile(value)
	if os.IsNotExist(err) {
		return signer.NewLocalKeySignerFromBase58(value)
	} else if err != nil {
		return nil, errors.Wrap(err, "error reading keypair file")
	}

	// JSON byte arrays don't decode into []byte
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrap(err, "invalid keypair file")
	}

	key := make(ed25519.PrivateKey, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("invalid keypair byte at %d", i)
		}
		key[i] = byte(v)
	}

	return signer.NewLocalKeySigner(key)
}
