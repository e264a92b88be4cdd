package main

import (
	"os"

	"github.com/code-payments/dex-wallet/cmd/dexwallet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
