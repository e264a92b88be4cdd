package amm

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
)

var (
	ErrIdenticalMints     = errors.New("token pair mints must differ")
	ErrMintNotInPair      = errors.New("mint is not part of the token pair")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidSlippage    = errors.New("slippage percent must be within [0, 100]")
)

// PROGRAM_ADDRESS is the default deployment of the exchange program. Callers
// targeting another deployment construct a Registry with their own key.
var (
	PROGRAM_ADDRESS = "4y7KiHTbZsE49ZvjSoFVry3SCUPDVwLVExgwxVqjTW5r"
	PROGRAM_ID      = solana.MustPublicKeyFromBase58(PROGRAM_ADDRESS)
)

// DefaultConfigIndex is the AMM config account shared by every pool.
const DefaultConfigIndex uint32 = 0

// Registry derives the exchange program's accounts for one deployment and
// config index.
type Registry struct {
	Program     ed25519.PublicKey
	ConfigIndex uint32

	// Deriver replaces solana.FindProgramAddressAndBump when set.
	Deriver func(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error)
}

func NewRegistry(program ed25519.PublicKey, configIndex uint32) *Registry {
	return &Registry{
		Program:     program,
		ConfigIndex: configIndex,
	}
}

// DefaultRegistry targets PROGRAM_ID with DefaultConfigIndex.
func DefaultRegistry() *Registry {
	return NewRegistry(PROGRAM_ID, DefaultConfigIndex)
}

func (r *Registry) derive(seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	if r.Deriver != nil {
		return r.Deriver(r.Program, seeds...)
	}
	return solana.FindProgramAddressAndBump(r.Program, seeds...)
}
