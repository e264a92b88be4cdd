package amm

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana/binary"
)

var (
	AmmConfigPrefix   = []byte("amm_config")
	PoolPrefix        = []byte("pool")
	LpMintPrefix      = []byte("lp")
	PoolReservePrefix = []byte("pool_reserve")
)

func (r *Registry) GetAmmConfigAddress() (ed25519.PublicKey, uint8, error) {
	return r.derive(
		AmmConfigPrefix,
		binary.NewEncoder(4).PutUint32(r.ConfigIndex).Bytes(),
	)
}

type GetPoolAddressArgs struct {
	AmmConfig ed25519.PublicKey
	Pair      TokenPair
}

func (r *Registry) GetPoolAddress(args *GetPoolAddressArgs) (ed25519.PublicKey, uint8, error) {
	return r.derive(
		PoolPrefix,
		args.AmmConfig,
		args.Pair.X,
		args.Pair.Y,
	)
}

type GetLpMintAddressArgs struct {
	Pool ed25519.PublicKey
}

func (r *Registry) GetLpMintAddress(args *GetLpMintAddressArgs) (ed25519.PublicKey, uint8, error) {
	return r.derive(
		LpMintPrefix,
		args.Pool,
	)
}

type GetPoolReserveAddressArgs struct {
	Pool ed25519.PublicKey
	Mint ed25519.PublicKey
}

func (r *Registry) GetPoolReserveAddress(args *GetPoolReserveAddressArgs) (ed25519.PublicKey, uint8, error) {
	return r.derive(
		PoolReservePrefix,
		args.Pool,
		args.Mint,
	)
}

// PoolAddresses is every program account of a pool, derived from its
// canonical token pair.
type PoolAddresses struct {
	Pair TokenPair

	AmmConfig     ed25519.PublicKey
	AmmConfigBump uint8

	Pool     ed25519.PublicKey
	PoolBump uint8

	LpMint     ed25519.PublicKey
	LpMintBump uint8

	ReserveX     ed25519.PublicKey
	ReserveXBump uint8

	ReserveY     ed25519.PublicKey
	ReserveYBump uint8
}

// Reserve returns the pool reserve that holds mint.
func (a *PoolAddresses) Reserve(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	switch {
	case a.Pair.X.Equal(mint):
		return a.ReserveX, nil
	case a.Pair.Y.Equal(mint):
		return a.ReserveY, nil
	}
	return nil, ErrMintNotInPair
}

// GetPoolAddresses derives the full account bundle of the pool for pair.
func (r *Registry) GetPoolAddresses(pair TokenPair) (*PoolAddresses, error) {
	var err error
	res := &PoolAddresses{Pair: pair}

	res.AmmConfig, res.AmmConfigBump, err = r.GetAmmConfigAddress()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving amm config address")
	}

	res.Pool, res.PoolBump, err = r.GetPoolAddress(&GetPoolAddressArgs{
		AmmConfig: res.AmmConfig,
		Pair:      pair,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving pool address")
	}

	res.LpMint, res.LpMintBump, err = r.GetLpMintAddress(&GetLpMintAddressArgs{
		Pool: res.Pool,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving lp mint address")
	}

	res.ReserveX, res.ReserveXBump, err = r.GetPoolReserveAddress(&GetPoolReserveAddressArgs{
		Pool: res.Pool,
		Mint: pair.X,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving x reserve address")
	}

	res.ReserveY, res.ReserveYBump, err = r.GetPoolReserveAddress(&GetPoolReserveAddressArgs{
		Pool: res.Pool,
		Mint: pair.Y,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving y reserve address")
	}

	return res, nil
}
