package liquidity

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/amm"
)

// PoolState is the on chain liquidity of a pool, in base units.
type PoolState struct {
	ReserveX uint64
	ReserveY uint64
	LpSupply uint64
}

// Reserves returns the reserves ordered as (input, output) for a trade of
// inputIsX direction.
func (s *PoolState) Reserves(inputIsX bool) (uint64, uint64) {
	if inputIsX {
		return s.ReserveX, s.ReserveY
	}
	return s.ReserveY, s.ReserveX
}

// PoolStateReader reads the current liquidity of a pool. ErrPoolNotFound is
// returned for pools that have not been created.
type PoolStateReader interface {
	GetPoolState(ctx context.Context, pool *amm.PoolAddresses) (*PoolState, error)
}

type rpcPoolStateReader struct {
	sc solana.Client
}

// NewRPCPoolStateReader reads reserve balances and the LP mint supply.
func NewRPCPoolStateReader(sc solana.Client) PoolStateReader {
	return &rpcPoolStateReader{sc: sc}
}

func (r *rpcPoolStateReader) GetPoolState(ctx context.Context, pool *amm.PoolAddresses) (*PoolState, error) {
	tracer := metrics.TraceMethodCall(ctx, "liquidity.pool_state_reader", "GetPoolState")
	defer tracer.End()

	var res PoolState

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.ReserveX, err = r.sc.GetTokenAccountBalance(ctx, pool.ReserveX)
		return err
	})
	g.Go(func() (err error) {
		res.ReserveY, err = r.sc.GetTokenAccountBalance(ctx, pool.ReserveY)
		return err
	})
	g.Go(func() error {
		supply, err := r.sc.GetTokenSupply(ctx, pool.LpMint)
		res.LpSupply = supply.Amount
		return err
	})

	err := g.Wait()
	switch {
	case err == nil:
		return &res, nil
	case errors.Is(err, solana.ErrNoBalance), errors.Is(err, solana.ErrNoAccountInfo):
		return nil, ErrPoolNotFound
	}

	tracer.OnError(err)
	return nil, errors.Wrap(err, "error reading pool state")
}
