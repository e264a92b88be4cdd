package liquidity

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/code-payments/dex-wallet/pkg/amount"
	"github.com/code-payments/dex-wallet/pkg/metrics"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/amm"
	"github.com/code-payments/dex-wallet/pkg/solana/token"
	"github.com/code-payments/dex-wallet/pkg/tokenmeta"
)

const (
	assemblerMetricsStructName = "liquidity.assembler"
)

type CreatePoolArgs struct {
	Payer ed25519.PublicKey

	MintA   ed25519.PublicKey
	MintB   ed25519.PublicKey
	AmountA decimal.Decimal
	AmountB decimal.Decimal

	// Optional, defaults to the configured slippage.
	SlippagePercent *decimal.Decimal
}

type AddLiquidityArgs struct {
	Payer ed25519.PublicKey

	MintA ed25519.PublicKey
	MintB ed25519.PublicKey

	// Maximum amounts the pool may take from the payer.
	MaxAmountA decimal.Decimal
	MaxAmountB decimal.Decimal

	SlippagePercent *decimal.Decimal
}

type WithdrawLiquidityArgs struct {
	Payer ed25519.PublicKey

	MintA ed25519.PublicKey
	MintB ed25519.PublicKey

	// LpAmount is in LP base units.
	LpAmount uint64

	SlippagePercent *decimal.Decimal
}

type SwapArgs struct {
	Payer ed25519.PublicKey

	InputMint  ed25519.PublicKey
	OutputMint ed25519.PublicKey
	AmountIn   decimal.Decimal

	// Optional. Overrides the minimum derived from the pool state and
	// slippage.
	MinAmountOut *decimal.Decimal

	SlippagePercent *decimal.Decimal
}

// Assembler turns human level exchange requests into unsigned AMM
// instructions. It is safe for concurrent use.
type Assembler struct {
	log      *logrus.Entry
	conf     *conf
	registry *amm.Registry
	metadata tokenmeta.Provider
	pools    PoolStateReader
}

// NewAssembler returns a new Assembler. pools may be nil, in which case
// estimates for existing pools fall back to the empty pool formulas.
func NewAssembler(registry *amm.Registry, metadata tokenmeta.Provider, pools PoolStateReader, configProvider ConfigProvider) *Assembler {
	return &Assembler{
		log:      logrus.StandardLogger().WithField("type", "liquidity/assembler"),
		conf:     configProvider(),
		registry: registry,
		metadata: metadata,
		pools:    pools,
	}
}

// poolContext is everything derived for a pair before any operation specific
// work happens.
type poolContext struct {
	payer     ed25519.PublicKey
	addresses *amm.PoolAddresses

	payerX  ed25519.PublicKey
	payerY  ed25519.PublicKey
	payerLp ed25519.PublicKey

	decimalsX uint8
	decimalsY uint8

	// nil when the pool state is unknown
	state *PoolState

	warnings []error
}

func (pc *poolContext) pair() amm.TokenPair {
	return pc.addresses.Pair
}

func (pc *poolContext) liquidityAccounts() *amm.LiquidityInstructionAccounts {
	return &amm.LiquidityInstructionAccounts{
		Payer:     pc.payer,
		AmmConfig: pc.addresses.AmmConfig,
		Pool:      pc.addresses.Pool,
		LpMint:    pc.addresses.LpMint,
		MintX:     pc.addresses.Pair.X,
		MintY:     pc.addresses.Pair.Y,
		ReserveX:  pc.addresses.ReserveX,
		ReserveY:  pc.addresses.ReserveY,
		PayerX:    pc.payerX,
		PayerY:    pc.payerY,
		PayerLp:   pc.payerLp,
	}
}

// canonical reorders caller supplied (a, b) values into (x, y).
func canonical[T any](pc *poolContext, mintA ed25519.PublicKey, a, b T) (T, T) {
	if pc.pair().IsX(mintA) {
		return a, b
	}
	return b, a
}

func (a *Assembler) CreatePool(ctx context.Context, args *CreatePoolArgs) (*Description, error) {
	tracer := metrics.TraceMethodCall(ctx, assemblerMetricsStructName, "CreatePool")
	defer tracer.End()

	desc, err := func() (*Description, error) {
		slippage, err := a.slippage(args.SlippagePercent)
		if err != nil {
			return nil, err
		}

		pc, err := a.prepare(ctx, args.Payer, args.MintA, args.MintB, false)
		if err != nil {
			return nil, err
		}

		humanX, humanY := canonical(pc, args.MintA, args.AmountA, args.AmountB)

		amountX, err := scale(humanX, pc.decimalsX, amount.Round)
		if err != nil {
			return nil, err
		}
		amountY, err := scale(humanY, pc.decimalsY, amount.Round)
		if err != nil {
			return nil, err
		}

		minLpOut, err := withSlippage(amm.EstimateInitialLiquidity(amountX, amountY), slippage)
		if err != nil {
			return nil, err
		}

		ixnArgs := &amm.CreatePoolInstructionArgs{
			AmountX:  amountX,
			AmountY:  amountY,
			MinLpOut: minLpOut,
		}

		return &Description{
			Operation:   OperationCreatePool,
			Payer:       args.Payer,
			Instruction: amm.NewCreatePoolInstruction(a.registry.Program, pc.liquidityAccounts(), ixnArgs),
			Pool:        pc.addresses,
			Args:        []uint64{ixnArgs.AmountX, ixnArgs.AmountY, ixnArgs.MinLpOut},
			Warnings:    pc.warnings,
		}, nil
	}()
	return a.finish(tracer, OperationCreatePool, desc, err)
}

func (a *Assembler) AddLiquidity(ctx context.Context, args *AddLiquidityArgs) (*Description, error) {
	tracer := metrics.TraceMethodCall(ctx, assemblerMetricsStructName, "AddLiquidity")
	defer tracer.End()

	desc, err := func() (*Description, error) {
		slippage, err := a.slippage(args.SlippagePercent)
		if err != nil {
			return nil, err
		}

		pc, err := a.prepare(ctx, args.Payer, args.MintA, args.MintB, true)
		if err != nil {
			return nil, err
		}

		humanX, humanY := canonical(pc, args.MintA, args.MaxAmountA, args.MaxAmountB)

		// Maximums never exceed what the caller asked for
		maxAmountX, err := scale(humanX, pc.decimalsX, amount.Truncate)
		if err != nil {
			return nil, err
		}
		maxAmountY, err := scale(humanY, pc.decimalsY, amount.Truncate)
		if err != nil {
			return nil, err
		}

		estimate := &amm.EstimateLiquidityArgs{
			AmountX: maxAmountX,
			AmountY: maxAmountY,
		}
		if pc.state != nil {
			estimate.ReserveX = pc.state.ReserveX
			estimate.ReserveY = pc.state.ReserveY
			estimate.LpSupply = pc.state.LpSupply
		}

		minLpOut, err := withSlippage(amm.EstimateLiquidity(estimate), slippage)
		if err != nil {
			return nil, err
		}

		ixnArgs := &amm.DepositLiquidityInstructionArgs{
			MaxAmountX: maxAmountX,
			MaxAmountY: maxAmountY,
			MinLpOut:   minLpOut,
		}

		return &Description{
			Operation:   OperationAddLiquidity,
			Payer:       args.Payer,
			Instruction: amm.NewDepositLiquidityInstruction(a.registry.Program, pc.liquidityAccounts(), ixnArgs),
			Pool:        pc.addresses,
			Args:        []uint64{ixnArgs.MaxAmountX, ixnArgs.MaxAmountY, ixnArgs.MinLpOut},
			Warnings:    pc.warnings,
		}, nil
	}()
	return a.finish(tracer, OperationAddLiquidity, desc, err)
}

func (a *Assembler) WithdrawLiquidity(ctx context.Context, args *WithdrawLiquidityArgs) (*Description, error) {
	tracer := metrics.TraceMethodCall(ctx, assemblerMetricsStructName, "WithdrawLiquidity")
	defer tracer.End()

	desc, err := func() (*Description, error) {
		if args.LpAmount == 0 {
			return nil, errors.Wrap(ErrInvalidArgs, "lp amount must be positive")
		}

		slippage, err := a.slippage(args.SlippagePercent)
		if err != nil {
			return nil, err
		}

		pc, err := a.prepare(ctx, args.Payer, args.MintA, args.MintB, true)
		if err != nil {
			return nil, err
		}

		var minAmountX, minAmountY uint64
		if pc.state != nil {
			if args.LpAmount > pc.state.LpSupply {
				return nil, errors.Wrapf(ErrInvalidArgs, "lp amount %d exceeds supply %d", args.LpAmount, pc.state.LpSupply)
			}

			x, y := amm.EstimateWithdraw(&amm.EstimateWithdrawArgs{
				LpAmount: args.LpAmount,
				ReserveX: pc.state.ReserveX,
				ReserveY: pc.state.ReserveY,
				LpSupply: pc.state.LpSupply,
			})
			if minAmountX, err = withSlippage(x, slippage); err != nil {
				return nil, err
			}
			if minAmountY, err = withSlippage(y, slippage); err != nil {
				return nil, err
			}
		} else {
			a.log.WithField("pool", solana.EncodeBase58(pc.addresses.Pool)).Warn("pool state unknown, withdrawing without minimum amounts")
		}

		ixnArgs := &amm.WithdrawLiquidityInstructionArgs{
			LpAmount:   args.LpAmount,
			MinAmountX: minAmountX,
			MinAmountY: minAmountY,
		}

		return &Description{
			Operation:   OperationWithdrawLiquidity,
			Payer:       args.Payer,
			Instruction: amm.NewWithdrawLiquidityInstruction(a.registry.Program, pc.liquidityAccounts(), ixnArgs),
			Pool:        pc.addresses,
			Args:        []uint64{ixnArgs.LpAmount, ixnArgs.MinAmountX, ixnArgs.MinAmountY},
			Warnings:    pc.warnings,
		}, nil
	}()
	return a.finish(tracer, OperationWithdrawLiquidity, desc, err)
}

func (a *Assembler) Swap(ctx context.Context, args *SwapArgs) (*Description, error) {
	tracer := metrics.TraceMethodCall(ctx, assemblerMetricsStructName, "Swap")
	defer tracer.End()

	desc, err := func() (*Description, error) {
		slippage, err := a.slippage(args.SlippagePercent)
		if err != nil {
			return nil, err
		}

		pc, err := a.prepare(ctx, args.Payer, args.InputMint, args.OutputMint, true)
		if err != nil {
			return nil, err
		}

		inputIsX := pc.pair().IsX(args.InputMint)
		inputDecimals, outputDecimals := pc.decimalsX, pc.decimalsY
		payerInput, payerOutput := pc.payerX, pc.payerY
		if !inputIsX {
			inputDecimals, outputDecimals = outputDecimals, inputDecimals
			payerInput, payerOutput = payerOutput, payerInput
		}

		amountIn, err := scale(args.AmountIn, inputDecimals, amount.Round)
		if err != nil {
			return nil, err
		}

		var minAmountOut uint64
		switch {
		case args.MinAmountOut != nil:
			minAmountOut, err = amount.ToBaseUnits(*args.MinAmountOut, outputDecimals, amount.Floor)
			if err != nil {
				return nil, errors.Wrap(ErrInvalidArgs, err.Error())
			}
		case pc.state != nil:
			reserveIn, reserveOut := pc.state.Reserves(inputIsX)
			estimate := amm.EstimateSwap(&amm.EstimateSwapArgs{
				AmountIn:    amountIn,
				ReserveIn:   reserveIn,
				ReserveOut:  reserveOut,
				TradeFeeBps: a.conf.tradeFeeBps.Get(ctx),
			})
			if minAmountOut, err = withSlippage(estimate, slippage); err != nil {
				return nil, err
			}
		default:
			a.log.WithField("pool", solana.EncodeBase58(pc.addresses.Pool)).Warn("pool state unknown, swapping without a minimum output")
		}

		inputReserve, err := pc.addresses.Reserve(args.InputMint)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidArgs, err.Error())
		}
		outputReserve, err := pc.addresses.Reserve(args.OutputMint)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidArgs, err.Error())
		}

		ixnArgs := &amm.SwapInstructionArgs{
			AmountIn:     amountIn,
			MinAmountOut: minAmountOut,
		}

		ixn := amm.NewSwapInstruction(
			a.registry.Program,
			&amm.SwapInstructionAccounts{
				Payer:         pc.payer,
				AmmConfig:     pc.addresses.AmmConfig,
				Pool:          pc.addresses.Pool,
				InputMint:     args.InputMint,
				OutputMint:    args.OutputMint,
				InputReserve:  inputReserve,
				OutputReserve: outputReserve,
				PayerInput:    payerInput,
				PayerOutput:   payerOutput,
			},
			ixnArgs,
		)

		return &Description{
			Operation:   OperationSwap,
			Payer:       args.Payer,
			Instruction: ixn,
			Pool:        pc.addresses,
			Args:        []uint64{ixnArgs.AmountIn, ixnArgs.MinAmountOut},
			Warnings:    pc.warnings,
		}, nil
	}()
	return a.finish(tracer, OperationSwap, desc, err)
}

func (a *Assembler) finish(tracer *metrics.MethodTracer, op Operation, desc *Description, err error) (*Description, error) {
	log := a.log.WithField("operation", op)
	if err != nil {
		tracer.OnError(err)
		if errors.Is(err, ErrInvalidArgs) || errors.Is(err, ErrPoolNotFound) {
			log.WithError(err).Debug("rejected assembly request")
		} else {
			log.WithError(err).Warn("failure assembling instruction")
		}
		return nil, err
	}

	tracer.AddAttribute("pool", solana.EncodeBase58(desc.Pool.Pool))
	log.WithFields(logrus.Fields{
		"pool": solana.EncodeBase58(desc.Pool.Pool),
		"args": desc.Args,
	}).Debug("assembled instruction")
	return desc, nil
}

// prepare canonicalizes the pair, derives every address the operation needs
// and fetches decimals (and optionally the pool state) concurrently.
func (a *Assembler) prepare(ctx context.Context, payer, mintA, mintB ed25519.PublicKey, withState bool) (*poolContext, error) {
	if len(payer) != ed25519.PublicKeySize {
		return nil, errors.Wrap(ErrInvalidArgs, "invalid payer")
	}

	pair, err := amm.NewTokenPair(mintA, mintB)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgs, err.Error())
	}

	pc := &poolContext{payer: payer}

	pc.addresses, err = a.registry.GetPoolAddresses(pair)
	if err != nil {
		return nil, errors.Wrap(ErrAddressDerivation, err.Error())
	}

	for _, ata := range []struct {
		dst  *ed25519.PublicKey
		mint ed25519.PublicKey
	}{
		{&pc.payerX, pair.X},
		{&pc.payerY, pair.Y},
		{&pc.payerLp, pc.addresses.LpMint},
	} {
		*ata.dst, err = token.GetAssociatedAccount(payer, ata.mint)
		if err != nil {
			return nil, errors.Wrap(ErrAddressDerivation, err.Error())
		}
	}

	var (
		warnX, warnY error
		stateErr     error
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pc.decimalsX, warnX = a.fetchDecimals(groupCtx, pair.X)
		return nil
	})
	g.Go(func() error {
		pc.decimalsY, warnY = a.fetchDecimals(groupCtx, pair.Y)
		return nil
	})
	if withState && a.pools != nil {
		g.Go(func() error {
			pc.state, stateErr = a.pools.GetPoolState(groupCtx, pc.addresses)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, warning := range []error{warnX, warnY} {
		if warning != nil {
			pc.warnings = append(pc.warnings, warning)
		}
	}

	switch {
	case stateErr == nil:
	case errors.Is(stateErr, ErrPoolNotFound):
		return nil, errors.Wrapf(ErrPoolNotFound, "%s", pair)
	default:
		pc.state = nil
		a.log.WithError(stateErr).WithField("pool", solana.EncodeBase58(pc.addresses.Pool)).Warn("failure reading pool state")
	}

	return pc, nil
}

// fetchDecimals never fails. When the metadata provider cannot answer, the
// configured default is returned along with a warning.
func (a *Assembler) fetchDecimals(ctx context.Context, mint ed25519.PublicKey) (uint8, error) {
	ctx, cancel := context.WithTimeout(ctx, a.conf.metadataFetchTimeout.Get(ctx))
	defer cancel()

	decimals, err := a.metadata.GetDecimals(ctx, mint)
	if err == nil {
		return decimals, nil
	}

	fallback := tokenmeta.DefaultDecimals
	if configured := a.conf.defaultDecimals.Get(ctx); configured <= amount.MaxDecimals {
		fallback = uint8(configured)
	} else {
		a.log.WithField("configured", configured).Warn("default decimals out of range, using token default")
	}
	a.log.WithError(err).WithFields(logrus.Fields{
		"mint":     solana.EncodeBase58(mint),
		"decimals": fallback,
	}).Warn("failure fetching token decimals, using default")

	return fallback, errors.Wrapf(ErrMetadataUnavailable, "%s: %v", solana.EncodeBase58(mint), err)
}

func (a *Assembler) slippage(override *decimal.Decimal) (decimal.Decimal, error) {
	if override == nil {
		return decimal.NewFromFloat(a.conf.defaultSlippagePercent.Get(context.Background())), nil
	}
	if override.IsNegative() || override.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, errors.Wrapf(ErrInvalidArgs, "slippage %s outside [0, 100]", override)
	}
	return *override, nil
}

func scale(human decimal.Decimal, decimals uint8, mode amount.Rounding) (uint64, error) {
	raw, err := amount.ToBaseUnits(human, decimals, mode)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidArgs, err.Error())
	}
	if raw == 0 {
		return 0, errors.Wrapf(ErrInvalidArgs, "amount %s is zero at %d decimals", human, decimals)
	}
	return raw, nil
}

func withSlippage(estimate uint64, slippage decimal.Decimal) (uint64, error) {
	res, err := amm.ApplySlippage(estimate, slippage)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidArgs, err.Error())
	}
	return res, nil
}
