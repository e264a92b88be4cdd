package amm

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const feeBpsDenominator = 10_000

// EstimateInitialLiquidity is the LP minted when seeding an empty pool:
// floor(sqrt(amountX * amountY)).
func EstimateInitialLiquidity(amountX, amountY uint64) uint64 {
	product := new(big.Int).Mul(
		new(big.Int).SetUint64(amountX),
		new(big.Int).SetUint64(amountY),
	)
	return clampUint64(new(big.Int).Sqrt(product))
}

type EstimateLiquidityArgs struct {
	AmountX  uint64
	AmountY  uint64
	ReserveX uint64
	ReserveY uint64
	LpSupply uint64
}

// EstimateLiquidity is the LP minted for a deposit into an existing pool,
// the smaller of the two proportional shares. Empty pools fall back to
// EstimateInitialLiquidity.
func EstimateLiquidity(args *EstimateLiquidityArgs) uint64 {
	if args.ReserveX == 0 || args.ReserveY == 0 || args.LpSupply == 0 {
		return EstimateInitialLiquidity(args.AmountX, args.AmountY)
	}

	byX := mulDiv(args.AmountX, args.LpSupply, args.ReserveX)
	byY := mulDiv(args.AmountY, args.LpSupply, args.ReserveY)
	if byX < byY {
		return byX
	}
	return byY
}

type EstimateWithdrawArgs struct {
	LpAmount uint64
	ReserveX uint64
	ReserveY uint64
	LpSupply uint64
}

// EstimateWithdraw returns the X and Y amounts released by burning LpAmount.
func EstimateWithdraw(args *EstimateWithdrawArgs) (uint64, uint64) {
	if args.LpSupply == 0 {
		return 0, 0
	}
	return mulDiv(args.LpAmount, args.ReserveX, args.LpSupply),
		mulDiv(args.LpAmount, args.ReserveY, args.LpSupply)
}

type EstimateSwapArgs struct {
	AmountIn    uint64
	ReserveIn   uint64
	ReserveOut  uint64
	TradeFeeBps uint64
}

// EstimateSwap returns the constant product output for AmountIn after the
// trade fee is deducted from the input.
func EstimateSwap(args *EstimateSwapArgs) uint64 {
	if args.ReserveIn == 0 || args.ReserveOut == 0 || args.TradeFeeBps >= feeBpsDenominator {
		return 0
	}

	in := new(big.Int).SetUint64(args.AmountIn)
	in.Mul(in, big.NewInt(int64(feeBpsDenominator-args.TradeFeeBps)))
	in.Quo(in, big.NewInt(feeBpsDenominator))

	numerator := new(big.Int).Mul(in, new(big.Int).SetUint64(args.ReserveOut))
	denominator := new(big.Int).Add(in, new(big.Int).SetUint64(args.ReserveIn))
	return clampUint64(numerator.Quo(numerator, denominator))
}

// ApplySlippage subtracts floor(amount * slippagePercent / 100) from amount.
func ApplySlippage(amount uint64, slippagePercent decimal.Decimal) (uint64, error) {
	if slippagePercent.IsNegative() || slippagePercent.GreaterThan(decimal.NewFromInt(100)) {
		return 0, ErrInvalidSlippage
	}

	total := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
	tolerance := total.Mul(slippagePercent).Shift(-2).Floor()
	return clampUint64(total.Sub(tolerance).BigInt()), nil
}

func mulDiv(a, b, c uint64) uint64 {
	res := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return clampUint64(res.Quo(res, new(big.Int).SetUint64(c)))
}

func clampUint64(v *big.Int) uint64 {
	if v.Sign() < 0 {
		return 0
	}
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}
