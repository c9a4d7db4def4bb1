// Package money holds the cent-level decimal helpers shared by the ledger.
// The ledger is single-currency, so amounts are plain decimal.Decimal values.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tolerance is the absolute difference below which two amounts are treated
// as equal.
var Tolerance = decimal.New(1, -2)

var (
	hundred = decimal.NewFromInt(100)
	// MaxScore and MinScore bound a client's trust score.
	MaxScore = decimal.NewFromInt(10)
	MinScore = decimal.Zero
)

// Parse converts a string amount into a decimal, rejecting empty input.
func Parse(amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Zero, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: invalid amount %q: %w", amount, err)
	}
	return d, nil
}

// WorkingScale is the number of decimal places computed amounts are kept
// at. Without it repeated multiplication grows the scale on every step.
const WorkingScale = 10

// RoundWorking rounds half away from zero to WorkingScale decimal places.
func RoundWorking(d decimal.Decimal) decimal.Decimal {
	return d.Round(WorkingScale)
}

// NearlyEqual reports whether |a-b| < Tolerance.
func NearlyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// NearlyZero reports whether d is within Tolerance of zero (either side).
func NearlyZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(Tolerance)
}

// AtLeast reports whether a >= b once the cent tolerance is allowed for.
func AtLeast(a, b decimal.Decimal) bool {
	return a.GreaterThanOrEqual(b.Sub(Tolerance))
}

// FloorZero returns d, or zero when d is negative.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// ClampScore bounds a trust score to [MinScore, MaxScore].
func ClampScore(d decimal.Decimal) decimal.Decimal {
	return Clamp(d, MinScore, MaxScore)
}

// Percent returns base * pct / 100.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// RateFraction converts a percentage rate (10 = 10%) into a fraction (0.10).
func RateFraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}
