package rate

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultTolerancePercent is the largest accepted deviation of an override from the simulated rate.
const DefaultTolerancePercent = 2.0

var hundred = decimal.NewFromInt(100)

// Effective is the rate a conversion actually uses.
type Effective struct {
	Rate           float64
	OverrideActive bool
}

// Resolver applies the override tolerance policy.
type Resolver struct {
	tolerance decimal.Decimal
}

// NewResolver creates a resolver accepting overrides within tolerancePercent of the simulated rate.
// A non-positive tolerance selects DefaultTolerancePercent.
func NewResolver(tolerancePercent float64) Resolver {
	if tolerancePercent <= 0 || !isFinite(tolerancePercent) {
		tolerancePercent = DefaultTolerancePercent
	}
	return Resolver{tolerance: decimal.NewFromFloat(tolerancePercent)}
}

// Tolerance returns the accepted deviation in percent.
func (r Resolver) Tolerance() float64 {
	return r.tolerance.InexactFloat64()
}

// Resolve returns the override when it is present, positive and within tolerance
// of simRate, and simRate otherwise. A non-positive simRate always rejects the override.
func (r Resolver) Resolve(override *float64, simRate float64) Effective {
	fallback := Effective{Rate: simRate}
	if override == nil || !isFinite(*override) || *override <= 0 {
		return fallback
	}

	diff, ok := PercentDiff(*override, simRate)
	if !ok || diff.GreaterThan(r.tolerance) {
		return fallback
	}
	return Effective{Rate: *override, OverrideActive: true}
}

// Resolve applies the default 2% tolerance.
func Resolve(override *float64, simRate float64) Effective {
	return NewResolver(DefaultTolerancePercent).Resolve(override, simRate)
}

// PercentDiff returns |candidate - reference| / reference * 100.
// ok is false when reference is not a positive finite number.
func PercentDiff(candidate, reference float64) (diff decimal.Decimal, ok bool) {
	if !isFinite(candidate) || !isFinite(reference) || reference <= 0 {
		return decimal.Zero, false
	}
	c := decimal.NewFromFloat(candidate)
	ref := decimal.NewFromFloat(reference)
	return c.Sub(ref).Abs().Mul(hundred).Div(ref), true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
