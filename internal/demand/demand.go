// Package demand estimates sales volume at a candidate price.
//
// The curve is deliberately simple: a one-sided linear clamp. Prices at or
// below the reference price keep the whole market; above it, volume falls
// linearly with the relative price gap scaled by elasticity, and the loss is
// capped between 10% (elasticity 0) and 90% (elasticity 1) of the market.
// It is not a true constant-elasticity demand model.
package demand

import (
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

const op = "expected_volume"

var (
	reductionFloor = decimal.NewFromFloat(0.1)
	reductionSpan  = decimal.NewFromFloat(0.8)
	one            = decimal.NewFromInt(1)
)

// MaxVolumeReduction is the largest share of the market a price increase can
// lose for the given elasticity.
func MaxVolumeReduction(elasticity domain.Elasticity) decimal.Decimal {
	return reductionFloor.Add(reductionSpan.Mul(elasticity.Coefficient()))
}

// ExpectedVolume returns the whole units expected to sell at price.
func ExpectedVolume(price decimal.Decimal, marketSize int64, referencePrice decimal.Decimal, elasticity domain.Elasticity) (int64, error) {
	if err := domain.FirstError(
		domain.RequirePositive(op, "price", price),
		domain.RequirePositive(op, "referencePrice", referencePrice),
		elasticity.Validate(op),
	); err != nil {
		return 0, err
	}
	if marketSize <= 0 {
		return 0, domain.InvalidInput(op, "marketSize", "must be greater than zero, got %d", marketSize)
	}

	var coefficient decimal.Decimal
	if elasticity.Present() {
		coefficient = elasticity.Coefficient()
	} else {
		// Absent elasticity: price insensitive, only the 10% cap applies.
		coefficient = decimal.Zero
	}

	priceDiff := price.Sub(referencePrice).Div(referencePrice)
	reduction := clamp(priceDiff.Mul(coefficient), decimal.Zero, MaxVolumeReduction(elasticity))

	volume := decimal.NewFromInt(marketSize).Mul(one.Sub(reduction)).Floor()
	return volume.IntPart(), nil
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(v, lo), hi)
}
