package breakeven

import (
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	opBreakEvenPrice = "break_even_price"
	opOptimalPrice   = "optimal_price"
	opSolve          = "break_even"
	opAnalyze        = "break_even_analysis"
)

var (
	one           = decimal.NewFromInt(1)
	rangeHeadroom = decimal.NewFromFloat(1.25)
)

// BreakEvenPrice returns the unit price that covers all costs when exactly
// targetVolume units are sold.
func BreakEvenPrice(fixedCosts, variableCostPerUnit, targetVolume decimal.Decimal) (decimal.Decimal, error) {
	if err := domain.FirstError(
		domain.RequireNonNegative(opBreakEvenPrice, "fixedCosts", fixedCosts),
		domain.RequireNonNegative(opBreakEvenPrice, "variableCostPerUnit", variableCostPerUnit),
	); err != nil {
		return decimal.Zero, err
	}
	if !targetVolume.IsPositive() {
		return decimal.Zero, domain.InvalidInput(opBreakEvenPrice, "targetVolume",
			"must be greater than zero to spread fixed costs, got %s", targetVolume.String())
	}
	return variableCostPerUnit.Add(fixedCosts.Div(targetVolume)), nil
}

// OptimalPrice marks up a break-even price so that the target percentage of
// the resulting price is profit. A zero target returns the break-even price.
func OptimalPrice(breakEvenPrice, targetProfitPercentage decimal.Decimal) (decimal.Decimal, error) {
	if !breakEvenPrice.IsPositive() {
		return decimal.Zero, domain.InvalidInput(opOptimalPrice, "breakEvenPrice",
			"must be greater than zero, got %s", breakEvenPrice.String())
	}
	if targetProfitPercentage.IsNegative() {
		return decimal.Zero, domain.InvalidInput(opOptimalPrice, "targetProfitPercentage",
			"cannot be negative, got %s", targetProfitPercentage.String())
	}
	if targetProfitPercentage.IsZero() {
		return breakEvenPrice, nil
	}
	if targetProfitPercentage.GreaterThanOrEqual(domain.Hundred()) {
		err := domain.ArithmeticDegenerate(opOptimalPrice, "targetProfitPercentage",
			"%s%% leaves no room for costs", targetProfitPercentage.String())
		err.Cause = ErrInvalidTargetMargin
		return decimal.Zero, err
	}
	divisor := one.Sub(targetProfitPercentage.Div(domain.Hundred()))
	return breakEvenPrice.Div(divisor), nil
}

// Solve runs the contribution-margin equation for the requested mode. All
// modes share contributionMargin so their semantics cannot drift apart.
func Solve(req Request) (Result, error) {
	if err := domain.FirstError(
		domain.RequireNonNegative(opSolve, "fixedCosts", req.FixedCosts),
		domain.RequireNonNegative(opSolve, "variableCostPerUnit", req.VariableCostPerUnit),
	); err != nil {
		return Result{}, err
	}

	var price, units decimal.Decimal
	switch req.Mode {
	case ModeStandard, ModeFindUnits:
		if err := domain.RequirePositive(opSolve, "pricePerUnit", req.PricePerUnit); err != nil {
			return Result{}, err
		}
		cm, err := contributionMargin(req.PricePerUnit, req.VariableCostPerUnit)
		if err != nil {
			return Result{}, err
		}
		price = req.PricePerUnit
		units = req.FixedCosts.Div(cm)

	case ModeFindPrice:
		p, err := BreakEvenPrice(req.FixedCosts, req.VariableCostPerUnit, req.Units)
		if err != nil {
			return Result{}, err
		}
		price = p
		units = req.Units

	case ModeProfitTarget:
		if err := domain.RequirePositive(opSolve, "pricePerUnit", req.PricePerUnit); err != nil {
			return Result{}, err
		}
		u, err := profitTargetUnits(req)
		if err != nil {
			return Result{}, err
		}
		price = req.PricePerUnit
		units = u

	default:
		return Result{}, domain.InvalidInput(opSolve, "mode", "unsupported break-even mode: %s", req.Mode)
	}

	result := position(req.Mode, price, req.VariableCostPerUnit, req.FixedCosts, units)

	if req.Mode == ModeStandard && req.Units.IsPositive() {
		expected := position(req.Mode, price, req.VariableCostPerUnit, req.FixedCosts, req.Units)
		result.ExpectedUnits = req.Units
		result.ExpectedProfit = expected.Profit
		result.MarginOfSafety = req.Units.Sub(units).Div(req.Units).Mul(domain.Hundred())
	}

	return result, nil
}

// Analyze derives the break-even analysis that bounds a pricing sweep: the
// break-even price when the whole market is served, the price that yields
// the target margin, and a range reaching past the higher of that price and
// the competitor's.
func Analyze(cost domain.CostStructure, market domain.MarketData) (domain.BreakEvenAnalysis, error) {
	if err := cost.Validate(opAnalyze); err != nil {
		return domain.BreakEvenAnalysis{}, err
	}
	if err := market.PriceElasticity.Validate(opAnalyze); err != nil {
		return domain.BreakEvenAnalysis{}, err
	}
	if err := domain.RequireNonNegative(opAnalyze, "competitorPrice", market.CompetitorPrice); err != nil {
		return domain.BreakEvenAnalysis{}, err
	}
	if market.MarketSize <= 0 {
		return domain.BreakEvenAnalysis{}, domain.InvalidInput(opAnalyze, "marketSize",
			"must be greater than zero, got %d", market.MarketSize)
	}

	point, err := BreakEvenPrice(cost.FixedCosts, cost.VariableCostPerUnit, decimal.NewFromInt(market.MarketSize))
	if err != nil {
		return domain.BreakEvenAnalysis{}, err
	}
	optimal, err := OptimalPrice(point, cost.TargetProfitPercentage)
	if err != nil {
		return domain.BreakEvenAnalysis{}, err
	}

	upper := decimal.Max(optimal, market.CompetitorPrice).Mul(rangeHeadroom)
	return domain.BreakEvenAnalysis{
		Point:        point,
		OptimalPrice: optimal,
		OptimalPriceRange: domain.PriceRange{
			Min: point,
			Max: upper,
		},
		MarketSensitivity: market.PriceElasticity.Coefficient(),
	}, nil
}

func contributionMargin(price, variableCost decimal.Decimal) (decimal.Decimal, error) {
	cm := price.Sub(variableCost)
	if !cm.IsPositive() {
		return decimal.Zero, domain.ArithmeticDegenerate(opSolve, "pricePerUnit",
			"price %s does not exceed variable cost %s, break-even is unreachable",
			price.String(), variableCost.String())
	}
	return cm, nil
}

func profitTargetUnits(req Request) (decimal.Decimal, error) {
	if err := domain.RequireNonNegative(opSolve, "targetProfit", req.TargetProfit); err != nil {
		return decimal.Zero, err
	}
	if !req.TargetIsPercentage {
		cm, err := contributionMargin(req.PricePerUnit, req.VariableCostPerUnit)
		if err != nil {
			return decimal.Zero, err
		}
		return req.FixedCosts.Add(req.TargetProfit).Div(cm), nil
	}

	if req.TargetProfit.GreaterThanOrEqual(domain.Hundred()) {
		err := domain.ArithmeticDegenerate(opSolve, "targetProfit",
			"%s%% of revenue leaves no room for costs", req.TargetProfit.String())
		err.Cause = ErrInvalidTargetMargin
		return decimal.Zero, err
	}
	// Each unit must cover its variable cost and its share of the target margin.
	retained := req.PricePerUnit.Mul(one.Sub(req.TargetProfit.Div(domain.Hundred())))
	cm, err := contributionMargin(retained, req.VariableCostPerUnit)
	if err != nil {
		return decimal.Zero, err
	}
	return req.FixedCosts.Div(cm), nil
}

func position(mode Mode, price, variableCost, fixedCosts, units decimal.Decimal) Result {
	cm := price.Sub(variableCost)
	revenue := price.Mul(units)
	totalCosts := fixedCosts.Add(variableCost.Mul(units))
	ratio := decimal.Zero
	if price.IsPositive() {
		ratio = cm.Div(price).Mul(domain.Hundred())
	}
	return Result{
		Mode:                    mode,
		Units:                   units,
		UnitsRoundedUp:          units.Ceil().IntPart(),
		Price:                   price,
		ContributionMargin:      cm,
		ContributionMarginRatio: ratio,
		Revenue:                 revenue,
		TotalCosts:              totalCosts,
		Profit:                  revenue.Sub(totalCosts),
	}
}
