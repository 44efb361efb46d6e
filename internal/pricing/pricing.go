// Package pricing sweeps a price range and derives the economics of each
// candidate price from the demand estimator.
package pricing

import (
	"sort"

	"github.com/rgehrsitz/bizcalc/internal/breakeven"
	"github.com/rgehrsitz/bizcalc/internal/demand"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	opGenerate = "generate_scenarios"
	opAnalyze  = "pricing_analysis"
)

// Analysis is the complete pricing-strategy result.
type Analysis struct {
	BreakEven domain.BreakEvenAnalysis `json:"breakEven"`
	Scenarios []domain.PricingScenario `json:"scenarios"` // ascending price
	Optimal   domain.PricingScenario   `json:"optimal"`
}

// Validate checks every generator precondition before any arithmetic runs.
func Validate(cost domain.CostStructure, market domain.MarketData, priceRange domain.PriceRange, count int) error {
	if err := cost.Validate(opGenerate); err != nil {
		return err
	}
	if err := domain.FirstError(
		domain.RequirePositive(opGenerate, "variableCostPerUnit", cost.VariableCostPerUnit),
		domain.RequirePositive(opGenerate, "competitorPrice", market.CompetitorPrice),
		market.PriceElasticity.Validate(opGenerate),
	); err != nil {
		return err
	}
	if market.MarketSize <= 0 {
		return domain.InvalidInput(opGenerate, "marketSize", "must be greater than zero, got %d", market.MarketSize)
	}
	if err := domain.FirstError(
		domain.RequirePositive(opGenerate, "minPrice", priceRange.Min),
		domain.RequirePositive(opGenerate, "maxPrice", priceRange.Max),
	); err != nil {
		return err
	}
	if count < 2 {
		return domain.InvalidRange(opGenerate, "numScenarios", "at least 2 scenarios are required, got %d", count)
	}
	if priceRange.Max.LessThanOrEqual(priceRange.Min) {
		return domain.InvalidRange(opGenerate, "maxPrice",
			"max price %s must exceed min price %s", priceRange.Max.String(), priceRange.Min.String())
	}
	return nil
}

// GenerateScenarios steps linearly from the range minimum to its maximum in
// count prices and evaluates each one. The result is in ascending price.
func GenerateScenarios(cost domain.CostStructure, market domain.MarketData, priceRange domain.PriceRange, count int) ([]domain.PricingScenario, error) {
	if err := Validate(cost, market, priceRange, count); err != nil {
		return nil, err
	}

	step := priceRange.Max.Sub(priceRange.Min).Div(decimal.NewFromInt(int64(count - 1)))
	scenarios := make([]domain.PricingScenario, 0, count)
	for i := 0; i < count; i++ {
		price := priceRange.Min.Add(step.Mul(decimal.NewFromInt(int64(i))))
		if i == count-1 {
			price = priceRange.Max
		}
		s, err := Evaluate(cost, market, price)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Evaluate derives a single scenario at price.
func Evaluate(cost domain.CostStructure, market domain.MarketData, price decimal.Decimal) (domain.PricingScenario, error) {
	volume, err := demand.ExpectedVolume(price, market.MarketSize, market.CompetitorPrice, market.PriceElasticity)
	if err != nil {
		return domain.PricingScenario{}, err
	}

	units := decimal.NewFromInt(volume)
	revenue := price.Mul(units)
	variableCosts := units.Mul(cost.VariableCostPerUnit)
	totalCosts := cost.FixedCosts.Add(variableCosts)
	profit := revenue.Sub(totalCosts)
	targetProfit := revenue.Mul(cost.TargetProfitPercentage).Div(domain.Hundred())

	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = profit.Div(revenue).Mul(domain.Hundred())
	}

	return domain.PricingScenario{
		Price:             price,
		Volume:            volume,
		Revenue:           revenue,
		VariableCosts:     variableCosts,
		TotalCosts:        totalCosts,
		Profit:            profit,
		TargetProfit:      targetProfit,
		ProfitMargin:      margin,
		MeetsTargetProfit: profit.GreaterThanOrEqual(targetProfit),
	}, nil
}

// SelectOptimal reduces left to right: a scenario meeting its target beats
// one that does not, and among equals the higher profit wins. ok is false
// for an empty slice.
func SelectOptimal(scenarios []domain.PricingScenario) (best domain.PricingScenario, ok bool) {
	if len(scenarios) == 0 {
		return domain.PricingScenario{}, false
	}
	best = scenarios[0]
	for _, s := range scenarios[1:] {
		if better(s, best) {
			best = s
		}
	}
	return best, true
}

func better(candidate, current domain.PricingScenario) bool {
	if candidate.MeetsTargetProfit != current.MeetsTargetProfit {
		return candidate.MeetsTargetProfit
	}
	return candidate.Profit.GreaterThan(current.Profit)
}

// SortByProfit returns a copy ordered by descending profit. Ties keep their
// price order.
func SortByProfit(scenarios []domain.PricingScenario) []domain.PricingScenario {
	sorted := append([]domain.PricingScenario(nil), scenarios...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Profit.GreaterThan(sorted[j].Profit)
	})
	return sorted
}

// Analyze runs the break-even analysis, sweeps its optimal price range and
// picks the optimal scenario. A non-nil priceRange replaces the derived
// range and is swept as given.
func Analyze(cost domain.CostStructure, market domain.MarketData, priceRange *domain.PriceRange, count int) (*Analysis, error) {
	be, err := breakeven.Analyze(cost, market)
	if err != nil {
		return nil, err
	}
	if priceRange != nil {
		be.OptimalPriceRange = *priceRange
	}
	scenarios, err := GenerateScenarios(cost, market, be.OptimalPriceRange, count)
	if err != nil {
		return nil, err
	}
	optimal, ok := SelectOptimal(scenarios)
	if !ok {
		return nil, domain.InvalidRange(opAnalyze, "numScenarios", "no scenarios generated")
	}
	return &Analysis{
		BreakEven: be,
		Scenarios: scenarios,
		Optimal:   optimal,
	}, nil
}
