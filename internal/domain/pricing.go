package domain

import (
	"github.com/shopspring/decimal"
)

// CostStructure describes the cost side of a single-product business.
type CostStructure struct {
	FixedCosts             decimal.Decimal `json:"fixedCosts" yaml:"fixed_costs"`
	VariableCostPerUnit    decimal.Decimal `json:"variableCostPerUnit" yaml:"variable_cost_per_unit"`
	TargetProfitPercentage decimal.Decimal `json:"targetProfitPercentage" yaml:"target_profit_percentage"` // 0-100
}

// Validate checks the documented bounds of a cost structure.
func (c CostStructure) Validate(op string) error {
	return FirstError(
		RequireNonNegative(op, "fixedCosts", c.FixedCosts),
		RequireNonNegative(op, "variableCostPerUnit", c.VariableCostPerUnit),
		RequirePercent(op, "targetProfitPercentage", c.TargetProfitPercentage),
	)
}

// Elasticity is an optional price-elasticity coefficient in [0, 1].
// An absent elasticity means demand is treated as price insensitive.
type Elasticity struct {
	value   decimal.Decimal
	present bool
}

// ElasticityOf returns a present elasticity coefficient.
func ElasticityOf(v decimal.Decimal) Elasticity {
	return Elasticity{value: v, present: true}
}

// NoElasticity returns an absent elasticity.
func NoElasticity() Elasticity {
	return Elasticity{}
}

// Present reports whether a coefficient was supplied.
func (e Elasticity) Present() bool { return e.present }

// Coefficient returns the coefficient, or zero when absent.
func (e Elasticity) Coefficient() decimal.Decimal {
	if !e.present {
		return decimal.Zero
	}
	return e.value
}

// Validate rejects coefficients outside [0, 1].
func (e Elasticity) Validate(op string) error {
	if !e.present {
		return nil
	}
	if e.value.IsNegative() || e.value.GreaterThan(decimal.NewFromInt(1)) {
		return InvalidInput(op, "priceElasticity", "must be between 0 and 1, got %s", e.value.String())
	}
	return nil
}

// MarshalJSON renders an absent elasticity as null.
func (e Elasticity) MarshalJSON() ([]byte, error) {
	if !e.present {
		return []byte("null"), nil
	}
	return e.value.MarshalJSON()
}

// MarketData describes the demand side.
type MarketData struct {
	CompetitorPrice decimal.Decimal `json:"competitorPrice"`
	MarketSize      int64           `json:"marketSize"` // total addressable units
	PriceElasticity Elasticity      `json:"priceElasticity"`
}

// PriceRange bounds a pricing sweep.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// PricingScenario is a derived snapshot at one candidate price.
type PricingScenario struct {
	Price             decimal.Decimal `json:"price"`
	Volume            int64           `json:"volume"`
	Revenue           decimal.Decimal `json:"revenue"`
	VariableCosts     decimal.Decimal `json:"variableCosts"`
	TotalCosts        decimal.Decimal `json:"totalCosts"`
	Profit            decimal.Decimal `json:"profit"`
	TargetProfit      decimal.Decimal `json:"targetProfit"`
	ProfitMargin      decimal.Decimal `json:"profitMargin"` // percent of revenue
	MeetsTargetProfit bool            `json:"meetsTargetProfit"`
}

// BreakEvenAnalysis is the summary used to bound a pricing sweep.
type BreakEvenAnalysis struct {
	Point             decimal.Decimal `json:"point"`
	OptimalPrice      decimal.Decimal `json:"optimalPrice"`
	OptimalPriceRange PriceRange      `json:"optimalPriceRange"`
	MarketSensitivity decimal.Decimal `json:"marketSensitivity"`
}
