package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ScenarioID names one of the three planning cases.
type ScenarioID string

const (
	ScenarioBase        ScenarioID = "base"
	ScenarioOptimistic  ScenarioID = "optimistic"
	ScenarioPessimistic ScenarioID = "pessimistic"
)

// ScenarioIDs lists the planning cases in display order.
var ScenarioIDs = []ScenarioID{ScenarioBase, ScenarioOptimistic, ScenarioPessimistic}

// ParseScenarioID validates a scenario identifier.
func ParseScenarioID(s string) (ScenarioID, error) {
	for _, id := range ScenarioIDs {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown scenario %q (valid: base, optimistic, pessimistic)", s)
}

// MetricField identifies a field of ScenarioMetrics.
type MetricField string

const (
	MetricRevenue           MetricField = "revenue"
	MetricCosts             MetricField = "costs"
	MetricMarketShare       MetricField = "market_share"
	MetricCustomerGrowth    MetricField = "customer_growth"
	MetricBaselineClients   MetricField = "baseline_clients"
	MetricOperatingExpenses MetricField = "operating_expenses"
	MetricProfitMargin      MetricField = "profit_margin"
)

// MetricFields lists the user-editable metric fields.
var MetricFields = []MetricField{
	MetricRevenue,
	MetricCosts,
	MetricMarketShare,
	MetricCustomerGrowth,
	MetricBaselineClients,
	MetricOperatingExpenses,
	MetricProfitMargin,
}

// ParseMetricField validates a metric field name.
func ParseMetricField(s string) (MetricField, error) {
	for _, f := range MetricFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown metric field %q", s)
}

// ScenarioMetrics is the bundle of business metrics for one scenario.
// ExpectedRevenue and ExpectedProfit are the probability-weighted
// contributions of the scenario and are derived, not edited.
type ScenarioMetrics struct {
	Revenue           decimal.Decimal `json:"revenue" yaml:"revenue"`
	Costs             decimal.Decimal `json:"costs" yaml:"costs"`
	MarketShare       decimal.Decimal `json:"marketShare" yaml:"market_share"`
	CustomerGrowth    decimal.Decimal `json:"customerGrowth" yaml:"customer_growth"`
	BaselineClients   decimal.Decimal `json:"baselineClients" yaml:"baseline_clients"`
	OperatingExpenses decimal.Decimal `json:"operatingExpenses" yaml:"operating_expenses"`
	ProfitMargin      decimal.Decimal `json:"profitMargin" yaml:"profit_margin"`
	ExpectedRevenue   decimal.Decimal `json:"expectedRevenue" yaml:"-"`
	ExpectedProfit    decimal.Decimal `json:"expectedProfit" yaml:"-"`
}

// Get returns the value of a metric field.
func (m ScenarioMetrics) Get(f MetricField) decimal.Decimal {
	switch f {
	case MetricRevenue:
		return m.Revenue
	case MetricCosts:
		return m.Costs
	case MetricMarketShare:
		return m.MarketShare
	case MetricCustomerGrowth:
		return m.CustomerGrowth
	case MetricBaselineClients:
		return m.BaselineClients
	case MetricOperatingExpenses:
		return m.OperatingExpenses
	case MetricProfitMargin:
		return m.ProfitMargin
	}
	return decimal.Zero
}

// Set assigns a metric field. Unknown fields are ignored.
func (m *ScenarioMetrics) Set(f MetricField, v decimal.Decimal) {
	switch f {
	case MetricRevenue:
		m.Revenue = v
	case MetricCosts:
		m.Costs = v
	case MetricMarketShare:
		m.MarketShare = v
	case MetricCustomerGrowth:
		m.CustomerGrowth = v
	case MetricBaselineClients:
		m.BaselineClients = v
	case MetricOperatingExpenses:
		m.OperatingExpenses = v
	case MetricProfitMargin:
		m.ProfitMargin = v
	}
}

// Profit is revenue less costs and operating expenses.
func (m ScenarioMetrics) Profit() decimal.Decimal {
	return m.Revenue.Sub(m.Costs).Sub(m.OperatingExpenses)
}

// Scenario is a named planning case with its probability (0-100).
type Scenario struct {
	ID          ScenarioID      `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Metrics     ScenarioMetrics `json:"metrics"`
	Probability decimal.Decimal `json:"probability"`
}

// ScenarioAdjustment defines how a base edit propagates to the other cases.
type ScenarioAdjustment struct {
	OptimisticMultiplier  decimal.Decimal `json:"optimisticMultiplier" yaml:"optimistic"`
	PessimisticMultiplier decimal.Decimal `json:"pessimisticMultiplier" yaml:"pessimistic"`
}

// Range is an inclusive min/max pair.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// ExpectedOutcome is the probability-weighted view across the three cases.
type ExpectedOutcome struct {
	ExpectedRevenue     decimal.Decimal `json:"expectedRevenue"`
	ExpectedProfit      decimal.Decimal `json:"expectedProfit"`
	MarketShareRange    Range           `json:"marketShareRange"`
	CustomerGrowthRange Range           `json:"customerGrowthRange"`
	TotalProbability    decimal.Decimal `json:"totalProbability"`
}
