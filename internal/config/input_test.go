package config

import (
	"testing"

	"github.com/rgehrsitz/bizcalc/internal/breakeven"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	in, err := NewInputParser().LoadFromFile("testdata/business.yaml")
	require.NoError(t, err)

	req, err := in.BreakEven.Request()
	require.NoError(t, err)
	assert.Equal(t, breakeven.ModeStandard, req.Mode)
	assert.True(t, req.Units.Equal(decimal.NewFromInt(1000)))

	cost, market, err := in.Pricing.Domain()
	require.NoError(t, err)
	assert.True(t, cost.FixedCosts.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, int64(1000), market.MarketSize)
	assert.True(t, market.PriceElasticity.Present())
	assert.Equal(t, 5, in.Pricing.NumScenarios)
	priceRange, err := in.Pricing.PriceRange()
	require.NoError(t, err)
	assert.Nil(t, priceRange, "range is derived when no bounds are given")

	assert.True(t, in.Scenarios.Derive())
	assert.True(t, in.Scenarios.Base[domain.MetricRevenue].Equal(decimal.NewFromInt(1000)))
	assert.True(t, in.Scenarios.Adjustments[domain.MetricRevenue].OptimisticMultiplier.Equal(decimal.NewFromFloat(1.3)))
	assert.True(t, in.Scenarios.Probabilities[domain.ScenarioPessimistic].Equal(decimal.NewFromInt(15)))

	sub, err := in.Subscription.Domain()
	require.NoError(t, err)
	assert.Equal(t, int64(100), sub.InitialCustomerBase)

	cf, err := in.CashFlow.Domain()
	require.NoError(t, err)
	assert.Equal(t, 24, in.CashFlow.Months)
	require.Len(t, cf.ProductSales, 1)
	assert.Equal(t, "Widget", cf.ProductSales[0].Name)
	assert.True(t, cf.OneTimeExpenses.Total().Equal(decimal.NewFromInt(5000)))
	assert.True(t, cf.GrowthParameters.SeasonalFactors["December"].Equal(decimal.NewFromFloat(1.5)))

	st, err := in.Ratios.Domain()
	require.NoError(t, err)
	assert.True(t, st.InterestExpense.Equal(decimal.NewFromInt(5000)))

	val, err := in.Valuation.Domain()
	require.NoError(t, err)
	assert.Equal(t, 2, val.ProjectionYears)

	assert.Equal(t, []string{"break_even", "pricing", "scenarios", "subscription", "cash_flow", "ratios", "valuation"}, in.Sections())
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := NewInputParser().LoadFromFile("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("pricing: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestParse_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"pricing market size", `
pricing:
  fixed_costs: 10000
  variable_cost_per_unit: 20
  target_profit_percentage: 20
  competitor_price: 40
`, "pricing.market_size"},
		{"pricing max without min", `
pricing:
  fixed_costs: 10000
  variable_cost_per_unit: 20
  target_profit_percentage: 20
  competitor_price: 40
  market_size: 1000
  max_price: 60
`, "pricing.min_price"},
		{"find_price needs units", `
break_even:
  mode: find_price
  fixed_costs: 10000
  variable_cost_per_unit: 20
`, "break_even.units"},
		{"subscription retention", `
subscription:
  monthly_subscription_price: 50
  customer_acquisition_cost: 100
  monthly_platform_costs: 1000
  monthly_per_client_costs: 5
  initial_customer_base: 100
  monthly_growth_rate: 10
`, "subscription.customer_retention_rate"},
		{"cash flow product price", `
cash_flow:
  product_sales:
    - name: Widget
      units_sold: 10
  fixed_expenses: {rent: 1, salaries: 1, insurance: 1, utilities: 1}
  variable_expenses: {cogs: 1, marketing: 1}
  growth_parameters: {revenue_growth_rate: 0, expense_growth_rate: 0}
`, "cash_flow.product_sales[0].price_per_unit"},
		{"dcf assumptions", `
valuation:
  free_cash_flow: 100
  growth_rate: 5
  terminal_growth_rate: 2
  projection_years: 5
`, "valuation.discount_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInputParser().Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			var calcErr *domain.CalculationError
			require.ErrorAs(t, err, &calcErr)
			assert.Equal(t, tt.field, calcErr.Field)
		})
	}
}

func TestParse_NullElasticityIsAbsent(t *testing.T) {
	in, err := NewInputParser().Parse([]byte(`
pricing:
  fixed_costs: 10000
  variable_cost_per_unit: 20
  target_profit_percentage: 20
  competitor_price: 40
  market_size: 1000
  price_elasticity: null
`))
	require.NoError(t, err)
	_, market, err := in.Pricing.Domain()
	require.NoError(t, err)
	assert.False(t, market.PriceElasticity.Present())
}

func TestParse_PricingPriceRange(t *testing.T) {
	in, err := NewInputParser().Parse([]byte(`
pricing:
  fixed_costs: 10000
  variable_cost_per_unit: 20
  target_profit_percentage: 0
  competitor_price: 40
  market_size: 1000
  min_price: 60
  max_price: 45
`))
	require.NoError(t, err, "bound ordering is checked when the sweep runs")

	cost, _, err := in.Pricing.Domain()
	require.NoError(t, err)
	assert.True(t, cost.TargetProfitPercentage.IsZero())

	priceRange, err := in.Pricing.PriceRange()
	require.NoError(t, err)
	require.NotNil(t, priceRange)
	assert.True(t, priceRange.Min.Equal(decimal.NewFromInt(60)))
	assert.True(t, priceRange.Max.Equal(decimal.NewFromInt(45)))
}

func TestParse_ScenarioValidation(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("scenarios:\n  auto_derive: false\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewInputParser().Parse([]byte("scenarios:\n  base:\n    headcount: 4\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in, err := NewInputParser().Parse([]byte("scenarios:\n  auto_derive: false\n  base:\n    revenue: 10\n"))
	require.NoError(t, err)
	assert.False(t, in.Scenarios.Derive())
}

func TestParse_UnknownBreakEvenMode(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("break_even:\n  mode: sideways\n"))
	var calcErr *domain.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.Equal(t, "break_even.mode", calcErr.Field)
}
