package cashflow

import (
	"testing"

	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func testData() domain.CashFlowData {
	return domain.CashFlowData{
		ProductSales:        []domain.ProductSale{{Name: "Widget", UnitsSold: d(100), PricePerUnit: d(10)}},
		ServiceIncome:       []domain.ServiceIncome{{Name: "Consulting", Rate: d(50), Volume: d(10)}},
		SubscriptionRevenue: []domain.SubscriptionRevenue{{Name: "Pro", MonthlyFee: d(20), Subscribers: d(100), ChurnRate: d(10)}},
		LicensingRoyalties:  []domain.LicensingRoyalty{{Name: "Patent", RoyaltyRate: d(0.5), ExpectedVolume: d(1000)}},
		OtherRevenue:        domain.OtherRevenue{Affiliate: d(100)},
		FixedExpenses:       domain.FixedExpenses{Rent: d(1000), Salaries: d(500)},
		VariableExpenses:    domain.VariableExpenses{COGS: d(300), Marketing: d(200)},
		OneTimeExpenses:     domain.OneTimeExpenses{StartupCosts: d(4000), Legal: d(1000)},
		FinancialObligations: domain.FinancialObligations{
			LoanPayments: d(200),
		},
	}
}

func TestProject_FirstMonths(t *testing.T) {
	p, err := Project(testData(), 3)
	require.NoError(t, err)
	require.Len(t, p, 3)

	m0 := p[0]
	assert.Equal(t, "January Year 1", m0.Month)
	assert.True(t, m0.Revenue.Equal(d(4100)), "got %s", m0.Revenue)
	assert.True(t, m0.OneTimeExpenses.Equal(d(5000)))
	assert.True(t, m0.Expenses.Equal(d(7200)), "got %s", m0.Expenses)
	assert.True(t, m0.NetCashFlow.Equal(d(-3100)))

	m1 := p[1]
	assert.True(t, m1.SubscriptionRevenue.Equal(d(1800)), "one month of churn")
	assert.True(t, m1.Expenses.Equal(d(2200)))
	assert.True(t, m1.CumulativeCashFlow.Equal(d(-1400)))

	m2 := p[2]
	assert.True(t, m2.SubscriptionRevenue.Equal(d(1620)), "churn compounds on the month index")
	assert.True(t, m2.CumulativeCashFlow.Equal(d(120)))
}

func TestProject_OneTimeExpensesOnlyInFirstMonth(t *testing.T) {
	data := testData()
	data.GrowthParameters.ExpenseGrowthRate = d(5)

	p, err := Project(data, DefaultMonths)
	require.NoError(t, err)
	require.Len(t, p, 60)

	oneTime := data.OneTimeExpenses.Total()
	assert.True(t, p[0].OneTimeExpenses.Equal(oneTime))
	recurring := p[0].FixedExpenses.Add(p[0].VariableExpenses).Add(p[0].FinancialObligations)
	assert.True(t, p[0].Expenses.Equal(recurring.Add(oneTime)))

	for _, m := range p[1:] {
		assert.True(t, m.OneTimeExpenses.IsZero(), "index %d", m.Index)
		assert.True(t, m.Expenses.Equal(m.FixedExpenses.Add(m.VariableExpenses).Add(m.FinancialObligations)), "index %d", m.Index)
	}
}

func TestProject_CumulativeIsRunningSum(t *testing.T) {
	p, err := Project(testData(), 24)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, m := range p {
		sum = sum.Add(m.NetCashFlow)
		assert.True(t, m.CumulativeCashFlow.Equal(sum), "index %d", m.Index)
		assert.True(t, m.NetCashFlow.Equal(m.Revenue.Sub(m.Expenses)))
	}
}

func TestProject_MonthLabels(t *testing.T) {
	p, err := Project(testData(), 14)
	require.NoError(t, err)
	assert.Equal(t, "December Year 1", p[11].Month)
	assert.Equal(t, "January Year 2", p[12].Month)

	data := testData()
	data.GrowthParameters.StartMonth = 11
	p, err = Project(data, 3)
	require.NoError(t, err)
	assert.Equal(t, "November Year 1", p[0].Month)
	assert.Equal(t, "January Year 1", p[2].Month, "years count projection years, not calendar years")
}

func TestProject_SeasonalityAndGrowth(t *testing.T) {
	data := domain.CashFlowData{
		ProductSales:  []domain.ProductSale{{Name: "Widget", UnitsSold: d(100), PricePerUnit: d(10)}},
		FixedExpenses: domain.FixedExpenses{Rent: d(100)},
		GrowthParameters: domain.GrowthParameters{
			RevenueGrowthRate: d(10),
			SeasonalFactors:   map[string]decimal.Decimal{"December": d(2)},
		},
	}

	p, err := Project(data, 13)
	require.NoError(t, err)

	assert.True(t, p[0].ProductRevenue.Equal(d(1000)))
	assert.Equal(t, "1048.81", p[6].ProductRevenue.StringFixed(2), "half a year of 10% growth")
	assert.True(t, p[11].ProductRevenue.GreaterThan(d(2000)), "December doubles volume")
	assert.Equal(t, "1100.00", p[12].ProductRevenue.StringFixed(2), "a full year of 10% growth")
	assert.True(t, p[12].Expenses.Equal(d(100)), "no expense growth configured")
}

func TestProject_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CashFlowData)
		kind   error
		field  string
	}{
		{"negative units", func(c *domain.CashFlowData) { c.ProductSales[0].UnitsSold = d(-1) }, domain.ErrInvalidInput, "productSales[0].unitsSold"},
		{"churn above 100", func(c *domain.CashFlowData) { c.SubscriptionRevenue[0].ChurnRate = d(101) }, domain.ErrInvalidInput, "subscriptionRevenue[0].churnRate"},
		{"negative rent", func(c *domain.CashFlowData) { c.FixedExpenses.Rent = d(-5000) }, domain.ErrInvalidInput, "fixedExpenses.rent"},
		{"negative rent offset by salaries", func(c *domain.CashFlowData) {
			c.FixedExpenses.Rent = d(-500)
			c.FixedExpenses.Salaries = d(1000)
		}, domain.ErrInvalidInput, "fixedExpenses.rent"},
		{"negative startup costs offset by legal", func(c *domain.CashFlowData) {
			c.OneTimeExpenses.StartupCosts = d(-2000)
			c.OneTimeExpenses.Legal = d(2500)
		}, domain.ErrInvalidInput, "oneTimeExpenses.startupCosts"},
		{"negative grants", func(c *domain.CashFlowData) { c.OtherRevenue.Grants = d(-1) }, domain.ErrInvalidInput, "otherRevenue.grants"},
		{"bad season key", func(c *domain.CashFlowData) {
			c.GrowthParameters.SeasonalFactors = map[string]decimal.Decimal{"Smarch": d(1)}
		}, domain.ErrInvalidInput, "seasonalFactors"},
		{"start month", func(c *domain.CashFlowData) { c.GrowthParameters.StartMonth = 13 }, domain.ErrInvalidInput, "startMonth"},
		{"collapsing growth", func(c *domain.CashFlowData) { c.GrowthParameters.RevenueGrowthRate = d(-100) }, domain.ErrArithmeticDegenerate, "revenueGrowthRate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testData()
			tt.mutate(&data)
			_, err := Project(data, 12)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var calcErr *domain.CalculationError
			require.ErrorAs(t, err, &calcErr)
			assert.Equal(t, tt.field, calcErr.Field)
		})
	}

	_, err := Project(testData(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummarize(t *testing.T) {
	p, err := Project(testData(), 3)
	require.NoError(t, err)

	s, err := Summarize(p)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Months)
	assert.True(t, s.TotalRevenue.Equal(d(11720)))
	assert.True(t, s.TotalExpenses.Equal(d(11600)))
	assert.True(t, s.NetCashFlow.Equal(d(120)))
	assert.Equal(t, "3866.67", s.AverageMonthlyExpenses.StringFixed(2))
	assert.Equal(t, "1.0103", s.RevenueToExpenseRatio.StringFixed(4))
	assert.Equal(t, "1.02", s.CashFlowMargin.StringFixed(2))
	assert.True(t, s.LowestCumulativeBalance.Equal(d(-3100)))
	assert.Equal(t, "March Year 1", s.BreakEvenMonth)
}

func TestSummarize_Degenerate(t *testing.T) {
	noRevenue := domain.CashFlowData{FixedExpenses: domain.FixedExpenses{Rent: d(100)}}
	p, err := Project(noRevenue, 12)
	require.NoError(t, err)
	_, err = Summarize(p)
	assert.ErrorIs(t, err, domain.ErrArithmeticDegenerate)

	noExpenses := domain.CashFlowData{OtherRevenue: domain.OtherRevenue{Grants: d(100)}}
	p, err = Project(noExpenses, 12)
	require.NoError(t, err)
	_, err = Summarize(p)
	assert.ErrorIs(t, err, domain.ErrArithmeticDegenerate)

	_, err = Summarize(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
