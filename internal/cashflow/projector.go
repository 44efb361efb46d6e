// Package cashflow projects monthly cash flow across revenue streams and
// expense groups with seasonality and annual growth.
//
// Subscription churn compounds on the month index from the start of the
// projection, not per subscriber cohort. That overstates decay for
// subscribers gained later and is accepted as an approximation.
package cashflow

import (
	"fmt"
	"math"
	"time"

	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultMonths is the projection horizon used when none is configured.
const DefaultMonths = 60

const (
	opProject   = "cash_flow_project"
	opSummarize = "cash_flow_summarize"
)

var one = decimal.NewFromInt(1)

// Validate rejects negative amounts, out-of-range rates and unknown season
// keys before any projection arithmetic runs.
func Validate(data domain.CashFlowData) error {
	var checks []error
	for i, p := range data.ProductSales {
		checks = append(checks,
			domain.RequireNonNegative(opProject, fmt.Sprintf("productSales[%d].unitsSold", i), p.UnitsSold),
			domain.RequireNonNegative(opProject, fmt.Sprintf("productSales[%d].pricePerUnit", i), p.PricePerUnit))
	}
	for i, s := range data.ServiceIncome {
		checks = append(checks,
			domain.RequireNonNegative(opProject, fmt.Sprintf("serviceIncome[%d].rate", i), s.Rate),
			domain.RequireNonNegative(opProject, fmt.Sprintf("serviceIncome[%d].volume", i), s.Volume))
	}
	for i, s := range data.SubscriptionRevenue {
		checks = append(checks,
			domain.RequireNonNegative(opProject, fmt.Sprintf("subscriptionRevenue[%d].monthlyFee", i), s.MonthlyFee),
			domain.RequireNonNegative(opProject, fmt.Sprintf("subscriptionRevenue[%d].subscribers", i), s.Subscribers),
			domain.RequirePercent(opProject, fmt.Sprintf("subscriptionRevenue[%d].churnRate", i), s.ChurnRate))
	}
	for i, l := range data.LicensingRoyalties {
		checks = append(checks,
			domain.RequireNonNegative(opProject, fmt.Sprintf("licensingRoyalties[%d].royaltyRate", i), l.RoyaltyRate),
			domain.RequireNonNegative(opProject, fmt.Sprintf("licensingRoyalties[%d].expectedVolume", i), l.ExpectedVolume))
	}
	// Line items are checked one by one so a negative amount cannot hide
	// behind a positive total.
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"otherRevenue.affiliate", data.OtherRevenue.Affiliate},
		{"otherRevenue.advertising", data.OtherRevenue.Advertising},
		{"otherRevenue.grants", data.OtherRevenue.Grants},
		{"fixedExpenses.rent", data.FixedExpenses.Rent},
		{"fixedExpenses.salaries", data.FixedExpenses.Salaries},
		{"fixedExpenses.insurance", data.FixedExpenses.Insurance},
		{"fixedExpenses.utilities", data.FixedExpenses.Utilities},
		{"fixedExpenses.subscriptions", data.FixedExpenses.Subscriptions},
		{"variableExpenses.cogs", data.VariableExpenses.COGS},
		{"variableExpenses.marketing", data.VariableExpenses.Marketing},
		{"variableExpenses.commissions", data.VariableExpenses.Commissions},
		{"variableExpenses.supplies", data.VariableExpenses.Supplies},
		{"oneTimeExpenses.startupCosts", data.OneTimeExpenses.StartupCosts},
		{"oneTimeExpenses.capitalExpenditures", data.OneTimeExpenses.CapitalExpenditures},
		{"oneTimeExpenses.legal", data.OneTimeExpenses.Legal},
		{"financialObligations.loanPayments", data.FinancialObligations.LoanPayments},
		{"financialObligations.leasePayments", data.FinancialObligations.LeasePayments},
		{"financialObligations.taxPayments", data.FinancialObligations.TaxPayments},
	} {
		checks = append(checks, domain.RequireNonNegative(opProject, f.name, f.value))
	}
	if err := domain.FirstError(checks...); err != nil {
		return err
	}

	g := data.GrowthParameters
	// A rate at or below -100% would raise a non-positive base to a fractional power.
	minus100 := domain.Hundred().Neg()
	if !g.RevenueGrowthRate.GreaterThan(minus100) {
		return domain.ArithmeticDegenerate(opProject, "revenueGrowthRate", "must be greater than -100, got %s", g.RevenueGrowthRate.String())
	}
	if !g.ExpenseGrowthRate.GreaterThan(minus100) {
		return domain.ArithmeticDegenerate(opProject, "expenseGrowthRate", "must be greater than -100, got %s", g.ExpenseGrowthRate.String())
	}
	if g.StartMonth < 0 || g.StartMonth > 12 {
		return domain.InvalidInput(opProject, "startMonth", "must be between 1 and 12, got %d", g.StartMonth)
	}
	for name, factor := range g.SeasonalFactors {
		if _, ok := monthByName[name]; !ok {
			return domain.InvalidInput(opProject, "seasonalFactors", "unknown month %q", name)
		}
		if err := domain.RequireNonNegative(opProject, "seasonalFactors."+name, factor); err != nil {
			return err
		}
	}
	return nil
}

// Project returns one record per month, index 0 first. One-time expenses
// land only in index 0.
func Project(data domain.CashFlowData, months int) ([]domain.CashFlowProjection, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	if months < 1 {
		return nil, domain.InvalidInput(opProject, "months", "must be at least 1, got %d", months)
	}

	g := data.GrowthParameters
	start := time.January
	if g.StartMonth != 0 {
		start = time.Month(g.StartMonth)
	}

	projections := make([]domain.CashFlowProjection, 0, months)
	cumulative := decimal.Zero

	for i := 0; i < months; i++ {
		calendar := time.Month((int(start)-1+i)%12 + 1)
		season := seasonalFactor(g.SeasonalFactors, calendar)
		revenueGrowth := annualFactor(g.RevenueGrowthRate, i)
		expenseGrowth := annualFactor(g.ExpenseGrowthRate, i)

		rec := domain.CashFlowProjection{
			Month: fmt.Sprintf("%s Year %d", calendar, i/12+1),
			Index: i,
		}

		for _, p := range data.ProductSales {
			rec.ProductRevenue = rec.ProductRevenue.Add(p.UnitsSold.Mul(p.PricePerUnit).Mul(season).Mul(revenueGrowth))
		}
		for _, s := range data.ServiceIncome {
			rec.ServiceRevenue = rec.ServiceRevenue.Add(s.Rate.Mul(s.Volume).Mul(revenueGrowth))
		}
		for _, s := range data.SubscriptionRevenue {
			retention := one.Sub(s.ChurnRate.Div(domain.Hundred())).Pow(decimal.NewFromInt(int64(i)))
			rec.SubscriptionRevenue = rec.SubscriptionRevenue.Add(s.MonthlyFee.Mul(s.Subscribers).Mul(retention).Mul(revenueGrowth))
		}
		for _, l := range data.LicensingRoyalties {
			rec.LicensingRevenue = rec.LicensingRevenue.Add(l.RoyaltyRate.Mul(l.ExpectedVolume).Mul(revenueGrowth))
		}
		rec.OtherRevenue = data.OtherRevenue.Total().Mul(revenueGrowth)

		rec.FixedExpenses = data.FixedExpenses.Total().Mul(expenseGrowth)
		rec.VariableExpenses = data.VariableExpenses.Total().Mul(expenseGrowth)
		rec.FinancialObligations = data.FinancialObligations.Total().Mul(expenseGrowth)
		if i == 0 {
			rec.OneTimeExpenses = data.OneTimeExpenses.Total()
		}

		rec.Revenue = rec.ProductRevenue.Add(rec.ServiceRevenue).Add(rec.SubscriptionRevenue).
			Add(rec.LicensingRevenue).Add(rec.OtherRevenue)
		rec.Expenses = rec.FixedExpenses.Add(rec.VariableExpenses).Add(rec.FinancialObligations).
			Add(rec.OneTimeExpenses)
		rec.NetCashFlow = rec.Revenue.Sub(rec.Expenses)
		cumulative = cumulative.Add(rec.NetCashFlow)
		rec.CumulativeCashFlow = cumulative

		projections = append(projections, rec)
	}
	return projections, nil
}

// Summarize derives totals and ratios over a complete projection.
func Summarize(projections []domain.CashFlowProjection) (domain.CashFlowSummary, error) {
	if len(projections) == 0 {
		return domain.CashFlowSummary{}, domain.InvalidInput(opSummarize, "projections", "no months to summarize")
	}

	s := domain.CashFlowSummary{
		Months:                  len(projections),
		LowestCumulativeBalance: projections[0].CumulativeCashFlow,
	}
	wasNegative := false
	for _, p := range projections {
		s.TotalRevenue = s.TotalRevenue.Add(p.Revenue)
		s.TotalExpenses = s.TotalExpenses.Add(p.Expenses)
		s.LowestCumulativeBalance = decimal.Min(s.LowestCumulativeBalance, p.CumulativeCashFlow)

		if p.CumulativeCashFlow.IsNegative() {
			wasNegative = true
		} else if wasNegative && s.BreakEvenMonth == "" {
			s.BreakEvenMonth = p.Month
		}
	}
	if s.TotalRevenue.IsZero() {
		return domain.CashFlowSummary{}, domain.ArithmeticDegenerate(opSummarize, "totalRevenue", "cash flow margin is undefined without revenue")
	}
	if s.TotalExpenses.IsZero() {
		return domain.CashFlowSummary{}, domain.ArithmeticDegenerate(opSummarize, "totalExpenses", "revenue to expense ratio is undefined without expenses")
	}

	n := decimal.NewFromInt(int64(s.Months))
	s.NetCashFlow = s.TotalRevenue.Sub(s.TotalExpenses)
	s.AverageMonthlyRevenue = s.TotalRevenue.Div(n)
	s.AverageMonthlyExpenses = s.TotalExpenses.Div(n)
	s.RevenueToExpenseRatio = s.TotalRevenue.Div(s.TotalExpenses)
	s.CashFlowMargin = s.NetCashFlow.Div(s.TotalRevenue).Mul(domain.Hundred())
	return s, nil
}

var monthByName = func() map[string]time.Month {
	m := make(map[string]time.Month, 12)
	for month := time.January; month <= time.December; month++ {
		m[month.String()] = month
	}
	return m
}()

func seasonalFactor(factors map[string]decimal.Decimal, month time.Month) decimal.Decimal {
	if f, ok := factors[month.String()]; ok {
		return f
	}
	return one
}

// annualFactor is (1+rate/100)^(i/12). Month 0 and a zero rate are exactly 1.
func annualFactor(rate decimal.Decimal, i int) decimal.Decimal {
	if i == 0 || rate.IsZero() {
		return one
	}
	if i%12 == 0 {
		return one.Add(rate.Div(domain.Hundred())).Pow(decimal.NewFromInt(int64(i / 12)))
	}
	base, _ := one.Add(rate.Div(domain.Hundred())).Float64()
	return decimal.NewFromFloat(math.Pow(base, float64(i)/12))
}
