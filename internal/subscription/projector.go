// Package subscription projects monthly revenue and profit of a subscription
// business from its unit economics.
package subscription

import (
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultMonths is the projection horizon used when none is configured.
const DefaultMonths = 12

const (
	opProject   = "subscription_project"
	opSummarize = "subscription_summarize"
)

// Validate checks that every field is present in its domain. Prices and
// costs may be zero but not negative; rates are percentages.
func Validate(m domain.SubscriptionMetrics) error {
	if err := domain.FirstError(
		domain.RequireNonNegative(opProject, "monthlySubscriptionPrice", m.MonthlySubscriptionPrice),
		domain.RequireNonNegative(opProject, "customerAcquisitionCost", m.CustomerAcquisitionCost),
		domain.RequirePercent(opProject, "customerRetentionRate", m.CustomerRetentionRate),
		domain.RequireNonNegative(opProject, "monthlyPlatformCosts", m.MonthlyPlatformCosts),
		domain.RequireNonNegative(opProject, "monthlyPerClientCosts", m.MonthlyPerClientCosts),
		domain.RequirePercent(opProject, "monthlyGrowthRate", m.MonthlyGrowthRate),
	); err != nil {
		return err
	}
	if m.InitialCustomerBase < 0 {
		return domain.InvalidInput(opProject, "initialCustomerBase", "cannot be negative, got %d", m.InitialCustomerBase)
	}
	return nil
}

// Project returns one record per month, month 1 first.
//
// Acquisition cost is charged on every potential new customer while the base
// only grows by the retained share of them. Low-retention inputs therefore
// pay full acquisition cost for customers that never show up in the count.
func Project(m domain.SubscriptionMetrics, months int) ([]domain.RevenueProjection, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	if months < 1 {
		return nil, domain.InvalidInput(opProject, "months", "must be at least 1, got %d", months)
	}

	growth := m.MonthlyGrowthRate.Div(domain.Hundred())
	retention := m.CustomerRetentionRate.Div(domain.Hundred())

	projections := make([]domain.RevenueProjection, 0, months)
	customers := m.InitialCustomerBase
	cumulativeRevenue := decimal.Zero
	cumulativeProfit := decimal.Zero

	for month := 1; month <= months; month++ {
		base := decimal.NewFromInt(customers)
		potential := roundCount(base.Mul(growth))
		added := roundCount(base.Mul(growth).Mul(retention))

		acquisition := m.CustomerAcquisitionCost.Mul(decimal.NewFromInt(potential))
		customers += added

		count := decimal.NewFromInt(customers)
		revenue := count.Mul(m.MonthlySubscriptionPrice)
		operating := m.MonthlyPlatformCosts.Add(count.Mul(m.MonthlyPerClientCosts))
		profit := revenue.Sub(acquisition).Sub(operating)

		cumulativeRevenue = cumulativeRevenue.Add(revenue)
		cumulativeProfit = cumulativeProfit.Add(profit)

		projections = append(projections, domain.RevenueProjection{
			Month:                 month,
			Customers:             customers,
			NewCustomers:          added,
			PotentialNewCustomers: potential,
			MonthlyRevenue:        revenue,
			CumulativeRevenue:     cumulativeRevenue,
			OperatingCosts:        operating,
			AcquisitionCosts:      acquisition,
			NetProfit:             profit,
			CumulativeProfit:      cumulativeProfit,
		})
	}
	return projections, nil
}

// Summarize aggregates a projection produced by Project.
func Summarize(projections []domain.RevenueProjection) (domain.SubscriptionSummary, error) {
	if len(projections) == 0 {
		return domain.SubscriptionSummary{}, domain.InvalidInput(opSummarize, "projections", "no months to summarize")
	}

	var s domain.SubscriptionSummary
	s.Months = len(projections)
	for _, p := range projections {
		s.TotalRevenue = s.TotalRevenue.Add(p.MonthlyRevenue)
		s.TotalProfit = s.TotalProfit.Add(p.NetProfit)
		s.TotalAcquisitionCosts = s.TotalAcquisitionCosts.Add(p.AcquisitionCosts)
		if s.PaybackMonth == 0 && p.CumulativeProfit.IsPositive() {
			s.PaybackMonth = p.Month
		}
	}
	s.FinalCustomers = projections[len(projections)-1].Customers
	s.AverageMonthlyRevenue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.Months)))
	return s, nil
}

// roundCount rounds a non-negative customer count half away from zero.
func roundCount(v decimal.Decimal) int64 {
	return v.Round(0).IntPart()
}
