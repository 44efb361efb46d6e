package output

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/rgehrsitz/bizcalc/internal/calculation"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/rgehrsitz/bizcalc/internal/narrative"
	"github.com/shopspring/decimal"
)

// CSVHeader is the column layout of CSVFormatter output. Every value is one
// row, so results of different shapes share a single table.
var CSVHeader = []string{"Calculator", "Series", "Period", "Metric", "Value"}

// CSVFormatter formats a report as long-format CSV
type CSVFormatter struct{}

func (cf *CSVFormatter) Name() string { return "csv" }

// Format generates CSV output with one row per reported value
func (cf *CSVFormatter) Format(report *calculation.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to format")
	}
	return writeCSV(CSVHeader, csvRows(report))
}

type rowWriter struct {
	rows [][]string
	calc narrative.Calculator
}

func (w *rowWriter) dec(series, period, metric string, v decimal.Decimal) {
	w.rows = append(w.rows, []string{string(w.calc), series, period, metric, v.StringFixed(2)})
}

func (w *rowWriter) text(series, period, metric, v string) {
	w.rows = append(w.rows, []string{string(w.calc), series, period, metric, v})
}

func csvRows(report *calculation.Report) [][]string {
	w := &rowWriter{}

	if r := report.BreakEven; r != nil {
		w.calc = narrative.CalculatorBreakEven
		w.text("", "", "mode", string(r.Mode))
		w.dec("", "", "units", r.Units)
		w.text("", "", "units_rounded_up", strconv.FormatInt(r.UnitsRoundedUp, 10))
		w.dec("", "", "price", r.Price)
		w.dec("", "", "contribution_margin", r.ContributionMargin)
		w.dec("", "", "contribution_margin_ratio", r.ContributionMarginRatio)
		w.dec("", "", "revenue", r.Revenue)
		w.dec("", "", "total_costs", r.TotalCosts)
		w.dec("", "", "profit", r.Profit)
	}

	if a := report.Pricing; a != nil {
		w.calc = narrative.CalculatorPricing
		w.dec("break_even", "", "point", a.BreakEven.Point)
		w.dec("break_even", "", "optimal_price", a.BreakEven.OptimalPrice)
		w.dec("break_even", "", "range_min", a.BreakEven.OptimalPriceRange.Min)
		w.dec("break_even", "", "range_max", a.BreakEven.OptimalPriceRange.Max)
		w.dec("break_even", "", "market_sensitivity", a.BreakEven.MarketSensitivity)
		for i, s := range a.Scenarios {
			period := strconv.Itoa(i + 1)
			w.dec("scenario", period, "price", s.Price)
			w.text("scenario", period, "volume", strconv.FormatInt(s.Volume, 10))
			w.dec("scenario", period, "revenue", s.Revenue)
			w.dec("scenario", period, "total_costs", s.TotalCosts)
			w.dec("scenario", period, "profit", s.Profit)
			w.dec("scenario", period, "profit_margin", s.ProfitMargin)
			w.text("scenario", period, "meets_target_profit", strconv.FormatBool(s.MeetsTargetProfit))
		}
	}

	if r := report.Scenarios; r != nil {
		w.calc = narrative.CalculatorScenarios
		for _, s := range r.Scenarios {
			for _, f := range domain.MetricFields {
				w.dec(string(s.ID), "", string(f), s.Metrics.Get(f))
			}
			w.dec(string(s.ID), "", "probability", s.Probability)
		}
		w.dec("expected", "", "revenue", r.Expected.ExpectedRevenue)
		w.dec("expected", "", "profit", r.Expected.ExpectedProfit)
		w.dec("expected", "", "total_probability", r.Expected.TotalProbability)
	}

	if r := report.Subscription; r != nil {
		w.calc = narrative.CalculatorSubscription
		for _, p := range r.Projections {
			period := strconv.Itoa(p.Month)
			w.text("month", period, "customers", strconv.FormatInt(p.Customers, 10))
			w.text("month", period, "new_customers", strconv.FormatInt(p.NewCustomers, 10))
			w.dec("month", period, "revenue", p.MonthlyRevenue)
			w.dec("month", period, "operating_costs", p.OperatingCosts)
			w.dec("month", period, "acquisition_costs", p.AcquisitionCosts)
			w.dec("month", period, "net_profit", p.NetProfit)
			w.dec("month", period, "cumulative_profit", p.CumulativeProfit)
		}
		w.dec("summary", "", "total_revenue", r.Summary.TotalRevenue)
		w.dec("summary", "", "total_profit", r.Summary.TotalProfit)
		w.text("summary", "", "payback_month", strconv.Itoa(r.Summary.PaybackMonth))
	}

	if r := report.CashFlow; r != nil {
		w.calc = narrative.CalculatorCashFlow
		for _, p := range r.Projections {
			w.dec("month", p.Month, "revenue", p.Revenue)
			w.dec("month", p.Month, "expenses", p.Expenses)
			w.dec("month", p.Month, "net_cash_flow", p.NetCashFlow)
			w.dec("month", p.Month, "cumulative_cash_flow", p.CumulativeCashFlow)
		}
		if s := r.Summary; s != nil {
			w.dec("summary", "", "total_revenue", s.TotalRevenue)
			w.dec("summary", "", "total_expenses", s.TotalExpenses)
			w.dec("summary", "", "net_cash_flow", s.NetCashFlow)
			w.dec("summary", "", "cash_flow_margin", s.CashFlowMargin)
			w.text("summary", "", "break_even_month", s.BreakEvenMonth)
		}
	}

	if r := report.Ratios; r != nil {
		w.calc = narrative.CalculatorRatios
		w.dec("", "", "current_ratio", r.CurrentRatio)
		w.dec("", "", "quick_ratio", r.QuickRatio)
		w.dec("", "", "debt_to_equity", r.DebtToEquity)
		w.dec("", "", "debt_ratio", r.DebtRatio)
		w.dec("", "", "gross_margin", r.GrossMargin)
		w.dec("", "", "operating_margin", r.OperatingMargin)
		w.dec("", "", "net_margin", r.NetMargin)
		w.dec("", "", "return_on_assets", r.ReturnOnAssets)
		w.dec("", "", "return_on_equity", r.ReturnOnEquity)
		if r.InterestCoverage != nil {
			w.dec("", "", "interest_coverage", *r.InterestCoverage)
		}
	}

	if r := report.Valuation; r != nil {
		w.calc = narrative.CalculatorValuation
		for _, m := range r.Methods() {
			w.dec("method", "", string(m), r.Values[m])
		}
		if r.DCF != nil {
			for _, y := range r.DCF.Years {
				w.dec("dcf", strconv.Itoa(y.Year), "present_value", y.PresentValue)
			}
			w.dec("dcf", "", "terminal_value", r.DCF.TerminalValue)
		}
		w.dec("", "", "enterprise_value", r.EnterpriseValue)
		w.dec("", "", "equity_value", r.EquityValue)
	}

	return w.rows
}

// Headers of the record exports. Each export writes one row per record in
// projection order.
var (
	CashFlowHeader = []string{
		"Month", "Index", "Revenue", "Expenses", "NetCashFlow", "CumulativeCashFlow",
		"ProductRevenue", "ServiceRevenue", "SubscriptionRevenue", "LicensingRevenue", "OtherRevenue",
		"FixedExpenses", "VariableExpenses", "FinancialObligations", "OneTimeExpenses",
	}
	SubscriptionHeader = []string{
		"Month", "Customers", "NewCustomers", "PotentialNewCustomers", "MonthlyRevenue", "CumulativeRevenue",
		"OperatingCosts", "AcquisitionCosts", "NetProfit", "CumulativeProfit",
	}
	PricingHeader = []string{
		"Price", "Volume", "Revenue", "VariableCosts", "TotalCosts", "Profit", "TargetProfit", "ProfitMargin", "MeetsTargetProfit",
	}
)

// CashFlowCSV exports a cash-flow projection
func CashFlowCSV(projections []domain.CashFlowProjection) (string, error) {
	rows := make([][]string, 0, len(projections))
	for _, p := range projections {
		rows = append(rows, []string{
			p.Month,
			strconv.Itoa(p.Index),
			p.Revenue.StringFixed(2),
			p.Expenses.StringFixed(2),
			p.NetCashFlow.StringFixed(2),
			p.CumulativeCashFlow.StringFixed(2),
			p.ProductRevenue.StringFixed(2),
			p.ServiceRevenue.StringFixed(2),
			p.SubscriptionRevenue.StringFixed(2),
			p.LicensingRevenue.StringFixed(2),
			p.OtherRevenue.StringFixed(2),
			p.FixedExpenses.StringFixed(2),
			p.VariableExpenses.StringFixed(2),
			p.FinancialObligations.StringFixed(2),
			p.OneTimeExpenses.StringFixed(2),
		})
	}
	return writeCSV(CashFlowHeader, rows)
}

// SubscriptionCSV exports a subscription projection
func SubscriptionCSV(projections []domain.RevenueProjection) (string, error) {
	rows := make([][]string, 0, len(projections))
	for _, p := range projections {
		rows = append(rows, []string{
			strconv.Itoa(p.Month),
			strconv.FormatInt(p.Customers, 10),
			strconv.FormatInt(p.NewCustomers, 10),
			strconv.FormatInt(p.PotentialNewCustomers, 10),
			p.MonthlyRevenue.StringFixed(2),
			p.CumulativeRevenue.StringFixed(2),
			p.OperatingCosts.StringFixed(2),
			p.AcquisitionCosts.StringFixed(2),
			p.NetProfit.StringFixed(2),
			p.CumulativeProfit.StringFixed(2),
		})
	}
	return writeCSV(SubscriptionHeader, rows)
}

// PricingCSV exports a pricing sweep
func PricingCSV(scenarios []domain.PricingScenario) (string, error) {
	rows := make([][]string, 0, len(scenarios))
	for _, s := range scenarios {
		rows = append(rows, []string{
			s.Price.StringFixed(2),
			strconv.FormatInt(s.Volume, 10),
			s.Revenue.StringFixed(2),
			s.VariableCosts.StringFixed(2),
			s.TotalCosts.StringFixed(2),
			s.Profit.StringFixed(2),
			s.TargetProfit.StringFixed(2),
			s.ProfitMargin.StringFixed(2),
			strconv.FormatBool(s.MeetsTargetProfit),
		})
	}
	return writeCSV(PricingHeader, rows)
}

func writeCSV(header []string, rows [][]string) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	if err := writer.Write(header); err != nil {
		return "", err
	}
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}
