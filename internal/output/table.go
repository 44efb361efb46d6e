package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/bizcalc/internal/breakeven"
	"github.com/rgehrsitz/bizcalc/internal/calculation"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/rgehrsitz/bizcalc/internal/narrative"
	"github.com/rgehrsitz/bizcalc/internal/pricing"
	"github.com/rgehrsitz/bizcalc/internal/ratios"
	"github.com/rgehrsitz/bizcalc/internal/valuation"
	"github.com/shopspring/decimal"
)

const ruleWidth = 80

// topPrices is how many prices the pricing ranking lists
const topPrices = 3

// section is one titled block of plain-text report output
type section struct {
	title string
	body  string
}

// TableFormatter formats a report as plain console tables
type TableFormatter struct{}

func (tf *TableFormatter) Name() string { return "table" }

// Format renders every present section separated by rules
func (tf *TableFormatter) Format(report *calculation.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to format")
	}
	var sb strings.Builder
	for i, s := range sections(report) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.title + "\n")
		sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
		sb.WriteString(s.body)
	}
	return sb.String(), nil
}

func sections(report *calculation.Report) []section {
	var out []section
	add := func(title string, body string) {
		out = append(out, section{title: title, body: body})
	}
	if report.BreakEven != nil {
		add("BREAK-EVEN ANALYSIS", breakEvenBody(report.BreakEven))
	}
	if report.Pricing != nil {
		add("PRICING STRATEGY", pricingBody(report.Pricing))
	}
	if report.Scenarios != nil {
		add("SCENARIO PLAN", scenariosBody(report.Scenarios))
	}
	if report.Subscription != nil {
		add("SUBSCRIPTION PROJECTION", subscriptionBody(report.Subscription))
	}
	if report.CashFlow != nil {
		add("CASH FLOW PROJECTION", cashFlowBody(report.CashFlow))
	}
	if report.Ratios != nil {
		add("FINANCIAL RATIOS", ratiosBody(report.Ratios))
	}
	if report.Valuation != nil {
		add("BUSINESS VALUATION", valuationBody(report.Valuation))
	}
	if report.Failed() {
		add("ERRORS", errorsBody(report.Errors))
	}
	return out
}

func breakEvenBody(r *breakeven.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:                      %s\n", r.Mode))
	sb.WriteString(fmt.Sprintf("Break-even Units:          %s (%d rounded up)\n", r.Units.StringFixed(2), r.UnitsRoundedUp))
	sb.WriteString(fmt.Sprintf("Price per Unit:            %s\n", FormatCurrency(r.Price)))
	sb.WriteString(fmt.Sprintf("Contribution Margin:       %s (%s)\n", FormatCurrency(r.ContributionMargin), FormatPercentage(r.ContributionMarginRatio)))
	sb.WriteString(fmt.Sprintf("Revenue at Break-even:     %s\n", FormatCurrency(r.Revenue)))
	sb.WriteString(fmt.Sprintf("Total Costs:               %s\n", FormatCurrency(r.TotalCosts)))
	sb.WriteString(fmt.Sprintf("Profit:                    %s\n", FormatCurrency(r.Profit)))
	if r.Mode == breakeven.ModeStandard && r.ExpectedUnits.IsPositive() {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Expected Units:            %s\n", r.ExpectedUnits.StringFixed(0)))
		sb.WriteString(fmt.Sprintf("Expected Profit:           %s\n", FormatCurrency(r.ExpectedProfit)))
		sb.WriteString(fmt.Sprintf("Margin of Safety:          %s\n", FormatPercentage(r.MarginOfSafety)))
	}
	return sb.String()
}

func pricingBody(a *pricing.Analysis) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Break-even Point:          %s units\n", a.BreakEven.Point.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Optimal Price:             %s\n", FormatCurrency(a.BreakEven.OptimalPrice)))
	sb.WriteString(fmt.Sprintf("Price Range:               %s - %s\n",
		FormatCurrency(a.BreakEven.OptimalPriceRange.Min), FormatCurrency(a.BreakEven.OptimalPriceRange.Max)))
	sb.WriteString(fmt.Sprintf("Market Sensitivity:        %s\n", a.BreakEven.MarketSensitivity.StringFixed(2)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%-10s %8s %10s %10s %10s %8s %6s\n", "Price", "Volume", "Revenue", "Costs", "Profit", "Margin", "Target"))
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, s := range a.Scenarios {
		marker := " "
		if s.Price.Equal(a.Optimal.Price) {
			marker = "*"
		}
		met := "no"
		if s.MeetsTargetProfit {
			met = "yes"
		}
		sb.WriteString(fmt.Sprintf("%-10s %8d %10s %10s %10s %8s %6s%s\n",
			s.Price.StringFixed(2),
			s.Volume,
			formatShort(s.Revenue),
			formatShort(s.TotalCosts),
			formatShort(s.Profit),
			FormatPercentage(s.ProfitMargin),
			met,
			marker,
		))
	}
	sb.WriteString(fmt.Sprintf("\n* optimal: %s at %s\n", FormatCurrency(a.Optimal.Profit), FormatCurrency(a.Optimal.Price)))

	ranked := pricing.SortByProfit(a.Scenarios)
	if len(ranked) > topPrices {
		ranked = ranked[:topPrices]
	}
	sb.WriteString("\nTop Prices by Profit:\n")
	for i, s := range ranked {
		sb.WriteString(fmt.Sprintf("  %d. %-10s %s\n", i+1, FormatCurrency(s.Price), FormatCurrency(s.Profit)))
	}
	return sb.String()
}

func scenariosBody(r *calculation.ScenarioReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s", "Metric"))
	for _, s := range r.Scenarios {
		sb.WriteString(fmt.Sprintf(" %18s", truncate(s.Name, 18)))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	row := func(label string, value func(domain.Scenario) string) {
		sb.WriteString(fmt.Sprintf("%-20s", label))
		for _, s := range r.Scenarios {
			sb.WriteString(fmt.Sprintf(" %18s", value(s)))
		}
		sb.WriteString("\n")
	}
	money := func(f domain.MetricField) func(domain.Scenario) string {
		return func(s domain.Scenario) string { return FormatCurrency(s.Metrics.Get(f)) }
	}
	pct := func(f domain.MetricField) func(domain.Scenario) string {
		return func(s domain.Scenario) string { return FormatPercentage(s.Metrics.Get(f)) }
	}
	row("Revenue", money(domain.MetricRevenue))
	row("Costs", money(domain.MetricCosts))
	row("Operating Expenses", money(domain.MetricOperatingExpenses))
	row("Market Share", pct(domain.MetricMarketShare))
	row("Customer Growth", pct(domain.MetricCustomerGrowth))
	row("Baseline Clients", func(s domain.Scenario) string { return s.Metrics.BaselineClients.StringFixed(0) })
	row("Profit Margin", pct(domain.MetricProfitMargin))
	row("Probability", func(s domain.Scenario) string { return FormatPercentage(s.Probability) })
	row("Expected Revenue", func(s domain.Scenario) string { return FormatCurrency(s.Metrics.ExpectedRevenue) })
	row("Expected Profit", func(s domain.Scenario) string { return FormatCurrency(s.Metrics.ExpectedProfit) })

	e := r.Expected
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Expected Revenue:          %s\n", FormatCurrency(e.ExpectedRevenue)))
	sb.WriteString(fmt.Sprintf("Expected Profit:           %s\n", FormatCurrency(e.ExpectedProfit)))
	sb.WriteString(fmt.Sprintf("Market Share Range:        %s - %s\n", FormatPercentage(e.MarketShareRange.Min), FormatPercentage(e.MarketShareRange.Max)))
	sb.WriteString(fmt.Sprintf("Customer Growth Range:     %s - %s\n", FormatPercentage(e.CustomerGrowthRange.Min), FormatPercentage(e.CustomerGrowthRange.Max)))
	sb.WriteString(fmt.Sprintf("Total Probability:         %s\n", FormatPercentage(e.TotalProbability)))
	if !e.TotalProbability.Equal(domain.Hundred()) {
		sb.WriteString("Note: probabilities do not sum to 100%; expected values are not normalised.\n")
	}
	return sb.String()
}

func subscriptionBody(r *calculation.SubscriptionReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s %10s %8s %12s %12s %12s %12s\n", "Month", "Customers", "New", "Revenue", "Costs", "Net Profit", "Cumulative"))
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, p := range r.Projections {
		sb.WriteString(fmt.Sprintf("%-6d %10d %8d %12s %12s %12s %12s\n",
			p.Month,
			p.Customers,
			p.NewCustomers,
			formatShort(p.MonthlyRevenue),
			formatShort(p.OperatingCosts.Add(p.AcquisitionCosts)),
			formatShort(p.NetProfit),
			formatShort(p.CumulativeProfit),
		))
	}

	s := r.Summary
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total Revenue:             %s\n", FormatCurrency(s.TotalRevenue)))
	sb.WriteString(fmt.Sprintf("Total Profit:              %s\n", FormatCurrency(s.TotalProfit)))
	sb.WriteString(fmt.Sprintf("Acquisition Spend:         %s\n", FormatCurrency(s.TotalAcquisitionCosts)))
	sb.WriteString(fmt.Sprintf("Final Customers:           %d\n", s.FinalCustomers))
	if s.PaybackMonth > 0 {
		sb.WriteString(fmt.Sprintf("Payback Month:             %d\n", s.PaybackMonth))
	} else {
		sb.WriteString("Payback Month:             not reached\n")
	}
	return sb.String()
}

func cashFlowBody(r *calculation.CashFlowReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %12s %12s %12s %14s\n", "Month", "Revenue", "Expenses", "Net", "Cumulative"))
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, p := range r.Projections {
		sb.WriteString(fmt.Sprintf("%-20s %12s %12s %11s%s %14s\n",
			truncate(p.Month, 20),
			formatShort(p.Revenue),
			formatShort(p.Expenses),
			deltaSymbol(p.NetCashFlow),
			formatShort(p.NetCashFlow.Abs()),
			formatShort(p.CumulativeCashFlow),
		))
	}

	sb.WriteString("\n")
	if r.Summary == nil {
		sb.WriteString("Summary unavailable: projection has no revenue or no expenses.\n")
		return sb.String()
	}
	s := r.Summary
	sb.WriteString(fmt.Sprintf("Total Revenue:             %s\n", FormatCurrency(s.TotalRevenue)))
	sb.WriteString(fmt.Sprintf("Total Expenses:            %s\n", FormatCurrency(s.TotalExpenses)))
	sb.WriteString(fmt.Sprintf("Net Cash Flow:             %s\n", FormatCurrency(s.NetCashFlow)))
	sb.WriteString(fmt.Sprintf("Revenue / Expenses:        %s\n", s.RevenueToExpenseRatio.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Cash Flow Margin:          %s\n", FormatPercentage(s.CashFlowMargin)))
	sb.WriteString(fmt.Sprintf("Lowest Balance:            %s\n", FormatCurrency(s.LowestCumulativeBalance)))
	if s.BreakEvenMonth != "" {
		sb.WriteString(fmt.Sprintf("Break-even Month:          %s\n", s.BreakEvenMonth))
	}
	return sb.String()
}

func ratiosBody(r *ratios.Ratios) string {
	var sb strings.Builder
	line := func(label string, v decimal.Decimal, pct bool) {
		value := v.StringFixed(2)
		if pct {
			value = FormatPercentage(v)
		}
		sb.WriteString(fmt.Sprintf("%-27s%s\n", label+":", value))
	}
	line("Current Ratio", r.CurrentRatio, false)
	line("Quick Ratio", r.QuickRatio, false)
	line("Debt to Equity", r.DebtToEquity, false)
	line("Debt Ratio", r.DebtRatio, true)
	line("Gross Margin", r.GrossMargin, true)
	line("Operating Margin", r.OperatingMargin, true)
	line("Net Margin", r.NetMargin, true)
	line("Return on Assets", r.ReturnOnAssets, true)
	line("Return on Equity", r.ReturnOnEquity, true)
	if r.InterestCoverage != nil {
		line("Interest Coverage", *r.InterestCoverage, false)
	}
	return sb.String()
}

func valuationBody(r *valuation.Result) string {
	var sb strings.Builder
	for _, m := range r.Methods() {
		sb.WriteString(fmt.Sprintf("%-27s%s\n", string(m)+":", FormatCurrency(r.Values[m])))
	}
	if r.DCF != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%-6s %16s %16s\n", "Year", "Free Cash Flow", "Present Value"))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		for _, y := range r.DCF.Years {
			sb.WriteString(fmt.Sprintf("%-6d %16s %16s\n", y.Year, FormatCurrency(y.FreeCashFlow), FormatCurrency(y.PresentValue)))
		}
		sb.WriteString(fmt.Sprintf("Terminal Value:            %s (PV %s, %s of EV)\n",
			FormatCurrency(r.DCF.TerminalValue), FormatCurrency(r.DCF.PresentValueTerminal), FormatPercentage(r.DCF.TerminalValueFraction)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Enterprise Value:          %s\n", FormatCurrency(r.EnterpriseValue)))
	sb.WriteString(fmt.Sprintf("Equity Value:              %s\n", FormatCurrency(r.EquityValue)))
	sb.WriteString(fmt.Sprintf("Range:                     %s - %s\n", FormatCurrency(r.Range.Min), FormatCurrency(r.Range.Max)))
	return sb.String()
}

func errorsBody(errs map[narrative.Calculator]error) string {
	var sb strings.Builder
	for _, c := range narrative.Calculators {
		if err, ok := errs[c]; ok {
			sb.WriteString(fmt.Sprintf("%-14s %s\n", string(c)+":", err))
		}
	}
	return sb.String()
}
