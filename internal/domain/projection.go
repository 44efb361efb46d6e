package domain

import (
	"github.com/shopspring/decimal"
)

// SubscriptionMetrics are the inputs of the subscription revenue model.
// Rates are percentages in [0, 100].
type SubscriptionMetrics struct {
	MonthlySubscriptionPrice decimal.Decimal `json:"monthlySubscriptionPrice"`
	CustomerAcquisitionCost  decimal.Decimal `json:"customerAcquisitionCost"`
	CustomerRetentionRate    decimal.Decimal `json:"customerRetentionRate"`
	MonthlyPlatformCosts     decimal.Decimal `json:"monthlyPlatformCosts"`
	MonthlyPerClientCosts    decimal.Decimal `json:"monthlyPerClientCosts"`
	InitialCustomerBase      int64           `json:"initialCustomerBase"`
	MonthlyGrowthRate        decimal.Decimal `json:"monthlyGrowthRate"`
}

// RevenueProjection is one month of the subscription projection.
type RevenueProjection struct {
	Month                 int             `json:"month"`
	Customers             int64           `json:"customers"`
	NewCustomers          int64           `json:"newCustomers"`
	PotentialNewCustomers int64           `json:"potentialNewCustomers"`
	MonthlyRevenue        decimal.Decimal `json:"monthlyRevenue"`
	CumulativeRevenue     decimal.Decimal `json:"cumulativeRevenue"`
	OperatingCosts        decimal.Decimal `json:"operatingCosts"`
	AcquisitionCosts      decimal.Decimal `json:"acquisitionCosts"`
	NetProfit             decimal.Decimal `json:"netProfit"`
	CumulativeProfit      decimal.Decimal `json:"cumulativeProfit"`
}

// SubscriptionSummary aggregates a subscription projection.
type SubscriptionSummary struct {
	Months                int             `json:"months"`
	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	TotalProfit           decimal.Decimal `json:"totalProfit"`
	TotalAcquisitionCosts decimal.Decimal `json:"totalAcquisitionCosts"`
	FinalCustomers        int64           `json:"finalCustomers"`
	AverageMonthlyRevenue decimal.Decimal `json:"averageMonthlyRevenue"`
	PaybackMonth          int             `json:"paybackMonth"` // 0 when cumulative profit never turns positive
}

// ProductSale is a product revenue stream with a baseline monthly volume.
type ProductSale struct {
	Name         string          `json:"name"`
	UnitsSold    decimal.Decimal `json:"unitsSold"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

// ServiceIncome is billed at Rate per unit of Volume each month.
type ServiceIncome struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Volume decimal.Decimal `json:"volume"`
}

// SubscriptionRevenue is a recurring stream decayed by monthly churn (percent).
type SubscriptionRevenue struct {
	Name        string          `json:"name"`
	MonthlyFee  decimal.Decimal `json:"monthlyFee"`
	Subscribers decimal.Decimal `json:"subscribers"`
	ChurnRate   decimal.Decimal `json:"churnRate"`
}

// LicensingRoyalty pays RoyaltyRate per unit of ExpectedVolume each month.
type LicensingRoyalty struct {
	Name           string          `json:"name"`
	RoyaltyRate    decimal.Decimal `json:"royaltyRate"`
	ExpectedVolume decimal.Decimal `json:"expectedVolume"`
}

// OtherRevenue holds monthly miscellaneous income.
type OtherRevenue struct {
	Affiliate   decimal.Decimal `json:"affiliate"`
	Advertising decimal.Decimal `json:"advertising"`
	Grants      decimal.Decimal `json:"grants"`
}

// Total sums the other-income sources.
func (o OtherRevenue) Total() decimal.Decimal {
	return o.Affiliate.Add(o.Advertising).Add(o.Grants)
}

// FixedExpenses are monthly overheads.
type FixedExpenses struct {
	Rent          decimal.Decimal `json:"rent"`
	Salaries      decimal.Decimal `json:"salaries"`
	Insurance     decimal.Decimal `json:"insurance"`
	Utilities     decimal.Decimal `json:"utilities"`
	Subscriptions decimal.Decimal `json:"subscriptions"`
}

// Total sums the fixed expenses.
func (f FixedExpenses) Total() decimal.Decimal {
	return f.Rent.Add(f.Salaries).Add(f.Insurance).Add(f.Utilities).Add(f.Subscriptions)
}

// VariableExpenses are monthly costs that scale with activity.
type VariableExpenses struct {
	COGS        decimal.Decimal `json:"cogs"`
	Marketing   decimal.Decimal `json:"marketing"`
	Commissions decimal.Decimal `json:"commissions"`
	Supplies    decimal.Decimal `json:"supplies"`
}

// Total sums the variable expenses.
func (v VariableExpenses) Total() decimal.Decimal {
	return v.COGS.Add(v.Marketing).Add(v.Commissions).Add(v.Supplies)
}

// OneTimeExpenses are charged only in the first projected month.
type OneTimeExpenses struct {
	StartupCosts        decimal.Decimal `json:"startupCosts"`
	CapitalExpenditures decimal.Decimal `json:"capitalExpenditures"`
	Legal               decimal.Decimal `json:"legal"`
}

// Total sums the one-time expenses.
func (o OneTimeExpenses) Total() decimal.Decimal {
	return o.StartupCosts.Add(o.CapitalExpenditures).Add(o.Legal)
}

// FinancialObligations are recurring monthly debt and lease service.
type FinancialObligations struct {
	LoanPayments  decimal.Decimal `json:"loanPayments"`
	LeasePayments decimal.Decimal `json:"leasePayments"`
	TaxPayments   decimal.Decimal `json:"taxPayments"`
}

// Total sums the obligations.
func (f FinancialObligations) Total() decimal.Decimal {
	return f.LoanPayments.Add(f.LeasePayments).Add(f.TaxPayments)
}

// GrowthParameters drive the compounding factors. Rates are annual percentages;
// seasonal factors are keyed by English month name.
type GrowthParameters struct {
	RevenueGrowthRate decimal.Decimal            `json:"revenueGrowthRate"`
	ExpenseGrowthRate decimal.Decimal            `json:"expenseGrowthRate"`
	SeasonalFactors   map[string]decimal.Decimal `json:"seasonalFactors,omitempty"`
	StartMonth        int                        `json:"startMonth,omitempty"` // 1-12, 0 means January
}

// CashFlowData is the full input of the cash-flow model.
type CashFlowData struct {
	ProductSales         []ProductSale         `json:"productSales"`
	ServiceIncome        []ServiceIncome       `json:"serviceIncome"`
	SubscriptionRevenue  []SubscriptionRevenue `json:"subscriptionRevenue"`
	LicensingRoyalties   []LicensingRoyalty    `json:"licensingRoyalties"`
	OtherRevenue         OtherRevenue          `json:"otherRevenue"`
	FixedExpenses        FixedExpenses         `json:"fixedExpenses"`
	VariableExpenses     VariableExpenses      `json:"variableExpenses"`
	OneTimeExpenses      OneTimeExpenses       `json:"oneTimeExpenses"`
	FinancialObligations FinancialObligations  `json:"financialObligations"`
	GrowthParameters     GrowthParameters      `json:"growthParameters"`
}

// CashFlowProjection is one month of the cash-flow projection.
type CashFlowProjection struct {
	Month              string          `json:"month"`
	Index              int             `json:"index"`
	Revenue            decimal.Decimal `json:"revenue"`
	Expenses           decimal.Decimal `json:"expenses"`
	NetCashFlow        decimal.Decimal `json:"netCashFlow"`
	CumulativeCashFlow decimal.Decimal `json:"cumulativeCashFlow"`

	ProductRevenue       decimal.Decimal `json:"productRevenue"`
	ServiceRevenue       decimal.Decimal `json:"serviceRevenue"`
	SubscriptionRevenue  decimal.Decimal `json:"subscriptionRevenue"`
	LicensingRevenue     decimal.Decimal `json:"licensingRevenue"`
	OtherRevenue         decimal.Decimal `json:"otherRevenue"`
	FixedExpenses        decimal.Decimal `json:"fixedExpenses"`
	VariableExpenses     decimal.Decimal `json:"variableExpenses"`
	FinancialObligations decimal.Decimal `json:"financialObligations"`
	OneTimeExpenses      decimal.Decimal `json:"oneTimeExpenses"`
}

// CashFlowSummary is derived once over a complete projection.
type CashFlowSummary struct {
	Months                  int             `json:"months"`
	TotalRevenue            decimal.Decimal `json:"totalRevenue"`
	TotalExpenses           decimal.Decimal `json:"totalExpenses"`
	NetCashFlow             decimal.Decimal `json:"netCashFlow"`
	AverageMonthlyRevenue   decimal.Decimal `json:"averageMonthlyRevenue"`
	AverageMonthlyExpenses  decimal.Decimal `json:"averageMonthlyExpenses"`
	RevenueToExpenseRatio   decimal.Decimal `json:"revenueToExpenseRatio"`
	CashFlowMargin          decimal.Decimal `json:"cashFlowMargin"`
	LowestCumulativeBalance decimal.Decimal `json:"lowestCumulativeBalance"`
	BreakEvenMonth          string          `json:"breakEvenMonth,omitempty"`
}
