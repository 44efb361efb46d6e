package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/bizcalc/internal/breakeven"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/rgehrsitz/bizcalc/internal/ratios"
	"github.com/rgehrsitz/bizcalc/internal/valuation"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const opParse = "parse_input"

// Input is one calculator input document. Every section is optional; a
// calculator runs only when its section is present. Numeric fields are
// pointers so that a missing required value is rejected, not read as zero.
type Input struct {
	BreakEven    *BreakEvenInput    `yaml:"break_even,omitempty"`
	Pricing      *PricingInput      `yaml:"pricing,omitempty"`
	Scenarios    *ScenarioInput     `yaml:"scenarios,omitempty"`
	Subscription *SubscriptionInput `yaml:"subscription,omitempty"`
	CashFlow     *CashFlowInput     `yaml:"cash_flow,omitempty"`
	Ratios       *RatiosInput       `yaml:"ratios,omitempty"`
	Valuation    *ValuationInput    `yaml:"valuation,omitempty"`
}

// BreakEvenInput feeds breakeven.Solve.
type BreakEvenInput struct {
	Mode                string           `yaml:"mode"`
	FixedCosts          *decimal.Decimal `yaml:"fixed_costs"`
	VariableCostPerUnit *decimal.Decimal `yaml:"variable_cost_per_unit"`
	PricePerUnit        *decimal.Decimal `yaml:"price_per_unit"`
	Units               *decimal.Decimal `yaml:"units"`
	TargetProfit        *decimal.Decimal `yaml:"target_profit"`
	TargetIsPercentage  bool             `yaml:"target_is_percentage"`
}

// PricingInput feeds pricing.Analyze. PriceElasticity may be omitted or null.
type PricingInput struct {
	FixedCosts             *decimal.Decimal `yaml:"fixed_costs"`
	VariableCostPerUnit    *decimal.Decimal `yaml:"variable_cost_per_unit"`
	TargetProfitPercentage *decimal.Decimal `yaml:"target_profit_percentage"`
	CompetitorPrice        *decimal.Decimal `yaml:"competitor_price"`
	MarketSize             *int64           `yaml:"market_size"`
	PriceElasticity        *decimal.Decimal `yaml:"price_elasticity"`
	NumScenarios           int              `yaml:"num_scenarios,omitempty"` // 0 uses the configured default

	// Explicit sweep range. Both or neither; omitted means the range is
	// derived from the break-even analysis.
	MinPrice *decimal.Decimal `yaml:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `yaml:"max_price,omitempty"`
}

// ScenarioInput seeds a scenario.Planner. Optimistic and pessimistic metrics
// are only read when auto_derive is false.
type ScenarioInput struct {
	AutoDerive    *bool                                            `yaml:"auto_derive"`
	Base          map[domain.MetricField]decimal.Decimal           `yaml:"base"`
	Optimistic    map[domain.MetricField]decimal.Decimal           `yaml:"optimistic,omitempty"`
	Pessimistic   map[domain.MetricField]decimal.Decimal           `yaml:"pessimistic,omitempty"`
	Probabilities map[domain.ScenarioID]decimal.Decimal            `yaml:"probabilities,omitempty"`
	Adjustments   map[domain.MetricField]domain.ScenarioAdjustment `yaml:"adjustments,omitempty"`
}

// SubscriptionInput feeds subscription.Project.
type SubscriptionInput struct {
	MonthlySubscriptionPrice *decimal.Decimal `yaml:"monthly_subscription_price"`
	CustomerAcquisitionCost  *decimal.Decimal `yaml:"customer_acquisition_cost"`
	CustomerRetentionRate    *decimal.Decimal `yaml:"customer_retention_rate"`
	MonthlyPlatformCosts     *decimal.Decimal `yaml:"monthly_platform_costs"`
	MonthlyPerClientCosts    *decimal.Decimal `yaml:"monthly_per_client_costs"`
	InitialCustomerBase      *int64           `yaml:"initial_customer_base"`
	MonthlyGrowthRate        *decimal.Decimal `yaml:"monthly_growth_rate"`
	Months                   int              `yaml:"months,omitempty"`
}

// CashFlowInput feeds cashflow.Project. Stream lists may be empty; the
// expense groups and growth rates are required.
type CashFlowInput struct {
	ProductSales []struct {
		Name         string           `yaml:"name"`
		UnitsSold    *decimal.Decimal `yaml:"units_sold"`
		PricePerUnit *decimal.Decimal `yaml:"price_per_unit"`
	} `yaml:"product_sales"`
	ServiceIncome []struct {
		Name   string           `yaml:"name"`
		Rate   *decimal.Decimal `yaml:"rate"`
		Volume *decimal.Decimal `yaml:"volume"`
	} `yaml:"service_income"`
	SubscriptionRevenue []struct {
		Name        string           `yaml:"name"`
		MonthlyFee  *decimal.Decimal `yaml:"monthly_fee"`
		Subscribers *decimal.Decimal `yaml:"subscribers"`
		ChurnRate   *decimal.Decimal `yaml:"churn_rate"`
	} `yaml:"subscription_revenue"`
	LicensingRoyalties []struct {
		Name           string           `yaml:"name"`
		RoyaltyRate    *decimal.Decimal `yaml:"royalty_rate"`
		ExpectedVolume *decimal.Decimal `yaml:"expected_volume"`
	} `yaml:"licensing_royalties"`
	OtherRevenue struct {
		Affiliate   *decimal.Decimal `yaml:"affiliate"`
		Advertising *decimal.Decimal `yaml:"advertising"`
		Grants      *decimal.Decimal `yaml:"grants"`
	} `yaml:"other_revenue"`
	FixedExpenses struct {
		Rent          *decimal.Decimal `yaml:"rent"`
		Salaries      *decimal.Decimal `yaml:"salaries"`
		Insurance     *decimal.Decimal `yaml:"insurance"`
		Utilities     *decimal.Decimal `yaml:"utilities"`
		Subscriptions *decimal.Decimal `yaml:"subscriptions"`
	} `yaml:"fixed_expenses"`
	VariableExpenses struct {
		COGS        *decimal.Decimal `yaml:"cogs"`
		Marketing   *decimal.Decimal `yaml:"marketing"`
		Commissions *decimal.Decimal `yaml:"commissions"`
		Supplies    *decimal.Decimal `yaml:"supplies"`
	} `yaml:"variable_expenses"`
	OneTimeExpenses struct {
		StartupCosts        *decimal.Decimal `yaml:"startup_costs"`
		CapitalExpenditures *decimal.Decimal `yaml:"capital_expenditures"`
		Legal               *decimal.Decimal `yaml:"legal"`
	} `yaml:"one_time_expenses"`
	FinancialObligations struct {
		LoanPayments  *decimal.Decimal `yaml:"loan_payments"`
		LeasePayments *decimal.Decimal `yaml:"lease_payments"`
		TaxPayments   *decimal.Decimal `yaml:"tax_payments"`
	} `yaml:"financial_obligations"`
	GrowthParameters struct {
		RevenueGrowthRate *decimal.Decimal           `yaml:"revenue_growth_rate"`
		ExpenseGrowthRate *decimal.Decimal           `yaml:"expense_growth_rate"`
		SeasonalFactors   map[string]decimal.Decimal `yaml:"seasonal_factors,omitempty"`
		StartMonth        int                        `yaml:"start_month,omitempty"`
	} `yaml:"growth_parameters"`
	Months int `yaml:"months,omitempty"`
}

// RatiosInput feeds ratios.Calculate. Interest expense may be omitted.
type RatiosInput struct {
	CurrentAssets      *decimal.Decimal `yaml:"current_assets"`
	Inventory          *decimal.Decimal `yaml:"inventory"`
	CurrentLiabilities *decimal.Decimal `yaml:"current_liabilities"`
	TotalAssets        *decimal.Decimal `yaml:"total_assets"`
	TotalLiabilities   *decimal.Decimal `yaml:"total_liabilities"`
	ShareholderEquity  *decimal.Decimal `yaml:"shareholder_equity"`
	Revenue            *decimal.Decimal `yaml:"revenue"`
	CostOfGoodsSold    *decimal.Decimal `yaml:"cost_of_goods_sold"`
	OperatingIncome    *decimal.Decimal `yaml:"operating_income"`
	NetIncome          *decimal.Decimal `yaml:"net_income"`
	InterestExpense    *decimal.Decimal `yaml:"interest_expense"`
}

// ValuationInput feeds valuation.Calculate. Each method's inputs are
// optional as a group.
type ValuationInput struct {
	Revenue            *decimal.Decimal `yaml:"revenue"`
	EBITDA             *decimal.Decimal `yaml:"ebitda"`
	RevenueMultiple    *decimal.Decimal `yaml:"revenue_multiple"`
	EBITDAMultiple     *decimal.Decimal `yaml:"ebitda_multiple"`
	FreeCashFlow       *decimal.Decimal `yaml:"free_cash_flow"`
	GrowthRate         *decimal.Decimal `yaml:"growth_rate"`
	DiscountRate       *decimal.Decimal `yaml:"discount_rate"`
	TerminalGrowthRate *decimal.Decimal `yaml:"terminal_growth_rate"`
	ProjectionYears    int              `yaml:"projection_years"`
	NetDebt            *decimal.Decimal `yaml:"net_debt"`
}

// Sections lists the section keys present in the document, in document
// schema order.
func (in *Input) Sections() []string {
	var out []string
	for _, s := range []struct {
		name    string
		present bool
	}{
		{"break_even", in.BreakEven != nil},
		{"pricing", in.Pricing != nil},
		{"scenarios", in.Scenarios != nil},
		{"subscription", in.Subscription != nil},
		{"cash_flow", in.CashFlow != nil},
		{"ratios", in.Ratios != nil},
		{"valuation", in.Valuation != nil},
	} {
		if s.present {
			out = append(out, s.name)
		}
	}
	return out
}

// InputParser handles parsing of calculator input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads an input document from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*Input, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates an input document
func (ip *InputParser) Parse(data []byte) (*Input, error) {
	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateInput(&in); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return &in, nil
}

// ValidateInput checks that at least one section exists and that every
// present section carries its required fields.
func (ip *InputParser) ValidateInput(in *Input) error {
	if len(in.Sections()) == 0 {
		return domain.InvalidInput(opParse, "", "no calculator section provided")
	}
	if in.BreakEven != nil {
		if _, err := in.BreakEven.Request(); err != nil {
			return err
		}
	}
	if in.Pricing != nil {
		if _, _, err := in.Pricing.Domain(); err != nil {
			return err
		}
		if _, err := in.Pricing.PriceRange(); err != nil {
			return err
		}
	}
	if in.Scenarios != nil {
		if err := in.Scenarios.validate(); err != nil {
			return err
		}
	}
	if in.Subscription != nil {
		if _, err := in.Subscription.Domain(); err != nil {
			return err
		}
	}
	if in.CashFlow != nil {
		if _, err := in.CashFlow.Domain(); err != nil {
			return err
		}
	}
	if in.Ratios != nil {
		if _, err := in.Ratios.Domain(); err != nil {
			return err
		}
	}
	if in.Valuation != nil {
		if _, err := in.Valuation.Domain(); err != nil {
			return err
		}
	}
	return nil
}

// fields collects the first missing required field of a section.
type fields struct {
	section string
	err     error
}

func (f *fields) required(v *decimal.Decimal, name string) decimal.Decimal {
	if v == nil {
		if f.err == nil {
			f.err = domain.InvalidInput(opParse, f.section+"."+name, "is required")
		}
		return decimal.Zero
	}
	return *v
}

func (f *fields) requiredInt(v *int64, name string) int64 {
	if v == nil {
		if f.err == nil {
			f.err = domain.InvalidInput(opParse, f.section+"."+name, "is required")
		}
		return 0
	}
	return *v
}

// optional returns zero for an omitted amount that defaults to nothing owed.
func optional(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

// Request converts the section to a solver request. Which fields are
// required depends on the mode.
func (b *BreakEvenInput) Request() (breakeven.Request, error) {
	mode := breakeven.ModeStandard
	if b.Mode != "" {
		m, err := breakeven.ParseMode(b.Mode)
		if err != nil {
			return breakeven.Request{}, domain.InvalidInput(opParse, "break_even.mode", "%v", err)
		}
		mode = m
	}

	f := fields{section: "break_even"}
	req := breakeven.Request{
		Mode:                mode,
		FixedCosts:          f.required(b.FixedCosts, "fixed_costs"),
		VariableCostPerUnit: f.required(b.VariableCostPerUnit, "variable_cost_per_unit"),
		TargetIsPercentage:  b.TargetIsPercentage,
	}
	switch mode {
	case breakeven.ModeStandard:
		req.PricePerUnit = f.required(b.PricePerUnit, "price_per_unit")
		req.Units = optional(b.Units)
	case breakeven.ModeFindUnits:
		req.PricePerUnit = f.required(b.PricePerUnit, "price_per_unit")
	case breakeven.ModeFindPrice:
		req.Units = f.required(b.Units, "units")
	case breakeven.ModeProfitTarget:
		req.PricePerUnit = f.required(b.PricePerUnit, "price_per_unit")
		req.TargetProfit = f.required(b.TargetProfit, "target_profit")
	}
	return req, f.err
}

// Domain converts the section to model inputs.
func (p *PricingInput) Domain() (domain.CostStructure, domain.MarketData, error) {
	f := fields{section: "pricing"}
	cost := domain.CostStructure{
		FixedCosts:             f.required(p.FixedCosts, "fixed_costs"),
		VariableCostPerUnit:    f.required(p.VariableCostPerUnit, "variable_cost_per_unit"),
		TargetProfitPercentage: f.required(p.TargetProfitPercentage, "target_profit_percentage"),
	}
	market := domain.MarketData{
		CompetitorPrice: f.required(p.CompetitorPrice, "competitor_price"),
		MarketSize:      f.requiredInt(p.MarketSize, "market_size"),
		PriceElasticity: domain.NoElasticity(),
	}
	if p.PriceElasticity != nil {
		market.PriceElasticity = domain.ElasticityOf(*p.PriceElasticity)
	}
	if f.err != nil {
		return cost, market, f.err
	}
	if p.NumScenarios < 0 {
		return cost, market, domain.InvalidInput(opParse, "pricing.num_scenarios", "cannot be negative")
	}
	return cost, market, nil
}

// PriceRange returns the explicit sweep range, or nil when neither bound is
// given. Ordering of the bounds is checked by the generator.
func (p *PricingInput) PriceRange() (*domain.PriceRange, error) {
	if p.MinPrice == nil && p.MaxPrice == nil {
		return nil, nil
	}
	f := fields{section: "pricing"}
	r := domain.PriceRange{
		Min: f.required(p.MinPrice, "min_price"),
		Max: f.required(p.MaxPrice, "max_price"),
	}
	if f.err != nil {
		return nil, f.err
	}
	return &r, nil
}

func (s *ScenarioInput) validate() error {
	if len(s.Base) == 0 {
		return domain.InvalidInput(opParse, "scenarios.base", "is required")
	}
	check := func(section string, metrics map[domain.MetricField]decimal.Decimal) error {
		for field := range metrics {
			if _, err := domain.ParseMetricField(string(field)); err != nil {
				return domain.InvalidInput(opParse, section, "%v", err)
			}
		}
		return nil
	}
	if err := domain.FirstError(
		check("scenarios.base", s.Base),
		check("scenarios.optimistic", s.Optimistic),
		check("scenarios.pessimistic", s.Pessimistic),
	); err != nil {
		return err
	}
	for id := range s.Probabilities {
		if _, err := domain.ParseScenarioID(string(id)); err != nil {
			return domain.InvalidInput(opParse, "scenarios.probabilities", "%v", err)
		}
	}
	return nil
}

// Derive reports the auto-derive mode; it is on unless set to false.
func (s *ScenarioInput) Derive() bool {
	return s.AutoDerive == nil || *s.AutoDerive
}

// Domain converts the section to model inputs.
func (s *SubscriptionInput) Domain() (domain.SubscriptionMetrics, error) {
	f := fields{section: "subscription"}
	m := domain.SubscriptionMetrics{
		MonthlySubscriptionPrice: f.required(s.MonthlySubscriptionPrice, "monthly_subscription_price"),
		CustomerAcquisitionCost:  f.required(s.CustomerAcquisitionCost, "customer_acquisition_cost"),
		CustomerRetentionRate:    f.required(s.CustomerRetentionRate, "customer_retention_rate"),
		MonthlyPlatformCosts:     f.required(s.MonthlyPlatformCosts, "monthly_platform_costs"),
		MonthlyPerClientCosts:    f.required(s.MonthlyPerClientCosts, "monthly_per_client_costs"),
		InitialCustomerBase:      f.requiredInt(s.InitialCustomerBase, "initial_customer_base"),
		MonthlyGrowthRate:        f.required(s.MonthlyGrowthRate, "monthly_growth_rate"),
	}
	return m, f.err
}

// Domain converts the section to model inputs.
func (c *CashFlowInput) Domain() (domain.CashFlowData, error) {
	f := fields{section: "cash_flow"}
	var data domain.CashFlowData

	for i, p := range c.ProductSales {
		f.section = fmt.Sprintf("cash_flow.product_sales[%d]", i)
		data.ProductSales = append(data.ProductSales, domain.ProductSale{
			Name:         p.Name,
			UnitsSold:    f.required(p.UnitsSold, "units_sold"),
			PricePerUnit: f.required(p.PricePerUnit, "price_per_unit"),
		})
	}
	for i, s := range c.ServiceIncome {
		f.section = fmt.Sprintf("cash_flow.service_income[%d]", i)
		data.ServiceIncome = append(data.ServiceIncome, domain.ServiceIncome{
			Name:   s.Name,
			Rate:   f.required(s.Rate, "rate"),
			Volume: f.required(s.Volume, "volume"),
		})
	}
	for i, s := range c.SubscriptionRevenue {
		f.section = fmt.Sprintf("cash_flow.subscription_revenue[%d]", i)
		data.SubscriptionRevenue = append(data.SubscriptionRevenue, domain.SubscriptionRevenue{
			Name:        s.Name,
			MonthlyFee:  f.required(s.MonthlyFee, "monthly_fee"),
			Subscribers: f.required(s.Subscribers, "subscribers"),
			ChurnRate:   f.required(s.ChurnRate, "churn_rate"),
		})
	}
	for i, l := range c.LicensingRoyalties {
		f.section = fmt.Sprintf("cash_flow.licensing_royalties[%d]", i)
		data.LicensingRoyalties = append(data.LicensingRoyalties, domain.LicensingRoyalty{
			Name:           l.Name,
			RoyaltyRate:    f.required(l.RoyaltyRate, "royalty_rate"),
			ExpectedVolume: f.required(l.ExpectedVolume, "expected_volume"),
		})
	}

	data.OtherRevenue = domain.OtherRevenue{
		Affiliate:   optional(c.OtherRevenue.Affiliate),
		Advertising: optional(c.OtherRevenue.Advertising),
		Grants:      optional(c.OtherRevenue.Grants),
	}

	f.section = "cash_flow.fixed_expenses"
	fx := c.FixedExpenses
	data.FixedExpenses = domain.FixedExpenses{
		Rent:          f.required(fx.Rent, "rent"),
		Salaries:      f.required(fx.Salaries, "salaries"),
		Insurance:     f.required(fx.Insurance, "insurance"),
		Utilities:     f.required(fx.Utilities, "utilities"),
		Subscriptions: optional(fx.Subscriptions),
	}

	f.section = "cash_flow.variable_expenses"
	vx := c.VariableExpenses
	data.VariableExpenses = domain.VariableExpenses{
		COGS:        f.required(vx.COGS, "cogs"),
		Marketing:   f.required(vx.Marketing, "marketing"),
		Commissions: optional(vx.Commissions),
		Supplies:    optional(vx.Supplies),
	}

	ox := c.OneTimeExpenses
	data.OneTimeExpenses = domain.OneTimeExpenses{
		StartupCosts:        optional(ox.StartupCosts),
		CapitalExpenditures: optional(ox.CapitalExpenditures),
		Legal:               optional(ox.Legal),
	}
	ob := c.FinancialObligations
	data.FinancialObligations = domain.FinancialObligations{
		LoanPayments:  optional(ob.LoanPayments),
		LeasePayments: optional(ob.LeasePayments),
		TaxPayments:   optional(ob.TaxPayments),
	}

	f.section = "cash_flow.growth_parameters"
	g := c.GrowthParameters
	data.GrowthParameters = domain.GrowthParameters{
		RevenueGrowthRate: f.required(g.RevenueGrowthRate, "revenue_growth_rate"),
		ExpenseGrowthRate: f.required(g.ExpenseGrowthRate, "expense_growth_rate"),
		SeasonalFactors:   g.SeasonalFactors,
		StartMonth:        g.StartMonth,
	}
	return data, f.err
}

// Domain converts the section to model inputs.
func (r *RatiosInput) Domain() (ratios.Statement, error) {
	f := fields{section: "ratios"}
	s := ratios.Statement{
		CurrentAssets:      f.required(r.CurrentAssets, "current_assets"),
		Inventory:          f.required(r.Inventory, "inventory"),
		CurrentLiabilities: f.required(r.CurrentLiabilities, "current_liabilities"),
		TotalAssets:        f.required(r.TotalAssets, "total_assets"),
		TotalLiabilities:   f.required(r.TotalLiabilities, "total_liabilities"),
		ShareholderEquity:  f.required(r.ShareholderEquity, "shareholder_equity"),
		Revenue:            f.required(r.Revenue, "revenue"),
		CostOfGoodsSold:    f.required(r.CostOfGoodsSold, "cost_of_goods_sold"),
		OperatingIncome:    f.required(r.OperatingIncome, "operating_income"),
		NetIncome:          f.required(r.NetIncome, "net_income"),
		InterestExpense:    optional(r.InterestExpense),
	}
	return s, f.err
}

// Domain converts the section to model inputs. The DCF assumptions become
// required once free_cash_flow is given.
func (v *ValuationInput) Domain() (valuation.Input, error) {
	f := fields{section: "valuation"}
	in := valuation.Input{
		Revenue:         optional(v.Revenue),
		EBITDA:          optional(v.EBITDA),
		RevenueMultiple: optional(v.RevenueMultiple),
		EBITDAMultiple:  optional(v.EBITDAMultiple),
		NetDebt:         optional(v.NetDebt),
		ProjectionYears: v.ProjectionYears,
	}
	if v.RevenueMultiple != nil {
		in.Revenue = f.required(v.Revenue, "revenue")
	}
	if v.EBITDAMultiple != nil {
		in.EBITDA = f.required(v.EBITDA, "ebitda")
	}
	if v.FreeCashFlow != nil {
		in.FreeCashFlow = *v.FreeCashFlow
		in.GrowthRate = f.required(v.GrowthRate, "growth_rate")
		in.DiscountRate = f.required(v.DiscountRate, "discount_rate")
		in.TerminalGrowthRate = f.required(v.TerminalGrowthRate, "terminal_growth_rate")
		if in.ProjectionYears == 0 && f.err == nil {
			f.err = domain.InvalidInput(opParse, "valuation.projection_years", "is required")
		}
	}
	return in, f.err
}
