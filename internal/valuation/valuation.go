// Package valuation estimates enterprise value from revenue and EBITDA
// multiples and a two-stage discounted cash flow.
package valuation

import (
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
)

const op = "business_valuation"

// Method names a valuation approach.
type Method string

const (
	MethodRevenueMultiple Method = "revenue_multiple"
	MethodEBITDAMultiple  Method = "ebitda_multiple"
	MethodDCF             Method = "dcf"
)

// Input holds the company metrics and assumptions. A multiple left at zero
// skips that method; a zero free cash flow skips the DCF. Rates are
// percentages.
type Input struct {
	Revenue            decimal.Decimal `json:"revenue"`
	EBITDA             decimal.Decimal `json:"ebitda"`
	RevenueMultiple    decimal.Decimal `json:"revenueMultiple"`
	EBITDAMultiple     decimal.Decimal `json:"ebitdaMultiple"`
	FreeCashFlow       decimal.Decimal `json:"freeCashFlow"`
	GrowthRate         decimal.Decimal `json:"growthRate"`
	DiscountRate       decimal.Decimal `json:"discountRate"`
	TerminalGrowthRate decimal.Decimal `json:"terminalGrowthRate"`
	ProjectionYears    int             `json:"projectionYears"`
	NetDebt            decimal.Decimal `json:"netDebt"`
}

// DCFYear is one explicit forecast year.
type DCFYear struct {
	Year         int             `json:"year"`
	FreeCashFlow decimal.Decimal `json:"freeCashFlow"`
	PresentValue decimal.Decimal `json:"presentValue"`
}

// DCF is the discounted cash flow breakdown.
type DCF struct {
	Years                 []DCFYear       `json:"years"`
	PresentValueOfFlows   decimal.Decimal `json:"presentValueOfFlows"`
	TerminalValue         decimal.Decimal `json:"terminalValue"`
	PresentValueTerminal  decimal.Decimal `json:"presentValueTerminal"`
	EnterpriseValue       decimal.Decimal `json:"enterpriseValue"`
	TerminalValueFraction decimal.Decimal `json:"terminalValueFraction"` // percent of EV
}

// Result carries each method's enterprise value and the blended view.
type Result struct {
	Values          map[Method]decimal.Decimal `json:"values"`
	DCF             *DCF                       `json:"dcf,omitempty"`
	EnterpriseValue decimal.Decimal            `json:"enterpriseValue"` // average of methods
	EquityValue     decimal.Decimal            `json:"equityValue"`
	Range           domain.Range               `json:"range"`
}

// Methods returns the methods present in r in a stable order.
func (r Result) Methods() []Method {
	var out []Method
	for _, m := range []Method{MethodRevenueMultiple, MethodEBITDAMultiple, MethodDCF} {
		if _, ok := r.Values[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Calculate values the business with every method the input supports.
func Calculate(in Input) (Result, error) {
	if err := domain.FirstError(
		domain.RequireNonNegative(op, "revenue", in.Revenue),
		domain.RequireNonNegative(op, "revenueMultiple", in.RevenueMultiple),
		domain.RequireNonNegative(op, "ebitdaMultiple", in.EBITDAMultiple),
	); err != nil {
		return Result{}, err
	}

	res := Result{Values: make(map[Method]decimal.Decimal, 3)}
	if in.RevenueMultiple.IsPositive() {
		if err := domain.RequirePositive(op, "revenue", in.Revenue); err != nil {
			return Result{}, err
		}
		res.Values[MethodRevenueMultiple] = in.Revenue.Mul(in.RevenueMultiple)
	}
	if in.EBITDAMultiple.IsPositive() {
		if err := domain.RequirePositive(op, "ebitda", in.EBITDA); err != nil {
			return Result{}, err
		}
		res.Values[MethodEBITDAMultiple] = in.EBITDA.Mul(in.EBITDAMultiple)
	}
	if !in.FreeCashFlow.IsZero() {
		dcf, err := discountedCashFlow(in)
		if err != nil {
			return Result{}, err
		}
		res.DCF = &dcf
		res.Values[MethodDCF] = dcf.EnterpriseValue
	}

	methods := res.Methods()
	if len(methods) == 0 {
		return Result{}, domain.InvalidInput(op, "method", "supply a revenue multiple, an EBITDA multiple or free cash flow")
	}

	total := decimal.Zero
	for i, m := range methods {
		v := res.Values[m]
		total = total.Add(v)
		if i == 0 {
			res.Range = domain.Range{Min: v, Max: v}
			continue
		}
		res.Range = domain.Range{Min: decimal.Min(res.Range.Min, v), Max: decimal.Max(res.Range.Max, v)}
	}
	res.EnterpriseValue = total.Div(decimal.NewFromInt(int64(len(methods))))
	res.EquityValue = res.EnterpriseValue.Sub(in.NetDebt)
	return res, nil
}

func discountedCashFlow(in Input) (DCF, error) {
	if in.ProjectionYears < 1 {
		return DCF{}, domain.InvalidInput(op, "projectionYears", "must be at least 1, got %d", in.ProjectionYears)
	}
	if err := domain.FirstError(
		domain.RequirePositive(op, "discountRate", in.DiscountRate),
		domain.RequireNonNegative(op, "terminalGrowthRate", in.TerminalGrowthRate),
	); err != nil {
		return DCF{}, err
	}
	if !in.DiscountRate.GreaterThan(in.TerminalGrowthRate) {
		return DCF{}, domain.ArithmeticDegenerate(op, "discountRate",
			"must exceed the terminal growth rate (%s <= %s)", in.DiscountRate.String(), in.TerminalGrowthRate.String())
	}

	one := decimal.NewFromInt(1)
	growth := one.Add(in.GrowthRate.Div(domain.Hundred()))
	discount := one.Add(in.DiscountRate.Div(domain.Hundred()))
	terminal := in.TerminalGrowthRate.Div(domain.Hundred())

	var out DCF
	flow := in.FreeCashFlow
	factor := one
	for year := 1; year <= in.ProjectionYears; year++ {
		flow = flow.Mul(growth)
		factor = factor.Mul(discount)
		pv := flow.Div(factor)
		out.Years = append(out.Years, DCFYear{Year: year, FreeCashFlow: flow, PresentValue: pv})
		out.PresentValueOfFlows = out.PresentValueOfFlows.Add(pv)
	}

	out.TerminalValue = flow.Mul(one.Add(terminal)).Div(discount.Sub(one).Sub(terminal))
	out.PresentValueTerminal = out.TerminalValue.Div(factor)
	out.EnterpriseValue = out.PresentValueOfFlows.Add(out.PresentValueTerminal)
	if !out.EnterpriseValue.IsZero() {
		out.TerminalValueFraction = out.PresentValueTerminal.Div(out.EnterpriseValue).Mul(domain.Hundred())
	}
	return out, nil
}
