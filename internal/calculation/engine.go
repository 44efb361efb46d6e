// Package calculation runs the calculators over a parsed input document.
// Each calculator is independent: a failure in one is recorded and the
// others still run.
package calculation

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/bizcalc/internal/breakeven"
	"github.com/rgehrsitz/bizcalc/internal/cashflow"
	"github.com/rgehrsitz/bizcalc/internal/config"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/rgehrsitz/bizcalc/internal/logging"
	"github.com/rgehrsitz/bizcalc/internal/narrative"
	"github.com/rgehrsitz/bizcalc/internal/pricing"
	"github.com/rgehrsitz/bizcalc/internal/ratios"
	"github.com/rgehrsitz/bizcalc/internal/scenario"
	"github.com/rgehrsitz/bizcalc/internal/subscription"
	"github.com/rgehrsitz/bizcalc/internal/valuation"
	"github.com/shopspring/decimal"
)

// Logger is the logging surface the engine uses
type Logger = logging.Logger

// NopLogger discards log output
type NopLogger = logging.NopLogger

// CalculationEngine runs calculators with configured defaults
type CalculationEngine struct {
	Settings config.Settings
	Logger   Logger
}

// NewCalculationEngine creates an engine with default settings
func NewCalculationEngine() *CalculationEngine {
	return NewCalculationEngineWithSettings(config.DefaultSettings())
}

// NewCalculationEngineWithSettings creates an engine with the given settings
func NewCalculationEngineWithSettings(s config.Settings) *CalculationEngine {
	return &CalculationEngine{Settings: s, Logger: NopLogger{}}
}

// SetLogger replaces the engine logger; nil selects the no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	ce.Logger = l
}

// ScenarioReport is the planner state after applying a scenarios section.
type ScenarioReport struct {
	SessionID string                 `json:"sessionId"`
	Scenarios []domain.Scenario      `json:"scenarios"`
	Expected  domain.ExpectedOutcome `json:"expected"`
}

// SubscriptionReport is a subscription projection with its summary.
type SubscriptionReport struct {
	Projections []domain.RevenueProjection `json:"projections"`
	Summary     domain.SubscriptionSummary `json:"summary"`
}

// CashFlowReport is a cash-flow projection with its summary. Summary is nil
// when the projection has no revenue or no expenses.
type CashFlowReport struct {
	Projections []domain.CashFlowProjection `json:"projections"`
	Summary     *domain.CashFlowSummary     `json:"summary,omitempty"`
}

// Report holds every calculator result of one run. A nil field means the
// section was absent or failed; failures are listed in Errors. A cash flow
// projection is kept even when only its summary failed.
type Report struct {
	BreakEven    *breakeven.Result              `json:"breakEven,omitempty"`
	Pricing      *pricing.Analysis              `json:"pricing,omitempty"`
	Scenarios    *ScenarioReport                `json:"scenarios,omitempty"`
	Subscription *SubscriptionReport            `json:"subscription,omitempty"`
	CashFlow     *CashFlowReport                `json:"cashFlow,omitempty"`
	Ratios       *ratios.Ratios                 `json:"ratios,omitempty"`
	Valuation    *valuation.Result              `json:"valuation,omitempty"`
	Errors       map[narrative.Calculator]error `json:"-"`
}

// Failed reports whether any calculator failed.
func (r *Report) Failed() bool { return len(r.Errors) > 0 }

func (r *Report) fail(c narrative.Calculator, err error) {
	if r.Errors == nil {
		r.Errors = make(map[narrative.Calculator]error)
	}
	r.Errors[c] = err
}

// Run executes every calculator whose section is present in the input.
// The context is checked between calculators.
func (ce *CalculationEngine) Run(ctx context.Context, in *config.Input) (*Report, error) {
	if in == nil {
		return nil, fmt.Errorf("no input provided")
	}
	report := &Report{}

	steps := []struct {
		calc    narrative.Calculator
		present bool
		run     func() error
	}{
		{narrative.CalculatorBreakEven, in.BreakEven != nil, func() (err error) {
			report.BreakEven, err = ce.RunBreakEven(in.BreakEven)
			return err
		}},
		{narrative.CalculatorPricing, in.Pricing != nil, func() (err error) {
			report.Pricing, err = ce.RunPricing(in.Pricing)
			return err
		}},
		{narrative.CalculatorScenarios, in.Scenarios != nil, func() (err error) {
			report.Scenarios, err = ce.RunScenarios(in.Scenarios)
			return err
		}},
		{narrative.CalculatorSubscription, in.Subscription != nil, func() (err error) {
			report.Subscription, err = ce.RunSubscription(in.Subscription)
			return err
		}},
		{narrative.CalculatorCashFlow, in.CashFlow != nil, func() (err error) {
			report.CashFlow, err = ce.RunCashFlow(in.CashFlow)
			return err
		}},
		{narrative.CalculatorRatios, in.Ratios != nil, func() (err error) {
			report.Ratios, err = ce.RunRatios(in.Ratios)
			return err
		}},
		{narrative.CalculatorValuation, in.Valuation != nil, func() (err error) {
			report.Valuation, err = ce.RunValuation(in.Valuation)
			return err
		}},
	}

	for _, step := range steps {
		if !step.present {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ce.Logger.Debugf("running %s calculator", step.calc)
		if err := step.run(); err != nil {
			ce.Logger.Warnf("%s calculator failed: %v", step.calc, err)
			report.fail(step.calc, err)
		}
	}
	return report, nil
}

// RunBreakEven solves the break-even section.
func (ce *CalculationEngine) RunBreakEven(in *config.BreakEvenInput) (*breakeven.Result, error) {
	req, err := in.Request()
	if err != nil {
		return nil, err
	}
	res, err := breakeven.Solve(req)
	if err != nil {
		return nil, err
	}
	ce.Logger.Debugf("break-even (%s): %s units at price %s", res.Mode, res.Units.StringFixed(2), res.Price.StringFixed(2))
	return &res, nil
}

// RunPricing sweeps the optimal price range of the pricing section.
func (ce *CalculationEngine) RunPricing(in *config.PricingInput) (*pricing.Analysis, error) {
	cost, market, err := in.Domain()
	if err != nil {
		return nil, err
	}
	priceRange, err := in.PriceRange()
	if err != nil {
		return nil, err
	}
	count := in.NumScenarios
	if count == 0 {
		count = ce.Settings.Projection.PricingScenarios
	}
	analysis, err := pricing.Analyze(cost, market, priceRange, count)
	if err != nil {
		return nil, err
	}
	ce.Logger.Debugf("pricing: %d scenarios, optimal price %s", len(analysis.Scenarios), analysis.Optimal.Price.StringFixed(2))
	return analysis, nil
}

// RunScenarios applies the scenarios section to a fresh planner. Adjustments
// go in before metrics, and fields are visited in display order so the
// result does not depend on map iteration.
func (ce *CalculationEngine) RunScenarios(in *config.ScenarioInput) (*ScenarioReport, error) {
	p := scenario.NewPlanner(scenario.WithLogger(ce.Logger))
	p.SetAutoDerive(in.Derive())

	for _, field := range domain.MetricFields {
		adj, ok := in.Adjustments[field]
		if !ok {
			continue
		}
		if err := p.SetAdjustment(field, adj); err != nil {
			return nil, err
		}
	}

	apply := func(id domain.ScenarioID, metrics map[domain.MetricField]decimal.Decimal) error {
		for _, field := range domain.MetricFields {
			v, ok := metrics[field]
			if !ok {
				continue
			}
			if err := p.SetMetric(id, field, v); err != nil {
				return err
			}
		}
		return nil
	}
	if err := apply(domain.ScenarioBase, in.Base); err != nil {
		return nil, err
	}
	if !in.Derive() {
		if err := apply(domain.ScenarioOptimistic, in.Optimistic); err != nil {
			return nil, err
		}
		if err := apply(domain.ScenarioPessimistic, in.Pessimistic); err != nil {
			return nil, err
		}
	} else if len(in.Optimistic) > 0 || len(in.Pessimistic) > 0 {
		ce.Logger.Warnf("scenarios: optimistic and pessimistic metrics are ignored while auto_derive is on")
	}

	if len(in.Probabilities) > 0 {
		// Zero first so that a full 100 split can always be stored.
		for _, id := range domain.ScenarioIDs {
			if _, err := p.SetProbability(id, decimal.Zero); err != nil {
				return nil, err
			}
		}
		for _, id := range domain.ScenarioIDs {
			v, ok := in.Probabilities[id]
			if !ok {
				v = scenario.DefaultProbabilities[id]
			}
			stored, err := p.SetProbability(id, v)
			if err != nil {
				return nil, err
			}
			if !stored.Equal(v) {
				ce.Logger.Warnf("scenarios: %s probability %s clamped to %s", id, v.String(), stored.String())
			}
		}
	}

	return &ScenarioReport{
		SessionID: p.SessionID,
		Scenarios: p.Scenarios(),
		Expected:  p.ComputeExpected(),
	}, nil
}

// RunSubscription projects and summarizes the subscription section.
func (ce *CalculationEngine) RunSubscription(in *config.SubscriptionInput) (*SubscriptionReport, error) {
	metrics, err := in.Domain()
	if err != nil {
		return nil, err
	}
	months := in.Months
	if months == 0 {
		months = ce.Settings.Projection.SubscriptionMonths
	}
	projections, err := subscription.Project(metrics, months)
	if err != nil {
		return nil, err
	}
	summary, err := subscription.Summarize(projections)
	if err != nil {
		return nil, err
	}
	return &SubscriptionReport{Projections: projections, Summary: summary}, nil
}

// RunCashFlow projects and summarizes the cash-flow section. A degenerate
// summary is returned as an error alongside the projection.
func (ce *CalculationEngine) RunCashFlow(in *config.CashFlowInput) (*CashFlowReport, error) {
	data, err := in.Domain()
	if err != nil {
		return nil, err
	}
	months := in.Months
	if months == 0 {
		months = ce.Settings.Projection.CashFlowMonths
	}
	projections, err := cashflow.Project(data, months)
	if err != nil {
		return nil, err
	}
	report := &CashFlowReport{Projections: projections}
	summary, err := cashflow.Summarize(projections)
	if err != nil {
		return report, err
	}
	report.Summary = &summary
	return report, nil
}

// RunRatios calculates the ratios section.
func (ce *CalculationEngine) RunRatios(in *config.RatiosInput) (*ratios.Ratios, error) {
	st, err := in.Domain()
	if err != nil {
		return nil, err
	}
	r, err := ratios.Calculate(st)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RunValuation values the business from the valuation section.
func (ce *CalculationEngine) RunValuation(in *config.ValuationInput) (*valuation.Result, error) {
	vi, err := in.Domain()
	if err != nil {
		return nil, err
	}
	res, err := valuation.Calculate(vi)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Payloads freezes each successful result for the narrative analyst, in
// calculator order.
func (r *Report) Payloads() ([]narrative.Payload, error) {
	results := []struct {
		calc   narrative.Calculator
		result any
		ok     bool
	}{
		{narrative.CalculatorBreakEven, r.BreakEven, r.BreakEven != nil},
		{narrative.CalculatorPricing, r.Pricing, r.Pricing != nil},
		{narrative.CalculatorScenarios, r.Scenarios, r.Scenarios != nil},
		{narrative.CalculatorSubscription, r.Subscription, r.Subscription != nil},
		{narrative.CalculatorCashFlow, r.CashFlow, r.CashFlow != nil && r.CashFlow.Summary != nil},
		{narrative.CalculatorRatios, r.Ratios, r.Ratios != nil},
		{narrative.CalculatorValuation, r.Valuation, r.Valuation != nil},
	}
	var payloads []narrative.Payload
	for _, res := range results {
		if !res.ok {
			continue
		}
		p, err := narrative.NewPayload(res.calc, res.result)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// Describe sends every payload of report to analyst, each bounded by the
// configured narrative timeout. The channels are returned at once, in
// payload order, and each yields a single outcome.
func (ce *CalculationEngine) Describe(ctx context.Context, report *Report, analyst narrative.Analyst) ([]<-chan narrative.Outcome, error) {
	payloads, err := report.Payloads()
	if err != nil {
		return nil, err
	}
	outcomes := make([]<-chan narrative.Outcome, 0, len(payloads))
	for _, p := range payloads {
		outcomes = append(outcomes, narrative.Dispatch(ctx, analyst, p, ce.Settings.Narrative.Timeout))
	}
	ce.Logger.Debugf("narrative: dispatched %d payloads (timeout %s)", len(payloads), ce.Settings.Narrative.Timeout)
	return outcomes, nil
}
