// Package scenario maintains the base, optimistic and pessimistic planning
// cases and their probability-weighted outlook.
package scenario

import (
	"github.com/google/uuid"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/rgehrsitz/bizcalc/internal/logging"
	"github.com/shopspring/decimal"
)

const (
	opSetBase        = "set_base_metric"
	opSetMetric      = "set_metric"
	opSetAdjustment  = "set_adjustment"
	opSetProbability = "set_probability"
)

// DefaultProbabilities are the starting weights of a fresh planner.
var DefaultProbabilities = map[domain.ScenarioID]decimal.Decimal{
	domain.ScenarioBase:        decimal.NewFromInt(60),
	domain.ScenarioOptimistic:  decimal.NewFromInt(25),
	domain.ScenarioPessimistic: decimal.NewFromInt(15),
}

// DefaultAdjustments returns the multiplier table a planner starts with.
// Baseline clients is never propagated.
func DefaultAdjustments() map[domain.MetricField]domain.ScenarioAdjustment {
	up := domain.ScenarioAdjustment{
		OptimisticMultiplier:  decimal.NewFromFloat(1.2),
		PessimisticMultiplier: decimal.NewFromFloat(0.8),
	}
	down := domain.ScenarioAdjustment{
		OptimisticMultiplier:  decimal.NewFromFloat(0.9),
		PessimisticMultiplier: decimal.NewFromFloat(1.1),
	}
	return map[domain.MetricField]domain.ScenarioAdjustment{
		domain.MetricRevenue:           up,
		domain.MetricCosts:             down,
		domain.MetricMarketShare:       up,
		domain.MetricCustomerGrowth:    up,
		domain.MetricOperatingExpenses: down,
		domain.MetricProfitMargin:      up,
	}
}

var descriptions = map[domain.ScenarioID][2]string{
	domain.ScenarioBase:        {"Base Case", "Most likely outcome under current assumptions"},
	domain.ScenarioOptimistic:  {"Optimistic Case", "Favourable market and execution"},
	domain.ScenarioPessimistic: {"Pessimistic Case", "Adverse market and execution"},
}

// Planner holds one planning session. Every mutation keeps the probability
// total at or below 100. A Planner is not safe for concurrent use.
type Planner struct {
	SessionID   string
	scenarios   map[domain.ScenarioID]*domain.Scenario
	adjustments map[domain.MetricField]domain.ScenarioAdjustment
	autoDerive  bool
	logger      logging.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger attaches a logger; nil selects the no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Planner) {
		if l == nil {
			l = logging.NopLogger{}
		}
		p.logger = l
	}
}

// NewPlanner creates a planner in auto-derive mode with default
// probabilities and adjustments and zeroed metrics.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		SessionID: uuid.NewString(),
		logger:    logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

// Reset restores default scenarios, probabilities and adjustments.
func (p *Planner) Reset() {
	p.scenarios = make(map[domain.ScenarioID]*domain.Scenario, len(domain.ScenarioIDs))
	for _, id := range domain.ScenarioIDs {
		desc := descriptions[id]
		p.scenarios[id] = &domain.Scenario{
			ID:          id,
			Name:        desc[0],
			Description: desc[1],
			Probability: DefaultProbabilities[id],
		}
	}
	p.adjustments = DefaultAdjustments()
	p.autoDerive = true
	p.logger.Debugf("scenario planner %s reset to defaults", p.SessionID)
}

// AutoDerive reports whether optimistic and pessimistic metrics follow the base.
func (p *Planner) AutoDerive() bool { return p.autoDerive }

// SetAutoDerive switches modes. Turning it on re-derives every adjusted field
// from the current base values.
func (p *Planner) SetAutoDerive(on bool) {
	p.autoDerive = on
	if on {
		for field := range p.adjustments {
			p.propagate(field)
		}
	}
}

// SetBaseMetric updates a base metric and, in auto-derive mode, the derived
// optimistic and pessimistic values for that field.
func (p *Planner) SetBaseMetric(field domain.MetricField, value decimal.Decimal) error {
	if err := validateMetric(opSetBase, field, value); err != nil {
		return err
	}
	p.scenarios[domain.ScenarioBase].Metrics.Set(field, value)
	if p.autoDerive {
		p.propagate(field)
	}
	return nil
}

// SetMetric edits a metric of any scenario. Non-base scenarios are read-only
// while auto-derive is on.
func (p *Planner) SetMetric(id domain.ScenarioID, field domain.MetricField, value decimal.Decimal) error {
	if id == domain.ScenarioBase {
		return p.SetBaseMetric(field, value)
	}
	s, ok := p.scenarios[id]
	if !ok {
		return domain.InvalidInput(opSetMetric, "scenario", "unknown scenario %q", id)
	}
	if p.autoDerive {
		return domain.InvariantViolation(opSetMetric, string(field),
			"%s metrics are derived from the base case; edit the multiplier or disable auto-derive", id)
	}
	if err := validateMetric(opSetMetric, field, value); err != nil {
		return err
	}
	s.Metrics.Set(field, value)
	return nil
}

// Adjustment returns the multipliers for field, if any.
func (p *Planner) Adjustment(field domain.MetricField) (domain.ScenarioAdjustment, bool) {
	adj, ok := p.adjustments[field]
	return adj, ok
}

// SetAdjustment replaces the multipliers for field and immediately recomputes
// that field from the current base value.
func (p *Planner) SetAdjustment(field domain.MetricField, adj domain.ScenarioAdjustment) error {
	if _, err := domain.ParseMetricField(string(field)); err != nil {
		return domain.InvalidInput(opSetAdjustment, string(field), "%v", err)
	}
	if field == domain.MetricBaselineClients {
		return domain.InvalidInput(opSetAdjustment, string(field), "baseline clients are not propagated")
	}
	if err := domain.FirstError(
		domain.RequirePositive(opSetAdjustment, "optimisticMultiplier", adj.OptimisticMultiplier),
		domain.RequirePositive(opSetAdjustment, "pessimisticMultiplier", adj.PessimisticMultiplier),
	); err != nil {
		return err
	}
	p.adjustments[field] = adj
	if p.autoDerive {
		p.propagate(field)
	}
	return nil
}

// SetProbability stores value clamped to [0, 100 - sum of the other two] and
// returns what was stored.
func (p *Planner) SetProbability(id domain.ScenarioID, value decimal.Decimal) (decimal.Decimal, error) {
	s, ok := p.scenarios[id]
	if !ok {
		return decimal.Zero, domain.InvalidInput(opSetProbability, "scenario", "unknown scenario %q", id)
	}
	others := decimal.Zero
	for otherID, other := range p.scenarios {
		if otherID != id {
			others = others.Add(other.Probability)
		}
	}
	ceiling := decimal.Max(domain.Hundred().Sub(others), decimal.Zero)
	stored := decimal.Min(decimal.Max(value, decimal.Zero), ceiling)
	if !stored.Equal(value) {
		p.logger.Debugf("scenario planner %s: %s probability %s clamped to %s",
			p.SessionID, id, value.String(), stored.String())
	}
	s.Probability = stored
	return stored, nil
}

// Scenario returns a copy of one scenario with its expected values filled in.
func (p *Planner) Scenario(id domain.ScenarioID) (domain.Scenario, bool) {
	s, ok := p.scenarios[id]
	if !ok {
		return domain.Scenario{}, false
	}
	out := *s
	out.Metrics.ExpectedRevenue = weighted(s.Metrics.Revenue, s.Probability)
	out.Metrics.ExpectedProfit = weighted(s.Metrics.Profit(), s.Probability)
	return out, true
}

// Scenarios returns copies of all three scenarios in display order.
func (p *Planner) Scenarios() []domain.Scenario {
	out := make([]domain.Scenario, 0, len(domain.ScenarioIDs))
	for _, id := range domain.ScenarioIDs {
		s, _ := p.Scenario(id)
		out = append(out, s)
	}
	return out
}

// ComputeExpected weights each scenario by probability/100 without
// normalising, so totals under 100 give a conservative expectation.
func (p *Planner) ComputeExpected() domain.ExpectedOutcome {
	var out domain.ExpectedOutcome
	for i, id := range domain.ScenarioIDs {
		s := p.scenarios[id]
		m := s.Metrics
		out.ExpectedRevenue = out.ExpectedRevenue.Add(weighted(m.Revenue, s.Probability))
		out.ExpectedProfit = out.ExpectedProfit.Add(weighted(m.Profit(), s.Probability))
		out.TotalProbability = out.TotalProbability.Add(s.Probability)
		if i == 0 {
			out.MarketShareRange = domain.Range{Min: m.MarketShare, Max: m.MarketShare}
			out.CustomerGrowthRange = domain.Range{Min: m.CustomerGrowth, Max: m.CustomerGrowth}
			continue
		}
		out.MarketShareRange = widen(out.MarketShareRange, m.MarketShare)
		out.CustomerGrowthRange = widen(out.CustomerGrowthRange, m.CustomerGrowth)
	}
	return out
}

func (p *Planner) propagate(field domain.MetricField) {
	adj, ok := p.adjustments[field]
	if !ok {
		return
	}
	base := p.scenarios[domain.ScenarioBase].Metrics.Get(field)
	p.scenarios[domain.ScenarioOptimistic].Metrics.Set(field, base.Mul(adj.OptimisticMultiplier))
	p.scenarios[domain.ScenarioPessimistic].Metrics.Set(field, base.Mul(adj.PessimisticMultiplier))
}

func validateMetric(op string, field domain.MetricField, value decimal.Decimal) error {
	switch field {
	case domain.MetricProfitMargin:
		return nil
	case domain.MetricMarketShare:
		return domain.RequirePercent(op, string(field), value)
	case domain.MetricRevenue, domain.MetricCosts, domain.MetricCustomerGrowth,
		domain.MetricBaselineClients, domain.MetricOperatingExpenses:
		return domain.RequireNonNegative(op, string(field), value)
	}
	return domain.InvalidInput(op, string(field), "unknown metric field")
}

func weighted(v, probability decimal.Decimal) decimal.Decimal {
	return v.Mul(probability).Div(domain.Hundred())
}

func widen(r domain.Range, v decimal.Decimal) domain.Range {
	return domain.Range{Min: decimal.Min(r.Min, v), Max: decimal.Max(r.Max, v)}
}
