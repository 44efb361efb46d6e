package calculation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rgehrsitz/bizcalc/internal/config"
	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/rgehrsitz/bizcalc/internal/narrative"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadInput(t *testing.T) *config.Input {
	t.Helper()
	in, err := config.NewInputParser().LoadFromFile("../config/testdata/business.yaml")
	require.NoError(t, err)
	return in
}

func TestNewCalculationEngine(t *testing.T) {
	engine := NewCalculationEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.Equal(t, 60, engine.Settings.Projection.CashFlowMonths)
}

func TestCalculationEngine_SetLogger(t *testing.T) {
	engine := NewCalculationEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestCalculationEngine_Run(t *testing.T) {
	engine := NewCalculationEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	report, err := engine.Run(context.Background(), loadInput(t))
	require.NoError(t, err)
	require.False(t, report.Failed(), "errors: %v", report.Errors)

	require.NotNil(t, report.BreakEven)
	assert.True(t, report.BreakEven.Units.Equal(decimal.NewFromInt(800)))

	require.NotNil(t, report.Pricing)
	assert.Len(t, report.Pricing.Scenarios, 5, "num_scenarios from input wins over settings")
	assert.True(t, report.Pricing.Optimal.Price.Equal(decimal.NewFromInt(50)))

	require.NotNil(t, report.Subscription)
	assert.Len(t, report.Subscription.Projections, 12, "settings default horizon")

	require.NotNil(t, report.CashFlow)
	assert.Len(t, report.CashFlow.Projections, 24)
	require.NotNil(t, report.CashFlow.Summary)

	assert.NotNil(t, report.Ratios)
	require.NotNil(t, report.Valuation)
	assert.True(t, report.Valuation.DCF.EnterpriseValue.Equal(decimal.NewFromInt(1475)))

	assert.NotEmpty(t, logger.messages)
}

func TestCalculationEngine_RunScenarios(t *testing.T) {
	report, err := NewCalculationEngine().RunScenarios(loadInput(t).Scenarios)
	require.NoError(t, err)

	assert.NotEmpty(t, report.SessionID)
	require.Len(t, report.Scenarios, 3)
	opt := report.Scenarios[1]
	pes := report.Scenarios[2]
	assert.True(t, opt.Metrics.Revenue.Equal(decimal.NewFromInt(1300)), "custom revenue multiplier")
	assert.True(t, opt.Metrics.Costs.Equal(decimal.NewFromInt(360)), "default cost multiplier")
	assert.True(t, pes.Metrics.Revenue.Equal(decimal.NewFromInt(700)))

	assert.True(t, report.Expected.ExpectedRevenue.Equal(decimal.NewFromInt(1030)), "got %s", report.Expected.ExpectedRevenue)
	assert.True(t, report.Expected.ExpectedProfit.Equal(decimal.NewFromInt(634)), "got %s", report.Expected.ExpectedProfit)
	assert.True(t, report.Expected.TotalProbability.Equal(decimal.NewFromInt(100)))
}

func TestCalculationEngine_RunScenarios_ClampsOverAllocation(t *testing.T) {
	in := &config.ScenarioInput{
		Base: map[domain.MetricField]decimal.Decimal{domain.MetricRevenue: decimal.NewFromInt(100)},
		Probabilities: map[domain.ScenarioID]decimal.Decimal{
			domain.ScenarioBase:        decimal.NewFromInt(70),
			domain.ScenarioOptimistic:  decimal.NewFromInt(40),
			domain.ScenarioPessimistic: decimal.NewFromInt(20),
		},
	}
	report, err := NewCalculationEngine().RunScenarios(in)
	require.NoError(t, err)

	assert.True(t, report.Scenarios[1].Probability.Equal(decimal.NewFromInt(30)))
	assert.True(t, report.Scenarios[2].Probability.IsZero())
	assert.True(t, report.Expected.TotalProbability.Equal(decimal.NewFromInt(100)))
}

func TestCalculationEngine_Run_IsolatesFailures(t *testing.T) {
	in := loadInput(t)
	price := decimal.NewFromInt(25)
	in.BreakEven.PricePerUnit = &price

	report, err := NewCalculationEngine().Run(context.Background(), in)
	require.NoError(t, err)

	require.True(t, report.Failed())
	assert.Nil(t, report.BreakEven)
	assert.ErrorIs(t, report.Errors[narrative.CalculatorBreakEven], domain.ErrArithmeticDegenerate)
	assert.NotNil(t, report.Pricing, "other calculators still run")
	assert.NotNil(t, report.Valuation)
}

func TestCalculationEngine_Run_DegenerateCashFlowKeepsProjection(t *testing.T) {
	in := &config.Input{CashFlow: loadInput(t).CashFlow}
	in.CashFlow.ProductSales = nil
	in.CashFlow.SubscriptionRevenue = nil
	zero := decimal.Zero
	in.CashFlow.OtherRevenue.Affiliate = &zero

	report, err := NewCalculationEngine().Run(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, report.CashFlow)
	assert.Len(t, report.CashFlow.Projections, 24)
	assert.Nil(t, report.CashFlow.Summary)
	assert.ErrorIs(t, report.Errors[narrative.CalculatorCashFlow], domain.ErrArithmeticDegenerate)

	payloads, err := report.Payloads()
	require.NoError(t, err)
	assert.Empty(t, payloads, "a cash flow without a summary is not sent for commentary")
}

func TestCalculationEngine_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCalculationEngine().Run(ctx, loadInput(t))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewCalculationEngine().Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestReport_Payloads(t *testing.T) {
	report, err := NewCalculationEngine().Run(context.Background(), loadInput(t))
	require.NoError(t, err)

	payloads, err := report.Payloads()
	require.NoError(t, err)
	require.Len(t, payloads, 7)
	assert.Equal(t, narrative.CalculatorBreakEven, payloads[0].Calculator)
	assert.Equal(t, narrative.CalculatorValuation, payloads[6].Calculator)
	for _, p := range payloads {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Data)
	}
}

func TestCalculationEngine_RunPricing_ExplicitRange(t *testing.T) {
	in := loadInput(t).Pricing
	minPrice, maxPrice := decimal.NewFromInt(60), decimal.NewFromInt(45)
	in.MinPrice, in.MaxPrice = &minPrice, &maxPrice

	report, err := NewCalculationEngine().Run(context.Background(), &config.Input{Pricing: in})
	require.NoError(t, err)
	assert.Nil(t, report.Pricing)
	assert.ErrorIs(t, report.Errors[narrative.CalculatorPricing], domain.ErrInvalidRange)

	in.MinPrice, in.MaxPrice = &maxPrice, &minPrice
	analysis, err := NewCalculationEngine().RunPricing(in)
	require.NoError(t, err)
	assert.True(t, analysis.Scenarios[0].Price.Equal(maxPrice))
	assert.True(t, analysis.Scenarios[len(analysis.Scenarios)-1].Price.Equal(minPrice))
}

// deadlineAnalyst fails unless the request carries a deadline.
type deadlineAnalyst struct{}

func (deadlineAnalyst) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("no deadline on request")
	}
	return "ANALYSIS\nHealthy margins.\nRECOMMENDATIONS\nHold prices.", nil
}

func TestCalculationEngine_Describe(t *testing.T) {
	engine := NewCalculationEngine()
	engine.Settings.Narrative.Timeout = time.Second

	report, err := engine.Run(context.Background(), loadInput(t))
	require.NoError(t, err)

	outcomes, err := engine.Describe(context.Background(), report, deadlineAnalyst{})
	require.NoError(t, err)
	require.Len(t, outcomes, len(narrative.Calculators))
	for _, ch := range outcomes {
		select {
		case out := <-ch:
			require.NoError(t, out.Err)
			assert.NotEmpty(t, out.Commentary.PayloadID)
			assert.Contains(t, out.Commentary.Recommendations, "Hold prices.")
		case <-time.After(5 * time.Second):
			t.Fatal("outcome not delivered")
		}
	}

	engine.Settings.Narrative.Timeout = 0
	outcomes, err = engine.Describe(context.Background(), report, deadlineAnalyst{})
	require.NoError(t, err)
	out := <-outcomes[0]
	assert.ErrorContains(t, out.Err, "no deadline", "a zero timeout leaves the request unbounded")
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "DEBUG: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Infof(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "INFO: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Warnf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "WARN: "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Errorf(format string, args ...interface{}) {
	tl.messages = append(tl.messages, "ERROR: "+fmt.Sprintf(format, args...))
}
