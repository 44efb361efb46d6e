package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rgehrsitz/bizcalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyst struct {
	reply  string
	err    error
	prompt string
}

func (s *stubAnalyst) Generate(_ context.Context, _, userPrompt string) (string, error) {
	s.prompt = userPrompt
	return s.reply, s.err
}

func TestNewPayload_IsPlainJSON(t *testing.T) {
	analysis := domain.BreakEvenAnalysis{
		Point:        decimal.NewFromInt(30),
		OptimalPrice: decimal.NewFromFloat(37.5),
	}
	p, err := NewPayload(CalculatorBreakEven, analysis)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(p.Data, &decoded))
	assert.Equal(t, "30", decoded["point"])
	assert.Equal(t, "37.5", decoded["optimalPrice"])

	analysis.Point = decimal.NewFromInt(99)
	assert.Contains(t, string(p.Data), `"point":"30"`, "payload is frozen at creation")
}

func TestNewPayload_AbsentElasticityIsNull(t *testing.T) {
	p, err := NewPayload(CalculatorPricing, domain.MarketData{CompetitorPrice: decimal.NewFromInt(40), MarketSize: 10})
	require.NoError(t, err)
	assert.Contains(t, string(p.Data), `"priceElasticity":null`)
}

func TestNewPayload_RejectsUnencodable(t *testing.T) {
	_, err := NewPayload(CalculatorRatios, map[string]any{"f": func() {}})
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	p := Payload{ID: "x", Calculator: CalculatorCashFlow, Data: json.RawMessage(`{"months":60}`)}
	prompt := BuildPrompt(p)
	assert.Contains(t, prompt, "cash flow projection")
	assert.Contains(t, prompt, `{"months":60}`)
}

func TestParseCommentary(t *testing.T) {
	c := ParseCommentary("## Analysis\nMargins are thin.\n\n**Recommendations:**\n- Raise prices\n")
	assert.Equal(t, "Margins are thin.", c.Analysis)
	assert.Equal(t, "- Raise prices", c.Recommendations)

	c = ParseCommentary("Just prose.")
	assert.Equal(t, "Just prose.", c.Analysis)
	assert.Empty(t, c.Recommendations)
}

func TestParseCommentary_JSON(t *testing.T) {
	c := ParseCommentary("```json\n{\"analysis\": \"Margins are thin.\", \"recommendations\": \"Raise prices\"}\n```")
	assert.Equal(t, "Margins are thin.", c.Analysis)
	assert.Equal(t, "Raise prices", c.Recommendations)

	c = ParseCommentary(`{"analysis": "Cash runs short in March", "recommendations": "Delay the hire",}`)
	assert.Equal(t, "Cash runs short in March", c.Analysis)
	assert.Equal(t, "Delay the hire", c.Recommendations)

	c = ParseCommentary(`{"verdict": "fine"}`)
	assert.Equal(t, `{"verdict": "fine"}`, c.Analysis, "unrelated JSON is kept as prose")
}

func TestDispatch(t *testing.T) {
	p, err := NewPayload(CalculatorValuation, map[string]int{"ev": 100})
	require.NoError(t, err)

	analyst := &stubAnalyst{reply: "ANALYSIS\nFair value.\nRECOMMENDATIONS\nHold."}
	select {
	case out := <-Dispatch(context.Background(), analyst, p, time.Second):
		require.NoError(t, out.Err)
		assert.Equal(t, p.ID, out.Commentary.PayloadID)
		assert.Equal(t, "Fair value.", out.Commentary.Analysis)
		assert.Equal(t, "Hold.", out.Commentary.Recommendations)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch never delivered")
	}
	assert.Contains(t, analyst.prompt, `{"ev":100}`)
}

func TestDispatch_Errors(t *testing.T) {
	p := Payload{Calculator: CalculatorRatios}

	out := <-Dispatch(context.Background(), &stubAnalyst{err: errors.New("quota")}, p, 0)
	assert.ErrorContains(t, out.Err, "quota")

	out = <-Dispatch(context.Background(), nil, p, 0)
	assert.Error(t, out.Err)
}
