// Package narrative freezes calculator results into prompt payloads for an
// external analyst and parses the commentary it returns. No model client
// lives here; callers supply an Analyst.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/google/uuid"
)

// Calculator identifies which model produced a payload.
type Calculator string

const (
	CalculatorBreakEven    Calculator = "break_even"
	CalculatorPricing      Calculator = "pricing"
	CalculatorScenarios    Calculator = "scenarios"
	CalculatorSubscription Calculator = "subscription"
	CalculatorCashFlow     Calculator = "cash_flow"
	CalculatorRatios       Calculator = "ratios"
	CalculatorValuation    Calculator = "valuation"
)

// Calculators lists every calculator in report order.
var Calculators = []Calculator{
	CalculatorBreakEven,
	CalculatorPricing,
	CalculatorScenarios,
	CalculatorSubscription,
	CalculatorCashFlow,
	CalculatorRatios,
	CalculatorValuation,
}

// Payload is an immutable snapshot of one result. Data holds plain JSON:
// objects, arrays, strings and numbers (decimals encode as strings).
type Payload struct {
	ID         string          `json:"id"`
	Calculator Calculator      `json:"calculator"`
	Data       json.RawMessage `json:"data"`
}

// NewPayload encodes result once; later changes to result do not reach the
// payload.
func NewPayload(calc Calculator, result any) (Payload, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to encode %s result: %w", calc, err)
	}
	return Payload{ID: uuid.NewString(), Calculator: calc, Data: data}, nil
}

// SystemPrompt frames the analyst's role.
const SystemPrompt = `You are a small-business financial analyst.
You receive the output of a deterministic planning calculator as JSON.
Do not recompute the figures; interpret them.

Respond in two sections, each starting with its heading on its own line:
ANALYSIS
RECOMMENDATIONS`

var subjects = map[Calculator]string{
	CalculatorBreakEven:    "break-even analysis",
	CalculatorPricing:      "pricing strategy sweep",
	CalculatorScenarios:    "three-case scenario plan",
	CalculatorSubscription: "subscription revenue projection",
	CalculatorCashFlow:     "cash flow projection",
	CalculatorRatios:       "financial ratio set",
	CalculatorValuation:    "business valuation",
}

// BuildPrompt embeds the payload verbatim into the user prompt.
func BuildPrompt(p Payload) string {
	subject, ok := subjects[p.Calculator]
	if !ok {
		subject = string(p.Calculator)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Review the following %s and explain what it means for the business.\n\n", subject)
	b.WriteString("```json\n")
	b.Write(p.Data)
	b.WriteString("\n```\n")
	return b.String()
}

// Analyst turns a prompt into commentary. Implementations wrap a model API.
type Analyst interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Commentary is the analyst's parsed response.
type Commentary struct {
	PayloadID       string `json:"payloadId"`
	Analysis        string `json:"analysis"`
	Recommendations string `json:"recommendations"`
}

// Outcome is delivered once on the channel returned by Dispatch.
type Outcome struct {
	Commentary Commentary
	Err        error
}

// Dispatch sends the payload to analyst on its own goroutine. The returned
// channel is buffered and receives exactly one Outcome, so nobody has to
// wait on it.
func Dispatch(ctx context.Context, analyst Analyst, p Payload, timeout time.Duration) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		if analyst == nil {
			out <- Outcome{Err: fmt.Errorf("no analyst configured")}
			return
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		text, err := analyst.Generate(ctx, SystemPrompt, BuildPrompt(p))
		if err != nil {
			out <- Outcome{Err: fmt.Errorf("analyst request for %s failed: %w", p.Calculator, err)}
			return
		}
		c := ParseCommentary(text)
		c.PayloadID = p.ID
		out <- Outcome{Commentary: c}
	}()
	return out
}

// ParseCommentary splits text on the ANALYSIS and RECOMMENDATIONS headings.
// Text without headings is treated as analysis. Models that answer with a
// JSON object instead are accepted too, after repair of the usual LLM
// damage such as trailing commas or single quotes.
func ParseCommentary(text string) Commentary {
	if c, ok := parseJSONCommentary(text); ok {
		return c
	}
	var c Commentary
	var analysis, recs []string
	section := &analysis
	for _, line := range strings.Split(text, "\n") {
		heading := strings.ToUpper(strings.Trim(strings.TrimSpace(line), "#*: "))
		switch heading {
		case "ANALYSIS":
			section = &analysis
			continue
		case "RECOMMENDATIONS":
			section = &recs
			continue
		}
		*section = append(*section, line)
	}
	c.Analysis = strings.TrimSpace(strings.Join(analysis, "\n"))
	c.Recommendations = strings.TrimSpace(strings.Join(recs, "\n"))
	return c
}

func parseJSONCommentary(text string) (Commentary, bool) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)
	if !strings.HasPrefix(trimmed, "{") {
		return Commentary{}, false
	}
	repaired, err := jsonrepair.RepairJSON(trimmed)
	if err != nil {
		return Commentary{}, false
	}
	var c Commentary
	if err := json.Unmarshal([]byte(repaired), &c); err != nil {
		return Commentary{}, false
	}
	c.PayloadID = ""
	if c.Analysis == "" && c.Recommendations == "" {
		return Commentary{}, false
	}
	c.Analysis = strings.TrimSpace(c.Analysis)
	c.Recommendations = strings.TrimSpace(c.Recommendations)
	return c, true
}
