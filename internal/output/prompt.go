package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/bizcalc/internal/calculation"
	"github.com/rgehrsitz/bizcalc/internal/narrative"
)

// PromptFormatter renders the analyst prompts a report would send, so they
// can be pasted into any model by hand.
type PromptFormatter struct{}

func (pf *PromptFormatter) Name() string { return "prompt" }

func (pf *PromptFormatter) Format(report *calculation.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to format")
	}
	payloads, err := report.Payloads()
	if err != nil {
		return "", err
	}
	if len(payloads) == 0 {
		return "", fmt.Errorf("report has no results to describe")
	}

	var sb strings.Builder
	sb.WriteString("SYSTEM\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString(narrative.SystemPrompt + "\n")
	for _, p := range payloads {
		sb.WriteString(fmt.Sprintf("\nUSER (%s, payload %s)\n", p.Calculator, p.ID))
		sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
		sb.WriteString(narrative.BuildPrompt(p) + "\n")
	}
	return sb.String(), nil
}
