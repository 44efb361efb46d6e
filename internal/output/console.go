package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/bizcalc/internal/calculation"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorDanger  = lipgloss.Color("#FF5F87")
	colorMuted   = lipgloss.Color("#626262")

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorMuted).
			Width(ruleWidth)

	errorHeadingStyle = headingStyle.Foreground(colorDanger)

	bodyStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// ConsoleFormatter renders the table sections with styled headings. Colour
// is dropped automatically when stdout is not a terminal.
type ConsoleFormatter struct{}

func (cf *ConsoleFormatter) Name() string { return "console" }

func (cf *ConsoleFormatter) Format(report *calculation.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to format")
	}
	var blocks []string
	for _, s := range sections(report) {
		style := headingStyle
		if s.title == "ERRORS" {
			style = errorHeadingStyle
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left,
			style.Render(s.title),
			bodyStyle.Render(strings.TrimRight(s.body, "\n")),
		))
	}
	if len(blocks) == 0 {
		return "No results.\n", nil
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}
