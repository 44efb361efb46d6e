// Package output renders calculation reports for the terminal and for
// downstream tools.
package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/bizcalc/internal/calculation"
	"github.com/shopspring/decimal"
)

// Formatter renders a report in one output format
type Formatter interface {
	Name() string
	Format(report *calculation.Report) (string, error)
}

// Formats lists the names accepted by GetFormatterByName
var Formats = []string{"console", "table", "csv", "json", "prompt"}

// GetFormatterByName returns the formatter registered under name
func GetFormatterByName(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "console", "":
		return &ConsoleFormatter{}, nil
	case "table":
		return &TableFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	case "prompt":
		return &PromptFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (valid: %s)", name, strings.Join(Formats, ", "))
	}
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

func formatShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

func deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
