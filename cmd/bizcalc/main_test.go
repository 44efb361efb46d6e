package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const businessFile = "../../internal/config/testdata/business.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--env-file", "", "--log-level", "error"))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "bizcalc", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	for _, name := range []string{"settings", "env-file", "format", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCommandSubcommands(t *testing.T) {
	expectedCommands := []string{
		"analyze",
		"break-even",
		"pricing",
		"scenarios",
		"subscription",
		"cash-flow",
		"ratios",
		"valuation",
		"validate",
		"version",
	}

	registered := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expectedCommands {
		assert.True(t, registered[name], "Expected command '%s' to be registered with root command", name)
	}
}

func TestFileExists(t *testing.T) {
	assert.True(t, fileExists(businessFile))
	assert.False(t, fileExists("non_existing_file.txt"))
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, err := execute(t, "invalid-command")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bizcalc dev")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", businessFile)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "cash_flow")

	_, err = execute(t, "validate", "missing.yaml")
	assert.Error(t, err)
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	out, err := execute(t, "analyze", businessFile, "--format", "json", "--months", "6")
	require.NoError(t, err)

	var report struct {
		BreakEven    map[string]any `json:"breakEven"`
		Subscription struct {
			Projections []any `json:"projections"`
		} `json:"subscription"`
		CashFlow struct {
			Projections []any `json:"projections"`
		} `json:"cashFlow"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.BreakEven)
	assert.Len(t, report.Subscription.Projections, 6)
	assert.Len(t, report.CashFlow.Projections, 6)
}

func TestPricingCommand_Count(t *testing.T) {
	out, err := execute(t, "pricing", businessFile, "--format", "csv", "--count", "3")
	require.NoError(t, err)
	assert.Equal(t, 3*7, strings.Count(out, "pricing,scenario,"), "seven rows per scenario")
	assert.NotContains(t, out, "break_even,,,")

	_, err = execute(t, "pricing", businessFile, "--count", "1")
	assert.ErrorContains(t, err, "--count")
}

func TestCalculatorCommand_MissingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratios.yaml")
	doc := `
ratios:
  current_assets: 50000
  inventory: 10000
  current_liabilities: 25000
  total_assets: 200000
  total_liabilities: 80000
  shareholder_equity: 120000
  revenue: 300000
  cost_of_goods_sold: 180000
  operating_income: 45000
  net_income: 30000
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, "ratios", path, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "FINANCIAL RATIOS")
	assert.NotContains(t, out, "Interest Coverage")

	_, err = execute(t, "valuation", path)
	assert.ErrorContains(t, err, "no valuation section")
}

func TestCalculatorCommand_FailureStillPrints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "break_even.yaml")
	doc := `
break_even:
  mode: standard
  fixed_costs: 12000
  variable_cost_per_unit: 25
  price_per_unit: 25
  units: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, "break-even", path, "--format", "table")
	assert.ErrorContains(t, err, "calculation failed for break_even")
	assert.Contains(t, out, "ERRORS")
}

func TestSettingsFlag(t *testing.T) {
	out, err := execute(t, "subscription", businessFile, "--settings", "../../internal/config/testdata/settings.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Calculator,Series,Period,Metric,Value"), "settings file selects csv output")
}

func TestCashFlowCommand_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cash_flow.csv")
	_, err := execute(t, "cash-flow", businessFile, "--format", "json", "--months", "3", "--export", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4, "header plus one row per month")
	assert.True(t, strings.HasPrefix(lines[0], "Month,Index,Revenue"))
	assert.True(t, strings.HasPrefix(lines[1], "January Year 1,0,"))
}
