package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/bizcalc/internal/calculation"
	"github.com/rgehrsitz/bizcalc/internal/config"
	"github.com/rgehrsitz/bizcalc/internal/narrative"
	"github.com/rgehrsitz/bizcalc/internal/output"
	"github.com/spf13/cobra"
)

// calculatorCommand runs one section of the input document
type calculatorCommand struct {
	use   string
	short string
	calc  narrative.Calculator

	// pick copies the command's section into a fresh input, or returns nil
	pick func(in *config.Input) *config.Input

	months bool // accepts --months
	count  bool // accepts --count

	// export writes the record CSV for --export, when the command has one
	export func(report *calculation.Report) (string, error)
}

var calculatorCommands = []calculatorCommand{
	{
		use:   "break-even [input-file]",
		short: "Solve the break-even section for units, price or a profit target",
		calc:  narrative.CalculatorBreakEven,
		pick: func(in *config.Input) *config.Input {
			if in.BreakEven == nil {
				return nil
			}
			return &config.Input{BreakEven: in.BreakEven}
		},
	},
	{
		use:   "pricing [input-file]",
		short: "Sweep candidate prices and pick the most profitable",
		calc:  narrative.CalculatorPricing,
		pick: func(in *config.Input) *config.Input {
			if in.Pricing == nil {
				return nil
			}
			return &config.Input{Pricing: in.Pricing}
		},
		count: true,
		export: func(report *calculation.Report) (string, error) {
			if report.Pricing == nil {
				return "", errNothingToExport
			}
			return output.PricingCSV(report.Pricing.Scenarios)
		},
	},
	{
		use:   "scenarios [input-file]",
		short: "Plan base, optimistic and pessimistic cases and their expected outcome",
		calc:  narrative.CalculatorScenarios,
		pick: func(in *config.Input) *config.Input {
			if in.Scenarios == nil {
				return nil
			}
			return &config.Input{Scenarios: in.Scenarios}
		},
	},
	{
		use:   "subscription [input-file]",
		short: "Project subscription customers, revenue and profit by month",
		calc:  narrative.CalculatorSubscription,
		pick: func(in *config.Input) *config.Input {
			if in.Subscription == nil {
				return nil
			}
			return &config.Input{Subscription: in.Subscription}
		},
		months: true,
		export: func(report *calculation.Report) (string, error) {
			if report.Subscription == nil {
				return "", errNothingToExport
			}
			return output.SubscriptionCSV(report.Subscription.Projections)
		},
	},
	{
		use:   "cash-flow [input-file]",
		short: "Project monthly cash flow with growth and seasonality",
		calc:  narrative.CalculatorCashFlow,
		pick: func(in *config.Input) *config.Input {
			if in.CashFlow == nil {
				return nil
			}
			return &config.Input{CashFlow: in.CashFlow}
		},
		months: true,
		export: func(report *calculation.Report) (string, error) {
			if report.CashFlow == nil {
				return "", errNothingToExport
			}
			return output.CashFlowCSV(report.CashFlow.Projections)
		},
	},
	{
		use:   "ratios [input-file]",
		short: "Calculate liquidity, leverage and profitability ratios",
		calc:  narrative.CalculatorRatios,
		pick: func(in *config.Input) *config.Input {
			if in.Ratios == nil {
				return nil
			}
			return &config.Input{Ratios: in.Ratios}
		},
	},
	{
		use:   "valuation [input-file]",
		short: "Value the business by multiples and discounted cash flow",
		calc:  narrative.CalculatorValuation,
		pick: func(in *config.Input) *config.Input {
			if in.Valuation == nil {
				return nil
			}
			return &config.Input{Valuation: in.Valuation}
		},
	},
}

func (c calculatorCommand) command(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   c.use,
		Short: c.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			picked := c.pick(in)
			if picked == nil {
				return fmt.Errorf("%s has no %s section", args[0], c.calc)
			}
			if err := applyOverrides(cmd, picked); err != nil {
				return err
			}
			report, runErr := a.run(cmd, picked)
			if report == nil {
				return runErr
			}
			if path, _ := cmd.Flags().GetString("export"); path != "" && c.export != nil {
				if err := writeExport(path, report, c.export); err != nil {
					return err
				}
				a.logger.Infof("exported %s records to %s", c.calc, path)
			}
			return runErr
		},
	}
	if c.export != nil {
		cmd.Flags().String("export", "", "Write the projection records to a CSV file")
	}
	if c.months {
		cmd.Flags().Int("months", 0, "Months to project (default from input, then settings)")
	}
	if c.count {
		cmd.Flags().Int("count", 0, "Number of pricing scenarios (default from input, then settings)")
	}
	return cmd
}

func analyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [input-file]",
		Short: "Run every calculator whose section is present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			if err := applyOverrides(cmd, in); err != nil {
				return err
			}
			_, err = a.run(cmd, in)
			return err
		},
	}
	cmd.Flags().Int("months", 0, "Months to project for subscription and cash flow")
	cmd.Flags().Int("count", 0, "Number of pricing scenarios")
	return cmd
}

// applyOverrides lets --months and --count win over the input document
func applyOverrides(cmd *cobra.Command, in *config.Input) error {
	if f := cmd.Flags().Lookup("months"); f != nil && f.Changed {
		months, _ := cmd.Flags().GetInt("months")
		if months < 1 {
			return fmt.Errorf("--months must be at least 1, got %d", months)
		}
		if in.Subscription != nil {
			in.Subscription.Months = months
		}
		if in.CashFlow != nil {
			in.CashFlow.Months = months
		}
	}
	if f := cmd.Flags().Lookup("count"); f != nil && f.Changed {
		count, _ := cmd.Flags().GetInt("count")
		if count < 2 {
			return fmt.Errorf("--count must be at least 2, got %d", count)
		}
		if in.Pricing != nil {
			in.Pricing.NumScenarios = count
		}
	}
	return nil
}

var errNothingToExport = errors.New("no projection to export")

// run executes the engine and writes the formatted report. Results are
// printed even when a calculator failed; the failure becomes the returned
// error alongside the report.
func (a *app) run(cmd *cobra.Command, in *config.Input) (*calculation.Report, error) {
	formatter, err := output.GetFormatterByName(a.settings.Output.Format)
	if err != nil {
		return nil, err
	}

	engine := calculation.NewCalculationEngineWithSettings(*a.settings)
	engine.SetLogger(a.logger)

	a.logger.Infof("running %s", strings.Join(in.Sections(), ", "))
	report, err := engine.Run(cmd.Context(), in)
	if err != nil {
		return nil, err
	}

	text, err := formatter.Format(report)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)

	if report.Failed() {
		var failed []string
		for _, c := range narrative.Calculators {
			if _, ok := report.Errors[c]; ok {
				failed = append(failed, string(c))
			}
		}
		return report, fmt.Errorf("calculation failed for %s", strings.Join(failed, ", "))
	}
	return report, nil
}

func writeExport(path string, report *calculation.Report, export func(*calculation.Report) (string, error)) error {
	data, err := export(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write export %s: %w", path, err)
	}
	return nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate an input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Input file %s is valid (sections: %s)\n", args[0], strings.Join(in.Sections(), ", "))
			return nil
		},
	}
}
