package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings are the runtime options of the CLI, distinct from calculator
// inputs. Each key can be overridden by a BIZCALC_* environment variable,
// e.g. BIZCALC_LOGGING_LEVEL.
type Settings struct {
	Logging    LoggingSettings    `mapstructure:"logging"`
	Output     OutputSettings     `mapstructure:"output"`
	Projection ProjectionSettings `mapstructure:"projection"`
	Narrative  NarrativeSettings  `mapstructure:"narrative"`
}

// LoggingSettings holds logging configuration options
type LoggingSettings struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // console, json
	OutputFile string `mapstructure:"output_file"` // optional file output
}

// OutputSettings holds output format configuration options
type OutputSettings struct {
	Format string `mapstructure:"format"` // console, table, csv, json, prompt
}

// ProjectionSettings are the horizons used when an input omits them.
type ProjectionSettings struct {
	SubscriptionMonths int `mapstructure:"subscription_months"`
	CashFlowMonths     int `mapstructure:"cash_flow_months"`
	PricingScenarios   int `mapstructure:"pricing_scenarios"`
}

// NarrativeSettings bound the external analyst request.
type NarrativeSettings struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Logging:    LoggingSettings{Level: "info", Format: "console"},
		Output:     OutputSettings{Format: "console"},
		Projection: ProjectionSettings{SubscriptionMonths: 12, CashFlowMonths: 60, PricingScenarios: 10},
		Narrative:  NarrativeSettings{Timeout: 30 * time.Second},
	}
}

// LoadSettings reads an optional settings file and the environment. An
// empty path means defaults plus environment only.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	def := DefaultSettings()
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output_file", def.Logging.OutputFile)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("projection.subscription_months", def.Projection.SubscriptionMonths)
	v.SetDefault("projection.cash_flow_months", def.Projection.CashFlowMonths)
	v.SetDefault("projection.pricing_scenarios", def.Projection.PricingScenarios)
	v.SetDefault("narrative.timeout", def.Narrative.Timeout)

	v.SetEnvPrefix("BIZCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file, %s", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unable to decode settings, %s", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadEnvFile exports the variables of a dotenv file so that BIZCALC_*
// overrides can live next to the input documents. Variables already set in
// the process environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}
	return nil
}

// Validate rejects horizons the calculators cannot use.
func (s Settings) Validate() error {
	if s.Projection.SubscriptionMonths < 1 {
		return fmt.Errorf("projection.subscription_months must be at least 1")
	}
	if s.Projection.CashFlowMonths < 1 {
		return fmt.Errorf("projection.cash_flow_months must be at least 1")
	}
	if s.Projection.PricingScenarios < 2 {
		return fmt.Errorf("projection.pricing_scenarios must be at least 2")
	}
	return nil
}
