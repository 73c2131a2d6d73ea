// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"github.com/iwvelando/mortgage-calc/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variables that override config keys,
// e.g. MORTGAGE_CALC_STANDARD_PRINCIPAL.
const EnvPrefix = "MORTGAGE_CALC"

// Configuration holds all configuration for mortgage-calc.
type Configuration struct {
	Standard StandardLoan  `mapstructure:"standard" yaml:"standard"`
	Combined CombinedPlan  `mapstructure:"combined" yaml:"combined"`
	Logging  LoggingConfig `mapstructure:"logging,omitempty" yaml:"logging,omitempty"`
	Output   OutputConfig  `mapstructure:"output,omitempty" yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level,omitempty" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format,omitempty" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile,omitempty" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format       string `mapstructure:"format,omitempty" yaml:"format,omitempty"`             // pretty, csv
	DateStrategy string `mapstructure:"dateStrategy,omitempty" yaml:"dateStrategy,omitempty"` // approximate, calendar
}

// StandardLoan holds the inputs of the standard calculator: one loan whose
// payment is solved from its term.
type StandardLoan struct {
	Principal  float64 `mapstructure:"principal" yaml:"principal"`
	AnnualRate float64 `mapstructure:"annualRate" yaml:"annualRate"`
	TermMonths int     `mapstructure:"termMonths" yaml:"termMonths"`
}

// CombinedPlan holds the inputs of the combined calculator: a property
// purchase financed by a subsidized loan and a bank loan that covers the rest.
type CombinedPlan struct {
	PropertyValue float64  `mapstructure:"propertyValue" yaml:"propertyValue"`
	Liquidity     float64  `mapstructure:"liquidity" yaml:"liquidity"`
	StartYear     int      `mapstructure:"startYear,omitempty" yaml:"startYear,omitempty"`
	Subsidized    LoanSpec `mapstructure:"subsidized" yaml:"subsidized"`
	Bank          LoanSpec `mapstructure:"bank" yaml:"bank"`
}

// LoanSpec describes one loan of the combined plan. The bank loan's Amount is
// derived from the plan and ignored when set.
type LoanSpec struct {
	Name                 string  `mapstructure:"name,omitempty" yaml:"name,omitempty"`
	Amount               float64 `mapstructure:"amount,omitempty" yaml:"amount,omitempty"`
	InitialRepaymentRate float64 `mapstructure:"initialRepaymentRate" yaml:"initialRepaymentRate"`
	AnnualRate           float64 `mapstructure:"annualRate" yaml:"annualRate"`
	TermYears            int     `mapstructure:"termYears" yaml:"termYears"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// Defaults returns the configuration used when no file provides a value.
func Defaults() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Decoding the registered defaults cannot fail.
		panic(err)
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("standard.principal", constants.DefaultPrincipal)
	v.SetDefault("standard.annualRate", constants.DefaultAnnualRatePercent)
	v.SetDefault("standard.termMonths", constants.DefaultTermMonths)

	v.SetDefault("combined.propertyValue", constants.DefaultPropertyValue)
	v.SetDefault("combined.liquidity", constants.DefaultLiquidity)
	v.SetDefault("combined.subsidized.name", "subsidized")
	v.SetDefault("combined.subsidized.amount", constants.DefaultSubsidizedAmount)
	v.SetDefault("combined.subsidized.initialRepaymentRate", constants.DefaultSubsidizedRepay)
	v.SetDefault("combined.subsidized.annualRate", constants.DefaultSubsidizedRate)
	v.SetDefault("combined.subsidized.termYears", constants.DefaultLoanTermYears)
	v.SetDefault("combined.bank.name", "bank")
	v.SetDefault("combined.bank.initialRepaymentRate", constants.DefaultBankRepay)
	v.SetDefault("combined.bank.annualRate", constants.DefaultBankRate)
	v.SetDefault("combined.bank.termYears", constants.DefaultLoanTermYears)

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.dateStrategy", string(datetime.ApproximateCalendar))
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// StartDate returns January 1st of the configured start year, falling back
// to the year of now.
func (p CombinedPlan) StartDate(now time.Time) time.Time {
	year := p.StartYear
	if year == 0 {
		year = now.Year()
	}
	return datetime.StartOfYear(year)
}

// DateStrategy parses the configured payoff date strategy.
func (c *Configuration) DateStrategy() (datetime.Strategy, error) {
	return datetime.ParseStrategy(c.Output.DateStrategy)
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Values the engine cannot compute at all are rejected
// later by the calculation itself.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	warnings = append(warnings, validation.ValidateRate("standard loan", c.Standard.AnnualRate)...)
	warnings = append(warnings, validation.ValidateTermMonths("standard loan", c.Standard.TermMonths)...)

	plan := c.Combined
	warnings = append(warnings, validation.ValidateFinancing(validation.FinancingInfo{
		PropertyValue:    plan.PropertyValue,
		Liquidity:        plan.Liquidity,
		SubsidizedAmount: plan.Subsidized.Amount,
		BankAmountSet:    plan.Bank.Amount != 0,
	})...)

	for _, loan := range []LoanSpec{plan.Subsidized, plan.Bank} {
		warnings = append(warnings, validation.ValidateRate(loan.Name+" loan", loan.AnnualRate)...)
		warnings = append(warnings, validation.ValidateRepaymentRate(loan.Name+" loan", loan.InitialRepaymentRate)...)
		warnings = append(warnings, validation.ValidateTermYears(loan.Name+" loan", loan.TermYears)...)
	}

	if _, err := c.DateStrategy(); err != nil {
		warnings = append(warnings, err.Error()+"; using approximate")
	}

	return warnings
}
