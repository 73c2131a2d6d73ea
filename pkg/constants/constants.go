// Package constants provides shared constants for the mortgage-calc application.
package constants

import "time"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimal places kept for currency totals
	CurrencyPlaces = 2

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxAnnualRatePercent is the highest nominal annual rate the engine accepts
	MaxAnnualRatePercent = 100.0

	// MaxTermMonths is the longest term the engine builds a schedule for
	MaxTermMonths = 1200
)

// Date approximation constants used for payoff projections.
const (
	// DaysPerApproximateYear is the length of a year in the approximate calendar
	DaysPerApproximateYear = 365

	// DaysPerApproximateMonth is the length of a month in the approximate calendar
	DaysPerApproximateMonth = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultServerReadTimeout bounds reading a request
	DefaultServerReadTimeout = 10 * time.Second

	// DefaultServerWriteTimeout bounds writing a response
	DefaultServerWriteTimeout = 30 * time.Second

	// DefaultServerShutdownTimeout bounds draining in-flight requests
	DefaultServerShutdownTimeout = 15 * time.Second
)

// Calculator defaults mirror the input ranges of the interactive calculator.
const (
	DefaultPrincipal          = 300000.0
	DefaultAnnualRatePercent  = 5.0
	DefaultTermMonths         = 240
	DefaultPropertyValue      = 700000.0
	DefaultLiquidity          = 50000.0
	DefaultSubsidizedAmount   = 100000.0
	DefaultSubsidizedRate     = 1.0
	DefaultSubsidizedRepay    = 2.0
	DefaultBankRate           = 3.45
	DefaultBankRepay          = 3.0
	DefaultLoanTermYears      = 10
	MaxCalculatorRatePercent  = 15.0
	MaxCalculatorTermMonths   = 480
	MaxCalculatorRepayPercent = 10.0
	MaxCalculatorTermYears    = 40
)
