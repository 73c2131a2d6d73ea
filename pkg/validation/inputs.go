// Package validation checks calculator inputs against the ranges the
// calculators are designed for and reports anything unusual as warnings.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/format"
)

// SubsidizedAmountOptions are the loan amounts offered by the subsidy program.
var SubsidizedAmountOptions = []float64{100000, 220000}

// FinancingInfo carries the purchase figures checked by ValidateFinancing.
type FinancingInfo struct {
	PropertyValue    float64
	Liquidity        float64
	SubsidizedAmount float64
	BankAmountSet    bool
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(outputFormat string) error {
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, outputFormat)
	}
	return nil
}

// ValidateRate warns about annual rates outside the calculator's range.
func ValidateRate(name string, annualRatePercent float64) []string {
	if annualRatePercent == 0 {
		return []string{fmt.Sprintf("%s has a 0%% rate - payments are computed without interest", name)}
	}
	if annualRatePercent < 0 || annualRatePercent > constants.MaxCalculatorRatePercent {
		return []string{fmt.Sprintf("%s rate %.2f%% is outside the expected range (0, %.0f%%]",
			name, annualRatePercent, constants.MaxCalculatorRatePercent)}
	}
	return nil
}

// ValidateRepaymentRate warns about initial repayment rates outside the
// calculator's range.
func ValidateRepaymentRate(name string, initialRepaymentRatePercent float64) []string {
	if initialRepaymentRatePercent <= 0 || initialRepaymentRatePercent > constants.MaxCalculatorRepayPercent {
		return []string{fmt.Sprintf("%s initial repayment rate %.2f%% is outside the expected range (0, %.0f%%]",
			name, initialRepaymentRatePercent, constants.MaxCalculatorRepayPercent)}
	}
	return nil
}

// ValidateTermMonths warns about terms in months outside the calculator's range.
func ValidateTermMonths(name string, termMonths int) []string {
	if termMonths < 1 || termMonths > constants.MaxCalculatorTermMonths {
		return []string{fmt.Sprintf("%s term of %d months is outside the expected range [1, %d]",
			name, termMonths, constants.MaxCalculatorTermMonths)}
	}
	return nil
}

// ValidateTermYears warns about terms in years outside the calculator's range.
func ValidateTermYears(name string, termYears int) []string {
	if termYears < 1 || termYears > constants.MaxCalculatorTermYears {
		return []string{fmt.Sprintf("%s term of %d years is outside the expected range [1, %d]",
			name, termYears, constants.MaxCalculatorTermYears)}
	}
	return nil
}

// ValidateFinancing checks how a purchase is split between liquidity, the
// subsidized loan and the bank loan.
func ValidateFinancing(info FinancingInfo) []string {
	var warnings []string

	if info.Liquidity > info.PropertyValue {
		warnings = append(warnings, fmt.Sprintf("liquidity %s exceeds the property value %s - no loan is needed",
			format.Currency(info.Liquidity), format.Currency(info.PropertyValue)))
	}

	total := info.PropertyValue - info.Liquidity
	if bank := total - info.SubsidizedAmount; bank <= 0 {
		warnings = append(warnings, fmt.Sprintf("subsidized loan %s covers the whole loan amount %s - there is no bank loan",
			format.Currency(info.SubsidizedAmount), format.Currency(total)))
	}

	offered := false
	for _, option := range SubsidizedAmountOptions {
		if info.SubsidizedAmount == option {
			offered = true
			break
		}
	}
	if !offered {
		warnings = append(warnings, fmt.Sprintf("subsidized loan amount %s is not one of the program amounts",
			format.Currency(info.SubsidizedAmount)))
	}

	if info.BankAmountSet {
		warnings = append(warnings, "bank loan amount is derived from the property value, liquidity and subsidized loan; the configured amount is ignored")
	}

	return warnings
}
