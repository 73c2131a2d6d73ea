// Package report runs the calculators over a configuration and collects
// everything the output layers display.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-calc/internal/config"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"github.com/iwvelando/mortgage-calc/pkg/loans"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
	"github.com/iwvelando/mortgage-calc/pkg/validation"
	"go.uber.org/zap"
)

// StandardReport is the result of the standard calculator.
type StandardReport struct {
	Terms    loans.LoanTerms
	Payment  float64
	Schedule loans.Schedule
	Summary  loans.Summary
	Warnings []string
}

// Financing describes how a purchase is split between own funds and loans.
type Financing struct {
	PropertyValue    float64
	Liquidity        float64
	TotalLoanAmount  float64
	SubsidizedAmount float64
	BankAmount       float64
	MortgagePercent  float64
	DownPayment      float64
}

// LoanReport is the result for one loan of the combined calculator.
type LoanReport struct {
	Terms    loans.LoanTerms
	Payment  float64
	Schedule loans.Schedule
	Summary  loans.Summary
	Payoff   loans.PayoffProjection
}

// CombinedReport is the result of the combined calculator.
type CombinedReport struct {
	Financing           Financing
	Subsidized          LoanReport
	Bank                LoanReport
	TotalMonthlyPayment float64
	Summary             loans.Summary
	Warnings            []string
}

// Standard computes the payment and schedule of the standard calculator.
func Standard(logger *zap.Logger, loan config.StandardLoan) (StandardReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	terms := loans.LoanTerms{
		Name:              "standard",
		Principal:         loan.Principal,
		AnnualRatePercent: loan.AnnualRate,
		TermMonths:        loan.TermMonths,
	}

	schedule, err := terms.Schedule()
	if err != nil {
		return StandardReport{}, fmt.Errorf("standard loan: %w", err)
	}

	result := StandardReport{
		Terms:    terms,
		Payment:  schedule.Payment,
		Schedule: schedule,
		Summary:  loans.Summarize(schedule),
		Warnings: conditionWarnings("standard loan", schedule),
	}

	logger.Debug("computed standard loan",
		zap.String("op", "report.Standard"),
		zap.Float64("payment", result.Payment),
		zap.Float64("totalInterest", result.Summary.TotalInterest),
	)
	for _, warning := range result.Warnings {
		logger.Warn(warning, zap.String("op", "report.Standard"))
	}

	return result, nil
}

// NewFinancing derives the loan amounts of a purchase. The bank loan covers
// whatever the liquidity and the subsidized loan leave open.
func NewFinancing(propertyValue, liquidity, subsidizedAmount float64) (Financing, error) {
	if !mathutil.IsFinite(propertyValue) || propertyValue <= 0 {
		return Financing{}, fmt.Errorf("%w: property value %v must be positive", loans.ErrInvalidInput, propertyValue)
	}
	if !mathutil.IsFinite(liquidity) || liquidity < 0 {
		return Financing{}, fmt.Errorf("%w: liquidity %v must not be negative", loans.ErrInvalidInput, liquidity)
	}

	total := propertyValue - liquidity
	return Financing{
		PropertyValue:    propertyValue,
		Liquidity:        liquidity,
		TotalLoanAmount:  total,
		SubsidizedAmount: subsidizedAmount,
		BankAmount:       total - subsidizedAmount,
		MortgagePercent:  mathutil.CalculatePercentage(total, propertyValue),
		DownPayment:      liquidity,
	}, nil
}

// Combined computes the financing, both loans and their payoff projections
// for the combined calculator. Loans start on January 1st of the plan's start
// year, falling back to the year of now.
func Combined(logger *zap.Logger, plan config.CombinedPlan, now time.Time, strategy datetime.Strategy) (CombinedReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	financing, err := NewFinancing(plan.PropertyValue, plan.Liquidity, plan.Subsidized.Amount)
	if err != nil {
		return CombinedReport{}, err
	}

	subsidizedTerms := loanTerms(plan.Subsidized, financing.SubsidizedAmount)
	bankTerms := loanTerms(plan.Bank, financing.BankAmount)

	combined, err := loans.Combine(subsidizedTerms, bankTerms)
	if err != nil {
		return CombinedReport{}, err
	}

	start := plan.StartDate(now)
	result := CombinedReport{
		Financing:           financing,
		Subsidized:          loanReport(subsidizedTerms, combined.First, start, strategy),
		Bank:                loanReport(bankTerms, combined.Second, start, strategy),
		TotalMonthlyPayment: combined.TotalMonthlyPayment,
		Summary:             combined.Summary(),
	}

	result.Warnings = append(result.Warnings, validation.ValidateFinancing(validation.FinancingInfo{
		PropertyValue:    plan.PropertyValue,
		Liquidity:        plan.Liquidity,
		SubsidizedAmount: plan.Subsidized.Amount,
		BankAmountSet:    plan.Bank.Amount != 0,
	})...)
	for _, loan := range []LoanReport{result.Subsidized, result.Bank} {
		label := loan.Terms.Name + " loan"
		result.Warnings = append(result.Warnings, conditionWarnings(label, loan.Schedule)...)
		if !loan.Payoff.Computable {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: payoff date cannot be calculated", label))
		}
	}

	logger.Debug("computed combined loans",
		zap.String("op", "report.Combined"),
		zap.Float64("bankAmount", financing.BankAmount),
		zap.Float64("totalMonthlyPayment", result.TotalMonthlyPayment),
		zap.Int("subsidizedAdditionalMonths", result.Subsidized.Payoff.AdditionalMonths),
		zap.Int("bankAdditionalMonths", result.Bank.Payoff.AdditionalMonths),
	)
	for _, warning := range result.Warnings {
		logger.Warn(warning, zap.String("op", "report.Combined"))
	}

	return result, nil
}

func loanTerms(spec config.LoanSpec, amount float64) loans.LoanTerms {
	return loans.LoanTerms{
		Name:                        spec.Name,
		Principal:                   amount,
		AnnualRatePercent:           spec.AnnualRate,
		TermMonths:                  spec.TermYears * constants.MonthsPerYear,
		InitialRepaymentRatePercent: spec.InitialRepaymentRate,
	}
}

func loanReport(terms loans.LoanTerms, schedule loans.Schedule, start time.Time, strategy datetime.Strategy) LoanReport {
	return LoanReport{
		Terms:    terms,
		Payment:  schedule.Payment,
		Schedule: schedule,
		Summary:  loans.Summarize(schedule),
		Payoff:   loans.ProjectPayoff(schedule, start, strategy),
	}
}

func conditionWarnings(label string, s loans.Schedule) []string {
	condition := s.Condition()
	if condition == nil {
		return nil
	}

	var warnings []string
	if errors.Is(condition, loans.ErrDegenerateRate) {
		warnings = append(warnings, fmt.Sprintf("%s: zero interest rate, payments are linear", label))
	}
	if errors.Is(condition, loans.ErrNegativeAmortization) {
		warnings = append(warnings, fmt.Sprintf("%s: payment does not cover the interest from month %d, the balance grows",
			label, s.NegativeAmortizationMonth))
	}
	return warnings
}
