// Package loans computes fixed-rate annuity loan schedules: the constant
// monthly payment, the month-by-month balance walk, the number of months
// needed to clear a remaining balance, and the pairing of two loans that
// finance one purchase.
//
// Every function is a pure computation over its arguments. Identical inputs
// produce identical outputs and calls may run concurrently.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/mathutil"
)

// PaymentMode identifies how the fixed payment of a loan is determined.
type PaymentMode int

const (
	// SolvedPayment derives the payment from principal, rate and term.
	SolvedPayment PaymentMode = iota
	// InitialRepaymentPayment derives the payment from an initial repayment
	// rate plus the first month's interest; the term only bounds the schedule.
	InitialRepaymentPayment
)

func (m PaymentMode) String() string {
	switch m {
	case SolvedPayment:
		return "solved"
	case InitialRepaymentPayment:
		return "initial-repayment"
	default:
		return fmt.Sprintf("PaymentMode(%d)", int(m))
	}
}

// LoanTerms describes a single fixed-rate loan. A positive
// InitialRepaymentRatePercent selects InitialRepaymentPayment; otherwise the
// payment is solved from the term.
type LoanTerms struct {
	Name                        string
	Principal                   float64
	AnnualRatePercent           float64
	TermMonths                  int
	InitialRepaymentRatePercent float64
}

// Mode reports which payment-determination mode the terms select.
func (t LoanTerms) Mode() PaymentMode {
	if t.InitialRepaymentRatePercent > 0 {
		return InitialRepaymentPayment
	}
	return SolvedPayment
}

// Validate checks the terms without computing anything.
func (t LoanTerms) Validate() error {
	if err := validatePrincipal(t.Principal); err != nil {
		return err
	}
	if err := validateRate(t.AnnualRatePercent); err != nil {
		return err
	}
	if err := validateTerm(t.TermMonths); err != nil {
		return err
	}
	if !mathutil.IsFinite(t.InitialRepaymentRatePercent) || t.InitialRepaymentRatePercent < 0 {
		return fmt.Errorf("%w: initial repayment rate %v must not be negative", ErrInvalidInput, t.InitialRepaymentRatePercent)
	}
	return nil
}

// Payment returns the fixed monthly payment for the terms.
func (t LoanTerms) Payment() (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if t.Mode() == InitialRepaymentPayment {
		return InitialRepaymentPaymentAmount(t.Principal, t.InitialRepaymentRatePercent, t.AnnualRatePercent)
	}
	return SolvePayment(t.Principal, t.AnnualRatePercent, t.TermMonths)
}

// Schedule builds the amortization schedule for the terms.
func (t LoanTerms) Schedule() (Schedule, error) {
	payment, err := t.Payment()
	if err != nil {
		return Schedule{}, err
	}
	return BuildSchedule(t.Principal, t.AnnualRatePercent, t.TermMonths, payment)
}

// MonthlyRate converts a nominal annual percentage rate into the monthly
// decimal rate.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// SolvePayment calculates the monthly payment that amortizes principal over
// termMonths at the given nominal annual rate. A zero rate degrades to
// principal / termMonths.
func SolvePayment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if err := validatePrincipal(principal); err != nil {
		return 0, err
	}
	if err := validateRate(annualRatePercent); err != nil {
		return 0, err
	}
	if err := validateTerm(termMonths); err != nil {
		return 0, err
	}

	if annualRatePercent == 0 {
		return principal / float64(termMonths), nil
	}

	// discountFactor is 1 - (1+r)^-n.
	periodicInterestRate := MonthlyRate(annualRatePercent)
	discountFactor := -math.Expm1(-float64(termMonths) * math.Log1p(periodicInterestRate))
	return principal * periodicInterestRate / discountFactor, nil
}

// InitialRepaymentPaymentAmount calculates the fixed payment of a loan quoted
// by its initial repayment rate: the monthly share of the annual repayment on
// the original principal plus the first month's interest.
func InitialRepaymentPaymentAmount(principal, initialRepaymentRatePercent, annualRatePercent float64) (float64, error) {
	if err := validatePrincipal(principal); err != nil {
		return 0, err
	}
	if err := validateRate(annualRatePercent); err != nil {
		return 0, err
	}
	if !mathutil.IsFinite(initialRepaymentRatePercent) || initialRepaymentRatePercent <= 0 {
		return 0, fmt.Errorf("%w: initial repayment rate %v must be positive", ErrInvalidInput, initialRepaymentRatePercent)
	}

	repayment := principal * MonthlyRate(initialRepaymentRatePercent)
	return repayment + InterestPayment(principal, annualRatePercent), nil
}

// InterestPayment calculates the interest accruing on a balance for one month.
func InterestPayment(balance, annualRatePercent float64) float64 {
	return balance * MonthlyRate(annualRatePercent)
}

func validatePrincipal(principal float64) error {
	if !mathutil.IsFinite(principal) || principal <= 0 {
		return fmt.Errorf("%w: principal %v must be positive", ErrInvalidInput, principal)
	}
	return nil
}

func validateRate(annualRatePercent float64) error {
	if !mathutil.IsFinite(annualRatePercent) || annualRatePercent < 0 || annualRatePercent > constants.MaxAnnualRatePercent {
		return fmt.Errorf("%w: annual rate %v%% must be within [0, %v]", ErrInvalidInput, annualRatePercent, constants.MaxAnnualRatePercent)
	}
	return nil
}

func validateTerm(termMonths int) error {
	if termMonths < 1 || termMonths > constants.MaxTermMonths {
		return fmt.Errorf("%w: term of %d months must be within [1, %d]", ErrInvalidInput, termMonths, constants.MaxTermMonths)
	}
	return nil
}
