package report

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calc/internal/config"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"github.com/iwvelando/mortgage-calc/pkg/loans"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

func testPlan() config.CombinedPlan {
	return config.CombinedPlan{
		PropertyValue: 700000,
		Liquidity:     50000,
		StartYear:     2025,
		Subsidized: config.LoanSpec{
			Name:                 "subsidized",
			Amount:               100000,
			InitialRepaymentRate: 2,
			AnnualRate:           1,
			TermYears:            10,
		},
		Bank: config.LoanSpec{
			Name:                 "bank",
			InitialRepaymentRate: 3,
			AnnualRate:           3.45,
			TermYears:            10,
		},
	}
}

func TestStandard(t *testing.T) {
	result, err := Standard(zap.NewNop(), config.StandardLoan{Principal: 300000, AnnualRate: 5, TermMonths: 240})
	if err != nil {
		t.Fatalf("Standard() error = %v", err)
	}

	if math.Abs(result.Payment-1979.87) > 0.01 {
		t.Errorf("Standard() payment = %.2f, expected 1979.87", result.Payment)
	}
	if result.Schedule.Months() != 240 {
		t.Errorf("Standard() schedule has %d months, expected 240", result.Schedule.Months())
	}
	if result.Summary.RemainingBalance != 0 {
		t.Errorf("Standard() remaining balance = %.2f, expected 0", result.Summary.RemainingBalance)
	}
	if math.Abs(result.Summary.TotalPrincipal-300000) > 0.01 {
		t.Errorf("Standard() total principal = %.2f, expected 300000", result.Summary.TotalPrincipal)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Standard() unexpected warnings: %v", result.Warnings)
	}
}

func TestStandardZeroRate(t *testing.T) {
	result, err := Standard(nil, config.StandardLoan{Principal: 12000, AnnualRate: 0, TermMonths: 12})
	if err != nil {
		t.Fatalf("Standard() error = %v", err)
	}
	if result.Payment != 1000 {
		t.Errorf("Standard() payment = %.2f, expected 1000", result.Payment)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "zero interest rate") {
		t.Errorf("Standard() expected a zero-rate warning, got %v", result.Warnings)
	}
}

func TestStandardInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		loan config.StandardLoan
	}{
		{"Zero principal", config.StandardLoan{Principal: 0, AnnualRate: 5, TermMonths: 240}},
		{"Negative rate", config.StandardLoan{Principal: 300000, AnnualRate: -1, TermMonths: 240}},
		{"Zero term", config.StandardLoan{Principal: 300000, AnnualRate: 5, TermMonths: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Standard(zap.NewNop(), tt.loan)
			if !errors.Is(err, loans.ErrInvalidInput) {
				t.Errorf("Standard() error = %v, expected ErrInvalidInput", err)
			}
		})
	}
}

func TestNewFinancing(t *testing.T) {
	financing, err := NewFinancing(700000, 50000, 100000)
	if err != nil {
		t.Fatalf("NewFinancing() error = %v", err)
	}

	if financing.TotalLoanAmount != 650000 {
		t.Errorf("TotalLoanAmount = %.2f, expected 650000", financing.TotalLoanAmount)
	}
	if financing.BankAmount != 550000 {
		t.Errorf("BankAmount = %.2f, expected 550000", financing.BankAmount)
	}
	if math.Abs(financing.MortgagePercent-92.857) > 0.001 {
		t.Errorf("MortgagePercent = %.3f, expected 92.857", financing.MortgagePercent)
	}
	if financing.DownPayment != 50000 {
		t.Errorf("DownPayment = %.2f, expected 50000", financing.DownPayment)
	}

	if _, err := NewFinancing(0, 50000, 100000); !errors.Is(err, loans.ErrInvalidInput) {
		t.Errorf("NewFinancing() with zero value error = %v, expected ErrInvalidInput", err)
	}
	if _, err := NewFinancing(700000, -1, 100000); !errors.Is(err, loans.ErrInvalidInput) {
		t.Errorf("NewFinancing() with negative liquidity error = %v, expected ErrInvalidInput", err)
	}
}

func TestCombined(t *testing.T) {
	result, err := Combined(zap.NewNop(), testPlan(), testNow, datetime.CalendarMonths)
	if err != nil {
		t.Fatalf("Combined() error = %v", err)
	}

	if math.Abs(result.Subsidized.Payment-250) > 1e-9 {
		t.Errorf("subsidized payment = %.4f, expected 250", result.Subsidized.Payment)
	}
	if math.Abs(result.Bank.Payment-2956.25) > 1e-9 {
		t.Errorf("bank payment = %.4f, expected 2956.25", result.Bank.Payment)
	}
	if math.Abs(result.TotalMonthlyPayment-3206.25) > 1e-9 {
		t.Errorf("total monthly payment = %.4f, expected 3206.25", result.TotalMonthlyPayment)
	}

	tests := []struct {
		name       string
		loan       LoanReport
		additional int
		payoff     time.Time
	}{
		{"Subsidized loan", result.Subsidized, 367, time.Date(2065, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{"Bank loan", result.Bank, 147, time.Date(2047, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payoff := tt.loan.Payoff
			if !payoff.Computable {
				t.Fatalf("payoff should be computable")
			}
			if !payoff.StartDate.Equal(datetime.StartOfYear(2025)) {
				t.Errorf("start date = %v, expected 2025-01-01", payoff.StartDate)
			}
			if !payoff.ExpectedEndDate.Equal(datetime.StartOfYear(2035)) {
				t.Errorf("expected end date = %v, expected 2035-01-01", payoff.ExpectedEndDate)
			}
			if payoff.AdditionalMonths != tt.additional {
				t.Errorf("additional months = %d, expected %d", payoff.AdditionalMonths, tt.additional)
			}
			if !payoff.PayoffDate.Equal(tt.payoff) {
				t.Errorf("payoff date = %v, expected %v", payoff.PayoffDate, tt.payoff)
			}
		})
	}

	expectedRemaining := result.Subsidized.Summary.RemainingBalance + result.Bank.Summary.RemainingBalance
	if math.Abs(result.Summary.RemainingBalance-expectedRemaining) > 0.005 {
		t.Errorf("combined remaining balance = %.2f, expected %.2f", result.Summary.RemainingBalance, expectedRemaining)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Combined() unexpected warnings: %v", result.Warnings)
	}
}

func TestCombinedDefaultsStartYear(t *testing.T) {
	plan := testPlan()
	plan.StartYear = 0

	result, err := Combined(zap.NewNop(), plan, testNow, datetime.ApproximateCalendar)
	if err != nil {
		t.Fatalf("Combined() error = %v", err)
	}
	if !result.Bank.Payoff.StartDate.Equal(datetime.StartOfYear(2026)) {
		t.Errorf("start date = %v, expected 2026-01-01", result.Bank.Payoff.StartDate)
	}
}

func TestCombinedWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	plan := testPlan()
	plan.Subsidized.Amount = 150000
	plan.Bank.Amount = 1

	result, err := Combined(logger, plan, testNow, datetime.ApproximateCalendar)
	if err != nil {
		t.Fatalf("Combined() error = %v", err)
	}

	if result.Financing.BankAmount != 500000 {
		t.Errorf("bank amount = %.2f, expected 500000 regardless of the configured amount", result.Financing.BankAmount)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", result.Warnings)
	}

	entries := logs.FilterField(zap.String("op", "report.Combined")).All()
	if len(entries) != len(result.Warnings) {
		t.Errorf("expected %d logged warnings, got %d", len(result.Warnings), len(entries))
	}
}

func TestCombinedSubsidizedCoversPurchase(t *testing.T) {
	plan := testPlan()
	plan.PropertyValue = 120000
	plan.Liquidity = 20000

	_, err := Combined(zap.NewNop(), plan, testNow, datetime.ApproximateCalendar)
	if !errors.Is(err, loans.ErrInvalidInput) {
		t.Fatalf("Combined() error = %v, expected ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), "loan bank") {
		t.Errorf("Combined() error %q should name the bank loan", err)
	}
}

func TestCombinedSolvedBankPayment(t *testing.T) {
	plan := testPlan()
	plan.Bank.InitialRepaymentRate = 0
	plan.Bank.TermYears = 30

	result, err := Combined(zap.NewNop(), plan, testNow, datetime.ApproximateCalendar)
	if err != nil {
		t.Fatalf("Combined() error = %v", err)
	}
	if result.Bank.Terms.Mode() != loans.SolvedPayment {
		t.Errorf("bank loan mode = %s, expected solved", result.Bank.Terms.Mode())
	}
	if result.Bank.Payoff.AdditionalMonths != 0 {
		t.Errorf("solved bank loan should need no additional months, got %d", result.Bank.Payoff.AdditionalMonths)
	}
	if result.Bank.Summary.RemainingBalance != 0 {
		t.Errorf("solved bank loan should be paid off, remaining %.2f", result.Bank.Summary.RemainingBalance)
	}
}
