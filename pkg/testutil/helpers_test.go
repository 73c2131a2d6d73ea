package testutil

import (
	"testing"

	"github.com/iwvelando/mortgage-calc/internal/report"
	"github.com/iwvelando/mortgage-calc/pkg/loans"
)

func TestFindLoan(t *testing.T) {
	result := report.CombinedReport{
		Subsidized: report.LoanReport{Terms: loans.LoanTerms{Name: "KfW", Principal: 100000}},
		Bank:       report.LoanReport{Terms: loans.LoanTerms{Name: "bank", Principal: 550000}},
	}

	tests := []struct {
		name          string
		searchName    string
		expectFound   bool
		expectedValue float64
	}{
		{"Find subsidized loan", "KfW", true, 100000},
		{"Find bank loan", "bank", true, 550000},
		{"Search is case sensitive", "Bank", false, 0},
		{"Search for non-existent loan", "mortgage", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := FindLoan(&result, tt.searchName)
			if !tt.expectFound {
				if loan != nil {
					t.Errorf("FindLoan(%q) expected nil, got %+v", tt.searchName, loan.Terms)
				}
				return
			}
			if loan == nil {
				t.Fatalf("FindLoan(%q) returned nil", tt.searchName)
			}
			if loan.Terms.Principal != tt.expectedValue {
				t.Errorf("FindLoan(%q) principal = %.2f, expected %.2f", tt.searchName, loan.Terms.Principal, tt.expectedValue)
			}
		})
	}

	// The returned pointer refers to the report itself.
	FindLoan(&result, "bank").Payment = 42
	if result.Bank.Payment != 42 {
		t.Errorf("FindLoan should return a pointer into the report")
	}
}

func TestFindRow(t *testing.T) {
	schedule, err := loans.LoanTerms{Principal: 12000, AnnualRatePercent: 0, TermMonths: 12}.Schedule()
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	row := FindRow(schedule, 6)
	if row == nil {
		t.Fatal("FindRow(6) returned nil")
	}
	if row.Month != 6 || row.Balance != 6000 {
		t.Errorf("FindRow(6) = %+v, expected month 6 with balance 6000", *row)
	}

	for _, month := range []int{0, 13, -1} {
		if FindRow(schedule, month) != nil {
			t.Errorf("FindRow(%d) expected nil", month)
		}
	}
}
