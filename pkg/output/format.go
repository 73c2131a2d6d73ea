// Package output provides utilities for formatting and displaying calculator results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-calc/internal/report"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"github.com/iwvelando/mortgage-calc/pkg/format"
	"github.com/iwvelando/mortgage-calc/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const notComputable = "Cannot be calculated"

// WriteStandard renders a standard report in the given output format.
func WriteStandard(w io.Writer, outputFormat string, result report.StandardReport) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyStandard(w, result)
	case constants.OutputFormatCSV:
		return CsvStandard(w, result)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// WriteCombined renders a combined report in the given output format.
func WriteCombined(w io.Writer, outputFormat string, result report.CombinedReport) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyCombined(w, result)
	case constants.OutputFormatCSV:
		return CsvCombined(w, result)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyStandard outputs a human-readable summary and amortization table.
func PrettyStandard(w io.Writer, result report.StandardReport) error {
	p := message.NewPrinter(language.English)
	pw := &printer{w: w, p: p}

	pw.printf("--- Standard loan ---\n")
	pw.printf("Loan amount:      %s\n", format.Currency(result.Terms.Principal))
	pw.printf("Interest rate:    %.2f%%\n", result.Terms.AnnualRatePercent)
	pw.printf("Term:             %d months\n", result.Terms.TermMonths)
	pw.printf("Monthly payment:  %s\n", format.Currency(result.Payment))
	pw.summary(result.Summary)
	pw.warnings(result.Warnings)
	pw.printf("\n")
	pw.table(result.Schedule)
	return pw.err
}

// PrettyCombined outputs the financing, both loans and their payoff
// predictions in a human-readable form.
func PrettyCombined(w io.Writer, result report.CombinedReport) error {
	p := message.NewPrinter(language.English)
	pw := &printer{w: w, p: p}
	f := result.Financing

	pw.printf("--- Purchase financing ---\n")
	pw.printf("Property value:   %s\n", format.Currency(f.PropertyValue))
	pw.printf("Down payment:     %s\n", format.Currency(f.DownPayment))
	pw.printf("Total loan:       %s (%s of the property value)\n", format.Currency(f.TotalLoanAmount), format.Percent(f.MortgagePercent))
	pw.printf("Subsidized loan:  %s\n", format.Currency(f.SubsidizedAmount))
	pw.printf("Bank loan:        %s\n", format.Currency(f.BankAmount))
	pw.printf("Monthly payment:  %s\n", format.Currency(result.TotalMonthlyPayment))

	for _, loan := range []report.LoanReport{result.Subsidized, result.Bank} {
		pw.printf("\n--- Loan %s ---\n", loan.Terms.Name)
		pw.printf("Loan amount:      %s\n", format.Currency(loan.Terms.Principal))
		pw.printf("Interest rate:    %.2f%%\n", loan.Terms.AnnualRatePercent)
		pw.printf("Initial repayment: %.2f%%\n", loan.Terms.InitialRepaymentRatePercent)
		pw.printf("Monthly payment:  %s\n", format.Currency(loan.Payment))
		pw.summary(loan.Summary)
		pw.payoff(loan.Payoff)
	}

	pw.printf("\n--- Combined ---\n")
	pw.summary(result.Summary)
	pw.warnings(result.Warnings)

	for _, loan := range []report.LoanReport{result.Subsidized, result.Bank} {
		pw.printf("\n--- Amortization for loan %s ---\n", loan.Terms.Name)
		pw.table(loan.Schedule)
	}
	return pw.err
}

// CsvStandard outputs the amortization table of a standard report in
// comma-separated value format.
func CsvStandard(w io.Writer, result report.StandardReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"month", "balance", "principal", "interest", "total"}); err != nil {
		return err
	}
	for _, row := range result.Schedule.Rows() {
		if err := cw.Write(rowRecord(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvCombined outputs the amortization tables of both loans side by side.
// The shorter schedule is padded with empty cells.
func CsvCombined(w io.Writer, result report.CombinedReport) error {
	cw := csv.NewWriter(w)
	loansInReport := []report.LoanReport{result.Subsidized, result.Bank}

	header := []string{"month"}
	for _, loan := range loansInReport {
		name := loan.Terms.Name
		header = append(header,
			fmt.Sprintf("balance (%s)", name),
			fmt.Sprintf("principal (%s)", name),
			fmt.Sprintf("interest (%s)", name),
			fmt.Sprintf("total (%s)", name),
		)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	subsidizedRows := result.Subsidized.Schedule.Rows()
	bankRows := result.Bank.Schedule.Rows()
	months := max(len(subsidizedRows), len(bankRows))
	for i := 0; i < months; i++ {
		record := []string{strconv.Itoa(i + 1)}
		for _, rows := range [][]loans.Row{subsidizedRows, bankRows} {
			if i < len(rows) {
				record = append(record, rowRecord(rows[i])[1:]...)
			} else {
				record = append(record, "", "", "", "")
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// PayoffDate renders the payoff date of a projection, or a placeholder when
// it cannot be computed.
func PayoffDate(projection loans.PayoffProjection) string {
	if !projection.Computable {
		return notComputable
	}
	return projection.PayoffDate.Format(datetime.DisplayLayout)
}

func rowRecord(row loans.Row) []string {
	return []string{
		strconv.Itoa(row.Month),
		amount(row.Balance),
		amount(row.PrincipalPortion),
		amount(row.InterestPortion),
		amount(row.Total),
	}
}

func amount(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// printer keeps the first write error so rendering code can print freely.
type printer struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (pw *printer) printf(formatString string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = pw.p.Fprintf(pw.w, formatString, args...)
}

func (pw *printer) summary(s loans.Summary) {
	pw.printf("Total interest:   %s\n", format.Currency(s.TotalInterest))
	pw.printf("Total principal:  %s\n", format.Currency(s.TotalPrincipal))
	pw.printf("Total paid:       %s\n", format.Currency(s.TotalPaid))
	pw.printf("Remaining:        %s\n", format.Currency(s.RemainingBalance))
}

func (pw *printer) payoff(projection loans.PayoffProjection) {
	pw.printf("Start date:       %s\n", projection.StartDate.Format(datetime.DisplayLayout))
	pw.printf("Expected end:     %s\n", projection.ExpectedEndDate.Format(datetime.DisplayLayout))
	pw.printf("Payoff date:      %s\n", PayoffDate(projection))
	if !projection.Computable {
		pw.printf("Additional months: N/A\n")
		pw.printf("Total years:      N/A\n")
		return
	}
	pw.printf("Additional months: %d\n", projection.AdditionalMonths)
	pw.printf("Total years:      %.1f\n", projection.TotalYears())
}

func (pw *printer) warnings(warnings []string) {
	for _, warning := range warnings {
		pw.printf("Warning: %s\n", warning)
	}
}

func (pw *printer) table(s loans.Schedule) {
	pw.printf("Month | Balance        | Principal    | Interest     | Total\n")
	pw.printf("_____ | ______________ | ____________ | ____________ | ____________\n")
	for _, row := range s.Rows() {
		pw.printf("%5d | €%13.2f | €%11.2f | €%11.2f | €%.2f\n",
			row.Month, row.Balance, row.PrincipalPortion, row.InterestPortion, row.Total)
	}
}
