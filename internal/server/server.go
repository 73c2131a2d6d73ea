// Package server exposes the calculators as a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-calc/internal/config"
	"github.com/iwvelando/mortgage-calc/internal/report"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/datetime"
	"github.com/iwvelando/mortgage-calc/pkg/loans"
	"github.com/iwvelando/mortgage-calc/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the id that correlates a response with its log entries.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	now           func() time.Time
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	return newHandler(logger, maxUploadSize, version, time.Now)
}

func newHandler(logger *zap.Logger, maxUploadSize int64, version string, now func() time.Time) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, now: now}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/standard", h.handleStandard)
	mux.HandleFunc("/api/combined", h.handleCombined)
	mux.HandleFunc("/api/version", h.handleVersion)

	return withRequestID(mux)
}

// withRequestID tags every request with an id, reusing a well-formed id sent
// by the client.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

type summaryJSON struct {
	TotalInterest    float64 `json:"totalInterest"`
	TotalPrincipal   float64 `json:"totalPrincipal"`
	TotalPaid        float64 `json:"totalPaid"`
	RemainingBalance float64 `json:"remainingBalance"`
}

type rowJSON struct {
	Month            int     `json:"month"`
	Balance          float64 `json:"balance"`
	PrincipalPortion float64 `json:"principal"`
	InterestPortion  float64 `json:"interest"`
	Total            float64 `json:"total"`
}

type payoffJSON struct {
	StartDate        string   `json:"startDate"`
	ExpectedEndDate  string   `json:"expectedEndDate"`
	PayoffDate       string   `json:"payoffDate,omitempty"`
	AdditionalMonths *int     `json:"additionalMonths,omitempty"`
	TotalYears       *float64 `json:"totalYears,omitempty"`
	Computable       bool     `json:"computable"`
}

type financingJSON struct {
	PropertyValue    float64 `json:"propertyValue"`
	Liquidity        float64 `json:"liquidity"`
	TotalLoanAmount  float64 `json:"totalLoanAmount"`
	SubsidizedAmount float64 `json:"subsidizedAmount"`
	BankAmount       float64 `json:"bankAmount"`
	MortgagePercent  float64 `json:"mortgagePercent"`
	DownPayment      float64 `json:"downPayment"`
}

type loanJSON struct {
	Name                 string      `json:"name"`
	Amount               float64     `json:"amount"`
	AnnualRate           float64     `json:"annualRate"`
	InitialRepaymentRate float64     `json:"initialRepaymentRate"`
	TermMonths           int         `json:"termMonths"`
	Payment              float64     `json:"payment"`
	Summary              summaryJSON `json:"summary"`
	Payoff               payoffJSON  `json:"payoff"`
	Rows                 []rowJSON   `json:"rows"`
}

type standardResponse struct {
	Payment  float64     `json:"payment"`
	Summary  summaryJSON `json:"summary"`
	Rows     []rowJSON   `json:"rows"`
	Warnings []string    `json:"warnings,omitempty"`
	Duration string      `json:"duration"`
}

type combinedResponse struct {
	Financing           financingJSON `json:"financing"`
	Loans               []loanJSON    `json:"loans"`
	TotalMonthlyPayment float64       `json:"totalMonthlyPayment"`
	Summary             summaryJSON   `json:"summary"`
	Warnings            []string      `json:"warnings,omitempty"`
	Duration            string        `json:"duration"`
}

func (h *handler) handleStandard(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStandard"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	cfg, ok := h.decodeSection(w, r, "standard", op)
	if !ok {
		return
	}

	result, err := report.Standard(h.logger, cfg.Standard)
	if err != nil {
		h.respondCalculationError(w, r, err, op)
		return
	}

	warnings := validation.ValidateRate("standard loan", cfg.Standard.AnnualRate)
	warnings = append(warnings, validation.ValidateTermMonths("standard loan", cfg.Standard.TermMonths)...)
	warnings = appendMissing(warnings, result.Warnings)

	elapsed := time.Since(start)
	h.logger.Info("standard loan computed",
		zap.String("op", op),
		zap.String("requestId", requestID(r)),
		zap.Int("months", result.Schedule.Months()),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, standardResponse{
		Payment:  result.Payment,
		Summary:  toSummaryJSON(result.Summary),
		Rows:     toRowsJSON(result.Schedule),
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleCombined(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCombined"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	cfg, ok := h.decodeSection(w, r, "combined", op)
	if !ok {
		return
	}

	strategy, err := cfg.DateStrategy()
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := report.Combined(h.logger, cfg.Combined, h.now(), strategy)
	if err != nil {
		h.respondCalculationError(w, r, err, op)
		return
	}

	var warnings []string
	for _, spec := range []config.LoanSpec{cfg.Combined.Subsidized, cfg.Combined.Bank} {
		label := spec.Name + " loan"
		warnings = append(warnings, validation.ValidateRate(label, spec.AnnualRate)...)
		warnings = append(warnings, validation.ValidateRepaymentRate(label, spec.InitialRepaymentRate)...)
		warnings = append(warnings, validation.ValidateTermYears(label, spec.TermYears)...)
	}
	warnings = appendMissing(warnings, result.Warnings)

	elapsed := time.Since(start)
	h.logger.Info("combined loans computed",
		zap.String("op", op),
		zap.String("requestId", requestID(r)),
		zap.Float64("bankAmount", result.Financing.BankAmount),
		zap.Duration("duration", elapsed),
	)

	f := result.Financing
	h.writeJSON(w, http.StatusOK, combinedResponse{
		Financing: financingJSON{
			PropertyValue:    f.PropertyValue,
			Liquidity:        f.Liquidity,
			TotalLoanAmount:  f.TotalLoanAmount,
			SubsidizedAmount: f.SubsidizedAmount,
			BankAmount:       f.BankAmount,
			MortgagePercent:  f.MortgagePercent,
			DownPayment:      f.DownPayment,
		},
		Loans:               []loanJSON{toLoanJSON(result.Subsidized), toLoanJSON(result.Bank)},
		TotalMonthlyPayment: result.TotalMonthlyPayment,
		Summary:             toSummaryJSON(result.Summary),
		Warnings:            warnings,
		Duration:            elapsed.String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeSection reads a JSON object from the request body and loads it as the
// named section of a configuration, so omitted fields take their defaults.
// A top-level "dateStrategy" key is moved into the output section.
func (h *handler) decodeSection(w http.ResponseWriter, r *http.Request, section, op string) (*config.Configuration, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return nil, false
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	document := map[string]interface{}{section: payload}
	if strategy, ok := payload["dateStrategy"]; ok {
		delete(payload, "dateStrategy")
		document["output"] = map[string]interface{}{"dateStrategy": strategy}
	}

	configBytes, err := yaml.Marshal(document)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode request: %v", err), op)
		return nil, false
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return nil, false
	}
	return cfg, true
}

func (h *handler) respondCalculationError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := http.StatusInternalServerError
	if errors.Is(err, loans.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	h.respondErrorWithOp(w, r, status, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("calculation request failed",
		zap.String("op", op),
		zap.String("requestId", requestID(r)),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func toSummaryJSON(s loans.Summary) summaryJSON {
	return summaryJSON{
		TotalInterest:    s.TotalInterest,
		TotalPrincipal:   s.TotalPrincipal,
		TotalPaid:        s.TotalPaid,
		RemainingBalance: s.RemainingBalance,
	}
}

func toRowsJSON(s loans.Schedule) []rowJSON {
	rows := s.Rows()
	out := make([]rowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowJSON{
			Month:            row.Month,
			Balance:          row.Balance,
			PrincipalPortion: row.PrincipalPortion,
			InterestPortion:  row.InterestPortion,
			Total:            row.Total,
		})
	}
	return out
}

func toLoanJSON(loan report.LoanReport) loanJSON {
	return loanJSON{
		Name:                 loan.Terms.Name,
		Amount:               loan.Terms.Principal,
		AnnualRate:           loan.Terms.AnnualRatePercent,
		InitialRepaymentRate: loan.Terms.InitialRepaymentRatePercent,
		TermMonths:           loan.Terms.TermMonths,
		Payment:              loan.Payment,
		Summary:              toSummaryJSON(loan.Summary),
		Payoff:               toPayoffJSON(loan.Payoff),
		Rows:                 toRowsJSON(loan.Schedule),
	}
}

func toPayoffJSON(p loans.PayoffProjection) payoffJSON {
	out := payoffJSON{
		StartDate:       p.StartDate.Format(datetime.DateLayout),
		ExpectedEndDate: p.ExpectedEndDate.Format(datetime.DateLayout),
		Computable:      p.Computable,
	}
	if p.Computable {
		additional := p.AdditionalMonths
		years := p.TotalYears()
		out.PayoffDate = p.PayoffDate.Format(datetime.DateLayout)
		out.AdditionalMonths = &additional
		out.TotalYears = &years
	}
	return out
}

func appendMissing(warnings, more []string) []string {
	for _, candidate := range more {
		duplicate := false
		for _, existing := range warnings {
			if existing == candidate {
				duplicate = true
				break
			}
		}
		if !duplicate {
			warnings = append(warnings, candidate)
		}
	}
	return warnings
}
