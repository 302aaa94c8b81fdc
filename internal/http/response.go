package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
	"smartbudget/internal/ledger"
	"smartbudget/internal/log"
	"smartbudget/internal/transfer"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError represents a single validation error
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	errorTypeValidation = "https://smartbudget.app/errors/validation"
	errorTypeBadRequest = "https://smartbudget.app/errors/bad-request"
	errorTypeNotFound   = "https://smartbudget.app/errors/not-found"
	errorTypeConflict   = "https://smartbudget.app/errors/conflict"
	errorTypeRateLimit  = "https://smartbudget.app/errors/rate-limit"
	errorTypeInternal   = "https://smartbudget.app/errors/internal"
)

const contentTypeProblem = "application/problem+json"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, typ, title, detail string) {
	writeProblemDetails(w, ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

func writeProblemDetails(w http.ResponseWriter, p ProblemDetails) {
	w.Header().Set("Content-Type", contentTypeProblem)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, r, http.StatusBadRequest, errorTypeBadRequest, "Bad Request", detail)
}

// writeError maps domain errors to problem responses. Anything unknown is
// logged and reported as an internal error without its message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeProblemDetails(w, ProblemDetails{
			Type:     errorTypeValidation,
			Title:    "Validation Error",
			Status:   http.StatusUnprocessableEntity,
			Detail:   "one or more fields are invalid",
			Instance: r.URL.Path,
			Errors:   fieldErrors(verr),
		})
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, finance.ErrUnknownCurrency):
		writeProblem(w, r, http.StatusUnprocessableEntity, errorTypeValidation, "Validation Error", err.Error())
	case errors.Is(err, transfer.ErrInvalidFormat), errors.Is(err, transfer.ErrUnknownType):
		badRequest(w, r, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, errorTypeNotFound, "Not Found", err.Error())
	case errors.Is(err, ledger.ErrConflict):
		writeProblem(w, r, http.StatusConflict, errorTypeConflict, "Conflict", err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			"error", err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		writeProblem(w, r, http.StatusInternalServerError, errorTypeInternal, "Internal Server Error", "an unexpected error occurred")
	}
}

func fieldErrors(verr *core.ValidationError) []FieldError {
	out := make([]FieldError, 0, len(verr.Fields))
	for field, msg := range verr.Fields {
		out = append(out, FieldError{Field: field, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Money is an amount rendered for display in the selected currency.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// displayer converts base-currency amounts into the selected currency and
// rounds them to cents.
type displayer struct {
	rates    finance.Rates
	currency string
}

func (d displayer) money(amount float64) Money {
	converted, err := d.rates.Convert(amount, finance.BaseCurrency, d.currency)
	currency := d.currency
	if err != nil {
		converted, currency = amount, finance.BaseCurrency
	}
	return Money{
		Amount:   decimal.NewFromFloat(converted).Round(2).StringFixed(2),
		Currency: currency,
	}
}

func (d displayer) moneyMap(m map[string]float64) map[string]Money {
	out := make(map[string]Money, len(m))
	for k, v := range m {
		out[k] = d.money(v)
	}
	return out
}

func (s *Server) displayer() displayer {
	return displayer{rates: s.book.Rates(), currency: s.book.Settings().Currency}
}
