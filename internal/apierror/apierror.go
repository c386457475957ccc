// Package apierror defines the closed error taxonomy of the order-to-cash core
// and the canonical JSON envelope for HTTP error responses. All errors returned
// to clients go through this package so internal details (stack traces, DB
// errors) never leak.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// APIError is the envelope for all 4xx/5xx responses.
type APIError struct {
	Message string `json:"message"`
}

func New(msg string) *APIError {
	return &APIError{Message: msg}
}

// ValidationEnvelope carries per-field tags alongside the message on 400s.
type ValidationEnvelope struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func NewValidation(fields map[string]string) *ValidationEnvelope {
	return &ValidationEnvelope{Message: "validation failed", Fields: fields}
}

// ── Sentinels ────────────────────────────────────────────────────────────────

var (
	// ErrForbidden: the principal's scope does not cover the target store.
	ErrForbidden = errors.New("forbidden: outside the principal's store scope")
	// ErrNotFound: the target entity does not exist (or was already removed).
	ErrNotFound = errors.New("not found")
	// ErrConflict: optimistic-retry exhaustion on invoice numbering or stock
	// CAS. Retryable by the caller.
	ErrConflict = errors.New("conflict: concurrent update, retry the request")
)

// ── Typed errors ─────────────────────────────────────────────────────────────

// ValidationError is malformed or business-invalid input, fixable by the caller.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(msg string) *ValidationError { return &ValidationError{Msg: msg} }

func ValidationFields(fields map[string]string) *ValidationError {
	return &ValidationError{Msg: "validation failed", Fields: fields}
}

// InsufficientStockError reports the first line whose available quantity could
// not cover the requested reservation. No partial effect remains.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// InvalidTransitionError is an illegal order state-machine transition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// OverpaymentError rejects a payment that would push the cumulative paid
// amount past the invoice total by more than the configured tolerance.
type OverpaymentError struct {
	InvoiceNo   string
	Outstanding decimal.Decimal
	Attempted   decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds outstanding balance %s on invoice %s",
		e.Attempted.StringFixed(2), e.Outstanding.StringFixed(2), e.InvoiceNo)
}

// Status maps a service error to its HTTP status code.
func Status(err error) int {
	var (
		ve *ValidationError
		se *InsufficientStockError
		te *InvalidTransitionError
		oe *OverpaymentError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &te):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &se), errors.As(err, &oe), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
