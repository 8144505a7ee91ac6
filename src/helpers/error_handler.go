package helpers

import (
	"context"
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Error Kinds
// -----------------------------------------------------------------------------

// ErrorKind lets callers tell failure modes apart instead of collapsing them
// into one "unavailable" message.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoData
	KindProviderError
	KindInvalidInput
	KindAccessDenied
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoData:
		return "no_data"
	case KindProviderError:
		return "provider_error"
	case KindInvalidInput:
		return "invalid_input"
	case KindAccessDenied:
		return "access_denied"
	default:
		return "unknown"
	}
}

// Sentinels matched through errors.Is on any DashboardError of that kind.
var (
	ErrNoData              = errors.New("no data available")
	ErrProviderUnavailable = errors.New("market data provider unavailable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAccessDenied        = errors.New("access denied")
)

var kindSentinels = map[ErrorKind]error{
	KindNoData:        ErrNoData,
	KindProviderError: ErrProviderUnavailable,
	KindInvalidInput:  ErrInvalidInput,
	KindAccessDenied:  ErrAccessDenied,
}

// -----------------------------------------------------------------------------
// Custom Error Type
// -----------------------------------------------------------------------------

type DashboardError struct {
	Kind   ErrorKind
	Op     string
	Symbol string
	Cause  error
}

func (e *DashboardError) Error() string {
	msg := e.Op
	if e.Symbol != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Symbol)
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Kind)
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel for the error's kind.
func (e *DashboardError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NoData(op, symbol string, cause error) error {
	return &DashboardError{Kind: KindNoData, Op: op, Symbol: symbol, Cause: cause}
}

func ProviderError(op, symbol string, cause error) error {
	return &DashboardError{Kind: KindProviderError, Op: op, Symbol: symbol, Cause: cause}
}

func InvalidInput(op, symbol string, cause error) error {
	return &DashboardError{Kind: KindInvalidInput, Op: op, Symbol: symbol, Cause: cause}
}

func AccessDenied(op string) error {
	return &DashboardError{Kind: KindAccessDenied, Op: op}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// KindOf classifies any error. Context cancellation and deadline errors count
// as provider failures since they only arise around provider calls.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var de *DashboardError
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrNoData):
		return KindNoData
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrAccessDenied):
		return KindAccessDenied
	case errors.Is(err, ErrProviderUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindProviderError
	}
	return KindUnknown
}

// UserMessage is the text shown in place of the data section. It never
// carries diagnostic detail.
func UserMessage(kind ErrorKind, symbol string) string {
	switch kind {
	case KindNoData:
		return fmt.Sprintf("Unable to load data for %s. Check the symbol format (e.g. .NS for Indian stocks).", symbol)
	case KindInvalidInput:
		return fmt.Sprintf("%q is not a valid request.", symbol)
	case KindAccessDenied:
		return "Access denied."
	default:
		return "Market data is currently unavailable. Please try again later."
	}
}
