package earnings

import (
	"errors"
	"fmt"

	"github.com/factorlab/screener/internal/contracts"
)

// Domain identifies which earnings calculation an error belongs to.
type Domain string

const (
	DomainEPS         Domain = "eps"
	DomainNetIncome   Domain = "net_income"
	DomainVariability Domain = "variability"
	DomainGrowth      Domain = "growth"
)

// Kind classifies a calculation failure.
type Kind int

const (
	// KindMissingField: the requested fundamental field is absent from a
	// source's schema. Fatal for the ticker, never retried.
	KindMissingField Kind = iota + 1

	// KindInsufficientData: fewer valid observations than the operation's
	// minimum. Fatal for the ticker, never retried.
	KindInsufficientData

	// KindComputationFailure: unexpected numeric failure, wraps the cause.
	KindComputationFailure
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "missing field"
	case KindInsufficientData:
		return "insufficient data"
	case KindComputationFailure:
		return "computation failure"
	default:
		return "unknown"
	}
}

// CalcError is a calculation error carrying the ticker identity and the
// cause chain. Every error raised by this package is a CalcError.
type CalcError struct {
	Domain Domain
	Kind   Kind
	Ticker string
	Err    error
}

func (e *CalcError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (ticker: %s): %v", e.Domain, e.Kind, e.Ticker, e.Err)
	}
	return fmt.Sprintf("%s: %s (ticker: %s)", e.Domain, e.Kind, e.Ticker)
}

func (e *CalcError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a CalcError of the given kind.
func IsKind(err error, kind Kind) bool {
	var calcErr *CalcError
	return errors.As(err, &calcErr) && calcErr.Kind == kind
}

// IsDomain reports whether err is a CalcError of the given domain.
func IsDomain(err error, domain Domain) bool {
	var calcErr *CalcError
	return errors.As(err, &calcErr) && calcErr.Domain == domain
}

// domainForField maps a fundamental field to its error domain.
func domainForField(field contracts.Field) Domain {
	if field == contracts.FieldNetIncome {
		return DomainNetIncome
	}
	return DomainEPS
}

func missingField(domain Domain, ticker string, field contracts.Field, source string) *CalcError {
	return &CalcError{
		Domain: domain,
		Kind:   KindMissingField,
		Ticker: ticker,
		Err:    fmt.Errorf("field %q not found in %s schema", field, source),
	}
}

func insufficientDataf(domain Domain, ticker, format string, args ...interface{}) *CalcError {
	return &CalcError{
		Domain: domain,
		Kind:   KindInsufficientData,
		Ticker: ticker,
		Err:    fmt.Errorf(format, args...),
	}
}

func computationFailure(domain Domain, ticker string, cause error) *CalcError {
	return &CalcError{
		Domain: domain,
		Kind:   KindComputationFailure,
		Ticker: ticker,
		Err:    cause,
	}
}
