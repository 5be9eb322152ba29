package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Data contract and invariant violations raised by the simulation core
var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrUnknownCustomer = errors.New("unknown customer")
	ErrUnknownZone     = errors.New("unknown zone")
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrAccountingDrift = errors.New("inventory accounting drift")
)

// ValidationError carries field level details for a rejected record
type ValidationError struct {
	Err     error
	Subject string
	Details map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, e.Details[field]))
	}
	return fmt.Sprintf("%v %s: %s", e.Err, e.Subject, strings.Join(parts, "; "))
}

// Unwrap returns the wrapped sentinel
func (e *ValidationError) Unwrap() error {
	return e.Err
}
