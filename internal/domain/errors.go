package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the BFA.

// SourceName identifies one of the dashboard data providers.
type SourceName string

const (
	SourceProfile      SourceName = "profile"
	SourceBalance      SourceName = "balance"
	SourceTransactions SourceName = "transactions"
)

// SourceError indicates a dependency failed to supply its piece of the dashboard.
// The cause is opaque to the aggregator.
type SourceError struct {
	Source SourceName
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// AggregationError indicates the dashboard could not be joined. It carries one
// SourceError per failed source.
type AggregationError struct {
	Failures []*SourceError
}

func (e *AggregationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return "dashboard aggregation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes every source failure to errors.Is and errors.As.
func (e *AggregationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// Failed reports whether the given source is among the failures.
func (e *AggregationError) Failed(source SourceName) bool {
	for _, f := range e.Failures {
		if f.Source == source {
			return true
		}
	}
	return false
}

// Sources lists the failed sources in the order they were recorded.
func (e *AggregationError) Sources() []SourceName {
	out := make([]SourceName, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Source)
	}
	return out
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}
