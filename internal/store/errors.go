// Package store implements the owner-scoped persistence layer: ledger
// transactions, inventory, invoices and profiles, plus the error taxonomy
// every caller branches on.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/diewo77/comptable/internal/validation"
)

// ValidationError reports bad input shape. It is raised before any I/O and
// identifies the offending fields.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %v", fields)
}

// NotFoundError reports a missing owner-scoped record. During an invoice
// commit a missing stock item is non-fatal and surfaces as a per-line warning.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConsistencyError reports that a multi-write unit (invoice + transaction)
// could not be written as a whole. Nothing from the unit is persisted.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: consistency failure: %v", e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// TransientStoreError reports a timeout or cancellation talking to the
// backing store. Callers may retry with the same invoice number.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("%s: transient store failure: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// classify wraps a store error, promoting context expiry to the retryable
// transient class.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransientStoreError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
