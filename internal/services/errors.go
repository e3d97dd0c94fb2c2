package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/go-invoices/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates input that fails field constraints.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the store state forbids the mutation.
	ErrConflict = errors.New("conflict")
	// ErrPersistence indicates an unexpected store failure.
	ErrPersistence = errors.New("persistence error")
)

// ValidationError carries per-field violation codes.
type ValidationError struct {
	Fields validation.Violations
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, code string) error {
	return &ValidationError{Fields: validation.Violations{field: code}}
}

// NotFoundError names the missing record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Resource, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(resource string, id uuid.UUID) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// Conflict codes.
const (
	CodeProductUnavailable  = "product_unavailable"
	CodeProductSold         = "product_sold"
	CodeCustomerHasInvoices = "customer_has_invoices"
	CodeEmailTaken          = "email_taken"
)

// ConflictError reports a mutation refused because of current store state,
// e.g. a product claimed by another invoice in the meantime.
type ConflictError struct {
	Code string
	IDs  []uuid.UUID
}

func (e *ConflictError) Error() string {
	if len(e.IDs) == 0 {
		return "conflict: " + e.Code
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("conflict: %s (%s)", e.Code, strings.Join(ids, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PersistenceError wraps an unexpected store failure with the failing operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// wrap classifies err: domain errors pass through, anything else becomes a PersistenceError.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict), errors.Is(err, ErrPersistence):
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// isDuplicate detects unique-constraint violations across drivers.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}
