// Package apperrors defines the application error taxonomy shared by the
// core services: not found, conflict, referenced-by-others, validation
// and store errors. Expected outcomes travel as typed errors so handlers
// can translate them; only store errors are logged as failures.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindReferenced Kind = "referenced_by_others"
	KindValidation Kind = "validation_error"
	KindStore      Kind = "store_error"
)

// AppError carries a kind, a user-facing message and an optional cause.
type AppError struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFound reports that a referenced id is absent.
func NewNotFound(message string, details ...string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Details: first(details)}
}

// NewConflict reports a uniqueness violation or name collision.
func NewConflict(message string, details ...string) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Details: first(details)}
}

// NewReferenced reports a delete blocked because dependents still exist.
func NewReferenced(message string, details ...string) *AppError {
	return &AppError{Kind: KindReferenced, Message: message, Details: first(details)}
}

// NewValidation reports malformed input.
func NewValidation(message string, details ...string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: first(details)}
}

// NewStore wraps an unexpected datastore failure.
func NewStore(message string, err error) *AppError {
	return &AppError{Kind: KindStore, Message: message, Err: err}
}

// FromStore translates a raw gorm error into the taxonomy. A duplicated
// key surfaced by the store is the authoritative conflict signal even
// when the pre-check passed and another writer won the race.
func FromStore(message string, err error) *AppError {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewConflict(message, err.Error())
	}
	return NewStore(message, err)
}

func first(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}

func is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool   { return is(err, KindNotFound) }
func IsConflict(err error) bool   { return is(err, KindConflict) }
func IsReferenced(err error) bool { return is(err, KindReferenced) }
func IsValidation(err error) bool { return is(err, KindValidation) }
func IsStore(err error) bool      { return is(err, KindStore) }

// HTTPStatus maps an error to the status the adapter layer should return.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindReferenced:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
