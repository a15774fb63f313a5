package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateCredential = errors.New("credential already exists")
	ErrInvalidCredentials  = errors.New("invalid username/email or password")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrWorkItemNotFound    = errors.New("work item not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrIdempotencyBusy     = errors.New("a request with this Idempotency-Key is still in progress")
)

// ValidationError carries one message per offending field.
// errors.Is(err, ErrValidation) reports true for any *ValidationError.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records msg for field. The first message recorded for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e when it holds at least one field error, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateCredentialError reports which unique credential collided.
type DuplicateCredentialError struct {
	Field string // "username" or "email"
}

func (e *DuplicateCredentialError) Error() string {
	switch e.Field {
	case "username":
		return "Username already exists"
	case "email":
		return "Email already exists"
	default:
		return "Username or email already exists"
	}
}

func (e *DuplicateCredentialError) Is(target error) bool {
	return target == ErrDuplicateCredential
}
