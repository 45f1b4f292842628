package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrConflict           = errors.New("auth: already exists")
	ErrValidation         = errors.New("auth: validation failed")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenMissing       = errors.New("auth: token missing")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenInvalid       = errors.New("auth: invalid token")
	ErrForbidden          = errors.New("auth: forbidden")
	ErrStore              = errors.New("auth: store failure")
)

// ValidationError lists every violated input rule.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StoreError wraps a failure reported by the user store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
