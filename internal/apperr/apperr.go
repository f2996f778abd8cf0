// Package apperr defines the error taxonomy shared by all domain services.
// Callers branch with errors.Is; messages are safe to show to the user.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrInUse      = errors.New("in use")
	ErrBusy       = errors.New("storage busy")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func InUsef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInUse)...)
}

func Busyf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrBusy)...)
}
