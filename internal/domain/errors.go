package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP status codes with errors.Is;
// everything else is treated as an internal failure.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrLimitExceeded     = errors.New("loan limit exceeded")
	ErrOutstandingDebt   = errors.New("outstanding fines")
	ErrTransactionFailed = errors.New("transaction failed")
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

func LimitExceededf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrLimitExceeded)...)
}

func OutstandingDebtf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrOutstandingDebt)...)
}

// Message strips the sentinel suffix for user-facing output.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrLimitExceeded, ErrOutstandingDebt} {
		suffix := ": " + kind.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	return msg
}
