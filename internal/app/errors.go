package app

import (
	"errors"
	"fmt"
)

// Closed set of error kinds. The HTTP layer maps these to status codes;
// everything else is treated as an internal error.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrUnsupported       = errors.New("unsupported operation")
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

func remotef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRemoteUnavailable, fmt.Sprintf(format, args...))
}
