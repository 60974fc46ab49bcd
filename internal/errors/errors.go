package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session client
var (
	// Gateway errors
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoRefreshToken    = errors.New("no refresh token")

	// Session errors
	ErrNoSavedToken      = errors.New("no saved token")
	ErrSessionSuperseded = errors.New("session changed while request was in flight")
	ErrIncompleteSession = errors.New("incomplete session")

	// Store errors
	ErrStoreWrite = errors.New("store write failed")
	ErrStoreRead  = errors.New("store read failed")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
