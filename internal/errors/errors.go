package errors

import (
	"errors"
	"fmt"
)

// Common error types shared across the client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrRefreshFailed      = errors.New("refresh token rejected")

	// Session errors
	ErrNotReady          = errors.New("session not initialised")
	ErrOperationInFlight = errors.New("another auth operation is in flight")

	// Transport errors
	ErrNetwork = errors.New("network error")
	ErrTimeout = errors.New("request timed out")

	// Storage errors
	ErrIncompleteTokenPair = errors.New("incomplete token pair")
	ErrNoStoredTokens      = errors.New("no stored tokens")

	// Booking errors
	ErrWizardState     = errors.New("operation not valid in current wizard step")
	ErrSlotUnavailable = errors.New("slot not available")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
