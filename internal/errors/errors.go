package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy of the session core
var (
	// Transport and identity service errors
	ErrNetwork           = errors.New("network failure")
	ErrRejected          = errors.New("rejected by identity service")
	ErrMalformedResponse = errors.New("malformed identity service response")

	// Token errors (recovered locally, never surfaced as hard errors)
	ErrMalformedToken = errors.New("malformed access token")

	// Session errors
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
	// A refresh whose session was logged out or replaced while it was in
	// flight; its result was discarded
	ErrSessionChanged   = errors.New("session changed while refreshing")

	// Storage errors
	ErrStorageCorrupt   = errors.New("stored session record is corrupt")
	ErrIncompleteRecord = errors.New("session record is incomplete")
)

// RejectedError carries the status and the human readable message returned by
// the identity service for a non-2xx response.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("identity service returned %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrRejected) match any RejectedError.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

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

// UserMessage returns the text shown to the user for err: the identity
// service's own message for rejections, a generic text otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrSessionChanged) {
		return "The session changed while refreshing"
	}
	var rej *RejectedError
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	switch {
	case errors.Is(err, ErrNetwork):
		return "Unable to reach the authentication service"
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrMalformedResponse):
		return "Unexpected response from the authentication service"
	}
	return "Operation failed"
}
