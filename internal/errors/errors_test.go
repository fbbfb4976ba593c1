package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejectedErrorMatchesSentinel(t *testing.T) {
	err := Wrapf(&RejectedError{Status: 401, Message: "Invalid credentials"}, "login")
	assert.True(t, Is(err, ErrRejected))
	assert.False(t, Is(err, ErrNetwork))

	var rej *RejectedError
	if assert.True(t, As(err, &rej)) {
		assert.Equal(t, 401, rej.Status)
	}
	assert.Equal(t, "Invalid credentials", UserMessage(err))
}

func TestWrapfNil(t *testing.T) {
	assert.NoError(t, Wrapf(nil, "nothing"))
}

func TestUserMessageFallbacks(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Unable to reach the authentication service", UserMessage(fmt.Errorf("%w: dial tcp", ErrNetwork)))
	assert.Equal(t, "Your session has expired. Please log in again.", UserMessage(ErrSessionExpired))
	assert.Equal(t, "Operation failed", UserMessage(&RejectedError{Status: 500}))
}

func TestUserMessageSessionChangedWinsOverRejection(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrSessionChanged, &RejectedError{Status: 401, Message: "refresh token revoked"})
	assert.Equal(t, "The session changed while refreshing", UserMessage(err))
}
