package widget

import (
	"context"
	"strings"
	"sync"

	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
)

// MsgMissingFields is shown when the form is submitted incomplete.
const MsgMissingFields = "Email and password are required"

// Authenticator performs the credential operations behind the form.
// *session.Controller implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string) (string, error)
}

// Status is the outcome of a submit, ready to show under the form.
type Status struct {
	Message string `json:"message"`
	IsError bool   `json:"isError"`
}

// Form tracks the mode of one widget instance. It is safe for concurrent use.
type Form struct {
	mu   sync.Mutex
	mode Mode
}

// NewForm returns a form in login mode.
func NewForm() *Form { return &Form{mode: ModeLogin} }

// Mode returns the current mode.
func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Toggle switches between login and signup and returns the new view.
func (f *Form) Toggle() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = f.mode.Other()
	return ViewOf(f.mode)
}

// View returns the labels for the current mode.
func (f *Form) View() View {
	return ViewOf(f.Mode())
}

// Submit sends the credentials to Login or Register depending on the mode.
// After a successful registration the form returns to login mode so the user
// can sign in once the account is verified.
func (f *Form) Submit(ctx context.Context, auth Authenticator, email, password string) Status {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Status{Message: MsgMissingFields, IsError: true}
	}

	switch f.Mode() {
	case ModeSignup:
		msg, err := auth.Register(ctx, email, password)
		if err != nil {
			return failed(err)
		}
		f.mu.Lock()
		f.mode = ModeLogin
		f.mu.Unlock()
		return Status{Message: msg}
	default:
		if err := auth.Login(ctx, email, password); err != nil {
			return failed(err)
		}
		return Status{Message: "Login successful!"}
	}
}

func failed(err error) Status {
	return Status{Message: "Error: " + autherrors.UserMessage(err), IsError: true}
}
