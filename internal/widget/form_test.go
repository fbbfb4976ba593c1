package widget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
)

type fakeAuth struct {
	loginErr    error
	registerMsg string
	registerErr error

	logins    []string
	registers []string
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) error {
	f.logins = append(f.logins, email)
	return f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (string, error) {
	f.registers = append(f.registers, email)
	return f.registerMsg, f.registerErr
}

func TestToggle(t *testing.T) {
	f := NewForm()
	assert.Equal(t, ModeLogin, f.Mode())
	assert.Equal(t, "Welcome", f.View().Title)

	v := f.Toggle()
	assert.Equal(t, ModeSignup, f.Mode())
	assert.Equal(t, "Create an Account", v.Title)
	assert.Equal(t, "Sign Up", v.Submit)
	assert.Equal(t, "Already have an account? Login", v.Toggle)

	v = f.Toggle()
	assert.Equal(t, "login", v.Mode)
	assert.Equal(t, "Don't have an account? Sign Up", v.Toggle)
}

func TestSubmit_LoginMode(t *testing.T) {
	auth := &fakeAuth{}
	f := NewForm()

	st := f.Submit(context.Background(), auth, " a@b.com ", "x")
	assert.Equal(t, Status{Message: "Login successful!"}, st)
	assert.Equal(t, []string{"a@b.com"}, auth.logins)
	assert.Empty(t, auth.registers)
	assert.Equal(t, ModeLogin, f.Mode())
}

func TestSubmit_LoginFailure(t *testing.T) {
	auth := &fakeAuth{loginErr: &autherrors.RejectedError{Status: 401, Message: "Invalid credentials"}}
	st := NewForm().Submit(context.Background(), auth, "a@b.com", "bad")
	assert.Equal(t, Status{Message: "Error: Invalid credentials", IsError: true}, st)
}

func TestSubmit_SignupReturnsToLogin(t *testing.T) {
	auth := &fakeAuth{registerMsg: "Check your inbox"}
	f := NewForm()
	f.Toggle()

	st := f.Submit(context.Background(), auth, "a@b.com", "x")
	assert.Equal(t, Status{Message: "Check your inbox"}, st)
	assert.Equal(t, []string{"a@b.com"}, auth.registers)
	assert.Empty(t, auth.logins)
	assert.Equal(t, ModeLogin, f.Mode())
}

func TestSubmit_SignupFailureKeepsMode(t *testing.T) {
	auth := &fakeAuth{registerErr: autherrors.Wrapf(autherrors.ErrNetwork, "dial")}
	f := NewForm()
	f.Toggle()

	st := f.Submit(context.Background(), auth, "a@b.com", "x")
	require.True(t, st.IsError)
	assert.Equal(t, "Error: Unable to reach the authentication service", st.Message)
	assert.Equal(t, ModeSignup, f.Mode())
}

func TestSubmit_MissingFields(t *testing.T) {
	auth := &fakeAuth{}
	st := NewForm().Submit(context.Background(), auth, "  ", "x")
	assert.Equal(t, Status{Message: MsgMissingFields, IsError: true}, st)
	assert.Empty(t, auth.logins)
}
