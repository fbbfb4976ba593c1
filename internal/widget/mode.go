// Package widget holds the presentation state of the login widget: which of
// the two form modes is shown and the texts that go with it.
package widget

// Mode is the form variant shown to the user.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

// Other returns the mode the toggle switches to.
func (m Mode) Other() Mode {
	if m == ModeSignup {
		return ModeLogin
	}
	return ModeSignup
}

// View is the set of labels rendered for a mode.
type View struct {
	Mode     string `json:"mode"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Submit   string `json:"submit"`
	Toggle   string `json:"toggle"`
}

var views = map[Mode]View{
	ModeLogin: {
		Mode:     "login",
		Title:    "Welcome",
		Subtitle: "Sign in or create an account",
		Submit:   "Login",
		Toggle:   "Don't have an account? Sign Up",
	},
	ModeSignup: {
		Mode:     "signup",
		Title:    "Create an Account",
		Subtitle: "Join",
		Submit:   "Sign Up",
		Toggle:   "Already have an account? Login",
	},
}

// ViewOf returns the labels for m.
func ViewOf(m Mode) View { return views[m] }
