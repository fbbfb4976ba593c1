package session

// State of the controller's session state machine.
type State int

const (
	LoggedOut State = iota
	LoggedIn
	Refreshing
)

func (s State) String() string {
	switch s {
	case LoggedIn:
		return "logged_in"
	case Refreshing:
		return "refreshing"
	default:
		return "logged_out"
	}
}

// NoticeLevel tells the UI how to render a notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a user-visible status line emitted by the controller.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// IsError reports whether the notice should be rendered as an error.
func (n Notice) IsError() bool { return n.Level == NoticeError }

// Texts shown to the user.
const (
	MsgLoggingIn      = "Logging in..."
	MsgRegistering    = "Registering..."
	MsgLoginSuccess   = "Login successful!"
	MsgLoggedOut      = "You have been logged out."
	MsgSessionExpired = "Your session has expired. Please log in again."
)
