package session

import "fmt"

// State is the authentication state of a Controller.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	// StateError follows a failed login. The operator is still logged out.
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// View is the screen the UI should be showing.
type View int

const (
	ViewLogin View = iota
	ViewPanel
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewPanel:
		return "panel"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}
