package sessiongate

import "github.com/coursedesk/sessiongate/role"

// Status is the lifecycle position of a Manager.
type Status uint8

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Resolved reports whether rehydration has finished.
func (s Status) Resolved() bool {
	return s == StatusAuthenticated || s == StatusUnauthenticated
}

// Profile is the user record returned by the authentication collaborator.
type Profile struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// State is a point-in-time copy of the session.
type State struct {
	Status  Status
	Token   string
	Role    role.Role
	Profile *Profile
	// Loading is true until rehydration resolves and false for the rest of the
	// manager's life.
	Loading bool
}

// Authenticated reports whether the snapshot holds a session.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
