package sessiongate

import "errors"

var (
	// ErrNotReady is returned when Login or Logout run before Initialize or Start.
	ErrNotReady = errors.New("session manager not initialized")
	// ErrAlreadyAuthenticated is returned by Login while a session is active.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrNotAuthenticated is returned by operations that need an active session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials reports credentials that fail local validation.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCredentialsRejected reports a credential fault from the authentication collaborator.
	ErrCredentialsRejected = errors.New("credentials rejected")
	// ErrAuthUnavailable reports a collaborator that could not be reached or answered badly.
	ErrAuthUnavailable = errors.New("authentication service unavailable")
	// ErrTokenMalformed reports a token that does not decode.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrRoleInvalid reports a role claim outside the closed enumeration.
	ErrRoleInvalid = errors.New("role invalid")
	// ErrTokenExpired reports a token whose exp claim has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrStoreUnavailable reports a failed read or write of the persisted snapshot.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrInvalidProfile reports a profile document that cannot be encoded or read back.
	ErrInvalidProfile = errors.New("invalid profile")
)
