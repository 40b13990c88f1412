package store

import (
	"context"
	"errors"
)

// Persisted key names.
const (
	KeyToken   = "token"
	KeyRole    = "role"
	KeyProfile = "profile"
)

var keyNames = [3]string{KeyToken, KeyRole, KeyProfile}

// KeyNames returns the persisted key names in a stable order.
func KeyNames() [3]string {
	return keyNames
}

var (
	// ErrUnavailable wraps I/O failures of a backend.
	ErrUnavailable = errors.New("session store unavailable")
	// ErrIncomplete is returned by Save when a snapshot lacks one of the three values.
	ErrIncomplete = errors.New("incomplete session snapshot")
	// ErrCorrupt is returned by Load when the persisted document cannot be read back.
	ErrCorrupt = errors.New("corrupt session snapshot")
)

// Snapshot is the persisted form of a session. Profile holds the encoded profile document.
// Backends never expire a snapshot on their own; only Clear removes it.
type Snapshot struct {
	Token   string
	Role    string
	Profile string
}

// Empty reports whether no key is present.
func (s Snapshot) Empty() bool {
	return s.Token == "" && s.Role == "" && s.Profile == ""
}

// Complete reports whether all three keys are present.
func (s Snapshot) Complete() bool {
	return s.Token != "" && s.Role != "" && s.Profile != ""
}

// Store is implemented by every persistence backend.
type Store interface {
	// Load returns whatever keys are present. Missing keys are empty strings.
	Load(ctx context.Context) (Snapshot, error)
	// Save writes all three keys in one operation.
	Save(ctx context.Context, snap Snapshot) error
	// Clear removes all three keys in one operation. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

func checkComplete(snap Snapshot) error {
	if !snap.Complete() {
		return ErrIncomplete
	}
	return nil
}
