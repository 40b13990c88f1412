package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

type fileDocument struct {
	Token   string          `json:"token"`
	Role    string          `json:"role"`
	Profile json.RawMessage `json:"profile"`
}

// File stores the snapshot as one JSON document. Writes go to a temporary file that is
// renamed over the target, so readers see either the old or the new document. A sibling
// lock file serializes access across processes.
type File struct {
	path string
	lock *flock.Flock
}

// NewFile returns a file-backed store at path. The directory is created on first Save.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store requires a path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve session file: %w", err)
	}
	return &File{path: abs, lock: flock.New(abs + ".lock")}, nil
}

// Path returns the absolute document path.
func (f *File) Path() string { return f.path }

func (f *File) acquire(ctx context.Context, shared bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var (
		ok  bool
		err error
	)
	if shared {
		ok, err = f.lock.TryRLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = f.lock.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lock: %v", ErrUnavailable, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: lock not acquired", ErrUnavailable)
	}
	return func() { _ = f.lock.Unlock() }, nil
}

// Load implements Store. A missing document is an empty snapshot.
func (f *File) Load(ctx context.Context) (Snapshot, error) {
	release, err := f.acquire(ctx, true)
	if err != nil {
		return Snapshot{}, err
	}
	defer release()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	snap := Snapshot{Token: doc.Token, Role: doc.Role}
	if len(doc.Profile) > 0 && string(doc.Profile) != "null" {
		snap.Profile = string(doc.Profile)
	}
	return snap, nil
}

// Save implements Store.
func (f *File) Save(ctx context.Context, snap Snapshot) error {
	if err := checkComplete(snap); err != nil {
		return err
	}
	if !json.Valid([]byte(snap.Profile)) {
		return fmt.Errorf("%w: profile is not a JSON document", ErrIncomplete)
	}

	body, err := json.Marshal(fileDocument{
		Token:   snap.Token,
		Role:    snap.Role,
		Profile: json.RawMessage(snap.Profile),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	release, err := f.acquire(ctx, false)
	if err != nil {
		return err
	}
	defer release()

	return f.replace(body)
}

func (f *File) replace(body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear implements Store by removing the document.
func (f *File) Clear(ctx context.Context) error {
	release, err := f.acquire(ctx, false)
	if err != nil {
		return err
	}
	defer release()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
