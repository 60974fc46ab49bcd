// Package filestore keeps the session record in a single file on local disk.
//
// Writes go to a temporary file in the same directory which is fsynced and
// renamed over the target, so a crash leaves either the old record or the new
// one and never a mix of both. The document can be sealed at rest with a
// Sealer.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	errs "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/sessions"
)

// Sealer encrypts and decrypts the stored document.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

type Store struct {
	path   string
	sealer Sealer
	mu     sync.Mutex
}

var _ sessions.Repo = (*Store)(nil)

type Option func(*Store)

// WithSealer encrypts the file contents with s.
func WithSealer(s Sealer) Option {
	return func(st *Store) {
		st.sealer = s
	}
}

func New(path string, options ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Read(_ context.Context) (sessions.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return sessions.Empty(), nil
	}
	if err != nil {
		return sessions.Empty(), errs.Wrapf(err, "[filestore Read] %w: %s", errs.ErrStoreRead, s.path)
	}
	if len(data) == 0 {
		return sessions.Empty(), nil
	}

	if s.sealer != nil {
		if data, err = s.sealer.Open(data); err != nil {
			return sessions.Empty(), errs.Wrapf(err, "[filestore Read] %w: failed to open sealed session", errs.ErrStoreRead)
		}
	}

	record := make(map[string]string)
	if err := json.Unmarshal(data, &record); err != nil {
		return sessions.Empty(), errs.Wrapf(err, "[filestore Read] %w: failed to decode session", errs.ErrStoreRead)
	}
	return sessions.FromRecord(record), nil
}

func (s *Store) Write(_ context.Context, session sessions.Session) error {
	data, err := json.Marshal(session.Record())
	if err != nil {
		return fmt.Errorf("[filestore Write] failed to encode session: %w", err)
	}
	if s.sealer != nil {
		if data, err = s.sealer.Seal(data); err != nil {
			return fmt.Errorf("[filestore Write] failed to seal session: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path, data)
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("[filestore Clear] failed to remove %s: %w", s.path, err)
	}
	syncDir(filepath.Dir(s.path))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary session file: %w", err)
	}
	temporaryPath := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary session file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary session file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary session file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming session file into place: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir flushes directory metadata so a completed rename or remove survives
// power loss. Best effort: not every platform supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
