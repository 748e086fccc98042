// Package store persists session state as JSON snapshots under a sessions
// directory. Every save rotates the previous snapshot into a capped backup
// directory and rewrites the primary file atomically under an exclusive
// file lock, so a crash at any point leaves a loadable state behind.
// Named checkpoints provide never-rotated recovery points on the side.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/logging"
	"github.com/specflow-dev/specflow/internal/util"
)

const (
	// DefaultMaxBackups is the rotation cap applied when Options does not
	// override it.
	DefaultMaxBackups = 5

	backupDirName   = "backups"
	metadataKey     = "_store_metadata"
	timestampLayout = "20060102_150405"
)

// Metadata records when and for which session a snapshot was written.
// It is injected into every saved document under a reserved key so that
// recovery tooling can identify snapshots without decoding the payload.
type Metadata struct {
	SavedAt   time.Time `json:"saved_at"`
	SessionID string    `json:"session_id"`
}

// Store persists one session's state.
type Store struct {
	baseDir    string
	sessionID  string
	maxBackups int
	autoBackup bool
	log        *logging.Logger
	lock       *FileLock
	mu         sync.Mutex
}

// Options configures a Store. The zero value gives default rotation and
// no logging.
type Options struct {
	// MaxBackups caps rotated backups kept per session. Zero or negative
	// means DefaultMaxBackups.
	MaxBackups int

	// DisableBackups skips backup rotation before saves.
	DisableBackups bool

	// Logger receives rotation and recovery diagnostics. Nil discards them.
	Logger *logging.Logger
}

// New creates a Store for the given session under baseDir. Nothing is
// touched on disk until the first Save or Checkpoint.
func New(baseDir, sessionID string, opts Options) *Store {
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}
	log := opts.Logger
	if log == nil {
		log = logging.NopLogger()
	}
	return &Store{
		baseDir:    baseDir,
		sessionID:  sessionID,
		maxBackups: maxBackups,
		autoBackup: !opts.DisableBackups,
		log:        log.WithSession(sessionID),
		lock:       NewFileLock(filepath.Join(baseDir, sessionID+".lock")),
	}
}

// SessionID returns the session id this store persists.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Path returns the primary snapshot path for this session.
func (s *Store) Path() string {
	return filepath.Join(s.baseDir, s.sessionID+".json")
}

// BackupDir returns the directory holding rotated backups.
func (s *Store) BackupDir() string {
	return filepath.Join(s.baseDir, backupDirName)
}

// AcquireRunLock takes the session's file lock for the lifetime of a run,
// failing fast when another process already holds it. Saves made while
// the run lock is held reuse it instead of re-acquiring.
func (s *Store) AcquireRunLock() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return errors.NewStoreError("failed to create sessions directory", err).WithSessionID(s.sessionID)
	}
	acquired, err := s.lock.TryLock()
	if err != nil {
		return errors.NewStoreError("failed to acquire run lock", err).WithSessionID(s.sessionID)
	}
	if !acquired {
		return errors.NewStoreError("another process is working on this session", errors.ErrStoreLocked).
			WithSessionID(s.sessionID).WithPath(s.Path())
	}
	return nil
}

// ReleaseRunLock releases the run lock if held.
func (s *Store) ReleaseRunLock() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}

// Load reads the current snapshot into v. It reports false without error
// when no snapshot exists yet. A snapshot that exists but cannot be
// parsed reports false with an error wrapping errors.ErrSessionCorrupted,
// so callers can warn and start fresh instead of aborting.
func (s *Store) Load(v any) (bool, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStoreError("failed to read session", err).
			WithSessionID(s.sessionID).WithPath(s.Path())
	}

	if err := json.Unmarshal(data, v); err != nil {
		cause := fmt.Errorf("%w: %v", errors.ErrSessionCorrupted, err)
		return false, errors.NewStoreError("failed to parse session", cause).
			WithSessionID(s.sessionID).WithPath(s.Path())
	}
	return true, nil
}

// Save writes state as the session's current snapshot. The previous
// snapshot is first rotated into the backup directory (unless backups
// are disabled), then the new document is written atomically. Both steps
// happen under the session's file lock so concurrent processes cannot
// interleave rotation and write.
func (s *Store) Save(state any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return errors.NewStoreError("failed to create sessions directory", err).WithSessionID(s.sessionID)
	}

	if !s.lock.Held() {
		if err := s.lock.Lock(); err != nil {
			return errors.NewStoreError("failed to lock session store", err).WithSessionID(s.sessionID)
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.log.Warn("failed to release store lock", "error", err)
			}
		}()
	}

	if s.autoBackup {
		s.rotateBackup()
	}

	doc, err := s.encode(state)
	if err != nil {
		return err
	}

	if err := util.AtomicWriteFile(s.Path(), doc, 0644); err != nil {
		return errors.NewStoreError("failed to write session", err).
			WithSessionID(s.sessionID).WithPath(s.Path())
	}

	s.log.Debug("session state saved", "path", s.Path())
	return nil
}

// encode marshals state and injects the metadata document under the
// reserved key. The state must encode to a JSON object.
func (s *Store) encode(state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, errors.NewStoreError("failed to marshal session state", err).WithSessionID(s.sessionID)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewStoreError("session state must encode to a JSON object", err).WithSessionID(s.sessionID)
	}

	meta, err := json.Marshal(Metadata{
		SavedAt:   time.Now().UTC(),
		SessionID: s.sessionID,
	})
	if err != nil {
		return nil, errors.NewStoreError("failed to marshal store metadata", err).WithSessionID(s.sessionID)
	}
	doc[metadataKey] = meta

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewStoreError("failed to marshal session document", err).WithSessionID(s.sessionID)
	}
	return append(out, '\n'), nil
}

// ReadMetadata extracts the store metadata from a snapshot file without
// decoding the rest of the document.
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc struct {
		Meta *Metadata `json:"_store_metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if doc.Meta == nil {
		return nil, fmt.Errorf("snapshot %s has no store metadata", path)
	}
	return doc.Meta, nil
}
