package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/specflow-dev/specflow/internal/errors"
	"github.com/specflow-dev/specflow/internal/util"
)

// rotateBackup copies the current snapshot into the backup directory and
// prunes the oldest backups beyond the cap. Rotation failures are logged
// and swallowed: a failed backup must never block a save.
func (s *Store) rotateBackup() {
	cur, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		s.log.Warn("backup rotation skipped", "error", err)
		return
	}

	if err := os.MkdirAll(s.BackupDir(), 0755); err != nil {
		s.log.Warn("failed to create backup directory", "error", err)
		return
	}

	stem := fmt.Sprintf("%s_%s", s.sessionID, time.Now().Format(timestampLayout))
	path := uniquePath(s.BackupDir(), stem, ".json")
	if err := util.AtomicWriteFile(path, cur, 0644); err != nil {
		s.log.Warn("failed to write backup", "path", path, "error", err)
		return
	}

	s.pruneBackups()
}

// pruneBackups removes this session's oldest backups, by modification
// time, until at most maxBackups remain. Removal failures are logged and
// swallowed.
func (s *Store) pruneBackups() {
	entries, err := os.ReadDir(s.BackupDir())
	if err != nil {
		s.log.Warn("failed to list backups", "error", err)
		return
	}

	type backup struct {
		path string
		mod  time.Time
	}

	prefix := s.sessionID + "_"
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{
			path: filepath.Join(s.BackupDir(), e.Name()),
			mod:  info.ModTime(),
		})
	}

	if len(backups) <= s.maxBackups {
		return
	}

	// Timestamped names order chronologically, which breaks mtime ties.
	sort.Slice(backups, func(a, b int) bool {
		if !backups[a].mod.Equal(backups[b].mod) {
			return backups[a].mod.Before(backups[b].mod)
		}
		return backups[a].path < backups[b].path
	})

	for _, b := range backups[:len(backups)-s.maxBackups] {
		if err := os.Remove(b.path); err != nil {
			s.log.Warn("failed to remove old backup", "path", b.path, "error", err)
		}
	}
}

// Checkpoint writes a named snapshot next to the session file. Checkpoint
// files are never rotated or pruned; they exist for manual recovery and
// post-hoc inspection. The label, if any, is slugified into the file name.
// Returns the path of the written checkpoint.
func (s *Store) Checkpoint(state any, label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", errors.NewStoreError("failed to create sessions directory", err).WithSessionID(s.sessionID)
	}

	doc, err := s.encode(state)
	if err != nil {
		return "", err
	}

	stem := s.sessionID + "_checkpoint"
	if slug := util.Slugify(label); slug != "" {
		stem += "_" + slug
	}
	stem += "_" + time.Now().Format(timestampLayout)

	path := uniquePath(s.baseDir, stem, ".json")
	if err := util.AtomicWriteFile(path, doc, 0644); err != nil {
		return "", errors.NewStoreError("failed to write checkpoint", err).
			WithSessionID(s.sessionID).WithPath(path)
	}

	s.log.Info("checkpoint written", "path", path, "label", label)
	return path, nil
}

// CheckpointInfo describes one checkpoint file.
type CheckpointInfo struct {
	// Name is the checkpoint file name, usable with LoadCheckpoint.
	Name string

	// Path is the absolute or store-relative path to the file.
	Path string

	// SavedAt is the file's modification time.
	SavedAt time.Time
}

// ListCheckpoints returns this session's checkpoints, newest first.
func (s *Store) ListCheckpoints() ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to list checkpoints", err).WithSessionID(s.sessionID)
	}

	prefix := s.sessionID + "_checkpoint"
	var checkpoints []CheckpointInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		checkpoints = append(checkpoints, CheckpointInfo{
			Name:    e.Name(),
			Path:    filepath.Join(s.baseDir, e.Name()),
			SavedAt: info.ModTime(),
		})
	}

	sort.Slice(checkpoints, func(a, b int) bool {
		if !checkpoints[a].SavedAt.Equal(checkpoints[b].SavedAt) {
			return checkpoints[a].SavedAt.After(checkpoints[b].SavedAt)
		}
		return checkpoints[a].Name > checkpoints[b].Name
	})
	return checkpoints, nil
}

// LoadCheckpoint reads the named checkpoint into v. The name is a file
// name as returned by ListCheckpoints.
func (s *Store) LoadCheckpoint(name string, v any) error {
	path := filepath.Join(s.baseDir, filepath.Base(name))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.NewStoreError("failed to load checkpoint", errors.ErrCheckpointNotFound).
			WithSessionID(s.sessionID).WithPath(path)
	}
	if err != nil {
		return errors.NewStoreError("failed to read checkpoint", err).
			WithSessionID(s.sessionID).WithPath(path)
	}

	if err := json.Unmarshal(data, v); err != nil {
		cause := fmt.Errorf("%w: %v", errors.ErrSessionCorrupted, err)
		return errors.NewStoreError("failed to parse checkpoint", cause).
			WithSessionID(s.sessionID).WithPath(path)
	}
	return nil
}

// SessionInfo describes one saved session snapshot.
type SessionInfo struct {
	ID       string
	Path     string
	Modified time.Time
}

// ListSessions returns the session snapshots under dir, newest first.
// Checkpoint files and the backup directory are excluded.
func ListSessions(dir string) ([]SessionInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var sessions []SessionInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.Contains(name, "_checkpoint") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionInfo{
			ID:       strings.TrimSuffix(name, ".json"),
			Path:     filepath.Join(dir, name),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(sessions, func(a, b int) bool {
		if !sessions[a].Modified.Equal(sessions[b].Modified) {
			return sessions[a].Modified.After(sessions[b].Modified)
		}
		return sessions[a].ID > sessions[b].ID
	})
	return sessions, nil
}

// uniquePath returns dir/stem+ext, appending a numeric suffix when the
// name is already taken. Saves within the same clock second would
// otherwise collide on the timestamped name.
func uniquePath(dir, stem, ext string) string {
	path := filepath.Join(dir, stem+ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}
