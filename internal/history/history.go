// Package history persists previously searched usernames as a JSON array,
// most recent first.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const DefaultFileName = "search_history.json"
const DefaultLimit = 50

type Store struct {
	path   string
	limit  int
	logger logrus.FieldLogger

	mu sync.Mutex
}

func NewStore(path string, limit int, logger logrus.FieldLogger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{path: path, limit: limit, logger: logger}
}

// DefaultPath returns search_history.json under the user config directory,
// or in the working directory when that is unavailable.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, "acclookup", DefaultFileName)
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored usernames. A missing or unreadable file yields an
// empty history; only the unreadable case is logged.
func (s *Store) Load() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() []string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", s.path).Warn("cannot read search history")
		}
		return nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("ignoring corrupt search history")
		return nil
	}
	return names
}

// Add records username as the most recent entry, dropping an older duplicate
// and anything beyond the limit.
func (s *Store) Add(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	names := []string{username}
	for _, n := range s.load() {
		if n != username {
			names = append(names, n)
		}
	}
	if len(names) > s.limit {
		names = names[:s.limit]
	}
	return s.save(names)
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]string{})
}

func (s *Store) save(names []string) error {
	raw, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode history")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create history dir")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "write history")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "replace history")
	}
	return nil
}
