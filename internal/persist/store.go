// Package persist provides durable document-per-table storage for the bot's
// conversation state. Each logical table is a single indented JSON file that
// is rewritten wholesale on every save, so the on-disk state is always
// inspectable and diffable.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store reads and writes named tables under a data directory.
// It is safe for use from a single owner; callers serialize access.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a store rooted at dir, creating the directory if absent.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: creating data dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Load reads the named table into v. A missing file leaves v untouched and
// returns nil: a fresh process simply starts empty. A corrupt or unreadable
// file is logged and likewise tolerated — in-memory state is authoritative
// for the rest of the process lifetime.
func (s *Store) Load(table string, v any) error {
	if v == nil {
		return errors.New("persist: Load requires a non-nil destination")
	}

	path := s.path(table)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		s.logger.Warn("persist: reading table failed, starting empty",
			"table", table, "path", path, "error", err)
		return nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("persist: table is corrupt, starting empty",
			"table", table, "path", path, "error", err)
		return nil
	}
	return nil
}

// Save serializes v and rewrites the table file in full. Last writer wins;
// there is no locking because a single process owns the directory.
func (s *Store) Save(table string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: encoding table %s: %w", table, err)
	}
	if err := os.WriteFile(s.path(table), raw, 0o644); err != nil {
		return fmt.Errorf("persist: writing table %s: %w", table, err)
	}
	return nil
}

func (s *Store) path(table string) string {
	return filepath.Join(s.dir, table+".json")
}
