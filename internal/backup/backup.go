// Package backup keeps timestamped snapshots of a file-backed catalog next
// to the storage file.
package backup

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/cadence/internal/logger"
)

const (
	// DefaultRetention is the number of snapshots kept after a new one is taken.
	DefaultRetention = 14
	// DirName is the directory, beside the storage file, holding snapshots.
	DirName = "backups"
	// FilePrefix starts every snapshot file name.
	FilePrefix = "cadence-"

	stampLayout = "20060102-150405"
)

// ErrUnsupported is returned for storage that is not a local file.
var ErrUnsupported = errors.New("backups are only supported for sqlite and json storage")

// Snapshot describes one backup file.
type Snapshot struct {
	Path    string
	TakenAt time.Time
	Size    int64

	seq int
}

// Manager creates, lists, rotates and restores snapshots of one storage file.
type Manager struct {
	path      string
	dir       string
	ext       string
	retention int
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used to name snapshots.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRetention sets how many snapshots survive rotation. Values below one
// disable rotation.
func WithRetention(n int) Option {
	return func(m *Manager) { m.retention = n }
}

// NewManager returns a Manager for the storage file at path. The file
// extension picks the snapshot method: ".json" files are copied, anything
// else is treated as an SQLite database.
func NewManager(path string, opts ...Option) *Manager {
	ext := ".db"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		ext = ".json"
	}
	m := &Manager{
		path:      path,
		dir:       filepath.Join(filepath.Dir(path), DirName),
		ext:       ext,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the snapshot directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Create takes a snapshot and rotates old ones. A rotation failure is
// logged and does not fail the snapshot.
func (m *Manager) Create() (string, error) {
	path, err := m.create()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) create() (string, error) {
	if _, err := os.Stat(m.path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("storage does not exist: %s", m.path)
		}
		return "", err
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := m.nextName()
	if err != nil {
		return "", err
	}

	if m.ext == ".json" {
		if err := verifyJSON(m.path); err != nil {
			return "", fmt.Errorf("storage file is not valid: %w", err)
		}
		err = copyFile(m.path, dest)
	} else {
		err = vacuumInto(m.path, dest)
	}
	if err != nil {
		return "", fmt.Errorf("failed to back up storage: %w", err)
	}
	logger.Debug("Created backup", "path", dest)
	return dest, nil
}

// nextName returns an unused snapshot path for the current time.
func (m *Manager) nextName() (string, error) {
	stamp := m.now().Format(stampLayout)
	path := filepath.Join(m.dir, FilePrefix+stamp+m.ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, n, m.ext))
	}
}

// List returns the snapshots of this storage kind, newest first. Files
// whose names do not carry a timestamp are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, m.ext) {
			continue
		}
		takenAt, seq, ok := parseStamp(strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), m.ext))
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{Path: filepath.Join(m.dir, name), TakenAt: takenAt, Size: info.Size(), seq: seq})
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].TakenAt.Equal(snaps[j].TakenAt) {
			return snaps[i].seq > snaps[j].seq
		}
		return snaps[i].TakenAt.After(snaps[j].TakenAt)
	})
	return snaps, nil
}

// parseStamp reads "20060102-150405" with an optional "-N" counter.
func parseStamp(s string) (time.Time, int, bool) {
	seq := 0
	if len(s) > len(stampLayout) {
		if s[len(stampLayout)] != '-' {
			return time.Time{}, 0, false
		}
		n, err := strconv.Atoi(s[len(stampLayout)+1:])
		if err != nil || n < 1 {
			return time.Time{}, 0, false
		}
		seq, s = n, s[:len(stampLayout)]
	}
	t, err := time.ParseInLocation(stampLayout, s, time.Local)
	return t, seq, err == nil
}

func (m *Manager) rotate() error {
	if m.retention < 1 {
		return nil
	}
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for _, s := range snaps[min(m.retention, len(snaps)):] {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", s.Path, err)
		}
	}
	return nil
}

// Resolve maps a snapshot file name, or a path, to a path. Bare names are
// looked up in the snapshot directory.
func (m *Manager) Resolve(name string) string {
	if filepath.Base(name) == name {
		return filepath.Join(m.dir, name)
	}
	return name
}

// Restore replaces the storage file with the snapshot at path. The current
// file is snapshotted first, without rotation, and that path is returned.
// The storage must be closed by the caller.
func (m *Manager) Restore(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("backup file does not exist: %s", path)
		}
		return "", err
	}

	verify := verifySQLite
	if m.ext == ".json" {
		verify = verifyJSON
	}
	if err := verify(path); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety string
	if _, err := os.Stat(m.path); err == nil {
		s, err := m.create()
		if err != nil {
			return "", fmt.Errorf("failed to back up current storage before restore: %w", err)
		}
		safety = s
	}

	tmp := m.path + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return "", fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return "", fmt.Errorf("failed to restore storage: %w", err)
	}
	return safety, nil
}

// vacuumInto writes a compacted copy of the database at src to dest.
func vacuumInto(src, dest string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := pingSchema(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		return copyFile(src, dest)
	}
	return nil
}

func verifySQLite(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return pingSchema(db)
}

func pingSchema(db *sql.DB) error {
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func verifyJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return errors.New("not a JSON document")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
