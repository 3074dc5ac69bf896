package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(time.Minute)
	return now
}

func newClock() *stepClock {
	return &stepClock{t: time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)}
}

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cadence.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE tasks (id TEXT PRIMARY KEY, title TEXT)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO tasks (id, title) VALUES ('t1', 'Floss'), ('t2', 'Run')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func countTasks(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	return n
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(newClock().Now))

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written to %s, want directory %s", path, mgr.Dir())
	}
	if filepath.Base(path) != "cadence-20250301-080000.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}
	if n := countTasks(t, path); n != 2 {
		t.Errorf("backup holds %d tasks, want 2", n)
	}
}

func TestCreateMissingStorage(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected missing storage error, got %v", err)
	}
}

func TestCreateSameSecondAddsCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	fixed := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return fixed }))

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first == second {
		t.Fatal("backups taken in the same second must not collide")
	}
	if filepath.Base(second) != "cadence-20250301-080000-1.db" {
		t.Errorf("unexpected backup name %s", filepath.Base(second))
	}

	snaps, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 2 || snaps[0].Path != second {
		t.Errorf("the counter snapshot must list first, got %+v", snaps)
	}
}

func TestListNewestFirst(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(newClock().Now))

	var paths []string
	for range 3 {
		p, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		paths = append(paths, p)
	}

	// unrelated files are ignored
	for _, name := range []string{"notes.txt", "cadence-latest.db", "cadence-20250301-090000.json"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	snaps, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	for i, s := range snaps {
		if s.Path != paths[len(paths)-1-i] {
			t.Errorf("snapshot %d = %s, want %s", i, s.Path, paths[len(paths)-1-i])
		}
		if s.Size == 0 {
			t.Errorf("snapshot %s has zero size", s.Path)
		}
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "cadence.db"))
	snaps, err := mgr.List()
	if err != nil || len(snaps) != 0 {
		t.Errorf("List() = %v, %v; want empty", snaps, err)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(newClock().Now), WithRetention(3))

	var paths []string
	for range 5 {
		p, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		paths = append(paths, p)
	}

	snaps, _ := mgr.List()
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots after rotation, got %d", len(snaps))
	}
	for _, old := range paths[:2] {
		if _, err := os.Stat(old); !os.IsNotExist(err) {
			t.Errorf("old backup %s should have been removed", old)
		}
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(newClock().Now))

	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM tasks"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	safety, err := mgr.Restore(snapshot)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n := countTasks(t, dbPath); n != 2 {
		t.Errorf("restored database holds %d tasks, want 2", n)
	}
	if safety == "" || countTasks(t, safety) != 0 {
		t.Errorf("the pre-restore snapshot must hold the emptied table")
	}
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database, just some text padding it out"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bogus); err == nil {
		t.Error("expected error restoring an invalid file")
	}
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error restoring a missing file")
	}
	if n := countTasks(t, dbPath); n != 2 {
		t.Errorf("a failed restore must leave storage alone, found %d tasks", n)
	}
}

func TestJSONStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.json")
	if err := os.WriteFile(path, []byte(`{"version":1,"tasks":{}}`), 0600); err != nil {
		t.Fatal(err)
	}
	mgr := NewManager(path, WithClock(newClock().Now))

	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasSuffix(snapshot, ".json") {
		t.Errorf("json storage must produce .json snapshots, got %s", snapshot)
	}

	if err := os.WriteFile(path, []byte(`{"version":1,"tasks":{"t1":{}}}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(snapshot); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"version":1,"tasks":{}}` {
		t.Errorf("unexpected restored content %s", data)
	}

	if err := os.WriteFile(path, []byte(`{broken`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error backing up an invalid json file")
	}
}

func TestResolve(t *testing.T) {
	mgr := NewManager("/data/cadence.db")
	if got := mgr.Resolve("cadence-20250301-080000.db"); got != filepath.Join("/data", DirName, "cadence-20250301-080000.db") {
		t.Errorf("Resolve(name) = %s", got)
	}
	if got := mgr.Resolve("/tmp/other.db"); got != "/tmp/other.db" {
		t.Errorf("Resolve(path) = %s", got)
	}
}
