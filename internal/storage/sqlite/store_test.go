package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

func setupTestSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "cadence.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr(t time.Time) *time.Time { return &t }

func TestInitSavesDefaultSettings(t *testing.T) {
	store := setupTestSQLiteStore(t)

	settings, err := storage.LoadSettings(store)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.Timezone != constants.DefaultTimezone || settings.CutoffTime != constants.DefaultCutoffTime {
		t.Errorf("unexpected default settings: %+v", settings)
	}
}

func TestInitKeepsExistingSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := storage.SaveSettings(store, models.Settings{Timezone: "UTC", CutoffTime: "22:00"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	store.Close()

	again := NewStore(path)
	if err := again.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer again.Close()

	settings, err := storage.LoadSettings(again)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings.Timezone != "UTC" {
		t.Errorf("re-init overwrote timezone: %+v", settings)
	}
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	if !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestKV(t *testing.T) {
	store := setupTestSQLiteStore(t)

	if _, found, err := store.Get("habit:r1:days"); err != nil || found {
		t.Fatalf("Get on missing key = found %v, err %v", found, err)
	}
	if err := store.Set("habit:r1:days", `["2025-01-02"]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("habit:r1:days", `["2025-01-02","2025-01-03"]`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	value, found, err := store.Get("habit:r1:days")
	if err != nil || !found {
		t.Fatalf("Get failed: found %v, err %v", found, err)
	}
	if value != `["2025-01-02","2025-01-03"]` {
		t.Errorf("Get() = %q", value)
	}
}

func TestTaskCatalog(t *testing.T) {
	store := setupTestSQLiteStore(t)
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	start := time.Date(2025, 1, 2, 9, 0, 0, 0, ny)
	task := models.Task{
		ID:           "t1",
		Title:        "Standup",
		StartAt:      ptr(start),
		EndAt:        ptr(start.Add(15 * time.Minute)),
		RecurrenceID: "r1",
		Status:       models.TaskStatusPending,
		Priority:     2,
		CreatedAt:    start.Add(-time.Hour),
	}
	if err := store.AddTask(task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if err := store.AddTask(models.Task{ID: "t2", Title: "Someday", Status: models.TaskStatusPending, CreatedAt: start}); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	got, err := store.GetTask("t1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Standup" || got.RecurrenceID != "r1" || got.Priority != 2 {
		t.Errorf("GetTask() = %+v", got)
	}
	if got.StartAt == nil || !got.StartAt.Equal(start) {
		t.Errorf("start instant not preserved: %v", got.StartAt)
	}
	if got.EndAt == nil || got.EndAt.Sub(*got.StartAt) != 15*time.Minute {
		t.Errorf("end instant not preserved: %v", got.EndAt)
	}

	tasks, err := store.GetAllTasks()
	if err != nil {
		t.Fatalf("GetAllTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}

	if err := store.DeleteTask("t1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := store.GetTask("t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetTask after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTask("t1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteTask error = %v, want ErrNotFound", err)
	}

	tasks, err = store.GetAllTasks()
	if err != nil {
		t.Fatalf("GetAllTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t2" {
		t.Errorf("soft-deleted task still listed: %+v", tasks)
	}
}

func TestRecurrenceCatalog(t *testing.T) {
	store := setupTestSQLiteStore(t)

	until := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rule := models.Recurrence{
		ID:           "r1",
		Frequency:    models.FrequencyWeekly,
		Interval:     2,
		DaysOfWeek:   []time.Weekday{time.Monday, time.Wednesday},
		EndDate:      &until,
		Enabled:      true,
		Merge:        true,
		AutoComplete: true,
	}
	if err := store.AddRecurrence(rule); err != nil {
		t.Fatalf("AddRecurrence failed: %v", err)
	}
	monthly := models.Recurrence{
		ID:          "r2",
		Frequency:   models.FrequencyMonthly,
		DaysOfMonth: []int{1, 15, 31},
		Enabled:     true,
	}
	if err := store.AddRecurrence(monthly); err != nil {
		t.Fatalf("AddRecurrence failed: %v", err)
	}

	got, err := store.GetRecurrence("r1")
	if err != nil {
		t.Fatalf("GetRecurrence failed: %v", err)
	}
	if got.Frequency != models.FrequencyWeekly || got.Interval != 2 || !got.Enabled || !got.Merge || !got.AutoComplete {
		t.Errorf("GetRecurrence() = %+v", got)
	}
	if len(got.DaysOfWeek) != 2 || got.DaysOfWeek[0] != time.Monday || got.DaysOfWeek[1] != time.Wednesday {
		t.Errorf("weekday set not preserved: %v", got.DaysOfWeek)
	}
	if got.EndDate == nil || !got.EndDate.Equal(until) {
		t.Errorf("end date not preserved: %v", got.EndDate)
	}

	got, err = store.GetRecurrence("r2")
	if err != nil {
		t.Fatalf("GetRecurrence failed: %v", err)
	}
	if got.Interval != 1 {
		t.Errorf("interval should default to 1, got %d", got.Interval)
	}
	if len(got.DaysOfMonth) != 3 || got.DaysOfMonth[2] != 31 {
		t.Errorf("month-day set not preserved: %v", got.DaysOfMonth)
	}
	if got.EndDate != nil {
		t.Errorf("expected open-ended rule, got end %v", got.EndDate)
	}

	if err := store.DeleteRecurrence("r2"); err != nil {
		t.Fatalf("DeleteRecurrence failed: %v", err)
	}
	rules, err := store.GetAllRecurrences()
	if err != nil {
		t.Fatalf("GetAllRecurrences failed: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != "r1" {
		t.Errorf("GetAllRecurrences() = %+v", rules)
	}
}

func TestFixedBlockCatalog(t *testing.T) {
	store := setupTestSQLiteStore(t)

	start := time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC)
	blocks := []models.FixedBlock{
		{ID: "b2", Title: "Gym", StartAt: start.Add(24 * time.Hour), EndAt: start.Add(25 * time.Hour)},
		{ID: "b1", Title: "Lecture", StartAt: start, EndAt: start.Add(90 * time.Minute)},
	}
	for _, b := range blocks {
		if err := store.AddFixedBlock(b); err != nil {
			t.Fatalf("AddFixedBlock failed: %v", err)
		}
	}

	got, err := store.GetAllFixedBlocks()
	if err != nil {
		t.Fatalf("GetAllFixedBlocks failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b1" || got[1].ID != "b2" {
		t.Fatalf("expected blocks ordered by start, got %+v", got)
	}
	if !got[0].EndAt.Equal(start.Add(90 * time.Minute)) {
		t.Errorf("end instant not preserved: %v", got[0].EndAt)
	}

	if err := store.DeleteFixedBlock("b1"); err != nil {
		t.Fatalf("DeleteFixedBlock failed: %v", err)
	}
	if err := store.DeleteFixedBlock("missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteFixedBlock(missing) error = %v, want ErrNotFound", err)
	}
	got, err = store.GetAllFixedBlocks()
	if err != nil {
		t.Fatalf("GetAllFixedBlocks failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b2" {
		t.Errorf("GetAllFixedBlocks() after delete = %+v", got)
	}
}

func TestReloadValidatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.AddTask(models.Task{ID: "t1", Title: "Read", Status: models.TaskStatusPending, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetTask("t1"); err != nil {
		t.Errorf("task not persisted across reload: %v", err)
	}
}
