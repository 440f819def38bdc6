package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) (*Store, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := NewStore(dbPath)
	store.Quiet = true
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tempDir)
	}
	return store, cleanup
}

func addHabit(t *testing.T, s *Store, owner, id, name string) models.Habit {
	t.Helper()
	h := models.Habit{ID: id, OwnerID: owner, Name: name, CreatedAt: time.Now()}
	if err := s.AddHabit(h); err != nil {
		t.Fatalf("failed to add habit %s: %v", name, err)
	}
	return h
}

func mark(t *testing.T, s *Store, owner, habitID, day string) {
	t.Helper()
	_, err := s.MarkCompletion(models.CompletionEvent{
		ID: owner + "-" + habitID + "-" + day, OwnerID: owner, HabitID: habitID, Day: day,
	})
	if err != nil {
		t.Fatalf("failed to mark %s on %s: %v", habitID, day, err)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("Load() on a missing database should fail")
	}
}

func TestInitThenLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "habitmaster.db")
	store := NewStore(dbPath)
	store.Quiet = true
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	store.Close()

	reopened := NewStore(dbPath)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	current, latest, err := reopened.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("SchemaVersion() = (%d, %d), want fully migrated", current, latest)
	}
	if reopened.GetConfigPath() != dbPath {
		t.Errorf("GetConfigPath() = %q, want %q", reopened.GetConfigPath(), dbPath)
	}
}

func TestHabitLifecycle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	h := addHabit(t, store, "alice", "h1", "Read")

	got, err := store.GetHabitByName("alice", "Read")
	if err != nil {
		t.Fatalf("GetHabitByName() error = %v", err)
	}
	if got.ID != h.ID || got.OwnerID != "alice" {
		t.Errorf("GetHabitByName() = %+v", got)
	}

	if err := store.ArchiveHabit("alice", "h1"); err != nil {
		t.Fatalf("ArchiveHabit() error = %v", err)
	}
	if err := store.ArchiveHabit("alice", "h1"); err == nil {
		t.Error("archiving twice should fail")
	}
	active, _ := store.GetAllHabits("alice", false, false)
	if len(active) != 0 {
		t.Errorf("archived habit listed as active: %+v", active)
	}
	all, _ := store.GetAllHabits("alice", true, false)
	if len(all) != 1 || all[0].ArchivedAt == nil {
		t.Errorf("GetAllHabits(includeArchived) = %+v", all)
	}
	if err := store.UnarchiveHabit("alice", "h1"); err != nil {
		t.Fatalf("UnarchiveHabit() error = %v", err)
	}

	if err := store.DeleteHabit("alice", "h1"); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}
	if _, err := store.GetHabit("alice", "h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabit() on deleted habit error = %v, want ErrNotFound", err)
	}
	withDeleted, _ := store.GetAllHabits("alice", true, true)
	if len(withDeleted) != 1 || withDeleted[0].DeletedAt == nil {
		t.Errorf("GetAllHabits(includeDeleted) = %+v", withDeleted)
	}
	if err := store.RestoreHabit("alice", "h1"); err != nil {
		t.Fatalf("RestoreHabit() error = %v", err)
	}
	if _, err := store.GetHabit("alice", "h1"); err != nil {
		t.Errorf("GetHabit() after restore error = %v", err)
	}
}

func TestHabitsAreOwnerScoped(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	addHabit(t, store, "alice", "h1", "Read")
	addHabit(t, store, "bob", "h2", "Read")

	if _, err := store.GetHabit("bob", "h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("bob should not see alice's habit, err = %v", err)
	}
	if err := store.DeleteHabit("bob", "h1"); err == nil {
		t.Error("bob should not be able to delete alice's habit")
	}
	habits, _ := store.GetAllHabits("alice", true, true)
	if len(habits) != 1 || habits[0].ID != "h1" {
		t.Errorf("alice habits = %+v", habits)
	}
}

func TestHabitValidation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.AddHabit(models.Habit{ID: "h1", Name: "Read"}); err == nil {
		t.Error("habit without owner should be rejected")
	}
	if err := store.AddHabit(models.Habit{ID: "h1", OwnerID: "alice", Name: "  "}); err == nil {
		t.Error("habit with blank name should be rejected")
	}
	addHabit(t, store, "alice", "h1", "Read")
	if err := store.AddHabit(models.Habit{ID: "h2", OwnerID: "alice", Name: "Read", CreatedAt: time.Now()}); err == nil {
		t.Error("duplicate active name for the same owner should be rejected")
	}
}

func TestMarkCompletionIsIdempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	addHabit(t, store, "alice", "h1", "Read")

	e := models.CompletionEvent{ID: "c1", OwnerID: "alice", HabitID: "h1", Day: "2026-10-15"}
	created, err := store.MarkCompletion(e)
	if err != nil || !created {
		t.Fatalf("first MarkCompletion() = %v, %v", created, err)
	}
	e.ID = "c2"
	created, err = store.MarkCompletion(e)
	if err != nil || created {
		t.Fatalf("second MarkCompletion() = %v, %v, want false, nil", created, err)
	}

	events, err := store.GetCompletionsForDay("alice", "2026-10-15")
	if err != nil {
		t.Fatalf("GetCompletionsForDay() error = %v", err)
	}
	if len(events) != 1 || events[0].ID != "c1" {
		t.Errorf("GetCompletionsForDay() = %+v", events)
	}

	if _, err := store.MarkCompletion(models.CompletionEvent{ID: "c3", OwnerID: "alice", HabitID: "h1", Day: "15/10/2026"}); err == nil {
		t.Error("malformed day should be rejected")
	}
}

func TestUnmarkCompletion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	addHabit(t, store, "alice", "h1", "Read")
	mark(t, store, "alice", "h1", "2026-10-15")

	if err := store.UnmarkCompletion("bob", "h1", "2026-10-15"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("bob unmark error = %v, want ErrNotFound", err)
	}
	if err := store.UnmarkCompletion("alice", "h1", "2026-10-15"); err != nil {
		t.Fatalf("UnmarkCompletion() error = %v", err)
	}
	if err := store.UnmarkCompletion("alice", "h1", "2026-10-15"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second unmark error = %v, want ErrNotFound", err)
	}
}

func TestGetCompletionsForHabitRange(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	addHabit(t, store, "alice", "h1", "Read")
	for _, d := range []string{"2026-10-01", "2026-10-05", "2026-10-10", "2026-10-20"} {
		mark(t, store, "alice", "h1", d)
	}

	events, err := store.GetCompletionsForHabit("alice", "h1", "2026-10-05", "2026-10-10")
	if err != nil {
		t.Fatalf("GetCompletionsForHabit() error = %v", err)
	}
	if len(events) != 2 || events[0].Day != "2026-10-10" || events[1].Day != "2026-10-05" {
		t.Errorf("GetCompletionsForHabit() = %+v", events)
	}
}

func TestQueryCompletionDates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	addHabit(t, store, "alice", "h1", "Read")
	addHabit(t, store, "alice", "h2", "Run")
	addHabit(t, store, "bob", "h3", "Swim")
	mark(t, store, "alice", "h1", "2026-09-01")
	mark(t, store, "alice", "h1", "2026-10-14")
	mark(t, store, "alice", "h2", "2026-10-15")
	mark(t, store, "bob", "h3", "2026-10-15")

	events, err := store.QueryCompletionDates(ctx, "alice", "2026-10-01")
	if err != nil {
		t.Fatalf("QueryCompletionDates() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	for _, e := range events {
		if e.OwnerID != "alice" {
			t.Errorf("event from another owner leaked: %+v", e)
		}
	}

	all, _ := store.QueryCompletionDates(ctx, "alice", "")
	if len(all) != 3 {
		t.Errorf("full history = %d events, want 3", len(all))
	}

	if err := store.DeleteHabit("alice", "h2"); err != nil {
		t.Fatal(err)
	}
	afterDelete, _ := store.QueryCompletionDates(ctx, "alice", "")
	if len(afterDelete) != 2 {
		t.Errorf("deleted habit completions should be excluded, got %+v", afterDelete)
	}

	if _, err := store.QueryCompletionDates(ctx, "", ""); err == nil {
		t.Error("empty owner should be rejected")
	}
}

func TestQueryCompletionDatesHonorsContext(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.QueryCompletionDates(ctx, "alice", ""); err == nil {
		t.Error("cancelled context should fail the query")
	}
}

func TestQueryHabitCount(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	addHabit(t, store, "alice", "h1", "Read")
	addHabit(t, store, "alice", "h2", "Run")
	addHabit(t, store, "alice", "h3", "Swim")
	addHabit(t, store, "bob", "h4", "Read")
	if err := store.ArchiveHabit("alice", "h2"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteHabit("alice", "h3"); err != nil {
		t.Fatal(err)
	}

	n, err := store.QueryHabitCount(ctx, "alice")
	if err != nil {
		t.Fatalf("QueryHabitCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("QueryHabitCount() = %d, want 1", n)
	}
}

func TestFocusSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	sessions := []models.FocusSession{
		{ID: "s1", OwnerID: "alice", DurationMinutes: 25, Mode: models.FocusModeWork, CompletedAt: base},
		{ID: "s2", OwnerID: "alice", DurationMinutes: 5, Mode: models.FocusModeBreak, CompletedAt: base.Add(30 * time.Minute)},
		{ID: "s3", OwnerID: "alice", DurationMinutes: 50, Mode: models.FocusModeWork, CompletedAt: base.Add(-48 * time.Hour)},
		{ID: "s4", OwnerID: "bob", DurationMinutes: 25, Mode: models.FocusModeWork, CompletedAt: base},
	}
	for _, s := range sessions {
		if err := store.AddFocusSession(s); err != nil {
			t.Fatalf("AddFocusSession(%s) error = %v", s.ID, err)
		}
	}

	if err := store.AddFocusSession(models.FocusSession{ID: "bad", OwnerID: "alice", DurationMinutes: 0, Mode: models.FocusModeWork, CompletedAt: base}); err == nil {
		t.Error("zero-minute session should be rejected")
	}

	work, err := store.QueryFocusSessions(ctx, "alice", models.FocusModeWork, base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("QueryFocusSessions() error = %v", err)
	}
	if len(work) != 1 || work[0].ID != "s1" || !work[0].CompletedAt.Equal(base) {
		t.Errorf("QueryFocusSessions() = %+v", work)
	}

	listed, err := store.GetFocusSessions("alice", time.Time{}, 2)
	if err != nil {
		t.Fatalf("GetFocusSessions() error = %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "s2" || listed[1].ID != "s1" {
		t.Errorf("GetFocusSessions() = %+v", listed)
	}
}
