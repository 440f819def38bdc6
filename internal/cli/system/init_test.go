package system

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/config"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage/sqlite"
)

var testNow = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

func setupTestInitDB(t *testing.T) (*cli.Context, string, *bytes.Buffer) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	store.Quiet = true
	cfg := config.Default(tempDir)
	cfg.Database = dbPath
	cfg.Timezone = "UTC"

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:      store,
		Config:     &cfg,
		ConfigPath: filepath.Join(tempDir, "config.yaml"),
		Now:        func() time.Time { return testNow },
		Out:        out,
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, dbPath, out
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, out := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}

	saved, err := config.Load(ctx.ConfigPath)
	if err != nil {
		t.Fatalf("config was not written: %v", err)
	}
	if saved.OwnerID == "" {
		t.Error("init should generate an owner id")
	}
	if !strings.Contains(out.String(), "Owner id: "+saved.OwnerID) {
		t.Errorf("owner id not printed: %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	owner := ctx.Config.OwnerID

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
	if ctx.Config.OwnerID != owner {
		t.Errorf("owner id changed on re-init: %q -> %q", owner, ctx.Config.OwnerID)
	}
}

func TestInitCmd_Flags(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)

	if err := (&InitCmd{Owner: "alice", Timezone: "Asia/Tokyo"}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	saved, err := config.Load(ctx.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved.OwnerID != "alice" || saved.Timezone != "Asia/Tokyo" {
		t.Errorf("flags not persisted: %+v", saved)
	}

	if err := (&InitCmd{Timezone: "Mars/Olympus"}).Run(ctx); err == nil {
		t.Error("expected an unknown timezone to fail")
	}
}

func TestInitCmd_Interactive(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)

	orig := promptSettings
	defer func() { promptSettings = orig }()
	promptSettings = func(cfg *config.Config) error {
		cfg.Timezone = "Europe/Berlin"
		cfg.Focus.WorkMinutes = 50
		return nil
	}

	if err := (&InitCmd{Interactive: true}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	saved, err := config.Load(ctx.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Timezone != "Europe/Berlin" || saved.Focus.WorkMinutes != 50 {
		t.Errorf("prompted settings not persisted: %+v", saved)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, dbPath, _ := setupTestInitDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	habit := models.Habit{ID: "h1", OwnerID: ctx.Config.OwnerID, Name: "Read", CreatedAt: testNow}
	if err := ctx.Store.AddHabit(habit); err != nil {
		t.Fatal(err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatalf("database file was not recreated after force")
	}

	habits, err := ctx.Store.GetAllHabits(ctx.Config.OwnerID, true, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 0 {
		t.Errorf("expected a wiped database, found %d habits", len(habits))
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	ctx, dbPath, _ := setupTestInitDB(t)

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_ForceRefusedForPostgres(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)
	ctx.Config.Database = "postgres://hm@localhost:5432/hm"

	if err := (&InitCmd{Force: true}).Run(ctx); err == nil {
		t.Error("--force should be refused for postgres")
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database is up to date") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestMigrateCmd_AppliesPending(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("DROP TABLE focus_sessions"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 1"); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Successfully applied 1 migration(s).") {
		t.Errorf("unexpected output %q", out.String())
	}
}
