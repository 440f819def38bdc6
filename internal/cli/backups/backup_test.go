package backups

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/cli"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/config"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/models"
	"github.com/zsy-dream/HabitMaster-pioneer/internal/storage/sqlite"
)

var testNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	store.Quiet = true
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default(tempDir)
	cfg.Database = dbPath
	cfg.OwnerID = "owner-1"

	out := &bytes.Buffer{}
	return &cli.Context{
		Store:      store,
		Config:     &cfg,
		ConfigPath: filepath.Join(tempDir, "config.yaml"),
		Now:        func() time.Time { return testNow },
		Out:        out,
	}, out
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: habitmaster-") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Available backups (1 total") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	name := strings.TrimSpace(strings.TrimPrefix(out.String(), "✓ Backup created: "))

	if err := ctx.Store.AddHabit(models.Habit{ID: "h1", OwnerID: "owner-1", Name: "Read", CreatedAt: testNow}); err != nil {
		t.Fatal(err)
	}

	orig := confirmRestore
	defer func() { confirmRestore = orig }()

	confirmRestore = func(string) (bool, error) { return false, nil }
	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: name}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("unexpected output %q", out.String())
	}

	var asked bool
	confirmRestore = func(string) (bool, error) { asked = true; return true, nil }
	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: name}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !asked {
		t.Error("restore should ask for confirmation")
	}
	if !strings.Contains(out.String(), "✓ Database restored successfully!") {
		t.Errorf("unexpected output %q", out.String())
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	habits, err := ctx.Store.GetAllHabits("owner-1", true, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 0 {
		t.Errorf("restored database should be empty, found %d habits", len(habits))
	}
}

func TestBackupRefusedForPostgres(t *testing.T) {
	ctx, _ := setupTestDB(t)
	ctx.Config.Database = "postgres://hm@localhost:5432/hm"

	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected backups to be refused for postgres")
	}
	if err := (&BackupRestoreCmd{BackupFile: "x.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected restore to be refused for postgres")
	}
}
