package system

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTuiCmd(t *testing.T) {
	ctx, _ := setupTestDoctorDB(t)

	orig := runDashboard
	defer func() { runDashboard = orig }()

	var started bool
	runDashboard = func(m tea.Model) error {
		started = true
		if !strings.Contains(m.View(), "Habits") {
			t.Errorf("dashboard should open on the habits tab:\n%s", m.View())
		}
		return nil
	}

	if err := (&TuiCmd{Period: "week"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !started {
		t.Error("dashboard was not started")
	}

	runDashboard = func(tea.Model) error { return errors.New("no tty") }
	if err := (&TuiCmd{Period: "week"}).Run(ctx); err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Errorf("expected the program error, got %v", err)
	}

	ctx.Config.OwnerID = ""
	if err := (&TuiCmd{Period: "week"}).Run(ctx); err == nil {
		t.Error("expected a missing owner to fail")
	}
}
