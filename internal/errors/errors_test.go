package errors

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("habit not found"), expected: "Error: habit not found"},
		{
			name:     "query error",
			err:      &QueryError{Op: "habit count", OwnerID: "u1", Err: errors.New("connection refused")},
			expected: "Error: query habit count for owner u1: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("invalid period %q", "decade")
	if got != `Error: invalid period "decade"` {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestNewQueryError(t *testing.T) {
	cause := sql.ErrConnDone

	err := NewQueryError("completion dates", "owner-1", cause)
	if !IsQueryError(err) {
		t.Fatalf("NewQueryError() = %T, want *QueryError", err)
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Error("QueryError should unwrap to its cause")
	}

	var qe *QueryError
	if !errors.As(err, &qe) || qe.Op != "completion dates" || qe.OwnerID != "owner-1" {
		t.Errorf("unexpected QueryError fields: %+v", qe)
	}

	wrapped := fmt.Errorf("heatmap: %w", err)
	again := NewQueryError("heatmap", "owner-1", wrapped)
	if again != wrapped {
		t.Error("NewQueryError should not wrap an existing QueryError twice")
	}

	if NewQueryError("noop", "owner-1", nil) != nil {
		t.Error("NewQueryError(nil) should return nil")
	}
}

func TestQueryErrorWithoutOwner(t *testing.T) {
	err := &QueryError{Op: "focus sessions", Err: ErrMissingOwner}
	if err.Error() != "query focus sessions: owner id is required" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrMissingOwner) {
		t.Error("expected errors.Is(ErrMissingOwner)")
	}
}

// TestFatal runs Fatal in a helper process and checks the exit status.
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("store not initialized"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: store not initialized") {
			t.Errorf("Fatal() stderr = %q", stderr.String())
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}
