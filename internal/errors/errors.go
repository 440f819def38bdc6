package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/zsy-dream/HabitMaster-pioneer/internal/logger"
)

var (
	// ErrMissingOwner is returned when an aggregation is requested without an owner id
	ErrMissingOwner = stderrors.New("owner id is required")
	// ErrOwnerMismatch is returned when the store hands back a row belonging to another owner
	ErrOwnerMismatch = stderrors.New("row belongs to a different owner")
)

// QueryError wraps any failure reaching the event log store.
type QueryError struct {
	Op      string
	OwnerID string
	Err     error
}

func (e *QueryError) Error() string {
	if e.OwnerID == "" {
		return fmt.Sprintf("query %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("query %s for owner %s: %v", e.Op, e.OwnerID, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err unless it already is a QueryError.
func NewQueryError(op, ownerID string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if stderrors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, OwnerID: ownerID, Err: err}
}

// IsQueryError reports whether err carries a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return stderrors.As(err, &qe)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
