package runtime

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/guard"
	"github.com/manav03panchal/artisan/internal/model"
)

// ErrDiskFull marks writes that failed for lack of space.
var ErrDiskFull = errors.New("disk full: unable to write to database")

const diskFullSuggestion = "Free up disk space and run the command again. Reminders already recorded are kept."

// DiskFullError represents a disk full condition with additional context.
type DiskFullError struct {
	Op      string // The operation that failed (e.g., "open", "write")
	Path    string // The path involved, if known
	wrapped error
}

func (e *DiskFullError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("disk full during %s on %s: %v", e.Op, e.Path, e.wrapped)
	}
	return fmt.Sprintf("disk full during %s: %v", e.Op, e.wrapped)
}

func (e *DiskFullError) Unwrap() []error {
	return []error{ErrDiskFull, e.wrapped}
}

// NewDiskFullError creates a new DiskFullError.
func NewDiskFullError(op, path string, err error) *DiskFullError {
	return &DiskFullError{Op: op, Path: path, wrapped: err}
}

var diskFullPatterns = []string{
	"no space left on device",
	"disk full",
	"enospc",
	"not enough space",
	"database or disk is full",
}

// IsDiskFullError checks for ENOSPC and the messages Badger and SQLite use
// for a full disk.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDiskFull) || errors.Is(err, syscall.ENOSPC) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range diskFullPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// WrapDiskFullError wraps err as a DiskFullError if it indicates disk full.
// Other errors are returned unchanged.
func WrapDiskFullError(err error, op, path string) error {
	if err == nil {
		return nil
	}
	var dfe *DiskFullError
	if errors.As(err, &dfe) {
		return err
	}
	if IsDiskFullError(err) {
		return NewDiskFullError(op, path, err)
	}
	return err
}

// Suggestion returns the hint printed under a failed command.
func Suggestion(err error) string {
	if IsDiskFullError(err) {
		return diskFullSuggestion
	}
	if it, ok := guard.AsInvalidTransition(err); ok && len(it.Allowed) > 0 {
		return fmt.Sprintf("Allowed on that date: %s. --auto-correct applies %s instead.",
			joinStatuses(it.Allowed), it.SuggestedFallback)
	}
	return apperrors.GetSuggestion(err)
}

func joinStatuses(ss []model.InterventionStatus) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// FormatError renders err for the terminal. Debug mode adds the error chain.
func FormatError(err error, debug bool) string {
	if err == nil {
		return ""
	}
	if debug {
		return apperrors.FormatDebugError(err)
	}
	msg := err.Error()
	if s := Suggestion(err); s != "" {
		msg += "\n  Hint: " + s
	}
	return msg
}
