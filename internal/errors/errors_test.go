package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// UserError Tests
// =============================================================================

func TestNewUserError(t *testing.T) {
	err := NewUserError("Something went wrong", "Try again")
	assert.Equal(t, "Something went wrong", err.Message)
	assert.Equal(t, "Try again", err.Suggestion)
	assert.Equal(t, "Something went wrong", err.Error())
}

func TestNewUserErrorWithField(t *testing.T) {
	err := NewUserErrorWithField("duration", "500", "Duration out of range", "Use 1-120")
	assert.Equal(t, "Duration out of range: '500'", err.Error())
}

func TestUserErrorWithSentinel(t *testing.T) {
	err := NewUserError("Duration out of range", "").WithSentinel(ErrInvalidDuration)
	assert.True(t, errors.Is(err, ErrInvalidDuration))

	wrapped := fmt.Errorf("create intervention: %w", err)
	assert.True(t, IsUserError(wrapped))
	assert.True(t, Is(wrapped, ErrInvalidDuration))

	ue, ok := AsUserError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, err, ue)
}

// =============================================================================
// SystemError Tests
// =============================================================================

func TestSystemErrorError(t *testing.T) {
	cause := errors.New("disk full")

	t.Run("with_op", func(t *testing.T) {
		err := NewSystemErrorWithOp("append reminder", "write failed", cause)
		assert.Equal(t, "write failed during append reminder: disk full", err.Error())
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("without_op", func(t *testing.T) {
		err := NewSystemError("write failed", cause)
		assert.Equal(t, "write failed: disk full", err.Error())
		assert.True(t, IsSystemError(err))
		assert.False(t, IsUserError(err))
	})
}

// =============================================================================
// Wrap Tests
// =============================================================================

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	err := Wrap(ErrInvoiceNotFound, "load invoice")
	assert.Equal(t, "load invoice: invoice not found", err.Error())
	assert.True(t, errors.Is(err, ErrInvoiceNotFound))

	err = Wrapf(ErrClientNotFound, "client %s", "c1")
	assert.Equal(t, "client c1: client not found", err.Error())
}

// =============================================================================
// Suggestion Tests
// =============================================================================

func TestGetSuggestion(t *testing.T) {
	assert.Equal(t, "", GetSuggestion(nil))
	assert.Equal(t, "", GetSuggestion(errors.New("unknown")))
	assert.Contains(t, GetSuggestion(Wrap(ErrInvalidDuration, "x")), "1 and 120")

	custom := NewUserError("bad", "do this instead").WithSentinel(ErrInvalidDuration)
	assert.Equal(t, "do this instead", GetSuggestion(custom))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))
	assert.Equal(t, "boom", FormatError(errors.New("boom")))
	assert.Contains(t, FormatError(ErrInvoiceNotFound), "Hint: Use 'artisan invoice list'")
}

// =============================================================================
// Debug Tests
// =============================================================================

func TestChainAndRootCause(t *testing.T) {
	assert.Nil(t, Chain(nil))

	err := Wrap(Wrap(ErrInvoiceNotFound, "load invoice"), "scan")
	assert.Equal(t, []string{
		"scan: load invoice: invoice not found",
		"load invoice: invoice not found",
		"invoice not found",
	}, Chain(err))
	assert.Equal(t, ErrInvoiceNotFound, RootCause(err))
}

func TestFormatDebugError(t *testing.T) {
	assert.Equal(t, "", FormatDebugError(nil))

	err := Wrap(NewSystemError("write failed", errors.New("disk full")), "append reminder")
	out := FormatDebugError(err)
	assert.Contains(t, out, "Error: append reminder: write failed: disk full")
	assert.Contains(t, out, "Error chain:")
	assert.Contains(t, out, "Kind: system")
	assert.Contains(t, out, "Root cause: disk full")

	user := NewUserError("bad duration", "").WithSentinel(ErrInvalidDuration)
	out = FormatDebugError(user)
	assert.Contains(t, out, "Kind: user")
	assert.Contains(t, out, "Suggestion: Durations are whole minutes")
}
