package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/artisan/internal/errors"
)

// ParseError represents an argument that could not be parsed, with examples
// of accepted input.
type ParseError struct {
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
	sentinel   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
}

// Unwrap returns the sentinel matching the field, if any.
func (e *ParseError) Unwrap() error {
	return e.sentinel
}

// FormatWithExamples returns the error message with example suggestions.
func (e *ParseError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// ToUserError converts a ParseError to a UserError for consistent handling.
func (e *ParseError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if len(e.Examples) > 0 && suggestion == "" {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}
	ue := errors.NewUserErrorWithField(e.Field, e.Input, e.Message, suggestion)
	if e.sentinel != nil {
		ue = ue.WithSentinel(e.sentinel)
	}
	return ue
}

// DurationExamples provides example duration formats.
var DurationExamples = []string{
	"90",
	"45m",
	"1h30m",
	"1.5h",
	"2 hours",
}

// TimestampExamples provides example timestamp formats.
var TimestampExamples = []string{
	"tomorrow 9am",
	"friday 14:30",
	"2026-05-14 08:00",
	"in 3 days",
}

// DateExamples provides example calendar day formats.
var DateExamples = []string{
	"today",
	"tomorrow",
	"next monday",
	"2026-05-14",
}

// AmountExamples provides example amount formats.
var AmountExamples = []string{
	"1250",
	"1250.50",
	"1,250.50",
}

// NewDurationError creates a duration parse error with standard examples.
func NewDurationError(input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "duration",
		Message:    "could not parse duration",
		Examples:   DurationExamples,
		Suggestion: "A bare number is read as minutes; hours need an 'h'.",
		sentinel:   errors.ErrInvalidDuration,
	}
}

// NewTimestampError creates a timestamp parse error with standard examples.
func NewTimestampError(input string) *ParseError {
	return &ParseError{
		Input:    input,
		Field:    "time",
		Message:  "could not parse date and time",
		Examples: TimestampExamples,
		sentinel: errors.ErrInvalidTimestamp,
	}
}

// NewDateError creates a calendar day parse error with standard examples.
func NewDateError(input string) *ParseError {
	return &ParseError{
		Input:    input,
		Field:    "date",
		Message:  "could not parse date",
		Examples: DateExamples,
		sentinel: errors.ErrInvalidTimestamp,
	}
}

// NewAmountError creates an amount parse error with standard examples.
func NewAmountError(input string) *ParseError {
	return &ParseError{
		Input:      input,
		Field:      "amount",
		Message:    "could not parse amount",
		Examples:   AmountExamples,
		Suggestion: "Amounts are written in currency units with at most two decimals.",
	}
}
