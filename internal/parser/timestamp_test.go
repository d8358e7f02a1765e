package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
)

func TestParseTimestamp(t *testing.T) {
	now := time.Date(2026, 5, 12, 10, 0, 0, 0, time.Local)

	t.Run("empty_string_returns_now", func(t *testing.T) {
		got, err := ParseTimestamp("", now)
		require.NoError(t, err)
		assert.Equal(t, now, got)
	})

	t.Run("NOW_case_insensitive", func(t *testing.T) {
		got, err := ParseTimestamp("  NOW  ", now)
		require.NoError(t, err)
		assert.Equal(t, now, got)
	})

	t.Run("absolute_date_and_time", func(t *testing.T) {
		got, err := ParseTimestamp("2026-05-14 08:00", now)
		require.NoError(t, err)
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, time.May, got.Month())
		assert.Equal(t, 14, got.Day())
		assert.Equal(t, 8, got.Hour())
		assert.Equal(t, 0, got.Minute())
		assert.Equal(t, now.Location(), got.Location())
	})

	t.Run("tomorrow", func(t *testing.T) {
		got, err := ParseTimestamp("tomorrow", now)
		require.NoError(t, err)
		assert.Equal(t, 13, got.Day())
		assert.Equal(t, time.May, got.Month())
	})

	t.Run("in_3_days", func(t *testing.T) {
		got, err := ParseTimestamp("in 3 days", now)
		require.NoError(t, err)
		assert.Equal(t, 15, got.Day())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseTimestamp("not a date at all xyz", now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidTimestamp))

		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "time", pe.Field)
		assert.Equal(t, TimestampExamples, pe.Examples)
	})
}

func TestParseDay(t *testing.T) {
	now := time.Date(2026, 5, 12, 10, 30, 0, 0, time.Local)
	midnight := time.Date(2026, 5, 12, 0, 0, 0, 0, time.Local)

	for _, input := range []string{"", "today", " Today "} {
		got, err := ParseDay(input, now)
		require.NoError(t, err, input)
		assert.Equal(t, midnight, got, input)
	}

	got, err := ParseDay("2026-05-20", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.Local), got)

	got, err = ParseDay("tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, midnight.AddDate(0, 0, 1), got)

	_, err = ParseDay("not a date at all xyz", now)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "date", pe.Field)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTimestamp))
}
