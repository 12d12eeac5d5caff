package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	t, err := ParseDay(value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewRejectsEmptyAndInvertedRanges(t *testing.T) {
	_, err := New(day("2025-06-05"), day("2025-06-05"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day("2025-06-10"), day("2025-06-05"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("plus7", 7*3600)
	start := time.Date(2025, 6, 1, 15, 30, 0, 0, loc)
	end := time.Date(2025, 6, 3, 23, 59, 59, 0, time.UTC)

	r, err := New(start, end)
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-01"), r.Start)
	assert.Equal(t, day("2025-06-03"), r.End)
}

func TestOverlaps(t *testing.T) {
	base, err := New(day("2025-06-01"), day("2025-06-05"))
	require.NoError(t, err)

	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"identical", "2025-06-01", "2025-06-05", true},
		{"contained", "2025-06-02", "2025-06-04", true},
		{"overlaps start", "2025-05-30", "2025-06-02", true},
		{"overlaps end", "2025-06-04", "2025-06-10", true},
		{"covers", "2025-05-01", "2025-07-01", true},
		{"adjacent after", "2025-06-05", "2025-06-10", false},
		{"adjacent before", "2025-05-28", "2025-06-01", false},
		{"disjoint", "2025-07-01", "2025-07-05", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(day(tc.start), day(tc.end))
			require.NoError(t, err)
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestContainsIsHalfOpen(t *testing.T) {
	r, err := New(day("2025-06-01"), day("2025-06-05"))
	require.NoError(t, err)

	assert.True(t, r.Contains(day("2025-06-01")))
	assert.True(t, r.Contains(day("2025-06-04")))
	assert.False(t, r.Contains(day("2025-06-05")))
	assert.False(t, r.Contains(day("2025-05-31")))
}

func TestDaysEnumeratesNights(t *testing.T) {
	r, err := New(day("2025-12-23"), day("2025-12-27"))
	require.NoError(t, err)

	days := r.Days()
	require.Len(t, days, 4)
	assert.Equal(t, day("2025-12-23"), days[0])
	assert.Equal(t, day("2025-12-26"), days[3])
	assert.Equal(t, 4, r.Nights())
}

func TestIntersect(t *testing.T) {
	a, err := New(day("2025-06-01"), day("2025-06-10"))
	require.NoError(t, err)
	b, err := New(day("2025-06-05"), day("2025-06-20"))
	require.NoError(t, err)

	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, day("2025-06-05"), got.Start)
	assert.Equal(t, day("2025-06-10"), got.End)

	c, err := New(day("2025-07-01"), day("2025-07-02"))
	require.NoError(t, err)
	_, ok = a.Intersect(c)
	assert.False(t, ok)
}

func TestParseRejectsMalformedDays(t *testing.T) {
	_, err := Parse("2025-06-01", "06/05/2025")
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = Parse("", "2025-06-05")
	assert.ErrorIs(t, err, ErrInvalidDay)

	r, err := Parse("2025-06-01", "2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01..2025-06-05", r.String())
}
