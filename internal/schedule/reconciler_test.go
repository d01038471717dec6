package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		clock    string
		expected float64
	}{
		{"01:30", 1.5},
		{"00:45", 0.75},
		{"02:00", 2},
		{"00:20", 0.33},
		{"10:01", 10.02},
	}

	for _, tc := range cases {
		value, err := ParseClock(tc.clock)
		require.NoError(t, err, tc.clock)
		require.InDelta(t, tc.expected, value, 1e-9, tc.clock)
	}
}

func TestParseClockRejectsMalformedInput(t *testing.T) {
	for _, clock := range []string{"", "90", "1:2:3", "aa:bb", "01:60", "-1:30", "01:-5"} {
		_, err := ParseClock(clock)
		require.Error(t, err, clock)
	}
}

func TestRemainingWeight(t *testing.T) {
	siblings := []Allocation{
		{Weight: 0.25, DurationHours: 2},
		{Weight: 0.15, DurationHours: 1},
	}

	budget, err := Remaining(siblings, -1, 30, "02:00", 10)
	require.NoError(t, err)
	require.InDelta(t, 0.30, budget.RemainingWeight, 1e-9)
}

func TestRemainingDuration(t *testing.T) {
	siblings := []Allocation{
		{Weight: 0.3, DurationHours: 4},
		{Weight: 0.3, DurationHours: 2},
	}

	budget, err := Remaining(siblings, -1, 20, "02:00", 10)
	require.NoError(t, err)
	require.InDelta(t, 2, budget.RemainingDuration, 1e-9)
}

func TestRemainingExcludesEditedSibling(t *testing.T) {
	siblings := []Allocation{
		{Weight: 0.40, DurationHours: 4},
		{Weight: 0.30, DurationHours: 3},
	}

	// Editing the first section: its stored values must not count against it.
	budget, err := Remaining(siblings, 0, 50, "05:00", 10)
	require.NoError(t, err)
	require.InDelta(t, 0.20, budget.RemainingWeight, 1e-9)
	require.InDelta(t, 2, budget.RemainingDuration, 1e-9)
}

func TestRemainingWithNoSiblings(t *testing.T) {
	budget, err := Remaining(nil, -1, 40, "01:30", 8)
	require.NoError(t, err)
	require.InDelta(t, 0.60, budget.RemainingWeight, 1e-9)
	require.InDelta(t, 6.5, budget.RemainingDuration, 1e-9)
}

func TestRemainingAllowsNegativeValues(t *testing.T) {
	siblings := []Allocation{{Weight: 0.9, DurationHours: 9}}

	budget, err := Remaining(siblings, -1, 30, "02:00", 10)
	require.NoError(t, err)
	require.InDelta(t, -0.20, budget.RemainingWeight, 1e-9)
	require.InDelta(t, -1, budget.RemainingDuration, 1e-9)
}

func TestRemainingIsIdempotent(t *testing.T) {
	siblings := []Allocation{
		{Weight: 0.2, DurationHours: 1.5},
		{Weight: 0.1, DurationHours: 0.75},
	}

	first, err := Remaining(siblings, 1, 25, "01:15", 6)
	require.NoError(t, err)
	second, err := Remaining(siblings, 1, 25, "01:15", 6)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		hours    float64
		expected string
	}{
		{1.0, "1 hora"},
		{1.5, "1 hora e 30 minutos"},
		{2.0, "2 horas"},
		{2.01, "2 horas e 01 minuto"},
		{0.75, "0 horas e 45 minutos"},
		{3.25, "3 horas e 15 minutos"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, FormatHours(tc.hours), "%v", tc.hours)
	}
}

func TestFixed2RoundsHalfAwayFromZero(t *testing.T) {
	require.Equal(t, 0.33, Fixed2(0.325))
	require.Equal(t, 1.5, Fixed2(1.4999999))
	require.Equal(t, -0.33, Fixed2(-0.325))
}
