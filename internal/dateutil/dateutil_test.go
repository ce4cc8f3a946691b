package dateutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassioalves/controle-financeiro-semanal/internal/dateutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "Sunday maps to itself",
			in:   date(2024, time.June, 2),
			want: date(2024, time.June, 2),
		},
		{
			name: "Wednesday maps back to Sunday",
			in:   date(2024, time.June, 5),
			want: date(2024, time.June, 2),
		},
		{
			name: "Saturday maps back to Sunday",
			in:   date(2024, time.June, 8),
			want: date(2024, time.June, 2),
		},
		{
			name: "time of day is discarded",
			in:   time.Date(2024, time.June, 5, 17, 45, 12, 0, time.Local),
			want: date(2024, time.June, 2),
		},
		{
			name: "crosses month boundary",
			in:   date(2024, time.July, 2),
			want: date(2024, time.June, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dateutil.WeekStart(tt.in)

			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.Sunday, got.Weekday())
		})
	}
}

func TestWeekEnd(t *testing.T) {
	got := dateutil.WeekEnd(date(2024, time.June, 5))
	want := time.Date(2024, time.June, 8, 23, 59, 59, 0, time.Local)

	assert.True(t, got.Equal(want), "got %v, want %v", got, want)
	assert.Equal(t, time.Saturday, got.Weekday())
}

func TestInRange(t *testing.T) {
	start := date(2024, time.June, 2)
	end := date(2024, time.June, 8)

	tests := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"first day included", start, true},
		{"last day included", end, true},
		{"last day late evening included", time.Date(2024, time.June, 8, 23, 59, 59, 0, time.Local), true},
		{"day after excluded", date(2024, time.June, 9), false},
		{"day before excluded", date(2024, time.June, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dateutil.InRange(tt.d, start, end))
		})
	}
}

func TestNextWeekday(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		w    time.Weekday
		want time.Time
	}{
		{
			name: "same weekday advances a full week",
			from: date(2024, time.June, 2), // Sunday
			w:    time.Sunday,
			want: date(2024, time.June, 9),
		},
		{
			name: "next day",
			from: date(2024, time.June, 2),
			w:    time.Monday,
			want: date(2024, time.June, 3),
		},
		{
			name: "earlier weekday wraps into next week",
			from: date(2024, time.June, 5), // Wednesday
			w:    time.Monday,
			want: date(2024, time.June, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dateutil.NextWeekday(tt.from, tt.w)

			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.True(t, got.After(tt.from))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := dateutil.ParseDate("2024-06-02")
	require.NoError(t, err)
	assert.True(t, got.Equal(date(2024, time.June, 2)))

	for _, bad := range []string{"", "02/06/2024", "2024-13-01", "yesterday"} {
		_, err := dateutil.ParseDate(bad)
		assert.ErrorIs(t, err, dateutil.ErrInvalidDate, "input %q", bad)
	}
}

func TestSameDay(t *testing.T) {
	assert.True(t, dateutil.SameDay(
		time.Date(2024, time.June, 2, 8, 0, 0, 0, time.Local),
		time.Date(2024, time.June, 2, 23, 0, 0, 0, time.Local),
	))
	assert.False(t, dateutil.SameDay(date(2024, time.June, 2), date(2024, time.June, 3)))
}
