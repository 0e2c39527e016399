package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2025, 6, 17, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, date(2025, 6, 1), got)
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month time.Time
		want  int
	}{
		{date(2025, 1, 1), 31},
		{date(2025, 2, 1), 28},
		{date(2024, 2, 1), 29},
		{date(1900, 2, 1), 28},
		{date(2000, 2, 1), 29},
		{date(2025, 4, 30), 30},
		{date(2025, 12, 1), 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInMonth(tt.month), "DaysInMonth(%s)", tt.month.Format(DateLayout))
	}
}

func TestParseDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"03/06/2025", date(2025, 6, 3)},
		{"3/6/2025", date(2025, 6, 3)},
		{"30-06-2025", date(2025, 6, 30)},
		{"30.06.2025", date(2025, 6, 30)},
		{" 01/07/2025 ", date(2025, 7, 1)},
		{"2025-06-03", date(2025, 6, 3)},
		{"2025-06-03 10:15:00", date(2025, 6, 3)},
		{"45809", date(2025, 6, 1)},
	}
	for _, tt := range tests {
		got, err := ParseDayFirst(tt.in)
		require.NoError(t, err, "ParseDayFirst(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseDayFirst(%q)", tt.in)
	}
}

func TestParseDayFirst_Invalid(t *testing.T) {
	for _, in := range []string{"", "NOTADATE", "31/02/2025", "12"} {
		_, err := ParseDayFirst(in)
		assert.Error(t, err, "ParseDayFirst(%q)", in)
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-06", date(2025, 6, 1)},
		{"2025-06-01", date(2025, 6, 1)},
		{"2025-06-15 00:00:00", date(2025, 6, 1)},
		{"06/2025", date(2025, 6, 1)},
		{"6/2025", date(2025, 6, 1)},
		{"jun-2025", date(2025, 6, 1)},
		{"Junio 2025", date(2025, 6, 1)},
		{"ago 2025", date(2025, 8, 1)},
		{"December 2024", date(2024, 12, 1)},
		{"45809", date(2025, 6, 1)},
	}
	for _, tt := range tests {
		got, err := ParseMonth(tt.in)
		require.NoError(t, err, "ParseMonth(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseMonth(%q)", tt.in)
	}
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, in := range []string{"", "CLASIFICACION", "Unnamed: 3", "junio"} {
		_, err := ParseMonth(in)
		assert.Error(t, err, "ParseMonth(%q)", in)
	}
}

func TestFormatMonth(t *testing.T) {
	assert.Equal(t, "2025-06", FormatMonth(date(2025, 6, 1)))
}
