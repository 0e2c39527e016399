// Package period handles calendar-month bucketing and the date formats found
// in bank statements and projection spreadsheets.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthLayout is the canonical month label, e.g. "2025-06".
const MonthLayout = "2006-01"

// DateLayout is the canonical date format used in exports.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of t's month at midnight UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatMonth returns a month label like "2025-06".
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// dayFirstLayouts are tried in order by ParseDayFirst.
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
	"02-01-06",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDayFirst parses a statement date written day-first ("30/06/2025").
// ISO dates and spreadsheet serial numbers are accepted as well.
func ParseDayFirst(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	if t, ok := parseSerial(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

var monthLayouts = []string{
	"2006-01",
	"2006/01",
	"01/2006",
	"1/2006",
	"01-2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	time.RFC3339,
}

// monthNames maps three-letter Spanish and English prefixes to months.
var monthNames = map[string]time.Month{
	"ene": time.January, "jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"abr": time.April, "apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"ago": time.August, "aug": time.August,
	"sep": time.September, "set": time.September,
	"oct": time.October,
	"nov": time.November,
	"dic": time.December, "dec": time.December,
}

// ParseMonth parses a projection column label into the first day of its month.
// Accepts ISO months and dates, "06/2025", month names ("jun-2025",
// "Junio 2025") and spreadsheet serial numbers.
func ParseMonth(label string) (time.Time, error) {
	s := strings.TrimSpace(label)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty month label")
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthStart(t), nil
		}
	}
	if t, ok := parseMonthName(s); ok {
		return t, nil
	}
	if t, ok := parseSerial(s); ok {
		return MonthStart(t), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized month label %q", label)
}

func parseMonthName(s string) (time.Time, bool) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '.' || r == ','
	})
	var (
		month    time.Month
		year     int
		hasMonth bool
		hasYear  bool
	)
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			if n >= 1900 && n <= 9999 {
				year, hasYear = n, true
			}
			continue
		}
		if len(f) >= 3 {
			if m, ok := monthNames[f[:3]]; ok {
				month, hasMonth = m, true
			}
		}
	}
	if !hasMonth || !hasYear {
		return time.Time{}, false
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
}

// Spreadsheet serial days count from 1899-12-30. The range bounds keep plain
// numbers such as row counts from being read as dates.
const (
	minSerial = 20000 // 1954-10-03
	maxSerial = 80000 // 2119-01-10
)

var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func parseSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < minSerial || f > maxSerial {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(f)), true
}
