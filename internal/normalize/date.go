package normalize

import (
	"strings"
	"time"
)

// Day-first layouts tried in order, matching the locale convention of the
// source worksheets. Year-first ISO forms are unambiguous and kept as a
// fallback for exported files.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006 15:04",
	"2/1/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"2.1.2006",
	"02/01/06",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// excelEpoch is day zero of the 1900 date system used by xlsx files.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Timestamp parses a cell as a point in time, preserving any time-of-day
// component. Numeric cells are interpreted as Excel serial dates.
func Timestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(numericStrip.Replace(s))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	// Excel serial date: whole days since the epoch, fraction is time-of-day.
	if serial, ok := Number(s); ok {
		f, _ := serial.Float64()
		if f > 0 && f < 200000 {
			days := int(f)
			frac := f - float64(days)
			t := excelEpoch.AddDate(0, 0, days)
			return t.Add(time.Duration(frac * 24 * float64(time.Hour))).Round(time.Second), true
		}
	}

	return time.Time{}, false
}

// Date parses a cell as a calendar date, truncating any time-of-day. All
// matching rules except the transfer-event aggregation compare dates at
// this granularity.
func Date(s string) (time.Time, bool) {
	t, ok := Timestamp(s)
	if !ok {
		return time.Time{}, false
	}
	return Truncate(t), true
}

// Truncate drops the time-of-day component, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateKey renders a date in the canonical form used inside pairing and
// grouping keys.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
