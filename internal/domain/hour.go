package domain

import (
	"fmt"
	"strings"
	"time"
)

// timeLayouts are the clock formats accepted for the time-of-day column.
// The workbook stores "HH:MM"; spreadsheet tools re-export it with seconds or
// a 12-hour suffix, so those are accepted too.
var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
}

// ParseHour extracts the hour of day (0-23) from a free-text clock time.
// The second return value is false when the text is empty or malformed.
func ParseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// hourOf is the parsed hour for one record; ok is false for unparsable times.
type hourOf struct {
	hour int
	ok   bool
}

// tableHours parses every record's time-of-day. A table with records but no
// parsable time at all, or with no time column, fails as a whole.
func tableHours(t Table) ([]hourOf, error) {
	if t.MissingTimeColumn {
		return nil, fmt.Errorf("year %d: %w", t.Year, ErrTimeColumnMissing)
	}

	hours := make([]hourOf, len(t.Records))
	parsed := 0
	for i, r := range t.Records {
		h, ok := ParseHour(r.Time)
		hours[i] = hourOf{hour: h, ok: ok}
		if ok {
			parsed++
		}
	}

	if len(t.Records) > 0 && parsed == 0 {
		return nil, fmt.Errorf("year %d: %w", t.Year, ErrNoParsableTimes)
	}
	return hours, nil
}
