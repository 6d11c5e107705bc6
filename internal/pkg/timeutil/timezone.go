package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DisplayLayout is how timestamps are shown to readers
const DisplayLayout = "2006-01-02 15:04"

// ConvertToUserTimezone converts a backend timestamp to the user's timezone.
// The backend writes zone-less local times, which are read as UTC; an empty
// or invalid timezone leaves the time unchanged.
func ConvertToUserTimezone(t time.Time, timezone string) time.Time {
	if timezone == "" {
		return t
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return t
	}

	return t.In(loc)
}

// FormatInTimezone renders t with DisplayLayout in timezone. Zero times render as "-".
func FormatInTimezone(t time.Time, timezone string) string {
	if t.IsZero() {
		return "-"
	}
	return ConvertToUserTimezone(t, timezone).Format(DisplayLayout)
}

// IsValidTimezone checks if a timezone string is valid
func IsValidTimezone(timezone string) bool {
	if timezone == "" {
		return false
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// FormatDuration formats a duration in human-readable form, e.g. "2 days, 3 hours"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	parts = appendUnit(parts, days, "day")
	parts = appendUnit(parts, hours, "hour")
	parts = appendUnit(parts, minutes, "minute")
	if len(parts) == 0 {
		parts = appendUnit(parts, seconds, "second")
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}

func appendUnit(parts []string, n int, unit string) []string {
	switch {
	case n == 1:
		return append(parts, "1 "+unit)
	case n > 1:
		return append(parts, fmt.Sprintf("%d %ss", n, unit))
	}
	return parts
}

// Ago describes how long before now t was, using its largest unit only
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	full := FormatDuration(d)
	if idx := strings.Index(full, ","); idx != -1 {
		full = full[:idx]
	}
	return full + " ago"
}
