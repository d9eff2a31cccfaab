package helper_util

import (
	"time"
)

// ParseTimeOr parses an RFC3339 timestamp, falling back to def when s is empty.
func ParseTimeOr(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return time.Parse(time.RFC3339, s)
}
