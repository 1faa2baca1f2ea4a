package timeparse

import (
	"fmt"
	"strconv"
	"time"
)

// referenceLayouts are tried in order by ParseReference. Layouts without an
// offset are read as UTC.
var referenceLayouts = []string{
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
}

// ParseReference parses the evaluation time used in place of the current
// time. It accepts RFC3339, "YYYY-MM-DD HH:MM:SS", "YYYY-MM-DD" or Unix
// seconds (the format Slack uses for message timestamps).
func ParseReference(s string) (time.Time, error) {
	for _, layout := range referenceLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs >= 0 {
		return time.Unix(secs, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid reference time %q (expected RFC3339, YYYY-MM-DD HH:MM:SS, YYYY-MM-DD or Unix seconds)", s)
}
