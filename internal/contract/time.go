package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Define the regular expression to capture "N [units] ago"
// e.g., "2 years ago", "3 months ago", "24 hours ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default: // "minute"
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// ParseSince understands absolute RFC3339 timestamps, plain YYYY-MM-DD dates
// and "N [units] ago" expressions.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, now.Location()); err == nil {
		return t, nil
	}
	return ParseRelativeTime(s, now)
}

// ResolveSince returns the value handed to git and the resolved start time.
// Understood expressions are truncated to granularity (when positive) and
// rendered as RFC3339 in UTC. Anything else is returned verbatim with a zero time, since
// git accepts more date formats than ParseSince does.
func ResolveSince(s string, now time.Time, granularity time.Duration) (string, time.Time) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultSince
	}
	t, err := ParseSince(s, now)
	if err != nil {
		return s, time.Time{}
	}
	t = t.UTC()
	if granularity > 0 {
		t = t.Truncate(granularity)
	}
	return t.Format(DateTimeFormat), t
}
