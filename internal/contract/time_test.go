package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 35, 0, 0, time.UTC)

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{name: "plural hours", input: "24 hours ago", expected: fixedNow.Add(-24 * time.Hour)},
		{name: "mixed case months", input: "3 MoNtHs AgO", expected: fixedNow.AddDate(0, -3, 0)},
		{name: "singular week", input: "1 Week Ago", expected: fixedNow.AddDate(0, 0, -7)},
		{name: "minutes", input: "90 minutes ago", expected: fixedNow.Add(-90 * time.Minute)},
		{name: "missing ago", input: "2 years", expectError: true},
		{name: "bad unit", input: "4 decades ago", expectError: true},
		{name: "non-numeric", input: "one year ago", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestResolveSince(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expected     string
		expectParsed bool
	}{
		{name: "default when empty", input: "", expected: "2025-11-02T10:00:00Z", expectParsed: true},
		{name: "relative truncated to hour", input: "24 hours ago", expected: "2025-11-02T10:00:00Z", expectParsed: true},
		{name: "date only", input: "2025-01-15", expected: "2025-01-15T00:00:00Z", expectParsed: true},
		{name: "rfc3339 with offset", input: "2025-01-15T12:30:00+02:00", expected: "2025-01-15T10:00:00Z", expectParsed: true},
		{name: "git-only expression passed verbatim", input: "last tuesday", expected: "last tuesday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			since, at := ResolveSince(tt.input, fixedNow, CacheGranularity)
			assert.Equal(t, tt.expected, since)
			assert.Equal(t, tt.expectParsed, !at.IsZero())
		})
	}
}

func TestResolveSince_StableWithinHour(t *testing.T) {
	a, _ := ResolveSince("6 months ago", fixedNow, CacheGranularity)
	b, _ := ResolveSince("6 months ago", fixedNow.Add(20*time.Minute), CacheGranularity)
	assert.Equal(t, a, b)
}

func TestResolveSince_NoGranularityKeepsExactStart(t *testing.T) {
	since, at := ResolveSince("24 hours ago", fixedNow, 0)
	assert.Equal(t, "2025-11-02T10:35:00Z", since)
	assert.True(t, fixedNow.Add(-24*time.Hour).Equal(at))
}
