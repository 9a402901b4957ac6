package util

import (
    "strconv"
    "time"
)

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01 (0001-01-01 is day 1).
const unixEpochOrdinal = 719163

const secondsPerDay = 24 * 60 * 60

// ParseTime tries YYYY-MM-DD, RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.DateOnly, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

// DateOrdinal returns the proleptic Gregorian day number of t's calendar date
// in t's own location.
func DateOrdinal(t time.Time) int {
    y, m, d := t.Date()
    midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
    return int(midnight.Unix()/secondsPerDay) + unixEpochOrdinal
}

// UntilMidnight is the time left before t's calendar date changes.
func UntilMidnight(t time.Time) time.Duration {
    y, m, d := t.Date()
    next := time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
    return next.Sub(t)
}
