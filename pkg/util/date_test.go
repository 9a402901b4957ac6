package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeDateOnly(t *testing.T) {
    got, ok := ParseTime("2024-10-10")
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Year() != 2024 || got.Month() != time.October || got.Day() != 10 {
        t.Fatalf("unexpected date %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("garbage", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}

func TestDateOrdinal(t *testing.T) {
    cases := []struct {
        name string
        in   time.Time
        want int
    }{
        {"first day", time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), 1},
        {"unix epoch", time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC), 719163},
        {"leap year", time.Date(2024, 10, 10, 23, 59, 59, 0, time.UTC), 739169},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if got := DateOrdinal(tc.in); got != tc.want {
                t.Fatalf("DateOrdinal(%v) = %d, want %d", tc.in, got, tc.want)
            }
        })
    }
}

func TestDateOrdinalUsesLocalCalendarDate(t *testing.T) {
    loc := time.FixedZone("UTC+9", 9*60*60)
    // 2024-10-10 23:30 UTC is already the 11th in UTC+9.
    utc := time.Date(2024, 10, 10, 23, 30, 0, 0, time.UTC)
    if got := DateOrdinal(utc.In(loc)); got != DateOrdinal(utc)+1 {
        t.Fatalf("expected next day ordinal, got %d", got)
    }
}

func TestUntilMidnight(t *testing.T) {
    at := time.Date(2024, 10, 10, 22, 30, 0, 0, time.UTC)
    if got := UntilMidnight(at); got != 90*time.Minute {
        t.Fatalf("unexpected duration %v", got)
    }
}
