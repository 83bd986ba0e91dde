package util

import (
    "strconv"
    "time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
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

// EndOfDay returns the last instant of the day containing t.
func EndOfDay(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// EndOfWeek returns the last instant of the ISO week (Sunday) containing t.
func EndOfWeek(t time.Time) time.Time {
    wd := int(t.Weekday())
    if wd == 0 {
        wd = 7 // Sunday
    }
    return EndOfDay(t.AddDate(0, 0, 7-wd))
}

// EndOfMonth returns the last instant of the month containing t.
func EndOfMonth(t time.Time) time.Time {
    y, m, _ := t.Date()
    first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
    return EndOfDay(first.AddDate(0, 1, -1))
}
