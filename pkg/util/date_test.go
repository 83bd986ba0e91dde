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

func TestEndOfDay(t *testing.T) {
    in := time.Date(2024, 10, 10, 11, 30, 0, 0, time.UTC)
    got := EndOfDay(in)
    if got.Hour() != 23 || got.Minute() != 59 || got.Day() != 10 {
        t.Fatalf("unexpected end of day %v", got)
    }
}

func TestEndOfWeek(t *testing.T) {
    // Thursday 2024-10-10 -> Sunday 2024-10-13
    in := time.Date(2024, 10, 10, 11, 30, 0, 0, time.UTC)
    got := EndOfWeek(in)
    if got.Weekday() != time.Sunday || got.Day() != 13 {
        t.Fatalf("unexpected end of week %v", got)
    }
    // Sunday stays in the same week
    sun := time.Date(2024, 10, 13, 8, 0, 0, 0, time.UTC)
    if EndOfWeek(sun).Day() != 13 {
        t.Fatalf("sunday moved weeks: %v", EndOfWeek(sun))
    }
}

func TestEndOfMonth(t *testing.T) {
    in := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
    got := EndOfMonth(in)
    if got.Day() != 29 || got.Month() != 2 {
        t.Fatalf("unexpected end of month %v", got)
    }
}
