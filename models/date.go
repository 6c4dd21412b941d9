package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of every calendar date in the API.
const DateLayout = "2006-01-02"

// NormalizeDate drops the clock part and pins the calendar date to UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey is the map key used to index room-nights by calendar date.
func DateKey(t time.Time) string {
	return NormalizeDate(t).Format(DateLayout)
}

func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// DatesBetween returns every night from start up to, but excluding, end.
func DatesBetween(start, end time.Time) []time.Time {
	start, end = NormalizeDate(start), NormalizeDate(end)
	var out []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
