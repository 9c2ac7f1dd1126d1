package analyzer

import (
	"fmt"
	"strings"
	"time"
)

// ParseDay accepts "today" (or empty), "yesterday" or YYYY-MM-DD and
// returns midnight of that day in loc.
func ParseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format, 'today', or 'yesterday'")
	}
	return day, nil
}
