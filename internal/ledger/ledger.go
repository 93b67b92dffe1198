package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DayLayout is the calendar-date format used for ledger keys.
const DayLayout = "2006-01-02"

// RetentionDays is how far back entries survive pruning.
const RetentionDays = 7

// ErrInvalidDay is returned for a day not in DayLayout form.
var ErrInvalidDay = errors.New("invalid ledger day")

// Ledger records which refs a subscriber already received on a day.
type Ledger interface {
	// Get returns the refs sent to subscriberID on day. A missing entry is an
	// empty set, not an error.
	Get(ctx context.Context, subscriberID, day string) (map[string]struct{}, error)
	// Append adds ref to the day's set; repeating it is a no-op. After the
	// write, entries more than RetentionDays before day are pruned.
	Append(ctx context.Context, subscriberID, day, ref string) error
}

// Day returns the calendar date of t in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLayout)
}

// Cutoff returns the oldest day that survives pruning relative to day.
func Cutoff(day string) (string, error) {
	d, err := parseDay(day)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -RetentionDays).Format(DayLayout), nil
}

func parseDay(day string) (time.Time, error) {
	d, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDay, day)
	}
	return d, nil
}
