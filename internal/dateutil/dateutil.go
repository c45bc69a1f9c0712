// Package dateutil canonicalizes calendar days. Every comparison between
// offered days, selected days, and stored days in this codebase goes through
// the Normalize/Key pair; comparing raw time.Time values is how day-matching
// bugs happen.
package dateutil

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DayFormat is the canonical wire and storage representation of a day.
const DayFormat = "2006-01-02"

// ErrInvalidDay is returned when a value cannot be interpreted as a calendar day.
var ErrInvalidDay = errors.New("dateutil: invalid day")

// Normalize truncates a timestamp to midnight UTC of its UTC calendar day.
// Two inputs denoting the same UTC day normalize to identical values
// regardless of time-of-day or the zone the input carried.
func Normalize(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Key returns the canonical string key for the UTC calendar day of t.
func Key(t time.Time) string {
	return Normalize(t).Format(DayFormat)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// ParseDay interprets a caller supplied value as a calendar day. Bare dates
// and RFC 3339 timestamps are both accepted; either form normalizes to
// midnight UTC.
func ParseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDay)
	}
	for _, layout := range []string{DayFormat, time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return Normalize(ts), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
}

// DaySet is a set of calendar days with normalized membership. It backs both
// the server-side "is this day offered by the event" check and the view-state
// "is this day already selected" check.
type DaySet struct {
	days map[string]time.Time
}

// NewDaySet returns a set containing the normalized form of each input day.
func NewDaySet(days ...time.Time) *DaySet {
	s := &DaySet{days: make(map[string]time.Time, len(days))}
	for _, day := range days {
		s.Add(day)
	}
	return s
}

// Add inserts the normalized day. Duplicate days collapse to one entry.
func (s *DaySet) Add(day time.Time) {
	if s.days == nil {
		s.days = make(map[string]time.Time)
	}
	normalized := Normalize(day)
	s.days[normalized.Format(DayFormat)] = normalized
}

// Remove deletes the day from the set if present.
func (s *DaySet) Remove(day time.Time) {
	delete(s.days, Key(day))
}

// Contains reports normalized membership of day.
func (s *DaySet) Contains(day time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s.days[Key(day)]
	return ok
}

// Toggle flips membership of day and reports whether it is now present.
func (s *DaySet) Toggle(day time.Time) bool {
	if s.Contains(day) {
		s.Remove(day)
		return false
	}
	s.Add(day)
	return true
}

// Len returns the number of distinct days in the set.
func (s *DaySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.days)
}

// Days returns the member days sorted ascending.
func (s *DaySet) Days() []time.Time {
	if s == nil || len(s.days) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(s.days))
	for _, day := range s.days {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Clone returns an independent copy of the set.
func (s *DaySet) Clone() *DaySet {
	clone := NewDaySet()
	if s == nil {
		return clone
	}
	for _, day := range s.days {
		clone.Add(day)
	}
	return clone
}
