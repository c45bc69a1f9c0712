// Package availability aggregates participant selections into per-date
// counts. Computation is pure: callers pass snapshots in, nothing is read
// from storage, and identical inputs always produce identical output.
package availability

import (
	"sort"
	"time"

	"github.com/example/kdyvoda/internal/dateutil"
)

// EventDate is one candidate date offered by an event.
type EventDate struct {
	ID  string
	Day time.Time
}

// Selection is one participant's answer: the dates they can attend.
type Selection struct {
	ParticipantName string
	CreatedAt       time.Time
	Days            []time.Time
}

// DateCount reports how many participants can attend a candidate date.
// Participants holds the names in participant creation order.
type DateCount struct {
	EventDateID  string
	Day          time.Time
	Count        int
	Participants []string
}

// Aggregate computes a DateCount for every candidate date, including dates
// no participant selected. Candidate dates come back in day order;
// selections outside the candidate set are ignored.
func Aggregate(dates []EventDate, selections []Selection) []DateCount {
	ordered := make([]EventDate, len(dates))
	copy(ordered, dates)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Day.Before(ordered[j].Day)
	})

	bySelection := make([]Selection, len(selections))
	copy(bySelection, selections)
	sort.SliceStable(bySelection, func(i, j int) bool {
		return bySelection[i].CreatedAt.Before(bySelection[j].CreatedAt)
	})

	counts := make([]DateCount, 0, len(ordered))
	for _, date := range ordered {
		count := DateCount{
			EventDateID: date.ID,
			Day:         dateutil.Normalize(date.Day),
		}
		for _, selection := range bySelection {
			if selectionContains(selection, date.Day) {
				count.Count++
				count.Participants = append(count.Participants, selection.ParticipantName)
			}
		}
		counts = append(counts, count)
	}
	return counts
}

// SortByPopularity reorders counts most popular first; ties keep day order.
func SortByPopularity(counts []DateCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Day.Before(counts[j].Day)
	})
}

func selectionContains(selection Selection, day time.Time) bool {
	for _, candidate := range selection.Days {
		if dateutil.SameDay(candidate, day) {
			return true
		}
	}
	return false
}
