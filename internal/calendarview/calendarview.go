// Package calendarview models the month grid a browser client renders when
// picking days. The grid is plain state plus transitions; it performs no I/O
// and leaves persistence to the caller once a selection is committed.
package calendarview

import (
	"time"

	"github.com/example/kdyvoda/internal/dateutil"
)

// Mode controls which days accept pointer interaction.
type Mode int

const (
	// ModeCompose lets an organizer pick candidate dates. Only today and
	// future days are selectable.
	ModeCompose Mode = iota
	// ModeRespond lets a participant pick from an event's candidate dates.
	ModeRespond
	// ModeReadOnly renders aggregated counts without any interaction.
	ModeReadOnly
)

// Cell is one day slot in the rendered grid.
type Cell struct {
	Day        time.Time
	InMonth    bool
	Selectable bool
	Selected   bool
	Count      int
}

// Grid holds the view state for one month of the picker.
type Grid struct {
	mode      Mode
	month     time.Time
	today     time.Time
	available dateutil.DaySet
	selected  dateutil.DaySet
	counts    map[string]int

	dragging   bool
	dragSelect bool
}

// Option configures a Grid at construction time.
type Option func(*Grid)

// WithAvailableDays restricts selection to the given days. Used in respond
// mode with the event's candidate dates.
func WithAvailableDays(days []time.Time) Option {
	return func(g *Grid) {
		g.available = dateutil.DaySet{}
		for _, day := range days {
			g.available.Add(day)
		}
	}
}

// WithSelectedDays seeds the grid with an existing selection.
func WithSelectedDays(days []time.Time) Option {
	return func(g *Grid) {
		for _, day := range days {
			g.selected.Add(day)
		}
	}
}

// WithCounts attaches per-day availability counts for read-only rendering.
func WithCounts(counts map[time.Time]int) Option {
	return func(g *Grid) {
		g.counts = make(map[string]int, len(counts))
		for day, count := range counts {
			g.counts[dateutil.Key(day)] = count
		}
	}
}

// NewGrid creates a grid showing the month containing reference. The
// reference instant also fixes "today" for compose mode gating.
func NewGrid(mode Mode, reference time.Time, opts ...Option) *Grid {
	today := dateutil.Normalize(reference)
	g := &Grid{
		mode:     mode,
		month:    time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
		today:    today,
		selected: dateutil.DaySet{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Month returns the first day of the displayed month.
func (g *Grid) Month() time.Time {
	return g.month
}

// Navigate moves the displayed month by delta months. The selection is kept;
// days outside the displayed month simply stop rendering.
func (g *Grid) Navigate(delta int) {
	g.month = g.month.AddDate(0, delta, 0)
}

// Selected returns the committed selection in ascending day order.
func (g *Grid) Selected() []time.Time {
	return g.selected.Days()
}

// PointerDown begins a drag on the given day. The first day decides the drag
// polarity: pressing an unselected day selects the swept range, pressing a
// selected day deselects it. Pressing an unselectable day does nothing.
func (g *Grid) PointerDown(day time.Time) {
	if !g.selectable(day) {
		return
	}
	g.dragging = true
	g.dragSelect = !g.selected.Contains(day)
	g.apply(day)
}

// PointerEnter extends an active drag onto the given day. Unselectable days
// are skipped silently; the drag continues past them.
func (g *Grid) PointerEnter(day time.Time) {
	if !g.dragging || !g.selectable(day) {
		return
	}
	g.apply(day)
}

// PointerUp ends the drag and commits nothing further.
func (g *Grid) PointerUp() {
	g.dragging = false
}

// Weeks renders the displayed month as Monday-start rows, padded with the
// neighbouring months' days so every row has seven cells.
func (g *Grid) Weeks() [][]Cell {
	first := g.month
	last := first.AddDate(0, 1, -1)

	start := first
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, -1)
	}
	end := last
	for end.Weekday() != time.Sunday {
		end = end.AddDate(0, 0, 1)
	}

	var weeks [][]Cell
	var week []Cell
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		inMonth := day.Month() == first.Month()
		cell := Cell{
			Day:        day,
			InMonth:    inMonth,
			Selectable: inMonth && g.selectable(day),
			Selected:   g.selected.Contains(day),
		}
		if g.counts != nil {
			cell.Count = g.counts[dateutil.Key(day)]
		}
		week = append(week, cell)
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	return weeks
}

func (g *Grid) selectable(day time.Time) bool {
	normalized := dateutil.Normalize(day)
	switch g.mode {
	case ModeCompose:
		return !normalized.Before(g.today)
	case ModeRespond:
		return g.available.Contains(normalized)
	default:
		return false
	}
}

func (g *Grid) apply(day time.Time) {
	if g.dragSelect {
		g.selected.Add(day)
	} else {
		g.selected.Remove(day)
	}
}
