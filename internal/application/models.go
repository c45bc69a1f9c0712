package application

import (
	"time"

	"github.com/example/kdyvoda/internal/availability"
)

// EventInput captures organizer provided event fields.
type EventInput struct {
	Title       string
	Description string
	Days        []time.Time
}

// EventDate is one candidate date offered by an event.
type EventDate struct {
	ID  string
	Day time.Time
}

// Event represents a scheduling poll exposed by the application services.
// ManagementCredential is empty unless the caller proved knowledge of it.
type Event struct {
	ID                   string
	Title                string
	Description          string
	ManagementCredential string
	Dates                []EventDate
	Participants         []Participant
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CreateEventResult carries the created event together with the management
// credential, which is only ever returned here.
type CreateEventResult struct {
	Event                Event
	ManagementCredential string
}

// ParticipantInput captures caller provided participant fields.
type ParticipantInput struct {
	EventID string
	Name    string
	Days    []time.Time
}

// Participant represents one person's availability answer for an event.
type Participant struct {
	ID        string
	EventID   string
	Name      string
	Days      []time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventAvailability pairs an event with its aggregated per-date counts.
type EventAvailability struct {
	Event  Event
	Counts []availability.DateCount
}
