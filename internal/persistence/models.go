package persistence

import "time"

// Event represents an organizer-created date proposal.
type Event struct {
	ID                   string
	Title                string
	Description          string
	ManagementCredential string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Dates                []EventDate
	Participants         []Participant
}

// EventDate represents one candidate calendar day belonging to an event.
// Rows are immutable after creation; the day is stored without time-of-day.
type EventDate struct {
	ID      string
	EventID string
	Day     time.Time
}

// Participant represents a respondent to an event.
type Participant struct {
	ID        string
	EventID   string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Dates     []ParticipantDate
}

// ParticipantDate links a participant to one of the owning event's candidate
// days. Day is a denormalized copy of the referenced EventDate's day.
type ParticipantDate struct {
	ID            string
	ParticipantID string
	EventDateID   string
	Day           time.Time
}
