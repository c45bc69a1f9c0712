package persistence

import "context"

// EventRepository stores events together with their candidate dates.
type EventRepository interface {
	// CreateEvent persists the event and all of its dates atomically.
	CreateEvent(ctx context.Context, event Event) error
	// GetEvent returns the event with dates and participants expanded.
	GetEvent(ctx context.Context, id string) (Event, error)
	// ListEvents returns all events with their dates, ordered by creation
	// time ascending. Participants are not expanded.
	ListEvents(ctx context.Context) ([]Event, error)
}

// ParticipantRepository stores participants and their date selections.
// These operations are the only writers of ParticipantDate rows.
type ParticipantRepository interface {
	// CreateParticipant persists the participant and all selections atomically.
	CreateParticipant(ctx context.Context, participant Participant) error
	// GetParticipant returns the participant with selections expanded.
	GetParticipant(ctx context.Context, id string) (Participant, error)
	// ReplaceParticipantDates atomically removes every existing selection for
	// the participant and inserts the provided set.
	ReplaceParticipantDates(ctx context.Context, participantID string, dates []ParticipantDate) error
}
