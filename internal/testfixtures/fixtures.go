package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/kdyvoda/internal/persistence"
)

var (
	eventCounter       uint64
	participantCounter uint64
)

var referenceTime = time.Date(2026, time.February, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic event record that can be
// materialised for application or persistence tests.
type EventFixture struct {
	ID                   string
	Title                string
	Description          string
	ManagementCredential string
	Days                 []time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EventFixture{
		ID:                   id,
		Title:                fmt.Sprintf("Event %03d", idx),
		Description:          fmt.Sprintf("Description for event %03d", idx),
		ManagementCredential: fmt.Sprintf("credential-%03d-0123456789", idx),
		Days: []time.Time{
			time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC),
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) {
		f.Title = title
	}
}

// WithEventDays overrides the candidate days.
func WithEventDays(days ...time.Time) EventOption {
	return func(f *EventFixture) {
		f.Days = days
	}
}

// WithEventCredential overrides the management credential.
func WithEventCredential(credential string) EventOption {
	return func(f *EventFixture) {
		f.ManagementCredential = credential
	}
}

// ToPersistence materialises the fixture as a persistence model with one
// EventDate row per day.
func (f EventFixture) ToPersistence() persistence.Event {
	event := persistence.Event{
		ID:                   f.ID,
		Title:                f.Title,
		Description:          f.Description,
		ManagementCredential: f.ManagementCredential,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
	}
	for i, day := range f.Days {
		event.Dates = append(event.Dates, persistence.EventDate{
			ID:      fmt.Sprintf("%s-date-%d", f.ID, i+1),
			EventID: f.ID,
			Day:     day,
		})
	}
	return event
}

// -------------------------- Participant fixtures --------------------------

// ParticipantFixture represents a deterministic participant record.
type ParticipantFixture struct {
	ID        string
	EventID   string
	Name      string
	Days      []time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*ParticipantFixture)

// NewParticipantFixture returns a deterministic participant fixture with
// optional overrides.
func NewParticipantFixture(opts ...ParticipantOption) ParticipantFixture {
	idx := atomic.AddUint64(&participantCounter, 1)
	id := fmt.Sprintf("participant-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	fixture := ParticipantFixture{
		ID:        id,
		EventID:   "event-001",
		Name:      fmt.Sprintf("Participant %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithParticipantID overrides the generated participant ID.
func WithParticipantID(id string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.ID = id
	}
}

// WithParticipantEvent overrides the owning event.
func WithParticipantEvent(eventID string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.EventID = eventID
	}
}

// WithParticipantName overrides the generated name.
func WithParticipantName(name string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Name = name
	}
}

// WithParticipantDays sets the selected days.
func WithParticipantDays(days ...time.Time) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Days = days
	}
}

// ToPersistence materialises the fixture against the given event, resolving
// each day to the matching EventDate.
func (f ParticipantFixture) ToPersistence(event persistence.Event) persistence.Participant {
	participant := persistence.Participant{
		ID:        f.ID,
		EventID:   event.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
	for i, day := range f.Days {
		for _, date := range event.Dates {
			if date.Day.Equal(day) {
				participant.Dates = append(participant.Dates, persistence.ParticipantDate{
					ID:            fmt.Sprintf("%s-date-%d", f.ID, i+1),
					ParticipantID: f.ID,
					EventDateID:   date.ID,
					Day:           day,
				})
			}
		}
	}
	return participant
}
