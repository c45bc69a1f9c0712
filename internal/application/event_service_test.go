package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/kdyvoda/internal/persistence"
)

type eventStoreStub struct {
	createErr error
	created   persistence.Event

	events map[string]persistence.Event

	listErr error
}

func (s *eventStoreStub) CreateEvent(ctx context.Context, event persistence.Event) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = event
	if s.events == nil {
		s.events = make(map[string]persistence.Event)
	}
	s.events[event.ID] = event
	return nil
}

func (s *eventStoreStub) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return event, nil
}

func (s *eventStoreStub) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []persistence.Event
	for _, event := range s.events {
		out = append(out, event)
	}
	return out, nil
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
}

func testCredential() (string, error) {
	return "credential-0123456789abcdef", nil
}

func TestEventService_CreateEvent(t *testing.T) {
	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewEventService(nil, nil, nil)

		_, err := svc.CreateEvent(context.Background(), EventInput{
			Title:       "   ",
			Description: "",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"title", "description", "dates"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("collapses duplicate days", func(t *testing.T) {
		store := &eventStoreStub{}
		svc := NewEventServiceWithLogger(store, sequentialIDs("id"), testCredential, fixedNow, nil)

		morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		evening := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
		other := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

		result, err := svc.CreateEvent(context.Background(), EventInput{
			Title:       "Team offsite",
			Description: "Pick a day",
			Days:        []time.Time{morning, evening, other},
		})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		if len(store.created.Dates) != 2 {
			t.Fatalf("expected duplicate day to collapse, got %d dates", len(store.created.Dates))
		}
		if len(result.Event.Dates) != 2 {
			t.Fatalf("expected 2 dates in result, got %d", len(result.Event.Dates))
		}
		for _, date := range store.created.Dates {
			if date.Day.Hour() != 0 || date.Day.Location() != time.UTC {
				t.Errorf("expected normalized UTC midnight, got %v", date.Day)
			}
		}
	})

	t.Run("returns the management credential once", func(t *testing.T) {
		store := &eventStoreStub{}
		svc := NewEventServiceWithLogger(store, sequentialIDs("id"), testCredential, fixedNow, nil)

		result, err := svc.CreateEvent(context.Background(), EventInput{
			Title:       "Team offsite",
			Description: "Pick a day",
			Days:        []time.Time{time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		if result.ManagementCredential != "credential-0123456789abcdef" {
			t.Fatalf("expected credential in create result, got %q", result.ManagementCredential)
		}
		if len(result.ManagementCredential) < 20 {
			t.Fatalf("expected credential of at least 20 characters, got %d", len(result.ManagementCredential))
		}
	})

	t.Run("wraps storage failures", func(t *testing.T) {
		store := &eventStoreStub{createErr: errors.New("disk full")}
		svc := NewEventServiceWithLogger(store, sequentialIDs("id"), testCredential, fixedNow, nil)

		_, err := svc.CreateEvent(context.Background(), EventInput{
			Title:       "Team offsite",
			Description: "Pick a day",
			Days:        []time.Time{time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		})
		if !errors.Is(err, ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
	})
}

func TestEventService_GetEvent(t *testing.T) {
	store := &eventStoreStub{events: map[string]persistence.Event{
		"event1": {
			ID:                   "event1",
			Title:                "Team offsite",
			Description:          "Pick a day",
			ManagementCredential: "credential-0123456789abcdef",
		},
	}}
	svc := NewEventServiceWithLogger(store, sequentialIDs("id"), testCredential, fixedNow, nil)

	t.Run("redacts credential without a match", func(t *testing.T) {
		event, err := svc.GetEvent(context.Background(), "event1", "")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if event.ManagementCredential != "" {
			t.Fatalf("expected redacted credential, got %q", event.ManagementCredential)
		}
	})

	t.Run("redacts credential on mismatch", func(t *testing.T) {
		event, err := svc.GetEvent(context.Background(), "event1", "wrong-credential-000000")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if event.ManagementCredential != "" {
			t.Fatalf("expected redacted credential, got %q", event.ManagementCredential)
		}
	})

	t.Run("includes credential on exact match", func(t *testing.T) {
		event, err := svc.GetEvent(context.Background(), "event1", "credential-0123456789abcdef")
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if event.ManagementCredential != "credential-0123456789abcdef" {
			t.Fatalf("expected credential included, got %q", event.ManagementCredential)
		}
	})

	t.Run("maps missing event to ErrNotFound", func(t *testing.T) {
		_, err := svc.GetEvent(context.Background(), "missing", "")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestEventService_EventAvailability(t *testing.T) {
	d10 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	d11 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	store := &eventStoreStub{events: map[string]persistence.Event{
		"event1": {
			ID:                   "event1",
			Title:                "Team offsite",
			ManagementCredential: "credential-0123456789abcdef",
			Dates: []persistence.EventDate{
				{ID: "d1", EventID: "event1", Day: d10},
				{ID: "d2", EventID: "event1", Day: d11},
			},
			Participants: []persistence.Participant{
				{
					ID: "p1", EventID: "event1", Name: "Adam", CreatedAt: base,
					Dates: []persistence.ParticipantDate{
						{ID: "pd1", ParticipantID: "p1", EventDateID: "d1", Day: d10},
					},
				},
				{
					ID: "p2", EventID: "event1", Name: "Bara", CreatedAt: base.Add(time.Minute),
					Dates: []persistence.ParticipantDate{
						{ID: "pd2", ParticipantID: "p2", EventDateID: "d1", Day: d10},
						{ID: "pd3", ParticipantID: "p2", EventDateID: "d2", Day: d11},
					},
				},
			},
		},
	}}
	svc := NewEventServiceWithLogger(store, sequentialIDs("id"), testCredential, fixedNow, nil)

	result, err := svc.EventAvailability(context.Background(), "event1")
	if err != nil {
		t.Fatalf("EventAvailability failed: %v", err)
	}

	if len(result.Counts) != 2 {
		t.Fatalf("expected counts for both dates, got %d", len(result.Counts))
	}
	if result.Counts[0].Count != 2 || result.Counts[1].Count != 1 {
		t.Errorf("expected counts 2 and 1, got %d and %d", result.Counts[0].Count, result.Counts[1].Count)
	}
	if result.Counts[0].Participants[0] != "Adam" || result.Counts[0].Participants[1] != "Bara" {
		t.Errorf("expected names in creation order, got %v", result.Counts[0].Participants)
	}
	if result.Event.ManagementCredential != "" {
		t.Errorf("expected redacted credential in availability view")
	}
}
