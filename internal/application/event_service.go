package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/kdyvoda/internal/availability"
	"github.com/example/kdyvoda/internal/dateutil"
	"github.com/example/kdyvoda/internal/persistence"
)

// EventStore captures the persistence operations needed by the event service.
type EventStore interface {
	CreateEvent(ctx context.Context, event persistence.Event) error
	GetEvent(ctx context.Context, id string) (persistence.Event, error)
	ListEvents(ctx context.Context) ([]persistence.Event, error)
}

// EventService orchestrates validation, credential handling, and persistence
// for events.
type EventService struct {
	events        EventStore
	idGenerator   func() string
	newCredential func() (string, error)
	now           func() time.Time
	logger        *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(events EventStore, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, idGenerator, NewManagementCredential, now, nil)
}

// NewEventServiceWithLogger constructs an event service with explicit
// credential generation and logging, used by tests for determinism.
func NewEventServiceWithLogger(events EventStore, idGenerator func() string, newCredential func() (string, error), now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if newCredential == nil {
		newCredential = NewManagementCredential
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:        events,
		idGenerator:   idGenerator,
		newCredential: newCredential,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates organizer input and persists a new event with its
// candidate dates and a fresh management credential. Duplicate days collapse
// to one candidate date.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (result CreateEventResult, err error) {
	logger := s.loggerWith(ctx, "CreateEvent")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", result.Event.ID).InfoContext(ctx, "event created")
	}()

	vErr := validateEventInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	credential, err := s.newCredential()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrStorage, err)
		return
	}

	now := s.now().UTC()
	event := persistence.Event{
		ID:                   s.idGenerator(),
		Title:                strings.TrimSpace(input.Title),
		Description:          strings.TrimSpace(input.Description),
		ManagementCredential: credential,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	days := dateutil.DaySet{}
	for _, day := range input.Days {
		days.Add(day)
	}
	for _, day := range days.Days() {
		event.Dates = append(event.Dates, persistence.EventDate{
			ID:      s.idGenerator(),
			EventID: event.ID,
			Day:     day,
		})
	}

	if err = s.events.CreateEvent(ctx, event); err != nil {
		err = mapEventRepoError(err)
		return
	}

	result = CreateEventResult{
		Event:                toEvent(event, true),
		ManagementCredential: credential,
	}
	return
}

// GetEvent loads an event for display. The management credential is included
// in the result only when the caller presented the matching credential.
func (s *EventService) GetEvent(ctx context.Context, eventID, credential string) (event Event, err error) {
	logger := s.loggerWith(ctx, "GetEvent", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get event", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	stored, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	event = toEvent(stored, credentialMatches(stored.ManagementCredential, credential))
	return
}

// ListEvents returns every event with credentials redacted, ordered by
// creation time. Intended for the administrative surface.
func (s *EventService) ListEvents(ctx context.Context) (events []Event, err error) {
	logger := s.loggerWith(ctx, "ListEvents")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list events", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(events)).InfoContext(ctx, "events listed")
	}()

	stored, err := s.events.ListEvents(ctx)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	events = make([]Event, 0, len(stored))
	for _, event := range stored {
		events = append(events, toEvent(event, false))
	}
	return
}

// EventAvailability loads an event and aggregates its participants'
// selections into per-date counts. Every candidate date appears, selected
// or not.
func (s *EventService) EventAvailability(ctx context.Context, eventID string) (result EventAvailability, err error) {
	logger := s.loggerWith(ctx, "EventAvailability", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to aggregate availability", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	stored, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	dates := make([]availability.EventDate, 0, len(stored.Dates))
	for _, date := range stored.Dates {
		dates = append(dates, availability.EventDate{ID: date.ID, Day: date.Day})
	}

	selections := make([]availability.Selection, 0, len(stored.Participants))
	for _, participant := range stored.Participants {
		selection := availability.Selection{
			ParticipantName: participant.Name,
			CreatedAt:       participant.CreatedAt,
		}
		for _, date := range participant.Dates {
			selection.Days = append(selection.Days, date.Day)
		}
		selections = append(selections, selection)
	}

	result = EventAvailability{
		Event:  toEvent(stored, false),
		Counts: availability.Aggregate(dates, selections),
	}
	return
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		vErr.add("description", "description is required")
	}
	if len(input.Days) == 0 {
		vErr.add("dates", "at least one candidate date is required")
	}

	return vErr
}

// credentialMatches compares in constant time; an empty presented credential
// never matches.
func credentialMatches(stored, presented string) bool {
	if presented == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		vErr := &ValidationError{}
		vErr.add("dates", "candidate dates must be unique")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "input rejected by storage constraints")
		return vErr
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func toEvent(event persistence.Event, includeCredential bool) Event {
	out := Event{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	if includeCredential {
		out.ManagementCredential = event.ManagementCredential
	}
	for _, date := range event.Dates {
		out.Dates = append(out.Dates, EventDate{ID: date.ID, Day: date.Day})
	}
	for _, participant := range event.Participants {
		out.Participants = append(out.Participants, toParticipant(participant))
	}
	return out
}

func toParticipant(participant persistence.Participant) Participant {
	out := Participant{
		ID:        participant.ID,
		EventID:   participant.EventID,
		Name:      participant.Name,
		CreatedAt: participant.CreatedAt,
		UpdatedAt: participant.UpdatedAt,
	}
	for _, date := range participant.Dates {
		out.Days = append(out.Days, date.Day)
	}
	return out
}
