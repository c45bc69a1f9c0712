package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/kdyvoda/internal/dateutil"
	"github.com/example/kdyvoda/internal/persistence"
)

// ParticipantStore captures the persistence operations needed by the
// participant service.
type ParticipantStore interface {
	CreateParticipant(ctx context.Context, participant persistence.Participant) error
	GetParticipant(ctx context.Context, id string) (persistence.Participant, error)
	ReplaceParticipantDates(ctx context.Context, participantID string, dates []persistence.ParticipantDate) error
}

// ParticipantService orchestrates validation and persistence for participant
// availability answers.
type ParticipantService struct {
	events       EventStore
	participants ParticipantStore
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewParticipantService constructs a participant service with the provided
// dependencies.
func NewParticipantService(events EventStore, participants ParticipantStore, idGenerator func() string, now func() time.Time) *ParticipantService {
	return NewParticipantServiceWithLogger(events, participants, idGenerator, now, nil)
}

// NewParticipantServiceWithLogger constructs a participant service with a
// specified logger.
func NewParticipantServiceWithLogger(events EventStore, participants ParticipantStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{
		events:       events,
		participants: participants,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ParticipantService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ParticipantService", operation, attrs...)
}

// CreateParticipant validates the answer against the event's candidate dates
// and persists it. Days not offered by the event are rejected before any
// write happens; duplicate days collapse to one selection.
func (s *ParticipantService) CreateParticipant(ctx context.Context, input ParticipantInput) (participant Participant, err error) {
	logger := s.loggerWith(ctx, "CreateParticipant", "event_id", input.EventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("participant_id", participant.ID).InfoContext(ctx, "participant created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.EventID) == "" {
		vErr.add("event_id", "event_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	event, err := s.events.GetEvent(ctx, input.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	now := s.now().UTC()
	stored := persistence.Participant{
		ID:        s.idGenerator(),
		EventID:   event.ID,
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored.Dates, err = s.resolveSelections(event, stored.ID, input.Days)
	if err != nil {
		return
	}

	if err = s.participants.CreateParticipant(ctx, stored); err != nil {
		err = mapParticipantRepoError(err)
		return
	}

	participant = toParticipant(stored)
	return
}

// UpdateParticipantDates replaces a participant's selections with a newly
// validated set. The previous selections survive any validation failure.
func (s *ParticipantService) UpdateParticipantDates(ctx context.Context, participantID string, days []time.Time) (participant Participant, err error) {
	logger := s.loggerWith(ctx, "UpdateParticipantDates", "participant_id", participantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update participant dates", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant dates updated")
	}()

	existing, err := s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		err = mapParticipantRepoError(err)
		return
	}

	event, err := s.events.GetEvent(ctx, existing.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	selections, err := s.resolveSelections(event, participantID, days)
	if err != nil {
		return
	}

	if err = s.participants.ReplaceParticipantDates(ctx, participantID, selections); err != nil {
		err = mapParticipantRepoError(err)
		return
	}

	updated, err := s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		err = mapParticipantRepoError(err)
		return
	}

	participant = toParticipant(updated)
	return
}

// GetParticipant loads a single participant with selections expanded.
func (s *ParticipantService) GetParticipant(ctx context.Context, participantID string) (Participant, error) {
	stored, err := s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		return Participant{}, mapParticipantRepoError(err)
	}
	return toParticipant(stored), nil
}

// resolveSelections maps requested days onto the event's candidate dates.
// A day the event does not offer fails validation for the whole request.
func (s *ParticipantService) resolveSelections(event persistence.Event, participantID string, days []time.Time) ([]persistence.ParticipantDate, error) {
	dateByKey := make(map[string]persistence.EventDate, len(event.Dates))
	for _, date := range event.Dates {
		dateByKey[dateutil.Key(date.Day)] = date
	}

	requested := dateutil.DaySet{}
	for _, day := range days {
		requested.Add(day)
	}

	var selections []persistence.ParticipantDate
	for _, day := range requested.Days() {
		key := dateutil.Key(day)
		eventDate, ok := dateByKey[key]
		if !ok {
			vErr := &ValidationError{}
			vErr.add("dates", fmt.Sprintf("date %s is not offered by the event", key))
			return nil, vErr
		}
		selections = append(selections, persistence.ParticipantDate{
			ID:            s.idGenerator(),
			ParticipantID: participantID,
			EventDateID:   eventDate.ID,
			Day:           eventDate.Day,
		})
	}
	return selections, nil
}

func mapParticipantRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("dates", "selection references a date outside the event")
		return vErr
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		vErr := &ValidationError{}
		vErr.add("dates", "selections must be unique")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "input rejected by storage constraints")
		return vErr
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
