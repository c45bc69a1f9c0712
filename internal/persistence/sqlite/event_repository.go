package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/kdyvoda/internal/dateutil"
	"github.com/example/kdyvoda/internal/persistence"
)

// EventRepository implements persistence.EventRepository on SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a SQLite-backed event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

// CreateEvent inserts the event and every candidate date in one transaction.
// Readers never observe an event with only part of its date set.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO events (id, title, description, management_credential, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			event.ID,
			event.Title,
			event.Description,
			event.ManagementCredential,
			event.CreatedAt.UTC().Format(time.RFC3339),
			event.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}

		for _, date := range event.Dates {
			_, err := tx.Exec(
				"INSERT INTO event_dates (id, event_id, day) VALUES (?, ?, ?)",
				date.ID, event.ID, dateutil.Key(date.Day),
			)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// GetEvent loads the event with its dates and all participants expanded.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	event, err := r.scanEvent(ctx, id)
	if err != nil {
		return persistence.Event{}, err
	}

	event.Dates, err = r.loadEventDates(ctx, id)
	if err != nil {
		return persistence.Event{}, err
	}

	event.Participants, err = r.loadParticipants(ctx, id)
	if err != nil {
		return persistence.Event{}, err
	}

	return event, nil
}

// ListEvents returns every event with dates expanded, ordered by creation time.
func (r *EventRepository) ListEvents(ctx context.Context) ([]persistence.Event, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
		SELECT id, title, description, management_credential, created_at, updated_at
		FROM events
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range events {
		events[i].Dates, err = r.loadEventDates(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (r *EventRepository) scanEvent(ctx context.Context, id string) (persistence.Event, error) {
	row := r.pool.DB().QueryRowContext(ctx, `
		SELECT id, title, description, management_credential, created_at, updated_at
		FROM events
		WHERE id = ?`, id)
	return scanEventRow(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventRow(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var createdAt, updatedAt string

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.ManagementCredential,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}

	if event.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Event{}, fmt.Errorf("sqlite: parse event created_at: %w", err)
	}
	if event.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Event{}, fmt.Errorf("sqlite: parse event updated_at: %w", err)
	}
	return event, nil
}

func (r *EventRepository) loadEventDates(ctx context.Context, eventID string) ([]persistence.EventDate, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
		SELECT id, event_id, day
		FROM event_dates
		WHERE event_id = ?
		ORDER BY day ASC`, eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var dates []persistence.EventDate
	for rows.Next() {
		date, err := scanEventDate(rows)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return dates, nil
}

func scanEventDate(row rowScanner) (persistence.EventDate, error) {
	var date persistence.EventDate
	var day string
	if err := row.Scan(&date.ID, &date.EventID, &day); err != nil {
		return persistence.EventDate{}, mapError(err)
	}
	parsed, err := time.Parse(dateutil.DayFormat, day)
	if err != nil {
		return persistence.EventDate{}, fmt.Errorf("sqlite: parse event date day: %w", err)
	}
	date.Day = parsed
	return date, nil
}

// loadParticipants returns participants in creation order with their
// selections expanded; the aggregator relies on this ordering.
func (r *EventRepository) loadParticipants(ctx context.Context, eventID string) ([]persistence.Participant, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
		SELECT id, event_id, name, created_at, updated_at
		FROM participants
		WHERE event_id = ?
		ORDER BY created_at ASC, id ASC`, eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var participants []persistence.Participant
	for rows.Next() {
		participant, err := scanParticipantRow(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range participants {
		participants[i].Dates, err = loadParticipantDates(ctx, r.pool.DB(), participants[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return participants, nil
}
