package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/kdyvoda/internal/dateutil"
	"github.com/example/kdyvoda/internal/persistence"
)

// ParticipantRepository implements persistence.ParticipantRepository on SQLite.
type ParticipantRepository struct {
	pool *ConnectionPool
}

// NewParticipantRepository creates a SQLite-backed participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// CreateParticipant inserts the participant and every selection in one
// transaction. Each selection must reference an event date owned by the
// participant's event; a cross-event reference aborts the whole write.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	if participant.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO participants (id, event_id, name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			participant.ID,
			participant.EventID,
			participant.Name,
			participant.CreatedAt.UTC().Format(time.RFC3339),
			participant.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}

		return insertParticipantDates(tx, participant.EventID, participant.ID, participant.Dates)
	})
}

// GetParticipant loads the participant with selections expanded.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	if id == "" {
		return persistence.Participant{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx, `
		SELECT id, event_id, name, created_at, updated_at
		FROM participants
		WHERE id = ?`, id)

	participant, err := scanParticipantRow(row)
	if err != nil {
		return persistence.Participant{}, err
	}

	participant.Dates, err = loadParticipantDates(ctx, r.pool.DB(), id)
	if err != nil {
		return persistence.Participant{}, err
	}
	return participant, nil
}

// ReplaceParticipantDates removes every existing selection for the
// participant and inserts the provided set within one transaction, so a
// reader never observes a half-replaced selection.
func (r *ParticipantRepository) ReplaceParticipantDates(ctx context.Context, participantID string, dates []persistence.ParticipantDate) error {
	if participantID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var eventID string
		err := tx.QueryRow("SELECT event_id FROM participants WHERE id = ?", participantID).Scan(&eventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		if _, err := tx.Exec("DELETE FROM participant_dates WHERE participant_id = ?", participantID); err != nil {
			return mapError(err)
		}

		if err := insertParticipantDates(tx, eventID, participantID, dates); err != nil {
			return err
		}

		_, err = tx.Exec(
			"UPDATE participants SET updated_at = ? WHERE id = ?",
			time.Now().UTC().Format(time.RFC3339), participantID,
		)
		return mapError(err)
	})
}

// insertParticipantDates writes selections after verifying each referenced
// event date belongs to eventID. The ownership check runs at write time;
// trusting read-time joins would let cross-event rows persist.
func insertParticipantDates(tx *sql.Tx, eventID, participantID string, dates []persistence.ParticipantDate) error {
	for _, date := range dates {
		var owner string
		err := tx.QueryRow("SELECT event_id FROM event_dates WHERE id = ?", date.EventDateID).Scan(&owner)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: event date %s does not exist", persistence.ErrForeignKeyViolation, date.EventDateID)
			}
			return mapError(err)
		}
		if owner != eventID {
			return fmt.Errorf("%w: event date %s belongs to another event", persistence.ErrForeignKeyViolation, date.EventDateID)
		}

		_, err = tx.Exec(`
			INSERT INTO participant_dates (id, participant_id, event_date_id, day)
			VALUES (?, ?, ?, ?)`,
			date.ID, participantID, date.EventDateID, dateutil.Key(date.Day),
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func scanParticipantRow(row rowScanner) (persistence.Participant, error) {
	var participant persistence.Participant
	var createdAt, updatedAt string

	err := row.Scan(
		&participant.ID,
		&participant.EventID,
		&participant.Name,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Participant{}, mapError(err)
	}

	if participant.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Participant{}, fmt.Errorf("sqlite: parse participant created_at: %w", err)
	}
	if participant.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Participant{}, fmt.Errorf("sqlite: parse participant updated_at: %w", err)
	}
	return participant, nil
}

func loadParticipantDates(ctx context.Context, db *sql.DB, participantID string) ([]persistence.ParticipantDate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, participant_id, event_date_id, day
		FROM participant_dates
		WHERE participant_id = ?
		ORDER BY day ASC`, participantID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var dates []persistence.ParticipantDate
	for rows.Next() {
		var date persistence.ParticipantDate
		var day string
		if err := rows.Scan(&date.ID, &date.ParticipantID, &date.EventDateID, &day); err != nil {
			return nil, mapError(err)
		}
		parsed, err := time.Parse(dateutil.DayFormat, day)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse participant date day: %w", err)
		}
		date.Day = parsed
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return dates, nil
}
