package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/kdyvoda/internal/persistence"
)

func TestParticipantRepository_CreateParticipant(t *testing.T) {
	pool, events, repo := setupParticipantRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	event := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	)
	if err := events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	participant := testParticipant("part1", "event1", "Adam")
	participant.Dates = []persistence.ParticipantDate{
		{ID: "pd1", ParticipantID: "part1", EventDateID: event.Dates[0].ID, Day: event.Dates[0].Day},
	}

	if err := repo.CreateParticipant(ctx, participant); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}

	retrieved, err := repo.GetParticipant(ctx, "part1")
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if retrieved.Name != "Adam" {
		t.Errorf("Expected name 'Adam', got '%s'", retrieved.Name)
	}
	if len(retrieved.Dates) != 1 {
		t.Fatalf("Expected 1 selection, got %d", len(retrieved.Dates))
	}
	if retrieved.Dates[0].EventDateID != event.Dates[0].ID {
		t.Errorf("Expected selection for %s, got %s", event.Dates[0].ID, retrieved.Dates[0].EventDateID)
	}
}

func TestParticipantRepository_CreateParticipant_CrossEventDate(t *testing.T) {
	pool, events, repo := setupParticipantRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	first := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	second := testEvent("event2", "Board game night",
		time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	for _, event := range []persistence.Event{first, second} {
		if err := events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed for %s: %v", event.ID, err)
		}
	}

	// Selection references a date owned by event2 while joining event1.
	participant := testParticipant("part1", "event1", "Adam")
	participant.Dates = []persistence.ParticipantDate{
		{ID: "pd1", ParticipantID: "part1", EventDateID: second.Dates[0].ID, Day: second.Dates[0].Day},
	}

	err := repo.CreateParticipant(ctx, participant)
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("Expected ErrForeignKeyViolation for cross-event date, got %v", err)
	}

	// The participant row must roll back with the rejected selection.
	_, err = repo.GetParticipant(ctx, "part1")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected participant row to be rolled back, got %v", err)
	}
}

func TestParticipantRepository_CreateParticipant_UnknownDate(t *testing.T) {
	pool, events, repo := setupParticipantRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	event := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err := events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	participant := testParticipant("part1", "event1", "Adam")
	participant.Dates = []persistence.ParticipantDate{
		{ID: "pd1", ParticipantID: "part1", EventDateID: "no-such-date", Day: event.Dates[0].Day},
	}

	err := repo.CreateParticipant(ctx, participant)
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("Expected ErrForeignKeyViolation for unknown date, got %v", err)
	}
}

func TestParticipantRepository_ReplaceParticipantDates(t *testing.T) {
	pool, events, repo := setupParticipantRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	event := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	)
	if err := events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	participant := testParticipant("part1", "event1", "Adam")
	participant.Dates = []persistence.ParticipantDate{
		{ID: "pd1", ParticipantID: "part1", EventDateID: event.Dates[0].ID, Day: event.Dates[0].Day},
	}
	if err := repo.CreateParticipant(ctx, participant); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}

	replacement := []persistence.ParticipantDate{
		{ID: "pd2", ParticipantID: "part1", EventDateID: event.Dates[1].ID, Day: event.Dates[1].Day},
		{ID: "pd3", ParticipantID: "part1", EventDateID: event.Dates[2].ID, Day: event.Dates[2].Day},
	}
	if err := repo.ReplaceParticipantDates(ctx, "part1", replacement); err != nil {
		t.Fatalf("ReplaceParticipantDates failed: %v", err)
	}

	retrieved, err := repo.GetParticipant(ctx, "part1")
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if len(retrieved.Dates) != 2 {
		t.Fatalf("Expected 2 selections after replace, got %d", len(retrieved.Dates))
	}
	for _, date := range retrieved.Dates {
		if date.EventDateID == event.Dates[0].ID {
			t.Errorf("Expected original selection %s to be removed", event.Dates[0].ID)
		}
	}
	if !retrieved.UpdatedAt.After(participant.UpdatedAt) {
		t.Errorf("Expected updated_at to advance after replace")
	}
}

func TestParticipantRepository_ReplaceParticipantDates_RollsBackOnBadDate(t *testing.T) {
	pool, events, repo := setupParticipantRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	event := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	)
	if err := events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	participant := testParticipant("part1", "event1", "Adam")
	participant.Dates = []persistence.ParticipantDate{
		{ID: "pd1", ParticipantID: "part1", EventDateID: event.Dates[0].ID, Day: event.Dates[0].Day},
	}
	if err := repo.CreateParticipant(ctx, participant); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}

	replacement := []persistence.ParticipantDate{
		{ID: "pd2", ParticipantID: "part1", EventDateID: event.Dates[1].ID, Day: event.Dates[1].Day},
		{ID: "pd3", ParticipantID: "part1", EventDateID: "no-such-date", Day: event.Dates[1].Day},
	}
	err := repo.ReplaceParticipantDates(ctx, "part1", replacement)
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("Expected ErrForeignKeyViolation, got %v", err)
	}

	// Failed replace must leave the previous selection intact.
	retrieved, err := repo.GetParticipant(ctx, "part1")
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if len(retrieved.Dates) != 1 || retrieved.Dates[0].EventDateID != event.Dates[0].ID {
		t.Fatalf("Expected original selection to survive failed replace, got %+v", retrieved.Dates)
	}
}

func TestParticipantRepository_ReplaceParticipantDates_NotFound(t *testing.T) {
	pool, _, repo := setupParticipantRepositoryTest(t)
	defer pool.Close()

	err := repo.ReplaceParticipantDates(context.Background(), "missing", nil)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func testParticipant(id, eventID, name string) persistence.Participant {
	now := time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC)
	return persistence.Participant{
		ID:        id,
		EventID:   eventID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func setupParticipantRepositoryTest(t *testing.T) (*ConnectionPool, *EventRepository, *ParticipantRepository) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	pool, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	return pool, NewEventRepository(pool), NewParticipantRepository(pool)
}
