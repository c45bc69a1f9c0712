package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/kdyvoda/internal/persistence"
)

func TestEventRepository_CreateEvent(t *testing.T) {
	pool, repo := setupEventRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	event := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	)

	err := repo.CreateEvent(ctx, event)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	retrieved, err := repo.GetEvent(ctx, "event1")
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}

	if retrieved.Title != "Team offsite" {
		t.Errorf("Expected title 'Team offsite', got '%s'", retrieved.Title)
	}
	if len(retrieved.Dates) != 2 {
		t.Fatalf("Expected 2 candidate dates, got %d", len(retrieved.Dates))
	}
	if !retrieved.Dates[0].Day.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected first date 2026-03-10, got %v", retrieved.Dates[0].Day)
	}
	if retrieved.ManagementCredential != event.ManagementCredential {
		t.Errorf("Expected stored credential to round-trip, got '%s'", retrieved.ManagementCredential)
	}
}

func TestEventRepository_CreateEvent_DuplicateDay(t *testing.T) {
	pool, repo := setupEventRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	event := testEvent("event1", "Team offsite", day)
	event.Dates = append(event.Dates, persistence.EventDate{
		ID:      "date-dup",
		EventID: "event1",
		Day:     day,
	})

	err := repo.CreateEvent(ctx, event)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate for repeated day, got %v", err)
	}

	// The whole write must roll back, including the event row.
	_, err = repo.GetEvent(ctx, "event1")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected event row to be rolled back, got %v", err)
	}
}

func TestEventRepository_CreateEvent_ShortCredential(t *testing.T) {
	pool, repo := setupEventRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	event := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	event.ManagementCredential = "too-short"

	err := repo.CreateEvent(ctx, event)
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("Expected constraint violation for short credential, got %v", err)
	}
}

func TestEventRepository_GetEvent_NotFound(t *testing.T) {
	pool, repo := setupEventRepositoryTest(t)
	defer pool.Close()

	_, err := repo.GetEvent(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestEventRepository_GetEvent_ParticipantsInCreationOrder(t *testing.T) {
	pool, repo := setupEventRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	event := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	if err := repo.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	participants := NewParticipantRepository(pool)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"Zuzana", "Adam", "Marek"}
	for i, name := range names {
		participant := persistence.Participant{
			ID:        "p" + name,
			EventID:   "event1",
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := participants.CreateParticipant(ctx, participant); err != nil {
			t.Fatalf("CreateParticipant failed for %s: %v", name, err)
		}
	}

	retrieved, err := repo.GetEvent(ctx, "event1")
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}

	if len(retrieved.Participants) != 3 {
		t.Fatalf("Expected 3 participants, got %d", len(retrieved.Participants))
	}
	for i, name := range names {
		if retrieved.Participants[i].Name != name {
			t.Errorf("Expected participant %d to be '%s', got '%s'", i, name, retrieved.Participants[i].Name)
		}
	}
}

func TestEventRepository_ListEvents(t *testing.T) {
	pool, repo := setupEventRepositoryTest(t)
	defer pool.Close()

	ctx := context.Background()
	first := testEvent("event1", "Team offsite",
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	first.CreatedAt = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	second := testEvent("event2", "Board game night",
		time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	second.CreatedAt = time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

	for _, event := range []persistence.Event{second, first} {
		if err := repo.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed for %s: %v", event.ID, err)
		}
	}

	events, err := repo.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].ID != "event1" || events[1].ID != "event2" {
		t.Errorf("Expected creation order event1, event2; got %s, %s", events[0].ID, events[1].ID)
	}
	if len(events[0].Dates) != 1 {
		t.Errorf("Expected listed events to include dates, got %d", len(events[0].Dates))
	}
}

func testEvent(id, title string, days ...time.Time) persistence.Event {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	event := persistence.Event{
		ID:                   id,
		Title:                title,
		Description:          "Pick a day that works for everyone.",
		ManagementCredential: "credential-" + id + "-0123456789",
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for i, day := range days {
		event.Dates = append(event.Dates, persistence.EventDate{
			ID:      id + "-date-" + string(rune('a'+i)),
			EventID: id,
			Day:     day,
		})
	}
	return event
}

func setupEventRepositoryTest(t *testing.T) (*ConnectionPool, *EventRepository) {
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

	return pool, NewEventRepository(pool)
}
