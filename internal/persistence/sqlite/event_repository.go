package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

// EventRepository implements persistence.EventRepository over SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a SQLite-backed event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

// CreateEvent inserts a new calendar event.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO events (id, owner_id, title, description, date, start_time, end_time, reminder_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.OwnerID,
		event.Title,
		event.Description,
		formatDate(event.Date),
		event.StartTime,
		event.EndTime,
		nullString(event.ReminderTime),
		formatTimestamp(event.CreatedAt),
		formatTimestamp(event.UpdatedAt),
	)
	return mapError(err)
}

// UpdateEvent updates an existing calendar event.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, date = ?, start_time = ?, end_time = ?, reminder_time = ?, updated_at = ?
		WHERE id = ?`,
		event.Title,
		event.Description,
		formatDate(event.Date),
		event.StartTime,
		event.EndTime,
		nullString(event.ReminderTime),
		formatTimestamp(event.UpdatedAt),
		event.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetEvent retrieves an event by id.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	row := r.pool.db.QueryRowContext(ctx, eventColumns+" FROM events WHERE id = ?", id)
	event, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, err
	}
	return event, nil
}

// ListEvents returns events owned by or shared with the user inside the
// optional date bounds, ordered by date then start time.
func (r *EventRepository) ListEvents(ctx context.Context, userID string, from, until *time.Time) ([]persistence.Event, error) {
	query := eventColumns + " FROM events"
	clauses := []string{"(owner_id = ? OR id IN (SELECT event_id FROM event_friends WHERE friend_id = ?))"}
	args := []any{userID, userID}

	if from != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatDate(*from))
	}
	if until != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatDate(*until))
	}
	query += " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY date ASC, start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ShareEvent grants a friend visibility of an event. Sharing twice is a no-op.
func (r *EventRepository) ShareEvent(ctx context.Context, eventID, friendID string, createdAt time.Time) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO event_friends (event_id, friend_id, created_at)
		VALUES (?, ?, ?)`,
		eventID, friendID, formatTimestamp(createdAt))
	return mapError(err)
}

// DeleteEvent removes an event; shares cascade.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

const eventColumns = `SELECT id, owner_id, title, description, date, start_time, end_time, reminder_time, created_at, updated_at`

func scanEvent(scan func(dest ...any) error) (persistence.Event, error) {
	var event persistence.Event
	var date, createdAt, updatedAt string
	var reminder sql.NullString

	err := scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&date,
		&event.StartTime,
		&event.EndTime,
		&reminder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Event{}, sql.ErrNoRows
		}
		return persistence.Event{}, mapError(err)
	}

	event.ReminderTime = stringPointer(reminder)
	if event.Date, err = parseDate(date); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}
