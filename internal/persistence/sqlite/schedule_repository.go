package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/example/gameplan-scheduler/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository over SQLite.
type ScheduleRepository struct {
	pool *ConnectionPool
}

// NewScheduleRepository creates a SQLite-backed schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// CreateSchedule inserts a schedule and its invite rows in one transaction.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule, invites []persistence.ScheduleFriend) error {
	if schedule.ID == "" {
		return persistence.ErrConstraintViolation
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := insertSchedule(tx, schedule); err != nil {
			return err
		}
		return insertScheduleInvites(tx, schedule.ID, invites)
	})
}

// UpdateSchedule replaces schedule fields and its invite list wholesale.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.Schedule, invites []persistence.ScheduleFriend) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE schedules
			SET game_id = ?, title = ?, description = ?, date = ?, start_time = ?, end_time = ?, max_participants = ?, updated_at = ?
			WHERE id = ?`,
			schedule.GameID,
			schedule.Title,
			schedule.Description,
			formatDate(schedule.Date),
			schedule.StartTime,
			schedule.EndTime,
			nullInt(schedule.MaxParticipants),
			formatTimestamp(schedule.UpdatedAt),
			schedule.ID,
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

		if _, err := tx.Exec("DELETE FROM schedule_friends WHERE schedule_id = ?", schedule.ID); err != nil {
			return mapError(err)
		}
		return insertScheduleInvites(tx, schedule.ID, invites)
	})
}

// GetSchedule retrieves a schedule by id.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	row := r.pool.db.QueryRowContext(ctx, scheduleColumns+" FROM schedules WHERE id = ?", id)
	schedule, err := scanSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Schedule{}, persistence.ErrNotFound
		}
		return persistence.Schedule{}, err
	}
	return schedule, nil
}

// ListSchedules returns schedules matching the filter ordered by date then
// start time. With a UserID the result covers owned schedules and ones the
// user is invited to.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	query := scheduleColumns + " FROM schedules"
	var clauses []string
	var args []any

	if filter.UserID != "" {
		clauses = append(clauses, "(owner_id = ? OR id IN (SELECT schedule_id FROM schedule_friends WHERE friend_id = ?))")
		args = append(args, filter.UserID, filter.UserID)
	}
	if filter.From != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.Until != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatDate(*filter.Until))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date ASC, start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// ListInvites returns the invite rows for a schedule.
func (r *ScheduleRepository) ListInvites(ctx context.Context, scheduleID string) ([]persistence.ScheduleFriend, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT schedule_id, friend_id, status, created_at
		FROM schedule_friends WHERE schedule_id = ?
		ORDER BY friend_id ASC`, scheduleID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var invites []persistence.ScheduleFriend
	for rows.Next() {
		var invite persistence.ScheduleFriend
		var createdAt string
		if err := rows.Scan(&invite.ScheduleID, &invite.FriendID, &invite.Status, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if invite.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

// SetInviteStatus updates one invite row's status.
func (r *ScheduleRepository) SetInviteStatus(ctx context.Context, scheduleID, friendID, status string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE schedule_friends SET status = ? WHERE schedule_id = ? AND friend_id = ?",
		status, scheduleID, friendID)
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

// DeleteSchedule removes a schedule; invite rows cascade.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
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

const scheduleColumns = `SELECT id, owner_id, game_id, title, description, date, start_time, end_time, max_participants, created_at, updated_at`

func insertSchedule(tx *sql.Tx, schedule persistence.Schedule) error {
	_, err := tx.Exec(`
		INSERT INTO schedules (id, owner_id, game_id, title, description, date, start_time, end_time, max_participants, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		schedule.ID,
		schedule.OwnerID,
		schedule.GameID,
		schedule.Title,
		schedule.Description,
		formatDate(schedule.Date),
		schedule.StartTime,
		schedule.EndTime,
		nullInt(schedule.MaxParticipants),
		formatTimestamp(schedule.CreatedAt),
		formatTimestamp(schedule.UpdatedAt),
	)
	return mapError(err)
}

func insertScheduleInvites(tx *sql.Tx, scheduleID string, invites []persistence.ScheduleFriend) error {
	for _, invite := range invites {
		status := invite.Status
		if status == "" {
			status = persistence.InviteStatusPending
		}
		if _, err := tx.Exec(`
			INSERT INTO schedule_friends (schedule_id, friend_id, status, created_at)
			VALUES (?, ?, ?, ?)`,
			scheduleID, invite.FriendID, status, formatTimestamp(invite.CreatedAt),
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func scanSchedule(scan func(dest ...any) error) (persistence.Schedule, error) {
	var schedule persistence.Schedule
	var date, createdAt, updatedAt string
	var maxParticipants sql.NullInt64

	err := scan(
		&schedule.ID,
		&schedule.OwnerID,
		&schedule.GameID,
		&schedule.Title,
		&schedule.Description,
		&date,
		&schedule.StartTime,
		&schedule.EndTime,
		&maxParticipants,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Schedule{}, sql.ErrNoRows
		}
		return persistence.Schedule{}, mapError(err)
	}

	schedule.MaxParticipants = intPointer(maxParticipants)
	if schedule.Date, err = parseDate(date); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Schedule{}, err
	}
	return schedule, nil
}
