package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/gameplan-scheduler/internal/persistence"
	"github.com/example/gameplan-scheduler/internal/recurrence"
)

// TemplateRepository implements persistence.TemplateRepository over SQLite.
type TemplateRepository struct {
	pool *ConnectionPool
}

// NewTemplateRepository creates a SQLite-backed template repository.
func NewTemplateRepository(pool *ConnectionPool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// CreateTemplate inserts a template and its invite list in one transaction.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, template persistence.ScheduleTemplate) error {
	if template.ID == "" {
		return persistence.ErrConstraintViolation
	}
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO schedule_templates
			(id, owner_id, game_id, name, description, time_of_day, duration_mins, max_participants, pattern, weekdays, month_day, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			template.ID,
			template.OwnerID,
			template.GameID,
			template.Name,
			template.Description,
			template.TimeOfDay,
			template.DurationMins,
			nullInt(template.MaxParticipants),
			template.Pattern,
			encodeWeekdays(template.Weekdays),
			template.MonthDay,
			formatTimestamp(template.CreatedAt),
			formatTimestamp(template.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertTemplateInvites(tx, template.ID, template.Invites)
	})
}

// UpdateTemplate replaces template fields and the invite list wholesale. The
// old invite set is deleted and the new one inserted, not diffed.
func (r *TemplateRepository) UpdateTemplate(ctx context.Context, template persistence.ScheduleTemplate) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE schedule_templates
			SET game_id = ?, name = ?, description = ?, time_of_day = ?, duration_mins = ?, max_participants = ?, pattern = ?, weekdays = ?, month_day = ?, updated_at = ?
			WHERE id = ?`,
			template.GameID,
			template.Name,
			template.Description,
			template.TimeOfDay,
			template.DurationMins,
			nullInt(template.MaxParticipants),
			template.Pattern,
			encodeWeekdays(template.Weekdays),
			template.MonthDay,
			formatTimestamp(template.UpdatedAt),
			template.ID,
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

		if _, err := tx.Exec("DELETE FROM template_invites WHERE template_id = ?", template.ID); err != nil {
			return mapError(err)
		}
		return insertTemplateInvites(tx, template.ID, template.Invites)
	})
}

// GetTemplate retrieves a template and its invite list.
func (r *TemplateRepository) GetTemplate(ctx context.Context, id string) (persistence.ScheduleTemplate, error) {
	row := r.pool.db.QueryRowContext(ctx, templateColumns+" FROM schedule_templates WHERE id = ?", id)
	template, err := scanTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ScheduleTemplate{}, persistence.ErrNotFound
		}
		return persistence.ScheduleTemplate{}, err
	}
	if template.Invites, err = r.loadInvites(ctx, id); err != nil {
		return persistence.ScheduleTemplate{}, err
	}
	return template, nil
}

// ListTemplates returns the owner's templates ordered by name.
func (r *TemplateRepository) ListTemplates(ctx context.Context, ownerID string) ([]persistence.ScheduleTemplate, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		templateColumns+" FROM schedule_templates WHERE owner_id = ? ORDER BY name ASC, id ASC", ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var templates []persistence.ScheduleTemplate
	for rows.Next() {
		template, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		if templates[i].Invites, err = r.loadInvites(ctx, templates[i].ID); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// DeleteTemplate removes a template; invites and occurrence links cascade.
// Generated schedules survive the template deletion.
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM schedule_templates WHERE id = ?", id)
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

// ListOccurrenceDates returns the already-generated dates for a template.
func (r *TemplateRepository) ListOccurrenceDates(ctx context.Context, templateID string) ([]time.Time, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT date FROM template_occurrences WHERE template_id = ? ORDER BY date ASC", templateID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, mapError(err)
		}
		date, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

// CreateOccurrences materializes each candidate's schedule, occurrence link
// and invite rows inside one transaction. A candidate whose (template_id,
// date) pair already exists is skipped; every other failure rolls back the
// whole call.
//
// The existence check runs inside the transaction, but the real at-most-once
// guard is the primary key on template_occurrences: a concurrent generator
// committing between our check and insert surfaces as ErrDuplicate, which is
// treated as already-generated rather than a failure.
func (r *TemplateRepository) CreateOccurrences(ctx context.Context, templateID string, candidates []persistence.NewOccurrence) ([]string, error) {
	var created []string
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		created = created[:0]
		for _, candidate := range candidates {
			dateKey := formatDate(candidate.Date)

			var count int
			if err := tx.QueryRow(
				"SELECT COUNT(*) FROM template_occurrences WHERE template_id = ? AND date = ?",
				templateID, dateKey,
			).Scan(&count); err != nil {
				return mapError(err)
			}
			if count > 0 {
				continue
			}

			if err := insertSchedule(tx, candidate.Schedule); err != nil {
				return err
			}

			_, err := tx.Exec(`
				INSERT INTO template_occurrences (template_id, date, schedule_id, created_at)
				VALUES (?, ?, ?, ?)`,
				templateID, dateKey, candidate.Schedule.ID, formatTimestamp(candidate.Schedule.CreatedAt))
			if err != nil {
				mapped := mapError(err)
				if errors.Is(mapped, persistence.ErrDuplicate) {
					// Lost the race to a concurrent generator: drop the
					// schedule row written above and move on.
					if _, delErr := tx.Exec("DELETE FROM schedules WHERE id = ?", candidate.Schedule.ID); delErr != nil {
						return mapError(delErr)
					}
					continue
				}
				return mapped
			}

			if err := insertScheduleInvites(tx, candidate.Schedule.ID, candidate.Invites); err != nil {
				return err
			}
			created = append(created, candidate.Schedule.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

const templateColumns = `SELECT id, owner_id, game_id, name, description, time_of_day, duration_mins, max_participants, pattern, weekdays, month_day, created_at, updated_at`

func (r *TemplateRepository) loadInvites(ctx context.Context, templateID string) ([]persistence.TemplateInvite, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT template_id, friend_id, auto_invite FROM template_invites WHERE template_id = ? ORDER BY friend_id ASC", templateID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var invites []persistence.TemplateInvite
	for rows.Next() {
		var invite persistence.TemplateInvite
		var autoInvite int
		if err := rows.Scan(&invite.TemplateID, &invite.FriendID, &autoInvite); err != nil {
			return nil, mapError(err)
		}
		invite.AutoInvite = autoInvite != 0
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

func insertTemplateInvites(tx *sql.Tx, templateID string, invites []persistence.TemplateInvite) error {
	for _, invite := range invites {
		autoInvite := 0
		if invite.AutoInvite {
			autoInvite = 1
		}
		if _, err := tx.Exec(
			"INSERT INTO template_invites (template_id, friend_id, auto_invite) VALUES (?, ?, ?)",
			templateID, invite.FriendID, autoInvite,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func scanTemplate(scan func(dest ...any) error) (persistence.ScheduleTemplate, error) {
	var template persistence.ScheduleTemplate
	var weekdays, createdAt, updatedAt string
	var maxParticipants sql.NullInt64

	err := scan(
		&template.ID,
		&template.OwnerID,
		&template.GameID,
		&template.Name,
		&template.Description,
		&template.TimeOfDay,
		&template.DurationMins,
		&maxParticipants,
		&template.Pattern,
		&weekdays,
		&template.MonthDay,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ScheduleTemplate{}, sql.ErrNoRows
		}
		return persistence.ScheduleTemplate{}, mapError(err)
	}

	template.MaxParticipants = intPointer(maxParticipants)
	template.Weekdays = decodeWeekdays(weekdays)
	if template.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.ScheduleTemplate{}, err
	}
	if template.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.ScheduleTemplate{}, err
	}
	return template, nil
}

// encodeWeekdays serializes a weekday set as comma-joined lowercase names.
// SQLite has no array columns, so the delimited form lives only here.
func encodeWeekdays(weekdays []time.Weekday) string {
	if len(weekdays) == 0 {
		return ""
	}
	names := make([]string, 0, len(weekdays))
	for _, day := range weekdays {
		names = append(names, recurrence.WeekdayName(day))
	}
	return strings.Join(names, ",")
}

func decodeWeekdays(value string) []time.Weekday {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var weekdays []time.Weekday
	for _, name := range strings.Split(value, ",") {
		if day, ok := recurrence.ParseWeekday(name); ok {
			weekdays = append(weekdays, day)
		}
	}
	return weekdays
}
