package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
	"github.com/nsokolov/studypulse-bot/internal/infra/postgres"
)

var ErrReminderNotFound = errors.New("reminder setting not found")

// ReminderRepository provides access to reminder settings in the database.
type ReminderRepository struct {
	db postgres.DBTX
}

func NewReminderRepository(db postgres.DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// GetByUserID retrieves the reminder setting of a user.
func (r *ReminderRepository) GetByUserID(ctx context.Context, userID int64) (*entities.ReminderSetting, error) {
	query := `
		SELECT user_id, interval_days, is_enabled, last_fired_at, next_due_at,
		       created_at, updated_at
		FROM reminder_settings
		WHERE user_id = $1
	`

	var setting entities.ReminderSetting
	var lastFired, nextDue pgtype.Timestamptz

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&setting.UserID,
		&setting.IntervalDays,
		&setting.IsEnabled,
		&lastFired,
		&nextDue,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("get reminder setting: %w", err)
	}

	if lastFired.Valid {
		t := lastFired.Time
		setting.LastFiredAt = &t
	}
	if nextDue.Valid {
		t := nextDue.Time
		setting.NextDueAt = &t
	}

	return &setting, nil
}

// Upsert creates or overwrites the reminder setting of a user.
func (r *ReminderRepository) Upsert(ctx context.Context, setting *entities.ReminderSetting) error {
	query := `
		INSERT INTO reminder_settings (
			user_id, interval_days, is_enabled, last_fired_at, next_due_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			interval_days = EXCLUDED.interval_days,
			is_enabled = EXCLUDED.is_enabled,
			last_fired_at = EXCLUDED.last_fired_at,
			next_due_at = EXCLUDED.next_due_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		setting.UserID,
		setting.IntervalDays,
		setting.IsEnabled,
		setting.LastFiredAt,
		setting.NextDueAt,
		setting.CreatedAt,
		setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert reminder setting: %w", err)
	}

	return nil
}

// GetDue retrieves every enabled reminder whose next_due_at has passed,
// for active users only.
func (r *ReminderRepository) GetDue(ctx context.Context, now time.Time) ([]*entities.DueReminder, error) {
	query := `
		SELECT rs.user_id, u.chat_id, rs.interval_days, rs.next_due_at
		FROM reminder_settings rs
		INNER JOIN users u ON rs.user_id = u.id
		WHERE rs.is_enabled = true
		  AND u.is_active = true
		  AND rs.next_due_at IS NOT NULL
		  AND rs.next_due_at <= $1
		ORDER BY rs.next_due_at, rs.user_id
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("get due reminders: %w", err)
	}
	defer rows.Close()

	var due []*entities.DueReminder
	for rows.Next() {
		var d entities.DueReminder
		if err := rows.Scan(&d.UserID, &d.ChatID, &d.IntervalDays, &d.NextDueAt); err != nil {
			return nil, fmt.Errorf("scan due reminder: %w", err)
		}
		due = append(due, &d)
	}

	return due, rows.Err()
}

// UpdateAfterFire records a completed reminder cycle: last_fired_at is set
// to firedAt and next_due_at to the next scheduled moment.
func (r *ReminderRepository) UpdateAfterFire(ctx context.Context, userID int64, firedAt, nextDueAt time.Time) error {
	query := `
		UPDATE reminder_settings
		SET last_fired_at = $1,
		    next_due_at = $2,
		    updated_at = $3
		WHERE user_id = $4
	`

	tag, err := r.db.Exec(ctx, query, firedAt, nextDueAt, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("update after fire: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReminderNotFound
	}

	return nil
}

// SetEnabled flips the enabled flag without touching the schedule.
func (r *ReminderRepository) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	query := `
		UPDATE reminder_settings
		SET is_enabled = $1, updated_at = $2
		WHERE user_id = $3
	`

	tag, err := r.db.Exec(ctx, query, enabled, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReminderNotFound
	}

	return nil
}
