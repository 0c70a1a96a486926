package entities

import "time"

// Valid range for the reminder interval, in days.
const (
	MinIntervalDays = 1
	MaxIntervalDays = 7
)

// ReminderSetting contains reminder configuration for a user.
// At most one setting exists per user. While the setting is enabled the
// invariant next_due = (last_fired or creation time) + interval holds;
// a disabled setting is never consulted by the scheduler.
type ReminderSetting struct {
	UserID       int64
	IntervalDays int
	IsEnabled    bool
	LastFiredAt  *time.Time // nil until the first reminder fires
	NextDueAt    *time.Time // nil until first configured
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewReminderSetting creates an enabled setting with next_due computed from now.
func NewReminderSetting(userID int64, intervalDays int, now time.Time) *ReminderSetting {
	next := now.Add(time.Duration(intervalDays) * 24 * time.Hour)
	return &ReminderSetting{
		UserID:       userID,
		IntervalDays: intervalDays,
		IsEnabled:    true,
		NextDueAt:    &next,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NextDueFrom returns the next due timestamp computed from the given moment.
func (r *ReminderSetting) NextDueFrom(now time.Time) time.Time {
	return now.Add(time.Duration(r.IntervalDays) * 24 * time.Hour)
}

// IsDue reports whether the reminder should fire at the given moment.
func (r *ReminderSetting) IsDue(now time.Time) bool {
	if !r.IsEnabled || r.NextDueAt == nil {
		return false
	}
	return !now.Before(*r.NextDueAt)
}

// DueReminder combines a due reminder setting with the user's chat
// coordinates, as returned by the due scan.
type DueReminder struct {
	UserID       int64
	ChatID       int64
	IntervalDays int
	NextDueAt    time.Time
}
