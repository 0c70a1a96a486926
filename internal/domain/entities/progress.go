package entities

import "time"

// Bounds for a single study session record.
const (
	MaxTopicLength     = 200
	MaxDurationMinutes = 1440 // a full day
)

// StudyProgressEntry is an append-only record of one study session.
// Entries are never mutated or deleted, only aggregated on read.
type StudyProgressEntry struct {
	ID              int64
	UserID          int64
	Topic           string
	DurationMinutes int
	CreatedAt       time.Time
}

// ProgressStats is the aggregate over all progress entries of a user.
type ProgressStats struct {
	TotalMinutes int
	TotalEntries int
}
