package service

import (
	"context"
	"time"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
	"github.com/nsokolov/studypulse-bot/internal/dialog"
)

type UserRepository interface {
	Save(ctx context.Context, user *entities.User) (bool, error)
	Exists(ctx context.Context, userID int64) (bool, error)
	GetByID(ctx context.Context, userID int64) (*entities.User, error)
	SetActive(ctx context.Context, userID int64, active bool) error
}

type InterestRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]string, error)
	ReplaceAll(ctx context.Context, userID int64, labels []string) error
}

type ReminderRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*entities.ReminderSetting, error)
	Upsert(ctx context.Context, setting *entities.ReminderSetting) error
	GetDue(ctx context.Context, now time.Time) ([]*entities.DueReminder, error)
	UpdateAfterFire(ctx context.Context, userID int64, firedAt, nextDueAt time.Time) error
	SetEnabled(ctx context.Context, userID int64, enabled bool) error
}

type ProgressRepository interface {
	Insert(ctx context.Context, entry *entities.StudyProgressEntry) error
	GetStats(ctx context.Context, userID int64) (*entities.ProgressStats, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]*entities.StudyProgressEntry, error)
}

// DialogRegistry is the scheduler's view of the dialog state registry.
type DialogRegistry interface {
	Begin(userID int64, kind dialog.Kind) (dialog.State, error)
	Cancel(userID int64)
	Active(userID int64) (dialog.State, bool)
}

// Notifier delivers reminder prompts to users. Implemented by the
// telegram delivery layer.
type Notifier interface {
	SendReminderPrompt(chatID int64) error
}
