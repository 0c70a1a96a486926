package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nsokolov/studypulse-bot/internal/dialog"
	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
)

// sender is the slice of the Telegram bot API the handler uses.
// *tgbotapi.BotAPI satisfies it; tests substitute a recorder.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64, username, firstName, lastName string) error
	Get(ctx context.Context, userID int64) (*entities.User, error)
}

type InterestService interface {
	Catalog() []string
	List(ctx context.Context, userID int64) ([]string, error)
	Save(ctx context.Context, userID int64, indices []int) ([]string, error)
}

type ReminderService interface {
	Get(ctx context.Context, userID int64) (*entities.ReminderSetting, error)
	Configure(ctx context.Context, userID int64, intervalDays int) (*entities.ReminderSetting, error)
	Disable(ctx context.Context, userID int64) error
	RecordFired(ctx context.Context, userID int64, nextDueAt time.Time) (bool, error)
}

type ProgressService interface {
	Record(ctx context.Context, userID int64, topic string, minutes int) (*entities.StudyProgressEntry, *entities.ProgressStats, error)
	ValidateTopic(raw string) (string, error)
	Stats(ctx context.Context, userID int64) (*entities.ProgressStats, error)
	Recent(ctx context.Context, userID int64, limit int) ([]*entities.StudyProgressEntry, error)
	Motivation() string
}

// DialogRegistry is the handler's view of the dialog state registry.
type DialogRegistry interface {
	Register(kind dialog.Kind, h dialog.Handler)
	Begin(userID int64, kind dialog.Kind) (dialog.State, error)
	Dispatch(ctx context.Context, userID int64, input string) error
	Cancel(userID int64)
	Active(userID int64) (dialog.State, bool)
}
