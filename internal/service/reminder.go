package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
	"github.com/nsokolov/studypulse-bot/internal/infra/postgres/repository"
)

type ReminderService struct {
	repo   ReminderRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewReminderService(repo ReminderRepository, logger *zap.Logger) *ReminderService {
	return &ReminderService{repo: repo, now: time.Now, logger: logger}
}

// Get retrieves the user's reminder setting, or nil when none exists.
func (s *ReminderService) Get(ctx context.Context, userID int64) (*entities.ReminderSetting, error) {
	setting, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrReminderNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return setting, nil
}

// Configure creates or overwrites the reminder setting. The interval must
// lie in [MinIntervalDays, MaxIntervalDays]; next_due is always recomputed
// from now, not from the previous last_fired, and the setting is
// force-enabled.
func (s *ReminderService) Configure(ctx context.Context, userID int64, intervalDays int) (*entities.ReminderSetting, error) {
	if intervalDays < entities.MinIntervalDays || intervalDays > entities.MaxIntervalDays {
		return nil, ErrIntervalOutOfRange
	}

	now := s.now()

	setting, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrReminderNotFound):
		setting = entities.NewReminderSetting(userID, intervalDays, now)
	case err != nil:
		return nil, err
	default:
		setting.IntervalDays = intervalDays
		setting.IsEnabled = true
		next := setting.NextDueFrom(now)
		setting.NextDueAt = &next
		setting.UpdatedAt = now
	}

	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	s.logger.Info("reminder configured",
		zap.Int64("user_id", userID),
		zap.Int("interval_days", intervalDays),
		zap.Timep("next_due_at", setting.NextDueAt),
	)

	return setting, nil
}

// Disable turns reminders off without losing the configured interval.
func (s *ReminderService) Disable(ctx context.Context, userID int64) error {
	err := s.repo.SetEnabled(ctx, userID, false)
	if errors.Is(err, repository.ErrReminderNotFound) {
		return nil
	}
	return err
}

// RecordFired advances the reminder after a completed progress capture:
// last_fired is set to now and next_due to nextDueAt. Returns false when
// the user has no setting; callers treat that as a non-fatal skip.
func (s *ReminderService) RecordFired(ctx context.Context, userID int64, nextDueAt time.Time) (bool, error) {
	err := s.repo.UpdateAfterFire(ctx, userID, s.now(), nextDueAt)
	if err != nil {
		if errors.Is(err, repository.ErrReminderNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
