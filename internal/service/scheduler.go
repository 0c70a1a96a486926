package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/dialog"
)

const (
	// scanPeriod is how often the due scan runs.
	scanPeriod = time.Hour
	// startupDelay postpones the very first scan after process start.
	startupDelay = time.Minute
)

// Scheduler is the recurring background task that scans for due reminders
// and opens a progress-capture dialog for each due user. It never advances
// next_due itself; only a completed capture does, via RecordFired. A crash
// between prompt and completion therefore makes the reminder fire again on
// a later scan (at-least-once).
type Scheduler struct {
	reminders ReminderRepository
	registry  DialogRegistry
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time

	cron *cron.Cron
	job  cron.Job
}

func NewScheduler(reminders ReminderRepository, registry DialogRegistry, notifier Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		registry:  registry,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs the due scan every scanPeriod, with one extra scan shortly
// after startup. Overlapping runs are skipped, never run concurrently, so
// a slow tick cannot double-fire the same due reminder. Blocks until the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("reminder scheduler started")
	defer s.logger.Info("reminder scheduler stopped")

	s.cron = cron.New(cron.WithLocation(time.UTC))

	// A single chained job shared by the cron entry and the startup timer,
	// so the skip-if-running guard covers both.
	s.job = cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).
		Then(cron.FuncJob(func() { s.tick(ctx) }))

	s.cron.Schedule(cron.Every(scanPeriod), s.job)
	s.cron.Start()

	startup := time.AfterFunc(startupDelay, s.job.Run)
	defer startup.Stop()

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
}

// tick runs one due scan. A failure for one user is logged and never
// prevents processing of the remaining due users; a failure of the scan
// itself is logged and retried on the next wake.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()

	due, err := s.reminders.GetDue(ctx, now)
	if err != nil {
		s.logger.Error("due reminder scan failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	s.logger.Info("due reminders found", zap.Int("count", len(due)))

	for _, d := range due {
		if err := s.fire(d.UserID, d.ChatID); err != nil {
			s.logger.Error("failed to fire reminder",
				zap.Int64("user_id", d.UserID),
				zap.Error(err),
			)
		}
	}
}

// fire opens a progress-capture dialog for one due user and delivers the
// prompt. A user already mid-dialog is skipped; the reminder stays due and
// is retried on the next scan.
func (s *Scheduler) fire(userID, chatID int64) error {
	if _, active := s.registry.Active(userID); active {
		s.logger.Debug("user mid-dialog, reminder deferred",
			zap.Int64("user_id", userID),
		)
		return nil
	}

	if _, err := s.registry.Begin(userID, dialog.KindProgressTopic); err != nil {
		// Lost the race with an inbound message; next scan retries.
		return nil
	}

	if err := s.notifier.SendReminderPrompt(chatID); err != nil {
		// Without a prompt the dialog would wedge the user until they
		// write something, so drop it and let the next scan retry.
		s.registry.Cancel(userID)
		return err
	}

	return nil
}
