package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
)

// Motivations is the fixed set of messages appended to a recorded study
// session. Which one is picked carries no meaning.
var Motivations = []string{
	"Отличная работа! Продолжайте в том же духе 💪",
	"Ещё один шаг к цели. Так держать!",
	"Регулярность решает. Вы молодец!",
	"Каждая минута занятий приближает вас к результату 🚀",
	"Прекрасно! Завтра будет ещё легче.",
}

type ProgressService struct {
	repo   ProgressRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewProgressService(repo ProgressRepository, logger *zap.Logger) *ProgressService {
	return &ProgressService{repo: repo, now: time.Now, logger: logger}
}

// ValidateTopic trims the raw input and checks the length bounds.
func (s *ProgressService) ValidateTopic(raw string) (string, error) {
	topic := strings.TrimSpace(raw)
	if topic == "" {
		return "", ErrTopicEmpty
	}
	if len([]rune(topic)) > entities.MaxTopicLength {
		return "", ErrTopicTooLong
	}
	return topic, nil
}

// Record appends a study session entry and returns it together with the
// user's updated aggregate stats. The duration must lie in
// [1, MaxDurationMinutes].
func (s *ProgressService) Record(ctx context.Context, userID int64, topic string, minutes int) (*entities.StudyProgressEntry, *entities.ProgressStats, error) {
	cleaned, err := s.ValidateTopic(topic)
	if err != nil {
		return nil, nil, err
	}
	if minutes <= 0 || minutes > entities.MaxDurationMinutes {
		return nil, nil, ErrDurationOutOfRange
	}

	entry := &entities.StudyProgressEntry{
		UserID:          userID,
		Topic:           cleaned,
		DurationMinutes: minutes,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, nil, err
	}

	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("study session recorded",
		zap.Int64("user_id", userID),
		zap.String("topic", cleaned),
		zap.Int("minutes", minutes),
	)

	return entry, stats, nil
}

// Stats returns the aggregate over all entries of a user.
func (s *ProgressService) Stats(ctx context.Context, userID int64) (*entities.ProgressStats, error) {
	return s.repo.GetStats(ctx, userID)
}

// Recent returns up to limit most recent entries, newest first.
func (s *ProgressService) Recent(ctx context.Context, userID int64, limit int) ([]*entities.StudyProgressEntry, error) {
	return s.repo.ListRecent(ctx, userID, limit)
}

// Motivation picks one of the fixed motivational messages.
func (s *ProgressService) Motivation() string {
	return Motivations[rand.Intn(len(Motivations))]
}
