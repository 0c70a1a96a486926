package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
	"github.com/nsokolov/studypulse-bot/internal/infra/postgres/repository"
)

type fakeReminderRepo struct {
	settings map[int64]*entities.ReminderSetting
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{settings: make(map[int64]*entities.ReminderSetting)}
}

func (f *fakeReminderRepo) GetByUserID(_ context.Context, userID int64) (*entities.ReminderSetting, error) {
	s, ok := f.settings[userID]
	if !ok {
		return nil, repository.ErrReminderNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeReminderRepo) Upsert(_ context.Context, setting *entities.ReminderSetting) error {
	cp := *setting
	f.settings[setting.UserID] = &cp
	return nil
}

func (f *fakeReminderRepo) GetDue(_ context.Context, now time.Time) ([]*entities.DueReminder, error) {
	var due []*entities.DueReminder
	for _, s := range f.settings {
		if s.IsDue(now) {
			due = append(due, &entities.DueReminder{
				UserID:       s.UserID,
				ChatID:       s.UserID,
				IntervalDays: s.IntervalDays,
				NextDueAt:    *s.NextDueAt,
			})
		}
	}
	return due, nil
}

func (f *fakeReminderRepo) UpdateAfterFire(_ context.Context, userID int64, firedAt, nextDueAt time.Time) error {
	s, ok := f.settings[userID]
	if !ok {
		return repository.ErrReminderNotFound
	}
	s.LastFiredAt = &firedAt
	s.NextDueAt = &nextDueAt
	return nil
}

func (f *fakeReminderRepo) SetEnabled(_ context.Context, userID int64, enabled bool) error {
	s, ok := f.settings[userID]
	if !ok {
		return repository.ErrReminderNotFound
	}
	s.IsEnabled = enabled
	return nil
}

func newReminderService(repo ReminderRepository, now time.Time) *ReminderService {
	svc := NewReminderService(repo, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestReminderService_ConfigureRejectsOutOfRange(t *testing.T) {
	repo := newFakeReminderRepo()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := newReminderService(repo, now)
	ctx := context.Background()

	_, err := svc.Configure(ctx, 1, 3)
	require.NoError(t, err)
	before := *repo.settings[1]

	for _, days := range []int{0, -1, 8, 100} {
		_, err := svc.Configure(ctx, 1, days)
		assert.ErrorIs(t, err, ErrIntervalOutOfRange, "interval %d", days)
	}

	// The existing setting is untouched by failed attempts.
	assert.Equal(t, before, *repo.settings[1])
}

func TestReminderService_ConfigureComputesNextDue(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := newReminderService(newFakeReminderRepo(), now)
	ctx := context.Background()

	for days := entities.MinIntervalDays; days <= entities.MaxIntervalDays; days++ {
		setting, err := svc.Configure(ctx, int64(days), days)
		require.NoError(t, err)
		require.NotNil(t, setting.NextDueAt)
		assert.True(t, setting.IsEnabled)
		assert.Equal(t, now.Add(time.Duration(days)*24*time.Hour), *setting.NextDueAt)
	}
}

func TestReminderService_ReconfigureRecomputesFromNow(t *testing.T) {
	repo := newFakeReminderRepo()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := newReminderService(repo, now)
	ctx := context.Background()

	_, err := svc.Configure(ctx, 1, 2)
	require.NoError(t, err)

	// A reminder fired in the past must not influence the recompute.
	fired := now.Add(-36 * time.Hour)
	repo.settings[1].LastFiredAt = &fired
	repo.settings[1].IsEnabled = false

	setting, err := svc.Configure(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, setting.IsEnabled, "configure force-enables")
	assert.Equal(t, now.Add(5*24*time.Hour), *setting.NextDueAt)
}

func TestReminderService_RecordFired(t *testing.T) {
	repo := newFakeReminderRepo()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := newReminderService(repo, now)
	ctx := context.Background()

	// No setting: silent skip.
	ok, err := svc.RecordFired(ctx, 1, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Configure(ctx, 1, 1)
	require.NoError(t, err)

	next := now.Add(24 * time.Hour)
	ok, err = svc.RecordFired(ctx, 1, next)
	require.NoError(t, err)
	assert.True(t, ok)

	stored := repo.settings[1]
	require.NotNil(t, stored.LastFiredAt)
	assert.Equal(t, now, *stored.LastFiredAt)
	assert.Equal(t, next, *stored.NextDueAt)
}

func TestReminderService_GetAbsent(t *testing.T) {
	svc := newReminderService(newFakeReminderRepo(), time.Now())

	setting, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestReminderService_DisableMissingSettingIsNoop(t *testing.T) {
	svc := newReminderService(newFakeReminderRepo(), time.Now())

	assert.NoError(t, svc.Disable(context.Background(), 42))
}
