package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
)

type fakeProgressRepo struct {
	entries []*entities.StudyProgressEntry
	nextID  int64
}

func (f *fakeProgressRepo) Insert(_ context.Context, entry *entities.StudyProgressEntry) error {
	f.nextID++
	entry.ID = f.nextID
	cp := *entry
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeProgressRepo) GetStats(_ context.Context, userID int64) (*entities.ProgressStats, error) {
	stats := &entities.ProgressStats{}
	for _, e := range f.entries {
		if e.UserID == userID {
			stats.TotalEntries++
			stats.TotalMinutes += e.DurationMinutes
		}
	}
	return stats, nil
}

func (f *fakeProgressRepo) ListRecent(_ context.Context, userID int64, limit int) ([]*entities.StudyProgressEntry, error) {
	var out []*entities.StudyProgressEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].UserID == userID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func newProgressService(repo ProgressRepository) *ProgressService {
	return NewProgressService(repo, zap.NewNop())
}

func TestProgressService_ValidateTopic(t *testing.T) {
	svc := newProgressService(&fakeProgressRepo{})

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "алгебра", want: "алгебра"},
		{name: "trimmed", input: "  линейная алгебра  ", want: "линейная алгебра"},
		{name: "empty", input: "", wantErr: ErrTopicEmpty},
		{name: "whitespace only", input: "   \t ", wantErr: ErrTopicEmpty},
		{name: "max length", input: strings.Repeat("я", entities.MaxTopicLength), want: strings.Repeat("я", entities.MaxTopicLength)},
		{name: "too long", input: strings.Repeat("я", entities.MaxTopicLength+1), wantErr: ErrTopicTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ValidateTopic(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgressService_RecordValidatesDuration(t *testing.T) {
	repo := &fakeProgressRepo{}
	svc := newProgressService(repo)
	ctx := context.Background()

	for _, minutes := range []int{0, -5, entities.MaxDurationMinutes + 1} {
		_, _, err := svc.Record(ctx, 1, "алгебра", minutes)
		assert.ErrorIs(t, err, ErrDurationOutOfRange, "minutes %d", minutes)
	}
	assert.Empty(t, repo.entries, "rejected input must not be recorded")
}

func TestProgressService_RecordAggregatesStats(t *testing.T) {
	repo := &fakeProgressRepo{}
	svc := newProgressService(repo)
	svc.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, _, err := svc.Record(ctx, 1, "алгебра", 30)
	require.NoError(t, err)

	entry, stats, err := svc.Record(ctx, 1, "  физика ", 45)
	require.NoError(t, err)
	assert.Equal(t, "физика", entry.Topic)
	assert.Equal(t, 45, entry.DurationMinutes)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 75, stats.TotalMinutes)

	// Another user's stats stay separate.
	_, stats, err = svc.Record(ctx, 2, "история", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 10, stats.TotalMinutes)
}

func TestProgressService_RecentNewestFirst(t *testing.T) {
	repo := &fakeProgressRepo{}
	svc := newProgressService(repo)
	ctx := context.Background()

	for _, topic := range []string{"a", "b", "c"} {
		_, _, err := svc.Record(ctx, 1, topic, 10)
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Topic)
	assert.Equal(t, "b", recent[1].Topic)
}

func TestProgressService_MotivationFromFixedSet(t *testing.T) {
	svc := newProgressService(&fakeProgressRepo{})

	// Selection is random; only membership matters.
	for i := 0; i < 20; i++ {
		assert.Contains(t, Motivations, svc.Motivation())
	}
}
