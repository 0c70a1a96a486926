package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInterestRepo struct {
	byUser   map[int64][]string
	replaces int
	failNext error
}

func newFakeInterestRepo() *fakeInterestRepo {
	return &fakeInterestRepo{byUser: make(map[int64][]string)}
}

func (f *fakeInterestRepo) ListByUserID(_ context.Context, userID int64) ([]string, error) {
	return f.byUser[userID], nil
}

func (f *fakeInterestRepo) ReplaceAll(_ context.Context, userID int64, labels []string) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.replaces++
	f.byUser[userID] = append([]string(nil), labels...)
	return nil
}

func newInterestService(repo InterestRepository) *InterestService {
	catalog := []string{"Math", "Physics", "History", "Chemistry", "Biology"}
	return NewInterestService(repo, catalog, zap.NewNop())
}

func TestInterestService_SaveReplacesNotMerges(t *testing.T) {
	repo := newFakeInterestRepo()
	svc := newInterestService(repo)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, []int{1, 2, 3})
	require.NoError(t, err)

	// Overlapping selection fully replaces the previous set.
	labels, err := svc.Save(ctx, 1, []int{2, 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics", "Chemistry"}, labels)

	stored, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics", "Chemistry"}, stored)
}

func TestInterestService_SaveRejectsInvalidIndices(t *testing.T) {
	repo := newFakeInterestRepo()
	svc := newInterestService(repo)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, []int{1, 3})
	require.NoError(t, err)

	// Every offending index is reported; nothing is persisted.
	_, err = svc.Save(ctx, 1, []int{1, 3, 99, 0})
	var invalid *InvalidIndexError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []int{99, 0}, invalid.Indices)

	stored, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "History"}, stored, "failed save must not touch the stored set")
	assert.Equal(t, 1, repo.replaces)
}

func TestInterestService_SaveDeduplicatesIndices(t *testing.T) {
	svc := newInterestService(newFakeInterestRepo())

	labels, err := svc.Save(context.Background(), 1, []int{2, 2, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics", "Math"}, labels)
}

func TestInterestService_SaveRequiresIndices(t *testing.T) {
	svc := newInterestService(newFakeInterestRepo())

	_, err := svc.Save(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrNoIndices)
}

func TestInterestService_SavePropagatesStoreError(t *testing.T) {
	repo := newFakeInterestRepo()
	repo.failNext = errors.New("connection reset")
	svc := newInterestService(repo)

	_, err := svc.Save(context.Background(), 1, []int{1})
	assert.Error(t, err)
}
