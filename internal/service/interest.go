package service

import (
	"context"

	"go.uber.org/zap"
)

// DefaultCatalog is the fixed, ordered interest catalog users pick from
// by 1-based index.
var DefaultCatalog = []string{
	"Программирование",
	"Математика",
	"Английский язык",
	"Физика",
	"История",
	"Химия",
	"Биология",
	"Экономика",
	"Философия",
	"Дизайн",
}

type InterestService struct {
	repo    InterestRepository
	catalog []string
	logger  *zap.Logger
}

func NewInterestService(repo InterestRepository, catalog []string, logger *zap.Logger) *InterestService {
	return &InterestService{repo: repo, catalog: catalog, logger: logger}
}

// Catalog returns the ordered interest catalog.
func (s *InterestService) Catalog() []string {
	return s.catalog
}

// List returns the user's stored interest labels in storage order.
func (s *InterestService) List(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Save maps 1-based indices against the catalog and replaces the user's
// stored set with exactly the selected labels. Every index outside
// [1, len(catalog)] is collected into an InvalidIndexError and nothing is
// persisted. Duplicate indices collapse to one label.
func (s *InterestService) Save(ctx context.Context, userID int64, indices []int) ([]string, error) {
	if len(indices) == 0 {
		return nil, ErrNoIndices
	}

	var bad []int
	seen := make(map[int]struct{}, len(indices))
	labels := make([]string, 0, len(indices))

	for _, idx := range indices {
		if idx < 1 || idx > len(s.catalog) {
			bad = append(bad, idx)
			continue
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		labels = append(labels, s.catalog[idx-1])
	}

	if len(bad) > 0 {
		return nil, &InvalidIndexError{Indices: bad}
	}

	if err := s.repo.ReplaceAll(ctx, userID, labels); err != nil {
		return nil, err
	}

	s.logger.Info("interests saved",
		zap.Int64("user_id", userID),
		zap.Int("count", len(labels)),
	)

	return labels, nil
}
