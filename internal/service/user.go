package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
)

type UserService struct {
	repo   UserRepository
	logger *zap.Logger
}

func NewUserService(repo UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// EnsureUser registers the user on first contact and refreshes the
// profile fields on every later one.
func (s *UserService) EnsureUser(ctx context.Context, userID, chatID int64, username, firstName, lastName string) error {
	user := entities.NewUser(userID, chatID, username, firstName, lastName)

	created, err := s.repo.Save(ctx, user)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("new user registered",
			zap.Int64("user_id", userID),
			zap.String("username", username),
		)
	}

	return nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, userID int64) (*entities.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// SetActive toggles the active flag of a user.
func (s *UserService) SetActive(ctx context.Context, userID int64, active bool) error {
	return s.repo.SetActive(ctx, userID, active)
}
