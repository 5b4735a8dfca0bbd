package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	users    domain.UserRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(users domain.UserRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, eventBus: eventBus, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return requireUser(ctx, s.users, id)
}

// CreateUser persists user, failing with Conflict if the email is taken.
func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.ensureEmailFree(ctx, user.Email); err != nil {
		return err
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return mapDuplicate(err, user.Email)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	publish(s.eventBus, s.logger, events.EventUserCreated, events.UserEventPayload{UserID: user.ID})
	return nil
}

// UpdateUser merges patch into the stored user. Uniqueness is only checked
// when the email actually changes.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := requireUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}

	if email, ok := patch.NewEmail(); ok && email != user.Email {
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
	}

	patch.Apply(user)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("user with id %d not found", id)
		}
		return nil, mapDuplicate(err, user.Email)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user updated")
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	err := s.users.DeleteUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound("user with id %d not found", id)
	}
	if err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.Conflict("user with email %s already exists", email)
	case errors.Is(err, database.ErrNotFound):
		return nil
	default:
		return err
	}
}

func mapDuplicate(err error, email string) error {
	if errors.Is(err, database.ErrDuplicate) {
		return domain.Conflict("user with email %s already exists", email)
	}
	return err
}
