package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"estatescout/internal/ids"
	"estatescout/internal/models"
	"estatescout/internal/queue"
	"estatescout/internal/repository"
	"estatescout/internal/security"
)

type UserService struct {
	users      repository.UserStore
	properties repository.PropertyStore
	tasks      TaskQueue
	log        zerolog.Logger
}

func NewUserService(users repository.UserStore, properties repository.PropertyStore, tasks TaskQueue, log zerolog.Logger) *UserService {
	return &UserService{
		users:      users,
		properties: properties,
		tasks:      tasks,
		log:        log,
	}
}

// Profile is a user together with the listings they own.
type Profile struct {
	User       models.User
	Properties []models.Property
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	if !ids.Valid(id) {
		return models.User{}, repository.ErrUserNotFound
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) Profile(ctx context.Context, id string) (Profile, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	owned, err := s.properties.ListByOwner(ctx, id)
	if err != nil {
		return Profile{}, fmt.Errorf("list owned properties: %w", err)
	}
	return Profile{User: user, Properties: owned}, nil
}

func (s *UserService) Update(ctx context.Context, actor security.Identity, id string, update models.ProfileUpdate) (models.User, error) {
	if !security.CanMutate(security.SelfOrAdmin(id), actor) {
		return models.User{}, ErrNotAuthorized
	}
	if !ids.Valid(id) {
		return models.User{}, repository.ErrUserNotFound
	}
	user, err := s.users.UpdateProfile(ctx, id, update)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Delete removes the account. Listings it owned are left for the orphan sweep.
func (s *UserService) Delete(ctx context.Context, actor security.Identity, id string) error {
	if !security.CanMutate(security.SelfOrAdmin(id), actor) {
		return ErrNotAuthorized
	}
	if !ids.Valid(id) {
		return repository.ErrUserNotFound
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Str("actor_id", actor.UserID).Msg("user deleted")
	if s.tasks != nil {
		task := queue.Task{Type: queue.TaskSweep, Reason: "user deleted"}
		if err := s.tasks.Enqueue(ctx, task); err != nil {
			s.log.Warn().Err(err).Str("user_id", id).Msg("enqueue sweep failed")
		}
	}
	return nil
}
