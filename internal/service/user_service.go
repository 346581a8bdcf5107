package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/models"
	"github.com/noteduco342/relay-backend/internal/repository"
	"github.com/noteduco342/relay-backend/internal/validation"
)

type UserService struct {
	store    *repository.Store
	runner   *StoreRunner
	presence Presence
	now      func() time.Time
}

func NewUserService(store *repository.Store, runner *StoreRunner, presence Presence) *UserService {
	return &UserService{store: store, runner: runner, presence: presence, now: utcNow}
}

type RegisterInput struct {
	Username  string `json:"username"`
	PublicKey string `json:"public_key"`
}

// IsUsernameAvailable reports whether nobody has claimed username yet.
func (s *UserService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = validation.NormalizeUsername(username)
	if err := validation.ValidateUsername(username); err != nil {
		return false, err
	}

	err := s.runner.Run(ctx, "users.FindByUsername", func(ctx context.Context) error {
		_, err := s.store.Users.FindByUsername(ctx, username)
		return err
	})
	if repository.IsNotFound(err) {
		return true, nil
	}
	return false, err
}

// Register creates a user identified by the public key the client holds.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := validation.NormalizeUsername(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePublicKey(in.PublicKey); err != nil {
		return nil, err
	}

	available, err := s.IsUsernameAvailable(ctx, username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperrors.ErrUsernameTaken
	}

	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		PublicKey: in.PublicKey,
		CreatedAt: s.now(),
	}
	err = s.runner.Run(ctx, "users.Create", func(ctx context.Context) error {
		return s.store.Users.Create(ctx, user)
	})
	if repository.IsDuplicate(err) {
		return nil, apperrors.ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user *models.User
	err := s.runner.Run(ctx, "users.FindByID", func(ctx context.Context) error {
		var err error
		user, err = s.store.Users.FindByID(ctx, userID)
		return err
	})
	if repository.IsNotFound(err) {
		return nil, apperrors.ErrUserNotFound
	}
	return user, err
}

// GetResponse is Get plus the user's current presence.
func (s *UserService) GetResponse(ctx context.Context, userID uuid.UUID) (*models.UserResponse, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse(s.presence.IsOnline(ctx, userID))
	return &resp, nil
}
