package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// UserService handles account upserts from the OAuth callback and profile
// edits from the dashboard.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// UpsertFromGoogle records a Google login: new emails get a fresh account
// (default type founder), known emails get their name and photo refreshed.
func (s *UserService) UpsertFromGoogle(ctx context.Context, email, name, photo string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	user := &model.User{
		Email: email,
		Name:  strings.TrimSpace(name),
		Photo: photo,
	}
	if err := s.repo.UpsertUserByEmail(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", "userID", user.ID, "email", email)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateProfile edits the caller's own profile. Email is immutable; type
// must stay within the known set.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update *model.User) (*model.User, error) {
	existing, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch update.Type {
	case "", model.UserTypeFounder, model.UserTypeDistributor, model.UserTypeDeveloper:
	default:
		return nil, apperror.ValidationFailed("type", "unknown user type")
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		existing.Name = name
	}
	if update.Photo != "" {
		existing.Photo = update.Photo
	}
	if update.Type != "" {
		existing.Type = update.Type
	}
	existing.Twitter = update.Twitter
	existing.LinkedIn = update.LinkedIn

	if err := s.repo.UpdateUser(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
