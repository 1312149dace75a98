// Package service contains the business logic layer: validation, ownership
// rules and orchestration between repositories and the AI client. Handlers
// parse HTTP and translate the domain errors this package returns.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
	DefaultListLimit     = 50
	MaxListLimit         = 200
)

// IdeaService handles business logic for ideas.
type IdeaService struct {
	repo   repository.IdeaRepository
	index  repository.VectorIndex
	logger *slog.Logger
}

func NewIdeaService(repo repository.IdeaRepository, index repository.VectorIndex, logger *slog.Logger) *IdeaService {
	return &IdeaService{repo: repo, index: index, logger: logger}
}

// Create validates and saves a new idea owned by userID. Vote counters and
// the embedded flag always start at zero regardless of what the caller sent.
func (s *IdeaService) Create(ctx context.Context, userID string, idea *model.Idea) (*model.Idea, error) {
	idea.Title = strings.TrimSpace(idea.Title)
	idea.Description = strings.TrimSpace(idea.Description)

	if idea.Title == "" {
		return nil, apperror.ValidationFailed("title", "idea title is required")
	}
	if len(idea.Title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title", "idea title is too long")
	}
	if idea.Description == "" {
		return nil, apperror.ValidationFailed("description", "idea description is required")
	}
	if len(idea.Description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description", "idea description is too long")
	}
	if idea.Address.Country == "" {
		return nil, apperror.ValidationFailed("addressDetail.country", "country is required")
	}

	idea.UserID = userID
	idea.Upvotes = 0
	idea.Downvotes = 0
	idea.Verified = false
	idea.Embedded = false

	if err := s.repo.Create(ctx, idea); err != nil {
		return nil, err
	}

	s.logger.Info("idea created", "ideaID", idea.ID, "userID", userID)
	return idea, nil
}

func (s *IdeaService) Get(ctx context.Context, id string) (*model.Idea, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "idea id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns ideas ordered by upvotes descending.
func (s *IdeaService) List(ctx context.Context, limit, offset int) ([]model.Idea, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
}

func (s *IdeaService) ListByUser(ctx context.Context, userID string) ([]model.Idea, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies caller-editable fields to an existing idea. Only the owner
// may update; counters and verification state are untouchable here.
func (s *IdeaService) Update(ctx context.Context, userID string, idea *model.Idea) (*model.Idea, error) {
	existing, err := s.repo.GetByID(ctx, idea.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperror.Forbidden("only the idea owner can update it")
	}

	idea.Title = strings.TrimSpace(idea.Title)
	idea.Description = strings.TrimSpace(idea.Description)
	if idea.Title == "" {
		return nil, apperror.ValidationFailed("title", "idea title is required")
	}
	if len(idea.Title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title", "idea title is too long")
	}
	if idea.Description == "" {
		return nil, apperror.ValidationFailed("description", "idea description is required")
	}

	idea.UserID = existing.UserID
	idea.AddressID = existing.AddressID
	idea.Address.ID = existing.Address.ID

	if err := s.repo.Update(ctx, idea); err != nil {
		return nil, err
	}

	// The content changed, so the stored embedding may be stale. Mark it
	// for the next reindex pass rather than calling the AI provider inline.
	if existing.Embedded && (existing.Title != idea.Title || existing.Description != idea.Description || existing.Industry != idea.Industry) {
		if err := s.index.DeleteEmbedding(ctx, idea.ID); err != nil {
			s.logger.Warn("could not invalidate stale embedding", "ideaID", idea.ID, "error", err)
		}
	}

	return s.repo.GetByID(ctx, idea.ID)
}

// Delete removes an idea and its embedding. Owner only.
func (s *IdeaService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return apperror.Forbidden("only the idea owner can delete it")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("idea deleted", "ideaID", id, "userID", userID)
	return nil
}

// Vote adjusts one counter atomically and returns the updated idea, so the
// client renders the authoritative count instead of an optimistic guess.
func (s *IdeaService) Vote(ctx context.Context, id string, kind repository.VoteKind) (*model.Idea, error) {
	if kind != repository.VoteUp && kind != repository.VoteDown {
		return nil, apperror.ValidationFailed("kind", "vote must be up or down")
	}
	return s.repo.Vote(ctx, id, kind)
}

// AttachMedia appends media URLs to an idea's carousel. Owner only.
func (s *IdeaService) AttachMedia(ctx context.Context, userID, id string, urls []string) (*model.Idea, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperror.Forbidden("only the idea owner can attach media")
	}
	if len(urls) == 0 {
		return nil, apperror.ValidationFailed("media", "at least one media URL is required")
	}

	existing.Media = append(existing.Media, urls...)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
