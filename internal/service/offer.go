package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// OfferService handles business logic for offers. Offers belong to the
// idea's owner: nobody else can create or edit an offer on an idea.
type OfferService struct {
	repo   repository.OfferRepository
	ideas  repository.IdeaRepository
	logger *slog.Logger
}

func NewOfferService(repo repository.OfferRepository, ideas repository.IdeaRepository, logger *slog.Logger) *OfferService {
	return &OfferService{repo: repo, ideas: ideas, logger: logger}
}

func (s *OfferService) Create(ctx context.Context, userID string, offer *model.Offer) (*model.Offer, error) {
	offer.Description = strings.TrimSpace(offer.Description)
	if offer.IdeaID == "" {
		return nil, apperror.ValidationFailed("ideaId", "offer must reference an idea")
	}
	if offer.Commission < 0 || offer.Commission > 100 {
		return nil, apperror.ValidationFailed("commission", "commission must be a percentage between 0 and 100")
	}

	idea, err := s.ideas.GetByID(ctx, offer.IdeaID)
	if err != nil {
		return nil, err
	}
	if idea.UserID != userID {
		return nil, apperror.Forbidden("only the idea owner can create an offer on it")
	}

	offer.UserID = userID
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}

	s.logger.Info("offer created", "offerID", offer.ID, "ideaID", offer.IdeaID)
	return offer, nil
}

func (s *OfferService) Get(ctx context.Context, id string) (*model.Offer, error) {
	return s.repo.GetOfferByID(ctx, id)
}

// GetByIdea returns the latest offer attached to an idea.
func (s *OfferService) GetByIdea(ctx context.Context, ideaID string) (*model.Offer, error) {
	return s.repo.GetOfferByIdea(ctx, ideaID)
}

func (s *OfferService) ListByUser(ctx context.Context, userID string) ([]model.Offer, error) {
	return s.repo.ListOffersByUser(ctx, userID)
}

// Update edits an offer's terms. Owner only; deal_counts is never written
// through this path.
func (s *OfferService) Update(ctx context.Context, userID string, offer *model.Offer) (*model.Offer, error) {
	existing, err := s.repo.GetOfferByID(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperror.Forbidden("only the offer owner can update it")
	}
	if offer.Commission < 0 || offer.Commission > 100 {
		return nil, apperror.ValidationFailed("commission", "commission must be a percentage between 0 and 100")
	}

	offer.IdeaID = existing.IdeaID
	offer.UserID = existing.UserID

	if err := s.repo.UpdateOffer(ctx, offer); err != nil {
		return nil, err
	}
	return s.repo.GetOfferByID(ctx, offer.ID)
}

func (s *OfferService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.repo.GetOfferByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return apperror.Forbidden("only the offer owner can delete it")
	}
	return s.repo.DeleteOffer(ctx, id)
}
