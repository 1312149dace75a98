package service

import (
	"context"
	"log/slog"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// DealNotifier is told about deal activity after it is committed. The
// webhook dispatcher implements it; notification failures never fail the
// deal itself.
type DealNotifier interface {
	DealCreated(ctx context.Context, deal *model.Deal)
}

// DealService handles deal creation and status changes. A deal is a
// distributor accepting a founder's active offer.
type DealService struct {
	repo     repository.DealRepository
	offers   repository.OfferRepository
	users    repository.UserRepository
	notifier DealNotifier
	logger   *slog.Logger
}

func NewDealService(repo repository.DealRepository, offers repository.OfferRepository, users repository.UserRepository, notifier DealNotifier, logger *slog.Logger) *DealService {
	return &DealService{repo: repo, offers: offers, users: users, notifier: notifier, logger: logger}
}

// Create accepts offerID on behalf of the distributor userID. The offer
// must be active and cannot be accepted by its own owner. The repository
// increments the offer's deal_counts in the same transaction as the insert.
func (s *DealService) Create(ctx context.Context, userID, offerID string) (*model.Deal, error) {
	if offerID == "" {
		return nil, apperror.ValidationFailed("offerId", "offer id is required")
	}

	offer, err := s.offers.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.Active {
		return nil, apperror.ValidationFailed("offerId", "offer is no longer active")
	}
	if offer.UserID == userID {
		return nil, apperror.Forbidden("cannot accept your own offer")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Type != model.UserTypeDistributor {
		return nil, apperror.Forbidden("only distributors can accept offers")
	}

	deal := &model.Deal{
		OfferID:  offer.ID,
		FromUser: offer.UserID,
		ToUser:   userID,
		Status:   true,
	}
	if err := s.repo.CreateDeal(ctx, deal); err != nil {
		return nil, err
	}

	s.logger.Info("deal created", "dealID", deal.ID, "offerID", offer.ID, "distributor", userID)
	if s.notifier != nil {
		s.notifier.DealCreated(ctx, deal)
	}
	return deal, nil
}

func (s *DealService) Get(ctx context.Context, id string) (*model.Deal, error) {
	return s.repo.GetDealByID(ctx, id)
}

// ListByUser returns deals where the user is on either side.
func (s *DealService) ListByUser(ctx context.Context, userID string) ([]model.Deal, error) {
	return s.repo.ListDealsByUser(ctx, userID)
}

// SetStatus switches a deal on or off. Either party may do it.
func (s *DealService) SetStatus(ctx context.Context, userID, id string, status bool) (*model.Deal, error) {
	deal, err := s.repo.GetDealByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.FromUser != userID && deal.ToUser != userID {
		return nil, apperror.Forbidden("only a deal participant can change its status")
	}
	if err := s.repo.SetDealStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetDealByID(ctx, id)
}
