package service

import (
	"context"
	"errors"
	"testing"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
)

func newTestOfferService(t *testing.T) (*OfferService, *model.Idea) {
	t.Helper()
	ctx := context.Background()

	ideas := newMockIdeaRepo()
	idea := validIdea()
	idea.UserID = "founder"
	if err := ideas.Create(ctx, idea); err != nil {
		t.Fatalf("seeding idea: %v", err)
	}
	return NewOfferService(newMockOfferRepo(), ideas, testLogger()), idea
}

func TestOfferCreate(t *testing.T) {
	svc, idea := newTestOfferService(t)
	ctx := context.Background()

	t.Run("idea owner creates", func(t *testing.T) {
		offer, err := svc.Create(ctx, "founder", &model.Offer{
			IdeaID: idea.ID, Commission: 12.5, Active: true, PaymentLink: "https://pay.example.com/x",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if offer.ID == "" || offer.UserID != "founder" {
			t.Errorf("offer = %+v", offer)
		}
		if offer.DealCounts != 0 {
			t.Errorf("DealCounts = %d, want 0", offer.DealCounts)
		}
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, "stranger", &model.Offer{IdeaID: idea.ID, Commission: 5})
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("error = %v, want forbidden", err)
		}
	})

	t.Run("commission bounds", func(t *testing.T) {
		for _, commission := range []float64{-1, 101} {
			_, err := svc.Create(ctx, "founder", &model.Offer{IdeaID: idea.ID, Commission: commission})
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("commission %v: error = %v, want validation error", commission, err)
			}
		}
	})

	t.Run("unknown idea", func(t *testing.T) {
		_, err := svc.Create(ctx, "founder", &model.Offer{IdeaID: "nope", Commission: 5})
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("error = %v, want not found", err)
		}
	})
}

func TestOfferUpdate(t *testing.T) {
	svc, idea := newTestOfferService(t)
	ctx := context.Background()

	offer, err := svc.Create(ctx, "founder", &model.Offer{IdeaID: idea.ID, Commission: 10, Active: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	offer.Commission = 20
	offer.PromotionCode = "LAUNCH20"
	if _, err := svc.Update(ctx, "stranger", offer); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() by non-owner error = %v, want forbidden", err)
	}

	got, err := svc.Update(ctx, "founder", offer)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Commission != 20 || got.PromotionCode != "LAUNCH20" {
		t.Errorf("updated offer = %+v", got)
	}
}

func TestOfferDelete(t *testing.T) {
	svc, idea := newTestOfferService(t)
	ctx := context.Background()

	offer, err := svc.Create(ctx, "founder", &model.Offer{IdeaID: idea.ID, Commission: 10})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, "stranger", offer.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by non-owner error = %v, want forbidden", err)
	}
	if err := svc.Delete(ctx, "founder", offer.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, offer.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}
}
