package service

import (
	"context"
	"errors"
	"testing"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
)

func TestUpsertFromGoogle(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), testLogger())
	ctx := context.Background()

	first, err := svc.UpsertFromGoogle(ctx, "Ana@Example.com", "Ana", "https://photos/1.png")
	if err != nil {
		t.Fatalf("UpsertFromGoogle() error = %v", err)
	}
	if first.Email != "ana@example.com" {
		t.Errorf("email = %q, want lowercased", first.Email)
	}
	if first.Type != model.UserTypeFounder {
		t.Errorf("default type = %q, want founder", first.Type)
	}

	// Second login with the same email refreshes the profile, keeps the ID.
	second, err := svc.UpsertFromGoogle(ctx, "ana@example.com", "Ana B", "https://photos/2.png")
	if err != nil {
		t.Fatalf("second UpsertFromGoogle() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ID changed on re-login: %q -> %q", first.ID, second.ID)
	}
	if second.Photo != "https://photos/2.png" || second.Name != "Ana B" {
		t.Errorf("profile not refreshed: %+v", second)
	}

	if _, err := svc.UpsertFromGoogle(ctx, "  ", "x", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("empty email error = %v, want validation error", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo, testLogger())
	ctx := context.Background()

	user, err := svc.UpsertFromGoogle(ctx, "ana@example.com", "Ana", "")
	if err != nil {
		t.Fatalf("UpsertFromGoogle() error = %v", err)
	}

	got, err := svc.UpdateProfile(ctx, user.ID, &model.User{
		Type:    model.UserTypeDistributor,
		Twitter: "@ana",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if got.Type != model.UserTypeDistributor || got.Twitter != "@ana" {
		t.Errorf("profile = %+v", got)
	}
	if got.Name != "Ana" {
		t.Errorf("empty name overwrote the stored one: %q", got.Name)
	}

	if _, err := svc.UpdateProfile(ctx, user.ID, &model.User{Type: "admin"}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("unknown type error = %v, want validation error", err)
	}
	if _, err := svc.UpdateProfile(ctx, "ghost", &model.User{}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown user error = %v, want not found", err)
	}
}
