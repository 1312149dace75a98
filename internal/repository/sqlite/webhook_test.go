package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
)

func TestWebhookCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	hook := &model.Webhook{
		UserID:     owner.ID,
		URL:        "https://partner.example.com/hooks",
		SecretHash: "$2a$12$fakehash",
		Active:     true,
	}
	if err := db.CreateWebhook(ctx, hook); err != nil {
		t.Fatalf("CreateWebhook() error = %v", err)
	}
	if hook.ID == "" {
		t.Fatal("create did not assign an ID")
	}

	got, err := db.GetWebhookByID(ctx, hook.ID)
	if err != nil {
		t.Fatalf("GetWebhookByID() error = %v", err)
	}
	if got.URL != hook.URL || got.SecretHash != hook.SecretHash || !got.Active {
		t.Errorf("webhook = %+v", got)
	}
}

func TestWebhookSetActive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	hook := &model.Webhook{UserID: owner.ID, URL: "https://partner.example.com/hooks", Active: true}
	if err := db.CreateWebhook(ctx, hook); err != nil {
		t.Fatalf("CreateWebhook() error = %v", err)
	}

	if err := db.SetWebhookActive(ctx, hook.ID, false); err != nil {
		t.Fatalf("SetWebhookActive() error = %v", err)
	}
	got, err := db.GetWebhookByID(ctx, hook.ID)
	if err != nil {
		t.Fatalf("GetWebhookByID() error = %v", err)
	}
	if got.Active {
		t.Error("Active = true, want false")
	}

	if err := db.SetWebhookActive(ctx, "ghost", true); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetWebhookActive(ghost) error = %v, want not found", err)
	}
}

func TestWebhookListByUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := createTestUser(t, db, "a@example.com")
	b := createTestUser(t, db, "b@example.com")
	for _, userID := range []string{a.ID, a.ID, b.ID} {
		hook := &model.Webhook{UserID: userID, URL: "https://partner.example.com/hooks", Active: true}
		if err := db.CreateWebhook(ctx, hook); err != nil {
			t.Fatalf("CreateWebhook() error = %v", err)
		}
	}

	hooks, err := db.ListWebhooksByUser(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListWebhooksByUser() error = %v", err)
	}
	if len(hooks) != 2 {
		t.Errorf("len = %d, want 2", len(hooks))
	}
}

func TestWebhookDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	hook := &model.Webhook{UserID: owner.ID, URL: "https://partner.example.com/hooks"}
	if err := db.CreateWebhook(ctx, hook); err != nil {
		t.Fatalf("CreateWebhook() error = %v", err)
	}

	if err := db.DeleteWebhook(ctx, hook.ID); err != nil {
		t.Fatalf("DeleteWebhook() error = %v", err)
	}
	if err := db.DeleteWebhook(ctx, hook.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteWebhook() error = %v, want not found", err)
	}
}
