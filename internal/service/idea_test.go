package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

func newTestIdeaService() (*IdeaService, *mockIdeaRepo, *mockIndex) {
	repo := newMockIdeaRepo()
	index := newMockIndex()
	return NewIdeaService(repo, index, testLogger()), repo, index
}

func validIdea() *model.Idea {
	return &model.Idea{
		Title:       "Solar Grid Analytics",
		Description: "Analytics for rooftop solar output",
		Industry:    "sustainability",
		Address:     model.AddressDetail{Country: "USA", State: "California"},
	}
}

func TestIdeaCreate(t *testing.T) {
	svc, _, _ := newTestIdeaService()
	ctx := context.Background()

	t.Run("valid idea", func(t *testing.T) {
		idea, err := svc.Create(ctx, "user-1", validIdea())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if idea.ID == "" {
			t.Error("created idea has no ID")
		}
		if idea.UserID != "user-1" {
			t.Errorf("UserID = %q, want user-1", idea.UserID)
		}
	})

	t.Run("counters start at zero regardless of input", func(t *testing.T) {
		in := validIdea()
		in.Upvotes = 99
		in.Downvotes = 7
		in.Embedded = true
		idea, err := svc.Create(ctx, "user-1", in)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if idea.Upvotes != 0 || idea.Downvotes != 0 || idea.Embedded {
			t.Errorf("counters not reset: up=%d down=%d embedded=%v", idea.Upvotes, idea.Downvotes, idea.Embedded)
		}
	})

	tests := []struct {
		name   string
		mutate func(*model.Idea)
	}{
		{"empty title", func(i *model.Idea) { i.Title = "   " }},
		{"title too long", func(i *model.Idea) { i.Title = strings.Repeat("x", MaxTitleLength+1) }},
		{"empty description", func(i *model.Idea) { i.Description = "" }},
		{"missing country", func(i *model.Idea) { i.Address.Country = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIdea()
			tt.mutate(in)
			_, err := svc.Create(ctx, "user-1", in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}
}

func TestIdeaUpdate_OwnerOnly(t *testing.T) {
	svc, _, _ := newTestIdeaService()
	ctx := context.Background()

	idea, err := svc.Create(ctx, "owner", validIdea())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	idea.Title = "Renamed"
	if _, err := svc.Update(ctx, "someone-else", idea); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() by non-owner error = %v, want forbidden", err)
	}

	updated, err := svc.Update(ctx, "owner", idea)
	if err != nil {
		t.Fatalf("Update() by owner error = %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", updated.Title)
	}
}

func TestIdeaUpdate_InvalidatesStaleEmbedding(t *testing.T) {
	svc, repo, index := newTestIdeaService()
	ctx := context.Background()

	idea, _ := svc.Create(ctx, "owner", validIdea())
	repo.ideas[idea.ID].Embedded = true
	index.embeddings[idea.ID] = []float32{1, 2, 3}

	idea.Embedded = true
	idea.Description = "A completely different pitch"
	if _, err := svc.Update(ctx, "owner", idea); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, ok := index.embeddings[idea.ID]; ok {
		t.Error("stale embedding survived a content change")
	}
}

func TestIdeaDelete(t *testing.T) {
	svc, repo, _ := newTestIdeaService()
	ctx := context.Background()

	idea, _ := svc.Create(ctx, "owner", validIdea())

	if err := svc.Delete(ctx, "intruder", idea.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by non-owner error = %v, want forbidden", err)
	}
	if err := svc.Delete(ctx, "owner", idea.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := repo.ideas[idea.ID]; ok {
		t.Error("idea still present after delete")
	}
	if err := svc.Delete(ctx, "owner", idea.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestIdeaVote(t *testing.T) {
	svc, _, _ := newTestIdeaService()
	ctx := context.Background()

	idea, _ := svc.Create(ctx, "owner", validIdea())

	got, err := svc.Vote(ctx, idea.ID, repository.VoteUp)
	if err != nil {
		t.Fatalf("Vote(up) error = %v", err)
	}
	if got.Upvotes != 1 {
		t.Errorf("Upvotes = %d, want 1", got.Upvotes)
	}

	got, err = svc.Vote(ctx, idea.ID, repository.VoteDown)
	if err != nil {
		t.Fatalf("Vote(down) error = %v", err)
	}
	if got.Downvotes != 1 || got.Upvotes != 1 {
		t.Errorf("counts = (%d, %d), want (1, 1)", got.Upvotes, got.Downvotes)
	}

	if _, err := svc.Vote(ctx, idea.ID, repository.VoteKind("sideways")); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Vote(sideways) error = %v, want validation error", err)
	}
}

func TestIdeaList_Pagination(t *testing.T) {
	svc, _, _ := newTestIdeaService()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		svc.Create(ctx, "owner", validIdea())
	}

	got, err := svc.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	// Out-of-range limits fall back to bounds instead of failing.
	if _, err := svc.List(ctx, -1, -3); err != nil {
		t.Errorf("List() with bad bounds error = %v", err)
	}
}

func TestIdeaAttachMedia(t *testing.T) {
	svc, _, _ := newTestIdeaService()
	ctx := context.Background()

	idea, _ := svc.Create(ctx, "owner", validIdea())

	got, err := svc.AttachMedia(ctx, "owner", idea.ID, []string{"/media/a.png", "/media/b.png"})
	if err != nil {
		t.Fatalf("AttachMedia() error = %v", err)
	}
	if len(got.Media) != 2 {
		t.Errorf("len(Media) = %d, want 2", len(got.Media))
	}

	if _, err := svc.AttachMedia(ctx, "intruder", idea.ID, []string{"/media/c.png"}); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("AttachMedia() by non-owner error = %v, want forbidden", err)
	}
	if _, err := svc.AttachMedia(ctx, "owner", idea.ID, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("AttachMedia() with no urls error = %v, want validation error", err)
	}
}
