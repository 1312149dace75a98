// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/colaunch/colaunch-server/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// VoteKind selects which counter a vote adjusts.
type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)

type IdeaRepository interface {
	Create(ctx context.Context, idea *model.Idea) error
	GetByID(ctx context.Context, id string) (*model.Idea, error)
	// List returns ideas joined with their address detail, ordered by
	// upvotes descending.
	List(ctx context.Context, opts ListOptions) ([]model.Idea, error)
	ListByUser(ctx context.Context, userID string) ([]model.Idea, error)
	// GetByIDs preserves the order of ids in the returned slice; missing
	// ids are skipped. Used to hydrate vector search results.
	GetByIDs(ctx context.Context, ids []string) ([]model.Idea, error)
	Update(ctx context.Context, idea *model.Idea) error
	Delete(ctx context.Context, id string) error
	// Vote adjusts one counter by one in a single atomic statement and
	// returns the updated row. Concurrent votes cannot lose updates.
	Vote(ctx context.Context, id string, kind VoteKind) (*model.Idea, error)
}

// The remaining interfaces carry their resource name in the method names
// because one sqlite.DB implements all of them; the idea repository owns
// the bare CRUD names as the core resource.

type OfferRepository interface {
	CreateOffer(ctx context.Context, offer *model.Offer) error
	GetOfferByID(ctx context.Context, id string) (*model.Offer, error)
	GetOfferByIdea(ctx context.Context, ideaID string) (*model.Offer, error)
	ListOffersByUser(ctx context.Context, userID string) ([]model.Offer, error)
	UpdateOffer(ctx context.Context, offer *model.Offer) error
	DeleteOffer(ctx context.Context, id string) error
}

type DealRepository interface {
	// CreateDeal inserts the deal and increments the parent offer's
	// deal_counts in the same transaction.
	CreateDeal(ctx context.Context, deal *model.Deal) error
	GetDealByID(ctx context.Context, id string) (*model.Deal, error)
	ListDealsByUser(ctx context.Context, userID string) ([]model.Deal, error)
	SetDealStatus(ctx context.Context, id string, status bool) error
}

type UserRepository interface {
	// UpsertUserByEmail inserts a new user or refreshes name/photo on an
	// existing row keyed by email, preserving the internal ID.
	UpsertUserByEmail(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

type WebhookRepository interface {
	CreateWebhook(ctx context.Context, hook *model.Webhook) error
	GetWebhookByID(ctx context.Context, id string) (*model.Webhook, error)
	ListWebhooksByUser(ctx context.Context, userID string) ([]model.Webhook, error)
	SetWebhookActive(ctx context.Context, id string, active bool) error
	DeleteWebhook(ctx context.Context, id string) error
}

// Neighbor is a similarity-search hit: an idea ID with its cosine
// similarity to the query embedding (1.0 = identical direction).
type Neighbor struct {
	IdeaID     string
	Similarity float64
}

// VectorIndex is the embedding store behind vector_search_ideas.
type VectorIndex interface {
	// UpsertEmbedding stores or replaces the embedding for an idea.
	UpsertEmbedding(ctx context.Context, ideaID string, embedding []float32) error
	// SearchSimilar returns up to matchCount neighbors with similarity
	// >= threshold, most similar first.
	SearchSimilar(ctx context.Context, embedding []float32, threshold float64, matchCount int) ([]Neighbor, error)
	DeleteEmbedding(ctx context.Context, ideaID string) error
}
