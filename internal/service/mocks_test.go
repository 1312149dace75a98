package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// Hand-written in-memory mocks. Each one implements the repository
// interface the service under test depends on; storing copies keeps tests
// from reaching into each other's state.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockIdeaRepo struct {
	ideas  map[string]*model.Idea
	nextID int
	err    error // when set, every call fails with it
}

func newMockIdeaRepo() *mockIdeaRepo {
	return &mockIdeaRepo{ideas: make(map[string]*model.Idea)}
}

func (m *mockIdeaRepo) Create(_ context.Context, idea *model.Idea) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	idea.ID = fmt.Sprintf("idea-%d", m.nextID)
	stored := *idea
	m.ideas[idea.ID] = &stored
	return nil
}

func (m *mockIdeaRepo) GetByID(_ context.Context, id string) (*model.Idea, error) {
	if m.err != nil {
		return nil, m.err
	}
	idea, ok := m.ideas[id]
	if !ok {
		return nil, apperror.NotFound("idea", id)
	}
	result := *idea
	return &result, nil
}

func (m *mockIdeaRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Idea, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([]model.Idea, 0, len(m.ideas))
	for _, idea := range m.ideas {
		result = append(result, *idea)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Upvotes > result[j].Upvotes })
	if opts.Offset >= len(result) {
		return []model.Idea{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockIdeaRepo) ListByUser(_ context.Context, userID string) ([]model.Idea, error) {
	result := []model.Idea{}
	for _, idea := range m.ideas {
		if idea.UserID == userID {
			result = append(result, *idea)
		}
	}
	return result, nil
}

func (m *mockIdeaRepo) GetByIDs(_ context.Context, ids []string) ([]model.Idea, error) {
	result := make([]model.Idea, 0, len(ids))
	for _, id := range ids {
		if idea, ok := m.ideas[id]; ok {
			result = append(result, *idea)
		}
	}
	return result, nil
}

func (m *mockIdeaRepo) Update(_ context.Context, idea *model.Idea) error {
	existing, ok := m.ideas[idea.ID]
	if !ok {
		return apperror.NotFound("idea", idea.ID)
	}
	updated := *idea
	updated.Upvotes = existing.Upvotes
	updated.Downvotes = existing.Downvotes
	updated.UserID = existing.UserID
	m.ideas[idea.ID] = &updated
	return nil
}

func (m *mockIdeaRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.ideas[id]; !ok {
		return apperror.NotFound("idea", id)
	}
	delete(m.ideas, id)
	return nil
}

func (m *mockIdeaRepo) Vote(_ context.Context, id string, kind repository.VoteKind) (*model.Idea, error) {
	idea, ok := m.ideas[id]
	if !ok {
		return nil, apperror.NotFound("idea", id)
	}
	if kind == repository.VoteUp {
		idea.Upvotes++
	} else {
		idea.Downvotes++
	}
	result := *idea
	return &result, nil
}

type mockIndex struct {
	embeddings map[string][]float32
	err        error
}

func newMockIndex() *mockIndex {
	return &mockIndex{embeddings: make(map[string][]float32)}
}

func (m *mockIndex) UpsertEmbedding(_ context.Context, ideaID string, embedding []float32) error {
	if m.err != nil {
		return m.err
	}
	m.embeddings[ideaID] = embedding
	return nil
}

func (m *mockIndex) SearchSimilar(context.Context, []float32, float64, int) ([]repository.Neighbor, error) {
	return nil, nil
}

func (m *mockIndex) DeleteEmbedding(_ context.Context, ideaID string) error {
	delete(m.embeddings, ideaID)
	return nil
}

type mockOfferRepo struct {
	offers map[string]*model.Offer
	nextID int
}

func newMockOfferRepo() *mockOfferRepo {
	return &mockOfferRepo{offers: make(map[string]*model.Offer)}
}

func (m *mockOfferRepo) CreateOffer(_ context.Context, offer *model.Offer) error {
	m.nextID++
	offer.ID = fmt.Sprintf("offer-%d", m.nextID)
	offer.DealCounts = 0
	stored := *offer
	m.offers[offer.ID] = &stored
	return nil
}

func (m *mockOfferRepo) GetOfferByID(_ context.Context, id string) (*model.Offer, error) {
	offer, ok := m.offers[id]
	if !ok {
		return nil, apperror.NotFound("offer", id)
	}
	result := *offer
	return &result, nil
}

func (m *mockOfferRepo) GetOfferByIdea(_ context.Context, ideaID string) (*model.Offer, error) {
	for _, offer := range m.offers {
		if offer.IdeaID == ideaID {
			result := *offer
			return &result, nil
		}
	}
	return nil, apperror.NotFound("offer for idea", ideaID)
}

func (m *mockOfferRepo) ListOffersByUser(_ context.Context, userID string) ([]model.Offer, error) {
	result := []model.Offer{}
	for _, offer := range m.offers {
		if offer.UserID == userID {
			result = append(result, *offer)
		}
	}
	return result, nil
}

func (m *mockOfferRepo) UpdateOffer(_ context.Context, offer *model.Offer) error {
	existing, ok := m.offers[offer.ID]
	if !ok {
		return apperror.NotFound("offer", offer.ID)
	}
	updated := *offer
	updated.DealCounts = existing.DealCounts
	m.offers[offer.ID] = &updated
	return nil
}

func (m *mockOfferRepo) DeleteOffer(_ context.Context, id string) error {
	if _, ok := m.offers[id]; !ok {
		return apperror.NotFound("offer", id)
	}
	delete(m.offers, id)
	return nil
}

type mockDealRepo struct {
	deals  map[string]*model.Deal
	offers *mockOfferRepo // for the transactional counter increment
	nextID int
}

func newMockDealRepo(offers *mockOfferRepo) *mockDealRepo {
	return &mockDealRepo{deals: make(map[string]*model.Deal), offers: offers}
}

func (m *mockDealRepo) CreateDeal(_ context.Context, deal *model.Deal) error {
	offer, ok := m.offers.offers[deal.OfferID]
	if !ok {
		return apperror.NotFound("offer", deal.OfferID)
	}
	m.nextID++
	deal.ID = fmt.Sprintf("deal-%d", m.nextID)
	stored := *deal
	m.deals[deal.ID] = &stored
	offer.DealCounts++
	return nil
}

func (m *mockDealRepo) GetDealByID(_ context.Context, id string) (*model.Deal, error) {
	deal, ok := m.deals[id]
	if !ok {
		return nil, apperror.NotFound("deal", id)
	}
	result := *deal
	return &result, nil
}

func (m *mockDealRepo) ListDealsByUser(_ context.Context, userID string) ([]model.Deal, error) {
	result := []model.Deal{}
	for _, deal := range m.deals {
		if deal.FromUser == userID || deal.ToUser == userID {
			result = append(result, *deal)
		}
	}
	return result, nil
}

func (m *mockDealRepo) SetDealStatus(_ context.Context, id string, status bool) error {
	deal, ok := m.deals[id]
	if !ok {
		return apperror.NotFound("deal", id)
	}
	deal.Status = status
	return nil
}

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) UpsertUserByEmail(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			existing.Name = user.Name
			existing.Photo = user.Photo
			*user = *existing
			return nil
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	if user.Type == "" {
		user.Type = model.UserTypeFounder
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	existing, ok := m.users[user.ID]
	if !ok {
		return apperror.NotFound("user", user.ID)
	}
	updated := *user
	updated.Email = existing.Email
	m.users[user.ID] = &updated
	return nil
}

type mockWebhookRepo struct {
	hooks  map[string]*model.Webhook
	nextID int
}

func newMockWebhookRepo() *mockWebhookRepo {
	return &mockWebhookRepo{hooks: make(map[string]*model.Webhook)}
}

func (m *mockWebhookRepo) CreateWebhook(_ context.Context, hook *model.Webhook) error {
	m.nextID++
	hook.ID = fmt.Sprintf("hook-%d", m.nextID)
	stored := *hook
	m.hooks[hook.ID] = &stored
	return nil
}

func (m *mockWebhookRepo) GetWebhookByID(_ context.Context, id string) (*model.Webhook, error) {
	hook, ok := m.hooks[id]
	if !ok {
		return nil, apperror.NotFound("webhook", id)
	}
	result := *hook
	return &result, nil
}

func (m *mockWebhookRepo) ListWebhooksByUser(_ context.Context, userID string) ([]model.Webhook, error) {
	result := []model.Webhook{}
	for _, hook := range m.hooks {
		if hook.UserID == userID {
			result = append(result, *hook)
		}
	}
	return result, nil
}

func (m *mockWebhookRepo) SetWebhookActive(_ context.Context, id string, active bool) error {
	hook, ok := m.hooks[id]
	if !ok {
		return apperror.NotFound("webhook", id)
	}
	hook.Active = active
	return nil
}

func (m *mockWebhookRepo) DeleteWebhook(_ context.Context, id string) error {
	if _, ok := m.hooks[id]; !ok {
		return apperror.NotFound("webhook", id)
	}
	delete(m.hooks, id)
	return nil
}

type mockEmbedder struct {
	vec    []float32
	err    error
	inputs []string
}

func (m *mockEmbedder) Embed(_ context.Context, _ string, input string) ([]float32, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}
