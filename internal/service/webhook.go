package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// WebhookService manages partner webhook endpoints. The signing secret is
// returned exactly once, at creation; afterwards only its hash exists.
type WebhookService struct {
	repo    repository.WebhookRepository
	secrets *auth.SecretService
	logger  *slog.Logger
}

func NewWebhookService(repo repository.WebhookRepository, secrets *auth.SecretService, logger *slog.Logger) *WebhookService {
	return &WebhookService{repo: repo, secrets: secrets, logger: logger}
}

// Create registers a webhook for userID and returns it with the one-time
// plaintext secret.
func (s *WebhookService) Create(ctx context.Context, userID, rawURL string) (*model.Webhook, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", apperror.ValidationFailed("url", "webhook url must be a valid http(s) URL")
	}

	secret, hash, err := s.secrets.Generate()
	if err != nil {
		return nil, "", err
	}

	hook := &model.Webhook{
		UserID:     userID,
		URL:        u.String(),
		SecretHash: hash,
		Active:     true,
	}
	if err := s.repo.CreateWebhook(ctx, hook); err != nil {
		return nil, "", err
	}

	s.logger.Info("webhook created", "webhookID", hook.ID, "userID", userID)
	return hook, secret, nil
}

func (s *WebhookService) ListByUser(ctx context.Context, userID string) ([]model.Webhook, error) {
	return s.repo.ListWebhooksByUser(ctx, userID)
}

// SetActive toggles a webhook. Owner only.
func (s *WebhookService) SetActive(ctx context.Context, userID, id string, active bool) (*model.Webhook, error) {
	hook, err := s.repo.GetWebhookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hook.UserID != userID {
		return nil, apperror.Forbidden("only the webhook owner can change it")
	}
	if err := s.repo.SetWebhookActive(ctx, id, active); err != nil {
		return nil, err
	}
	hook.Active = active
	return hook, nil
}

func (s *WebhookService) Delete(ctx context.Context, userID, id string) error {
	hook, err := s.repo.GetWebhookByID(ctx, id)
	if err != nil {
		return err
	}
	if hook.UserID != userID {
		return apperror.Forbidden("only the webhook owner can delete it")
	}
	return s.repo.DeleteWebhook(ctx, id)
}

// VerifySecret checks a presented secret against a webhook's stored hash.
func (s *WebhookService) VerifySecret(ctx context.Context, id, secret string) error {
	hook, err := s.repo.GetWebhookByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.secrets.Verify(hook.SecretHash, secret); err != nil {
		return apperror.Unauthorized("webhook secret does not match")
	}
	return nil
}
