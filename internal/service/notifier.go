package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// WebhookNotifier fans deal events out to both participants' active
// webhooks. Deliveries are fire-and-forget: failures are logged and never
// bubble up into the deal path.
type WebhookNotifier struct {
	repo   repository.WebhookRepository
	http   *http.Client
	logger *slog.Logger
}

func NewWebhookNotifier(repo repository.WebhookRepository, timeout time.Duration, logger *slog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		repo:   repo,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type webhookEvent struct {
	Event string      `json:"event"`
	Deal  *model.Deal `json:"deal"`
}

var _ DealNotifier = (*WebhookNotifier)(nil)

// DealCreated delivers a deal.created event to every active webhook owned
// by either party of the deal.
func (n *WebhookNotifier) DealCreated(ctx context.Context, deal *model.Deal) {
	payload, err := json.Marshal(webhookEvent{Event: "deal.created", Deal: deal})
	if err != nil {
		n.logger.Error("could not encode webhook event", "dealID", deal.ID, "error", err)
		return
	}

	for _, userID := range []string{deal.FromUser, deal.ToUser} {
		hooks, err := n.repo.ListWebhooksByUser(ctx, userID)
		if err != nil {
			n.logger.Warn("could not list webhooks", "userID", userID, "error", err)
			continue
		}
		for _, hook := range hooks {
			if !hook.Active {
				continue
			}
			n.deliver(ctx, &hook, payload)
		}
	}
}

func (n *WebhookNotifier) deliver(ctx context.Context, hook *model.Webhook, payload []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("could not build webhook request", "webhookID", hook.ID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	// Receivers look the hook up by ID and check the secret they hold
	// against the verification endpoint.
	req.Header.Set("X-Webhook-Id", hook.ID)

	resp, err := n.http.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", "webhookID", hook.ID, "error", err)
		return
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("webhook delivery rejected", "webhookID", hook.ID, "status", resp.StatusCode)
	}
}
