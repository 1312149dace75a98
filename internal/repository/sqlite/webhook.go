package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/colaunch/colaunch-server/internal/apperror"
	"github.com/colaunch/colaunch-server/internal/model"
	"github.com/colaunch/colaunch-server/internal/repository"
)

// compile-time check that *DB implements repository.WebhookRepository
var _ repository.WebhookRepository = (*DB)(nil)

func (db *DB) CreateWebhook(ctx context.Context, hook *model.Webhook) error {
	hook.ID = xid.New().String()
	hook.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO webhooks (id, user_id, url, secret_hash, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		hook.ID, hook.UserID, hook.URL, hook.SecretHash, hook.Active, hook.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating webhook: %w", err)
	}

	return nil
}

func (db *DB) GetWebhookByID(ctx context.Context, id string) (*model.Webhook, error) {
	var h model.Webhook
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, url, secret_hash, active, created_at
		 FROM webhooks WHERE id = ?`, id,
	).Scan(&h.ID, &h.UserID, &h.URL, &h.SecretHash, &h.Active, &h.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("webhook", id)
		}
		return nil, fmt.Errorf("sqlite: getting webhook %s: %w", id, err)
	}
	return &h, nil
}

func (db *DB) ListWebhooksByUser(ctx context.Context, userID string) ([]model.Webhook, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, url, secret_hash, active, created_at
		 FROM webhooks WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing webhooks for user %s: %w", userID, err)
	}
	defer rows.Close()

	hooks := make([]model.Webhook, 0, 4)
	for rows.Next() {
		var h model.Webhook
		if err := rows.Scan(&h.ID, &h.UserID, &h.URL, &h.SecretHash, &h.Active, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning webhook row: %w", err)
		}
		hooks = append(hooks, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating webhooks: %w", err)
	}

	return hooks, nil
}

func (db *DB) SetWebhookActive(ctx context.Context, id string, active bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE webhooks SET active = ? WHERE id = ?`, active, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: toggling webhook %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("webhook", id)
	}

	return nil
}

func (db *DB) DeleteWebhook(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM webhooks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting webhook %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("webhook", id)
	}

	return nil
}
