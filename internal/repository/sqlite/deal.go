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

// compile-time check that *DB implements repository.DealRepository
var _ repository.DealRepository = (*DB)(nil)

// CreateDeal inserts the deal row and bumps the parent offer's deal_counts
// in the same transaction, so the counter can never drift from the table.
func (db *DB) CreateDeal(ctx context.Context, deal *model.Deal) error {
	deal.ID = xid.New().String()
	deal.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO deals (id, offer_id, from_user, to_user, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		deal.ID, deal.OfferID, deal.FromUser, deal.ToUser, deal.Status, deal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating deal: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE offers SET deal_counts = deal_counts + 1, updated_at = ? WHERE id = ?`,
		deal.CreatedAt, deal.OfferID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing deal count for offer %s: %w", deal.OfferID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("offer", deal.OfferID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing deal: %w", err)
	}

	return nil
}

func (db *DB) GetDealByID(ctx context.Context, id string) (*model.Deal, error) {
	var d model.Deal
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, offer_id, from_user, to_user, status, created_at
		 FROM deals WHERE id = ?`, id,
	).Scan(&d.ID, &d.OfferID, &d.FromUser, &d.ToUser, &d.Status, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("deal", id)
		}
		return nil, fmt.Errorf("sqlite: getting deal %s: %w", id, err)
	}
	return &d, nil
}

// ListDealsByUser returns deals where the user is on either side.
func (db *DB) ListDealsByUser(ctx context.Context, userID string) ([]model.Deal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, offer_id, from_user, to_user, status, created_at
		 FROM deals
		 WHERE from_user = ? OR to_user = ?
		 ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing deals for user %s: %w", userID, err)
	}
	defer rows.Close()

	deals := make([]model.Deal, 0, 8)
	for rows.Next() {
		var d model.Deal
		if err := rows.Scan(&d.ID, &d.OfferID, &d.FromUser, &d.ToUser, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning deal row: %w", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating deals: %w", err)
	}

	return deals, nil
}

func (db *DB) SetDealStatus(ctx context.Context, id string, status bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE deals SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating deal %s status: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("deal", id)
	}

	return nil
}
