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

// compile-time check that *DB implements repository.OfferRepository
var _ repository.OfferRepository = (*DB)(nil)

const offerColumns = `id, idea_id, user_id, description, commission, active,
	payment_link, promotion_code, deal_counts, created_at, updated_at`

func (db *DB) CreateOffer(ctx context.Context, offer *model.Offer) error {
	now := time.Now()
	offer.ID = xid.New().String()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	offer.DealCounts = 0

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO offers (id, idea_id, user_id, description, commission,
		 active, payment_link, promotion_code, deal_counts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		offer.ID, offer.IdeaID, offer.UserID, offer.Description, offer.Commission,
		offer.Active, offer.PaymentLink, offer.PromotionCode,
		offer.CreatedAt, offer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating offer: %w", err)
	}

	return nil
}

func (db *DB) GetOfferByID(ctx context.Context, id string) (*model.Offer, error) {
	offer, err := db.scanOfferRow(db.conn.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("offer", id)
		}
		return nil, fmt.Errorf("sqlite: getting offer %s: %w", id, err)
	}
	return offer, nil
}

// GetOfferByIdea returns the offer attached to an idea. Ideas carry at most
// one offer; NotFound means the idea has no deal to show.
func (db *DB) GetOfferByIdea(ctx context.Context, ideaID string) (*model.Offer, error) {
	offer, err := db.scanOfferRow(db.conn.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE idea_id = ? ORDER BY created_at DESC LIMIT 1`,
		ideaID,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("offer for idea", ideaID)
		}
		return nil, fmt.Errorf("sqlite: getting offer for idea %s: %w", ideaID, err)
	}
	return offer, nil
}

func (db *DB) ListOffersByUser(ctx context.Context, userID string) ([]model.Offer, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing offers for user %s: %w", userID, err)
	}
	defer rows.Close()

	offers := make([]model.Offer, 0, 8)
	for rows.Next() {
		var o model.Offer
		if err := rows.Scan(
			&o.ID, &o.IdeaID, &o.UserID, &o.Description, &o.Commission, &o.Active,
			&o.PaymentLink, &o.PromotionCode, &o.DealCounts, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning offer row: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating offers: %w", err)
	}

	return offers, nil
}

// UpdateOffer modifies an offer's editable fields. deal_counts is owned by
// CreateDeal and never written here.
func (db *DB) UpdateOffer(ctx context.Context, offer *model.Offer) error {
	offer.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE offers
		 SET description = ?, commission = ?, active = ?, payment_link = ?,
		     promotion_code = ?, updated_at = ?
		 WHERE id = ?`,
		offer.Description, offer.Commission, offer.Active, offer.PaymentLink,
		offer.PromotionCode, offer.UpdatedAt, offer.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating offer %s: %w", offer.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("offer", offer.ID)
	}

	return nil
}

func (db *DB) DeleteOffer(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting offer %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("offer", id)
	}

	return nil
}

func (db *DB) scanOfferRow(row rowScanner) (*model.Offer, error) {
	var o model.Offer
	err := row.Scan(
		&o.ID, &o.IdeaID, &o.UserID, &o.Description, &o.Commission, &o.Active,
		&o.PaymentLink, &o.PromotionCode, &o.DealCounts, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
