package model

import "time"

// Offer is a monetizable proposal attached to exactly one Idea.
//
// DealCounts is a running counter incremented in the same transaction that
// inserts the Deal row, so it can never drift from the deals table.
type Offer struct {
	ID            string    `json:"id"            db:"id"`
	IdeaID        string    `json:"ideaId"        db:"idea_id"`
	UserID        string    `json:"userId"        db:"user_id"`
	Description   string    `json:"description"   db:"description"`
	Commission    float64   `json:"commission"    db:"commission"` // percentage, 0-100
	Active        bool      `json:"active"        db:"active"`
	PaymentLink   string    `json:"paymentLink"   db:"payment_link"`
	PromotionCode string    `json:"promotionCode" db:"promotion_code"`
	DealCounts    int       `json:"dealCounts"    db:"deal_counts"`
	CreatedAt     time.Time `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt"     db:"updated_at"`
}

// Deal records a distributor accepting an Offer.
//
// FromUser is the offer owner (the founder), ToUser the distributor who
// accepted. Status mirrors the original's boolean deal state: a deal starts
// active and can be switched off by either party.
type Deal struct {
	ID        string    `json:"id"        db:"id"`
	OfferID   string    `json:"offerId"   db:"offer_id"`
	FromUser  string    `json:"fromUser"  db:"from_user"`
	ToUser    string    `json:"toUser"    db:"to_user"`
	Status    bool      `json:"status"    db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
