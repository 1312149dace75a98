package model

import "time"

// User types. The platform is two-sided: founders post ideas and offers,
// distributors accept offers as deals. "developer" is kept for accounts
// carried over from the legacy asset product.
const (
	UserTypeFounder     = "founder"
	UserTypeDistributor = "distributor"
	UserTypeDeveloper   = "developer"
)

// User represents a registered account.
//
// Google OAuth is the identity provider and the email is the external key:
// the callback upserts by email (insert-if-absent, refresh photo if it
// changed). We still generate our own internal xid so primary keys aren't
// tied to a third party's numbering.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	Name      string    `json:"name"      db:"name"`
	Photo     string    `json:"photo"     db:"photo"`
	Type      string    `json:"type"      db:"type"` // founder | distributor | developer
	Twitter   string    `json:"twitter"   db:"twitter"`
	LinkedIn  string    `json:"linkedin"  db:"linkedin"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Webhook is a partner endpoint notified about deal activity.
//
// SecretHash stores a bcrypt hash of the signing secret; the plaintext is
// shown to the user exactly once at creation time.
type Webhook struct {
	ID         string    `json:"id"        db:"id"`
	UserID     string    `json:"userId"    db:"user_id"`
	URL        string    `json:"url"       db:"url"`
	SecretHash string    `json:"-"         db:"secret_hash"`
	Active     bool      `json:"active"    db:"active"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
