// Package model defines the data structures used throughout the application:
// plain records with JSON and db struct tags, no behaviour beyond what a row
// needs.
package model

import "time"

// Idea represents a founder-submitted pitch record.
//
// Media holds an ordered list of public URLs (the order is what the
// dashboard card carousel renders). Upvotes and downvotes only ever move by
// atomic increments; see IdeaRepository.Vote.
//
// Embedded reports whether a vector embedding for this idea currently
// exists in the similarity index. The embedding itself never leaves the
// index; callers only need to know whether the idea is searchable.
type Idea struct {
	ID          string        `json:"id"          db:"id"`
	UserID      string        `json:"userId"      db:"user_id"`
	Title       string        `json:"title"       db:"title"`
	Description string        `json:"description" db:"description"`
	Media       []string      `json:"media"       db:"media"`
	Upvotes     int           `json:"upvotes"     db:"upvotes"`
	Downvotes   int           `json:"downvotes"   db:"downvotes"`
	Industry    string        `json:"industry"    db:"industry"`
	Tags        []string      `json:"tags"        db:"tags"`
	AddressID   string        `json:"addressId"   db:"address_id"`
	Address     AddressDetail `json:"addressDetail"`
	Verified    bool          `json:"verified"    db:"verified"`
	Embedded    bool          `json:"embedded"    db:"embedded"`
	CreatedAt   time.Time     `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt"   db:"updated_at"`
}

// AddressDetail is the location record attached one-to-one to an Idea.
type AddressDetail struct {
	ID      string `json:"id"      db:"id"`
	Country string `json:"country" db:"country"`
	State   string `json:"state"   db:"state"`
	Suburb  string `json:"suburb"  db:"suburb"`
}

// Location renders the "State, Country" label the dashboard filters on.
func (a AddressDetail) Location() string {
	return a.State + ", " + a.Country
}

// Industries recognised by the voice-command interpreter and the dashboard
// multi-select. Free-form industries are still stored as given; this set
// only drives category matching.
var Industries = []string{
	"software",
	"healthcare",
	"fintech",
	"ecommerce",
	"ai",
	"sustainability",
}
