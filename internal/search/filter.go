// Package search holds the manual result filter that backs the dashboard
// search bar. It is pure: it never touches storage or the network.
package search

import (
	"sort"
	"strings"

	"github.com/colaunch/colaunch-server/internal/model"
)

// Criteria are the active search-bar predicates. A zero-value field
// matches everything, so the zero Criteria is the identity filter.
type Criteria struct {
	Query      string   // case-insensitive substring of the title
	Location   string   // matched against state and country independently
	Industries []string // idea industry must be one of these
}

func (c Criteria) empty() bool {
	return c.Query == "" && c.Location == "" && len(c.Industries) == 0
}

// Filter returns the ideas matching every active predicate, preserving
// input order. Applying the same criteria twice returns the same slice
// contents.
func Filter(ideas []model.Idea, c Criteria) []model.Idea {
	if c.empty() {
		return ideas
	}

	query := strings.ToLower(strings.TrimSpace(c.Query))
	location := strings.ToLower(strings.TrimSpace(c.Location))
	industries := make(map[string]bool, len(c.Industries))
	for _, ind := range c.Industries {
		industries[strings.ToLower(strings.TrimSpace(ind))] = true
	}

	out := make([]model.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if query != "" && !strings.Contains(strings.ToLower(idea.Title), query) {
			continue
		}
		if location != "" && !matchesLocation(idea.Address, location) {
			continue
		}
		if len(industries) > 0 && !industries[strings.ToLower(idea.Industry)] {
			continue
		}
		out = append(out, idea)
	}
	return out
}

// matchesLocation accepts the query against the state or the country on
// its own, or as a substring of the combined "State, Country" form.
func matchesLocation(addr model.AddressDetail, query string) bool {
	state := strings.ToLower(addr.State)
	country := strings.ToLower(addr.Country)
	if state == query || country == query {
		return true
	}
	return strings.Contains(strings.ToLower(addr.Location()), query)
}

// SortByUpvotes restores the upvote-descending order the idea list is
// served in, keeping equal-vote ideas in their current relative order.
// Used after an optimistic local vote increment.
func SortByUpvotes(ideas []model.Idea) {
	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].Upvotes > ideas[j].Upvotes
	})
}
