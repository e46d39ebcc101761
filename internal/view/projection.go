// file: internal/view/projection.go

// Package view derives displayed subsets and orderings from the full
// suggestion set. Everything here is a pure function of its inputs: no
// side effects, no hidden state, identical inputs yield identical output.
package view

import (
	"strings"

	"campusvoice/internal/models"

	"golang.org/x/exp/slices"
)

// FilterAll is the sentinel meaning "no filtering" for tag and category.
const FilterAll = "All"

// Sort orders for the public listing.
const (
	SortVotes    = "votes"
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortSolved   = "solved"
	SortUnsolved = "unsolved"
)

// Criteria selects and orders the public listing.
type Criteria struct {
	Search    string `json:"search"`
	Tag       string `json:"tag"`
	Category  string `json:"category"`
	SortOrder string `json:"sort_order"`
}

// ValidateSortOrder validates a public listing sort order value.
func ValidateSortOrder(order string) bool {
	switch order {
	case SortVotes, SortNewest, SortOldest, SortSolved, SortUnsolved:
		return true
	}
	return false
}

// Project returns the filtered, ordered public listing for the given
// criteria. The input slice is never mutated.
func Project(suggestions []*models.Suggestion, criteria Criteria) []*models.Suggestion {
	projected := make([]*models.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if matches(s, criteria) {
			projected = append(projected, s)
		}
	}
	sortListing(projected, criteria.SortOrder)
	return projected
}

func matches(s *models.Suggestion, criteria Criteria) bool {
	if !s.IsPublic {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(criteria.Search)); search != "" {
		title := strings.ToLower(s.Title)
		description := strings.ToLower(s.Description)
		if !strings.Contains(title, search) && !strings.Contains(description, search) {
			return false
		}
	}
	if criteria.Tag != "" && criteria.Tag != FilterAll && !s.Tags.Contains(criteria.Tag) {
		return false
	}
	if criteria.Category != "" && criteria.Category != FilterAll && criteria.Category != s.Category {
		return false
	}
	return true
}

// sortListing orders the projection. Ties on the primary key fall back to
// created_at descending, then id descending, so the ordering is
// deterministic regardless of the store's iteration order.
func sortListing(suggestions []*models.Suggestion, order string) {
	slices.SortStableFunc(suggestions, func(a, b *models.Suggestion) int {
		if primary := compareListing(a, b, order); primary != 0 {
			return primary
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareInt64(b.ID, a.ID)
	})
}

func compareListing(a, b *models.Suggestion, order string) int {
	switch order {
	case SortVotes:
		return b.Score() - a.Score()
	case SortNewest:
		return b.CreatedAt.Compare(a.CreatedAt)
	case SortOldest:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortSolved:
		return compareBool(b.IsTerminal(), a.IsTerminal())
	case SortUnsolved:
		return compareBool(a.IsTerminal(), b.IsTerminal())
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
