// file: internal/view/grid.go
package view

import (
	"strings"

	"campusvoice/internal/models"

	"golang.org/x/exp/slices"
)

// Columns the administrative grid can sort on.
const (
	ColumnTitle     = "title"
	ColumnCategory  = "category"
	ColumnPriority  = "priority"
	ColumnStatus    = "status"
	ColumnIsPublic  = "is_public"
	ColumnUpvotes   = "upvotes"
	ColumnCreatedAt = "created_at"
)

// Sort directions.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// ValidateColumn validates an admin grid sort column.
func ValidateColumn(column string) bool {
	switch column {
	case ColumnTitle, ColumnCategory, ColumnPriority, ColumnStatus,
		ColumnIsPublic, ColumnUpvotes, ColumnCreatedAt:
		return true
	}
	return false
}

// DefaultDirection returns the direction a freshly clicked column starts
// with: desc for upvotes and created_at, asc otherwise.
func DefaultDirection(column string) string {
	if column == ColumnUpvotes || column == ColumnCreatedAt {
		return DirectionDesc
	}
	return DirectionAsc
}

// NextDirection implements the grid header toggle: clicking the active
// column flips the direction, clicking a new column resets it to that
// column's default.
func NextDirection(activeColumn, activeDirection, clickedColumn string) string {
	if clickedColumn != activeColumn {
		return DefaultDirection(clickedColumn)
	}
	if activeDirection == DirectionAsc {
		return DirectionDesc
	}
	return DirectionAsc
}

// SortGrid orders the admin grid by the given column and direction. Ties
// fall back to id ascending. The input slice is never mutated.
func SortGrid(suggestions []*models.Suggestion, column, direction string) []*models.Suggestion {
	sorted := make([]*models.Suggestion, len(suggestions))
	copy(sorted, suggestions)

	slices.SortStableFunc(sorted, func(a, b *models.Suggestion) int {
		c := compareColumn(a, b, column)
		if direction == DirectionDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return compareInt64(a.ID, b.ID)
	})
	return sorted
}

func compareColumn(a, b *models.Suggestion, column string) int {
	switch column {
	case ColumnTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case ColumnCategory:
		return strings.Compare(a.Category, b.Category)
	case ColumnPriority:
		return strings.Compare(a.Priority, b.Priority)
	case ColumnStatus:
		return strings.Compare(a.Status, b.Status)
	case ColumnIsPublic:
		return compareBool(a.IsPublic, b.IsPublic)
	case ColumnUpvotes:
		return a.Upvotes - b.Upvotes
	case ColumnCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}
