package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campusvoice/internal/models"
)

func gridFixture() []*models.Suggestion {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*models.Suggestion{
		{ID: 1, Title: "banana", Category: "Facilities", Priority: "High", Status: models.StatusPending, Upvotes: 3, IsPublic: true, CreatedAt: base},
		{ID: 2, Title: "Apple", Category: "Academics", Priority: "Low", Status: models.StatusSolved, Upvotes: 9, IsPublic: false, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "cherry", Category: "Facilities", Priority: "Undefined", Status: models.StatusClosed, Upvotes: 3, IsPublic: true, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestValidateColumn(t *testing.T) {
	for _, column := range []string{ColumnTitle, ColumnCategory, ColumnPriority, ColumnStatus, ColumnIsPublic, ColumnUpvotes, ColumnCreatedAt} {
		assert.True(t, ValidateColumn(column), column)
	}
	assert.False(t, ValidateColumn("description"))
	assert.False(t, ValidateColumn(""))
}

func TestDefaultDirection(t *testing.T) {
	assert.Equal(t, DirectionDesc, DefaultDirection(ColumnUpvotes))
	assert.Equal(t, DirectionDesc, DefaultDirection(ColumnCreatedAt))
	assert.Equal(t, DirectionAsc, DefaultDirection(ColumnTitle))
	assert.Equal(t, DirectionAsc, DefaultDirection(ColumnStatus))
}

func TestNextDirectionTogglesActiveColumn(t *testing.T) {
	assert.Equal(t, DirectionDesc, NextDirection(ColumnTitle, DirectionAsc, ColumnTitle))
	assert.Equal(t, DirectionAsc, NextDirection(ColumnTitle, DirectionDesc, ColumnTitle))
}

func TestNextDirectionResetsOnNewColumn(t *testing.T) {
	assert.Equal(t, DirectionDesc, NextDirection(ColumnTitle, DirectionAsc, ColumnUpvotes))
	assert.Equal(t, DirectionAsc, NextDirection(ColumnUpvotes, DirectionDesc, ColumnCategory))
}

func TestSortGridByTitleIsCaseInsensitive(t *testing.T) {
	sorted := SortGrid(gridFixture(), ColumnTitle, DirectionAsc)

	assert.Equal(t, []int64{2, 1, 3}, ids(sorted))
}

func TestSortGridByUpvotesDescBreaksTiesByID(t *testing.T) {
	sorted := SortGrid(gridFixture(), ColumnUpvotes, DirectionDesc)

	// Two records share 3 upvotes; the lower ID comes first.
	assert.Equal(t, []int64{2, 1, 3}, ids(sorted))
}

func TestSortGridByCreatedAt(t *testing.T) {
	sorted := SortGrid(gridFixture(), ColumnCreatedAt, DirectionDesc)
	assert.Equal(t, []int64{3, 2, 1}, ids(sorted))

	sorted = SortGrid(gridFixture(), ColumnCreatedAt, DirectionAsc)
	assert.Equal(t, []int64{1, 2, 3}, ids(sorted))
}

func TestSortGridDoesNotMutateInput(t *testing.T) {
	input := gridFixture()
	SortGrid(input, ColumnUpvotes, DirectionDesc)

	assert.Equal(t, []int64{1, 2, 3}, ids(input))
}
