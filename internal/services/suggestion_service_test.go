package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusvoice/internal/cache"
	"campusvoice/internal/config"
	"campusvoice/internal/events"
	"campusvoice/internal/lifecycle"
	"campusvoice/internal/models"
	"campusvoice/internal/view"
)

func newSuggestionServiceForTest(t *testing.T) (SuggestionService, *fakeSuggestionRepo) {
	t.Helper()
	repo := newFakeSuggestionRepo()
	c := cache.NewMemoryCache(&config.CacheConfig{MaxEntries: 100}, zap.NewNop())
	t.Cleanup(func() { c.Close() })

	svc := NewSuggestionService(
		repo,
		lifecycle.NewEngine(nil),
		staticSummarizer{summary: "short summary"},
		c,
		time.Minute,
		events.NewEventBus(nil, zap.NewNop()),
		"campus-a",
		zap.NewNop(),
	)
	return svc, repo
}

func student() *models.UserProfile {
	return &models.UserProfile{ID: 1, PublicID: "student-1", Role: "user"}
}

func moderator() *models.UserProfile {
	return &models.UserProfile{ID: 2, PublicID: "mod-1", Role: "moderator"}
}

func createRequest(viewer *models.UserProfile) *CreateSuggestionRequest {
	return &CreateSuggestionRequest{
		Viewer:      viewer,
		Title:       "Extend library hours",
		Description: "The library closes too early during exam season.",
		Tags:        []string{"library", "hours"},
		Category:    "Campus Facilities & Maintenance",
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)

	created, err := svc.Create(context.Background(), createRequest(student()))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, models.DefaultPriority, created.Priority)
	assert.Equal(t, "short summary", created.Summary)
	assert.False(t, created.Solved)
	assert.Nil(t, created.ResolvedAt)
	assert.True(t, created.IsPublic)
	assert.True(t, created.IsOwner)
	assert.Zero(t, created.CommentCount)
}

func TestCreateValidatesWirePayloadOnly(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	// The middleware-resolved profile is not wire input; a viewer without
	// login fields must not trip request validation.
	viewer := &models.UserProfile{ID: 7, PublicID: "resolved-1", Role: "user"}
	_, err := svc.Create(ctx, createRequest(viewer))
	require.NoError(t, err)

	// Wire fields are still validated.
	req := createRequest(viewer)
	req.Title = "meh"
	_, err = svc.Create(ctx, req)
	assert.True(t, IsValidationError(err))
}

func TestCreateRequiresLogin(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)

	_, err := svc.Create(context.Background(), createRequest(nil))
	assert.True(t, IsUnauthorizedError(err))
}

func TestCreateRejectsBannedAuthor(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)

	banned := student()
	banned.IsBanned = true
	_, err := svc.Create(context.Background(), createRequest(banned))
	assert.True(t, IsForbiddenError(err))
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)

	req := createRequest(student())
	req.Category = "Parking"
	_, err := svc.Create(context.Background(), req)
	assert.True(t, IsValidationError(err))
}

func TestGetHidesPrivateSuggestionFromStrangers(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	isPublic := false
	req := createRequest(student())
	req.IsPublic = &isPublic
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)

	// Owner and moderator see it.
	_, err = svc.Get(ctx, student(), created.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, moderator(), created.ID)
	assert.NoError(t, err)

	// A stranger and an anonymous viewer get not-found, not forbidden.
	stranger := &models.UserProfile{PublicID: "student-2", Role: "user"}
	_, err = svc.Get(ctx, stranger, created.ID)
	assert.True(t, IsNotFoundError(err))
	_, err = svc.Get(ctx, nil, created.ID)
	assert.True(t, IsNotFoundError(err))
}

func TestGetUnknownID(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)

	_, err := svc.Get(context.Background(), student(), 999)
	assert.True(t, IsNotFoundError(err))
}

func TestUpdatePriorityIsModeratorOnly(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	priority := "High"
	_, err = svc.Update(ctx, &UpdateSuggestionRequest{
		Viewer:   student(),
		ID:       created.ID,
		Priority: &priority,
	})
	assert.True(t, IsForbiddenError(err))

	updated, err := svc.Update(ctx, &UpdateSuggestionRequest{
		Viewer:   moderator(),
		ID:       created.ID,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, "High", updated.Priority)
}

func TestUpdateByNonOwnerIsRejected(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	title := "Hijacked title"
	stranger := &models.UserProfile{PublicID: "student-2", Role: "user"}
	_, err = svc.Update(ctx, &UpdateSuggestionRequest{
		Viewer: stranger,
		ID:     created.ID,
		Title:  &title,
	})
	assert.True(t, IsForbiddenError(err))
}

func TestVoteToggleAndSwap(t *testing.T) {
	svc, repo := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)
	voter := &models.UserProfile{PublicID: "voter-1", Role: "user"}

	// First upvote registers.
	after, err := svc.Vote(ctx, &VoteRequest{Viewer: voter, ID: created.ID, Direction: "up"})
	require.NoError(t, err)
	assert.Equal(t, 1, after.Upvotes)
	assert.Equal(t, 0, after.Downvotes)
	require.NotNil(t, after.ViewerVote)
	assert.Equal(t, "up", *after.ViewerVote)

	// Repeating the same vote removes it.
	after, err = svc.Vote(ctx, &VoteRequest{Viewer: voter, ID: created.ID, Direction: "up"})
	require.NoError(t, err)
	assert.Equal(t, 0, after.Upvotes)
	assert.Nil(t, after.ViewerVote)

	// Up then down swaps, never double-counts.
	_, err = svc.Vote(ctx, &VoteRequest{Viewer: voter, ID: created.ID, Direction: "up"})
	require.NoError(t, err)
	after, err = svc.Vote(ctx, &VoteRequest{Viewer: voter, ID: created.ID, Direction: "down"})
	require.NoError(t, err)
	assert.Equal(t, 0, after.Upvotes)
	assert.Equal(t, 1, after.Downvotes)
	require.NotNil(t, after.ViewerVote)
	assert.Equal(t, "down", *after.ViewerVote)

	// The persisted ledger holds at most one direction.
	ledger, err := repo.GetVoteLedger(ctx, voter.PublicID)
	require.NoError(t, err)
	assert.False(t, ledger.Has(created.ID, models.VoteUp))
	assert.True(t, ledger.Has(created.ID, models.VoteDown))
}

func TestVoteRequiresLogin(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	_, err = svc.Vote(ctx, &VoteRequest{Viewer: nil, ID: created.ID, Direction: "up"})
	assert.True(t, IsUnauthorizedError(err))
}

func TestVoteRejectsBadDirection(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	_, err = svc.Vote(ctx, &VoteRequest{Viewer: student(), ID: created.ID, Direction: "sideways"})
	assert.True(t, IsValidationError(err))
}

func TestAddCommentKeepsCountInSync(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	after, err := svc.AddComment(ctx, &AddCommentRequest{
		Viewer: moderator(),
		ID:     created.ID,
		Text:   "Following up with facilities.",
	})
	require.NoError(t, err)
	require.Len(t, after.Comments, 1)
	assert.Equal(t, 1, after.CommentCount)
	assert.Equal(t, "mod-1", after.Comments[0].UserID)
	assert.False(t, after.Comments[0].Timestamp.IsZero())
}

func TestAddCommentRejectsWhitespaceText(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, &AddCommentRequest{
		Viewer: student(),
		ID:     created.ID,
		Text:   "   ",
	})
	assert.True(t, IsValidationError(err))
}

func TestListViewFiltersAndAnnotates(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	second := createRequest(student())
	second.Title = "Cheaper meal plans"
	second.Description = "Dining hall prices went up twice this year."
	second.Category = "Food & Dining"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	voter := &models.UserProfile{PublicID: "voter-1", Role: "user"}
	_, err = svc.Vote(ctx, &VoteRequest{Viewer: voter, ID: first.ID, Direction: "up"})
	require.NoError(t, err)

	listing, err := svc.ListView(ctx, voter, view.Criteria{Category: "Food & Dining"})
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, "Cheaper meal plans", listing[0].Title)

	listing, err = svc.ListView(ctx, voter, view.Criteria{SortOrder: view.SortVotes})
	require.NoError(t, err)
	require.Len(t, listing, 2)
	assert.Equal(t, first.ID, listing[0].ID)
	require.NotNil(t, listing[0].ViewerVote)
	assert.Equal(t, "up", *listing[0].ViewerVote)
}

func TestListViewRejectsUnknownSortOrder(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)

	_, err := svc.ListView(context.Background(), nil, view.Criteria{SortOrder: "random"})
	assert.True(t, IsValidationError(err))
}

func TestListViewUsesCachedSnapshot(t *testing.T) {
	svc, repo := newSuggestionServiceForTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	_, err = svc.ListView(ctx, nil, view.Criteria{})
	require.NoError(t, err)
	calls := repo.listAllCalls

	_, err = svc.ListView(ctx, nil, view.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, calls, repo.listAllCalls)

	// A write invalidates the snapshot.
	_, err = svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)
	_, err = svc.ListView(ctx, nil, view.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, calls+1, repo.listAllCalls)
}

func TestDeleteByOwner(t *testing.T) {
	svc, _ := newSuggestionServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(student()))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, student(), created.ID))

	_, err = svc.Get(ctx, student(), created.ID)
	assert.True(t, IsNotFoundError(err))
}
