// file: internal/lifecycle/lifecycle_test.go
package lifecycle

import (
	"testing"
	"time"

	"campusvoice/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(func() time.Time { return testClock })
}

func newViewer() *models.UserProfile {
	return &models.UserProfile{ID: 7, PublicID: "viewer-7", Role: "user"}
}

func newSuggestion() *models.Suggestion {
	return &models.Suggestion{
		ID:       42,
		UserID:   "author-1",
		Title:    "Longer library hours",
		Status:   models.StatusPending,
		Upvotes:  5,
		IsPublic: true,
	}
}

// ===============================
// VOTING
// ===============================

func TestApplyVote_AddsVote(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	ledger := models.NewVoteLedger()

	require.NoError(t, engine.ApplyVote(s, ledger, newViewer(), models.VoteUp))

	assert.Equal(t, 6, s.Upvotes)
	assert.True(t, ledger.Has(s.ID, models.VoteUp))
}

func TestApplyVote_ToggleIsSelfInverse(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	ledger := models.NewVoteLedger()
	viewer := newViewer()

	require.NoError(t, engine.ApplyVote(s, ledger, viewer, models.VoteUp))
	require.NoError(t, engine.ApplyVote(s, ledger, viewer, models.VoteUp))

	assert.Equal(t, 5, s.Upvotes)
	assert.False(t, ledger.Has(s.ID, models.VoteUp))
	assert.Empty(t, ledger.Upvoted)
	assert.Empty(t, ledger.Downvoted)
}

func TestApplyVote_SwitchingDirectionMovesTheVote(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	s.Downvotes = 2
	ledger := models.NewVoteLedger()
	viewer := newViewer()

	require.NoError(t, engine.ApplyVote(s, ledger, viewer, models.VoteUp))
	require.NoError(t, engine.ApplyVote(s, ledger, viewer, models.VoteDown))

	assert.Equal(t, 5, s.Upvotes)
	assert.Equal(t, 3, s.Downvotes)
	assert.False(t, ledger.Has(s.ID, models.VoteUp))
	assert.True(t, ledger.Has(s.ID, models.VoteDown))
}

func TestApplyVote_MutualExclusionHoldsOverAnySequence(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	ledger := models.NewVoteLedger()
	viewer := newViewer()

	sequence := []models.VoteDirection{
		models.VoteUp, models.VoteDown, models.VoteDown,
		models.VoteUp, models.VoteDown, models.VoteUp, models.VoteUp,
	}
	for _, direction := range sequence {
		require.NoError(t, engine.ApplyVote(s, ledger, viewer, direction))
		both := ledger.Has(s.ID, models.VoteUp) && ledger.Has(s.ID, models.VoteDown)
		assert.False(t, both, "ledger must never hold both directions")
		assert.GreaterOrEqual(t, s.Upvotes, 0)
		assert.GreaterOrEqual(t, s.Downvotes, 0)
	}
}

func TestApplyVote_BannedViewerIsRejected(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	ledger := models.NewVoteLedger()
	banned := newViewer()
	banned.IsBanned = true

	err := engine.ApplyVote(s, ledger, banned, models.VoteUp)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 5, s.Upvotes)
	assert.Empty(t, ledger.Upvoted)
}

func TestApplyVote_NilViewerIsRejected(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()

	err := engine.ApplyVote(s, models.NewVoteLedger(), nil, models.VoteDown)

	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ===============================
// COMMENTS
// ===============================

func TestAddComment_AppendsAndRecomputesCount(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()

	first, err := engine.AddComment(s, newViewer(), "  please do this  ")
	require.NoError(t, err)
	_, err = engine.AddComment(s, newViewer(), "second")
	require.NoError(t, err)

	assert.Equal(t, "please do this", first.Text)
	assert.Equal(t, "viewer-7", first.UserID)
	assert.Equal(t, testClock, first.Timestamp)
	assert.Len(t, s.Comments, 2)
	assert.Equal(t, len(s.Comments), s.CommentCount)
}

func TestAddComment_EmptyAfterTrimIsRejected(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()

	_, err := engine.AddComment(s, newViewer(), "   \t\n ")

	assert.ErrorIs(t, err, ErrEmptyComment)
	assert.Empty(t, s.Comments)
	assert.Zero(t, s.CommentCount)
}

func TestAddComment_BannedViewerLeavesListUnchanged(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	banned := newViewer()
	banned.IsBanned = true

	_, err := engine.AddComment(s, banned, "sneaky")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, s.Comments)
	assert.Zero(t, s.CommentCount)
}

func TestDeleteComment_PreservesOrderAndCount(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	for _, text := range []string{"a", "b", "c"} {
		_, err := engine.AddComment(s, newViewer(), text)
		require.NoError(t, err)
	}

	require.NoError(t, engine.DeleteComment(s, 1))

	require.Len(t, s.Comments, 2)
	assert.Equal(t, "a", s.Comments[0].Text)
	assert.Equal(t, "c", s.Comments[1].Text)
	assert.Equal(t, 2, s.CommentCount)
}

func TestDeleteComment_IndexOutOfRange(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	_, err := engine.AddComment(s, newViewer(), "only one")
	require.NoError(t, err)

	assert.ErrorIs(t, engine.DeleteComment(s, -1), ErrIndexOutOfRange)
	assert.ErrorIs(t, engine.DeleteComment(s, 1), ErrIndexOutOfRange)
	assert.Equal(t, 1, s.CommentCount)
}

// ===============================
// STATUS TRANSITIONS
// ===============================

func TestApplyStatusChange_IntoTerminalStampsResolvedAt(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()

	engine.ApplyStatusChange(s, models.StatusSolved)

	assert.True(t, s.Solved)
	require.NotNil(t, s.ResolvedAt)
	assert.Equal(t, testClock, *s.ResolvedAt)
	assert.Equal(t, testClock, s.UpdatedAt)
}

func TestApplyStatusChange_TerminalToTerminalKeepsResolvedAt(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	stamped := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Status = models.StatusSolved
	s.Solved = true
	s.ResolvedAt = &stamped

	engine.ApplyStatusChange(s, models.StatusClosed)

	assert.True(t, s.Solved)
	require.NotNil(t, s.ResolvedAt)
	assert.Equal(t, stamped, *s.ResolvedAt)
}

func TestApplyStatusChange_LeavingTerminalClearsResolvedAt(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	stamped := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Status = models.StatusClosed
	s.Solved = true
	s.ResolvedAt = &stamped

	engine.ApplyStatusChange(s, models.StatusPending)

	assert.False(t, s.Solved)
	assert.Nil(t, s.ResolvedAt)
}

func TestApplyStatusChange_IsIdempotent(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()

	engine.ApplyStatusChange(s, models.StatusSolved)
	once := *s.ResolvedAt

	engine.ApplyStatusChange(s, s.Status)

	require.NotNil(t, s.ResolvedAt)
	assert.Equal(t, once, *s.ResolvedAt, "re-applying the current status must not re-stamp")
}

func TestApplyStatusChange_DerivesSolvedFromStatus(t *testing.T) {
	engine := newTestEngine()
	for _, tc := range []struct {
		status string
		solved bool
	}{
		{models.StatusSolved, true},
		{models.StatusClosed, true},
		{models.StatusPending, false},
		{"In Review", false},
	} {
		s := newSuggestion()
		engine.ApplyStatusChange(s, tc.status)
		assert.Equal(t, tc.solved, s.Solved, "status %q", tc.status)
	}
}

func TestNormalize_RederivesAllDerivedFields(t *testing.T) {
	engine := newTestEngine()
	s := newSuggestion()
	s.Status = models.StatusPending
	s.Solved = true // stale
	stale := time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)
	s.ResolvedAt = &stale // stale
	s.Comments = []models.Comment{{Text: "x"}, {Text: "y"}}
	s.CommentCount = 99 // stale

	engine.Normalize(s)

	assert.False(t, s.Solved)
	assert.Nil(t, s.ResolvedAt)
	assert.Equal(t, 2, s.CommentCount)
}
