package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"campusvoice/internal/models"
)

// fakeSuggestionRepo is an in-memory SuggestionRepository. GetByID and
// ListAll hand out copies, like rows scanned from a database.
type fakeSuggestionRepo struct {
	mu           sync.Mutex
	nextID       int64
	nextComment  int64
	suggestions  map[int64]*models.Suggestion
	votes        map[string]map[int64]models.VoteDirection
	failUpdateID int64
	listAllCalls int
}

func newFakeSuggestionRepo() *fakeSuggestionRepo {
	return &fakeSuggestionRepo{
		nextID:      1,
		nextComment: 1,
		suggestions: make(map[int64]*models.Suggestion),
		votes:       make(map[string]map[int64]models.VoteDirection),
	}
}

func cloneSuggestion(s *models.Suggestion) *models.Suggestion {
	out := *s
	out.Tags = append(models.StringArray{}, s.Tags...)
	out.Comments = append([]models.Comment{}, s.Comments...)
	out.Attachments = append(models.StringArray{}, s.Attachments...)
	if s.ResolvedAt != nil {
		t := *s.ResolvedAt
		out.ResolvedAt = &t
	}
	return &out
}

func (r *fakeSuggestionRepo) Create(ctx context.Context, tenantID string, s *models.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	r.suggestions[s.ID] = cloneSuggestion(s)
	return nil
}

func (r *fakeSuggestionRepo) GetByID(ctx context.Context, tenantID string, id int64) (*models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suggestions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneSuggestion(s), nil
}

func (r *fakeSuggestionRepo) Update(ctx context.Context, tenantID string, s *models.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == r.failUpdateID && r.failUpdateID != 0 {
		return fmt.Errorf("simulated write failure")
	}
	if _, ok := r.suggestions[s.ID]; !ok {
		return sql.ErrNoRows
	}
	r.suggestions[s.ID] = cloneSuggestion(s)
	return nil
}

func (r *fakeSuggestionRepo) Delete(ctx context.Context, tenantID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.suggestions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.suggestions, id)
	return nil
}

func (r *fakeSuggestionRepo) ListAll(ctx context.Context, tenantID string) ([]*models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listAllCalls++
	out := make([]*models.Suggestion, 0, len(r.suggestions))
	for id := int64(1); id < r.nextID; id++ {
		if s, ok := r.suggestions[id]; ok {
			out = append(out, cloneSuggestion(s))
		}
	}
	return out, nil
}

func (r *fakeSuggestionRepo) GetVoteLedger(ctx context.Context, userPublicID string) (*models.VoteLedger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ledger := models.NewVoteLedger()
	for id, direction := range r.votes[userPublicID] {
		ledger.Record(id, direction)
	}
	return ledger, nil
}

func (r *fakeSuggestionRepo) GetViewerVote(ctx context.Context, suggestionID int64, userPublicID string) (models.VoteDirection, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	direction, ok := r.votes[userPublicID][suggestionID]
	return direction, ok, nil
}

func (r *fakeSuggestionRepo) SaveVoteState(ctx context.Context, tenantID string, s *models.Suggestion, userPublicID string, ledger *models.VoteLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.suggestions[s.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Upvotes = s.Upvotes
	stored.Downvotes = s.Downvotes
	stored.UpdatedAt = s.UpdatedAt

	if r.votes[userPublicID] == nil {
		r.votes[userPublicID] = make(map[int64]models.VoteDirection)
	}
	switch {
	case ledger.Has(s.ID, models.VoteUp):
		r.votes[userPublicID][s.ID] = models.VoteUp
	case ledger.Has(s.ID, models.VoteDown):
		r.votes[userPublicID][s.ID] = models.VoteDown
	default:
		delete(r.votes[userPublicID], s.ID)
	}
	return nil
}

func (r *fakeSuggestionRepo) AddComment(ctx context.Context, tenantID string, s *models.Suggestion, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.suggestions[s.ID]
	if !ok {
		return sql.ErrNoRows
	}
	comment.ID = r.nextComment
	r.nextComment++
	stored.Comments = append(stored.Comments, *comment)
	stored.CommentCount = len(stored.Comments)
	stored.UpdatedAt = s.UpdatedAt
	return nil
}

func (r *fakeSuggestionRepo) DeleteCommentAt(ctx context.Context, tenantID string, s *models.Suggestion, commentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.suggestions[s.ID]
	if !ok {
		return sql.ErrNoRows
	}
	for i, c := range stored.Comments {
		if c.ID == commentID {
			stored.Comments = append(stored.Comments[:i], stored.Comments[i+1:]...)
			stored.CommentCount = len(stored.Comments)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeSuggestionRepo) SaveStatus(ctx context.Context, tenantID string, s *models.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.suggestions[s.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Status = s.Status
	stored.Solved = s.Solved
	stored.ResolvedAt = s.ResolvedAt
	stored.UpdatedAt = s.UpdatedAt
	return nil
}

func (r *fakeSuggestionRepo) AppendAttachment(ctx context.Context, tenantID string, suggestionID int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.suggestions[suggestionID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Attachments = append(stored.Attachments, url)
	return nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*models.UserProfile // keyed by public id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]*models.UserProfile)}
}

func (r *fakeUserRepo) Create(ctx context.Context, tenantID string, user *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.PublicID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByInstitutionID(ctx context.Context, tenantID, institutionID string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.InstitutionID == institutionID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByPublicID(ctx context.Context, tenantID, publicID string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[publicID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) SetBanned(ctx context.Context, tenantID, publicID string, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[publicID]
	if !ok {
		return sql.ErrNoRows
	}
	user.IsBanned = banned
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, tenantID string, params models.PaginationParams) (*models.PaginatedResponse[*models.UserProfile], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.UserProfile, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	return &models.PaginatedResponse[*models.UserProfile]{Data: out}, nil
}

// staticSummarizer returns a fixed summary, keeping tests away from HTTP.
type staticSummarizer struct{ summary string }

func (s staticSummarizer) Summarize(ctx context.Context, title, description string) string {
	return s.summary
}
