package question

import (
	"context"
	"time"

	domain "academy/internal/domain/question"
)

// Store defines the interface for question persistence.
type Store interface {
	// Create persists a new question.
	// PRE: q.ID is unique, q passed domain validation
	// POST: question is persisted
	Create(ctx context.Context, q domain.Question) error

	// GetByID retrieves a question by its ID.
	// PRE: id is non-empty
	// POST: returns the question or domain.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Question, error)

	// ListByMember returns the member's own questions, newest first.
	// PRE: limit > 0
	// POST: every returned row has MemberID == memberID
	ListByMember(ctx context.Context, memberID string, limit int, includeArchived bool) ([]domain.Question, error)

	// List returns one page of questions matching f plus the total match count.
	List(ctx context.Context, f Filter) ([]domain.Question, int, error)

	// UpdateAnswer writes the moderation fields of q: status, published answer,
	// AI draft, updated_at and member_notified_at. Ownership and archive state are untouched.
	// POST: returns domain.ErrNotFound when no row has q.ID
	UpdateAnswer(ctx context.Context, q domain.Question) error

	// ToggleArchive flips archived for the row owned by memberID and returns the new value.
	// POST: returns domain.ErrNotFound when no row matches both id and memberID
	ToggleArchive(ctx context.Context, id, memberID string, now time.Time) (bool, error)
}

// Group is a derived multi-status filter.
type Group string

const (
	GroupOutstanding Group = "outstanding"
	GroupAnswered    Group = "answered"
)

// SortField is a whitelisted ORDER BY column.
type SortField string

const (
	SortCreatedAt  SortField = "created_at"
	SortUpdatedAt  SortField = "updated_at"
	SortAnsweredAt SortField = "answered_at"
	SortStatus     SortField = "status"
)

// ParseSortField validates a sort column, returning SortCreatedAt for "".
func ParseSortField(s string) (SortField, bool) {
	switch SortField(s) {
	case "":
		return SortCreatedAt, true
	case SortCreatedAt, SortUpdatedAt, SortAnsweredAt, SortStatus:
		return SortField(s), true
	}
	return "", false
}

// Filter selects questions for List. Zero values mean "no constraint".
type Filter struct {
	MemberID string
	// Status matches the status and its legacy aliases.
	Status       domain.Status
	Group        Group
	AnswerSource domain.Source
	PageURL      string
	// Search is a case-insensitive substring of question, member_name or member_email.
	Search      string
	CreatedFrom time.Time // inclusive
	CreatedTo   time.Time // exclusive

	IncludeExamples bool
	HideArchived    bool

	Sort   SortField
	Desc   bool
	Limit  int // <= 0 returns every match
	Offset int
}

func memberFilter(memberID string, limit int, includeArchived bool) Filter {
	return Filter{
		MemberID:        memberID,
		IncludeExamples: true,
		HideArchived:    !includeArchived,
		Sort:            SortCreatedAt,
		Desc:            true,
		Limit:           limit,
	}
}
