package projections

import (
	"context"

	"academy/internal/adapters/storage/question"
	domainQuestion "academy/internal/domain/question"
)

// QuestionReader is the read side of the question store.
type QuestionReader interface {
	ListByMember(ctx context.Context, memberID string, limit int, includeArchived bool) ([]domainQuestion.Question, error)
	List(ctx context.Context, f question.Filter) ([]domainQuestion.Question, int, error)
}
