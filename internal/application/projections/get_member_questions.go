package projections

import (
	"context"
	"fmt"

	"academy/internal/application/listutil"
	"academy/internal/domain/identity"
)

// GetMemberQuestionsQuery carries query parameters.
type GetMemberQuestionsQuery struct {
	Caller          identity.Identity
	Limit           int
	IncludeArchived bool
}

// GetMemberQuestionsResult carries the query result.
type GetMemberQuestionsResult struct {
	Questions []MemberQuestionView `json:"questions"`
}

// GetMemberQuestionsDeps holds dependencies for GetMemberQuestions.
type GetMemberQuestionsDeps struct {
	Store QuestionReader
}

// QueryGetMemberQuestions lists the caller's own questions, newest first.
// PRE: Caller is authenticated
// POST: every row belongs to Caller; Limit clamped to [1, 50]
func QueryGetMemberQuestions(ctx context.Context, query GetMemberQuestionsQuery, deps GetMemberQuestionsDeps) (GetMemberQuestionsResult, error) {
	if !query.Caller.IsAuthenticated() {
		return GetMemberQuestionsResult{}, ErrAuthRequired
	}
	limit := query.Limit
	if limit <= 0 {
		limit = listutil.MemberDefaultLimit
	}
	if limit > listutil.MemberMaxLimit {
		limit = listutil.MemberMaxLimit
	}

	list, err := deps.Store.ListByMember(ctx, query.Caller.Member.ID, limit, query.IncludeArchived)
	if err != nil {
		return GetMemberQuestionsResult{}, fmt.Errorf("list member questions: %w", err)
	}

	result := GetMemberQuestionsResult{Questions: make([]MemberQuestionView, 0, len(list))}
	for _, q := range list {
		result.Questions = append(result.Questions, NewMemberQuestionView(q))
	}
	return result, nil
}
