package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"academy/internal/domain/identity"
	"academy/internal/domain/question"
)

// SubmitQuestionInput carries input for a member's question. Ownership comes only
// from Caller.
type SubmitQuestionInput struct {
	Caller   identity.Identity
	Question string
	PageURL  string
}

// SubmitQuestionDeps holds dependencies for SubmitQuestion.
type SubmitQuestionDeps struct {
	Store      QuestionStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitQuestion stores a new queued question owned by the caller.
// PRE: Caller is authenticated
// POST: question persisted with status queued and member fields from Caller
func ExecuteSubmitQuestion(ctx context.Context, input SubmitQuestionInput, deps SubmitQuestionDeps) (question.Question, error) {
	if !input.Caller.IsAuthenticated() {
		return question.Question{}, ErrAuthRequired
	}
	m := input.Caller.Member

	q, err := question.New(deps.GenerateID(), m.ID, input.Caller.DisplayName(), m.Email, input.Question, input.PageURL, deps.Now())
	if err != nil {
		return question.Question{}, err
	}
	if err := deps.Store.Create(ctx, q); err != nil {
		return question.Question{}, fmt.Errorf("question save: %w", err)
	}

	slog.Info("question_event", "event", "question_submitted", "question_id", q.ID, "member_id", q.MemberID, "page_url", q.PageURL)
	return q, nil
}
