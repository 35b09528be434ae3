package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"academy/internal/domain/identity"
	"academy/internal/domain/question"
)

// ToggleArchiveInput carries input for the member archive toggle.
type ToggleArchiveInput struct {
	Caller     identity.Identity
	QuestionID string
}

// ToggleArchiveDeps holds dependencies for ToggleArchive.
type ToggleArchiveDeps struct {
	Store QuestionStoreForOrchestrator
	Now   func() time.Time
}

// ExecuteToggleArchive flips the archived flag of the caller's own question.
// Ownership is checked on the read and again by the store's owner-scoped write.
// PRE: Caller is authenticated
// POST: archived flipped, or ErrNotOwner / question.ErrNotFound with the row unchanged
func ExecuteToggleArchive(ctx context.Context, input ToggleArchiveInput, deps ToggleArchiveDeps) (question.Question, error) {
	if !input.Caller.IsAuthenticated() {
		return question.Question{}, ErrAuthRequired
	}
	if input.QuestionID == "" {
		return question.Question{}, ErrQuestionID
	}

	q, err := deps.Store.GetByID(ctx, input.QuestionID)
	if err != nil {
		return question.Question{}, err
	}
	memberID := input.Caller.Member.ID
	if !q.OwnedBy(memberID) {
		slog.Warn("question_event", "event", "archive_denied", "question_id", q.ID, "member_id", memberID)
		return question.Question{}, ErrNotOwner
	}

	now := deps.Now()
	archived, err := deps.Store.ToggleArchive(ctx, q.ID, memberID, now)
	if errors.Is(err, question.ErrNotFound) {
		// row changed hands or vanished between read and write
		return question.Question{}, ErrNotOwner
	}
	if err != nil {
		return question.Question{}, fmt.Errorf("question archive: %w", err)
	}
	q.Archived = archived
	q.UpdatedAt = now

	slog.Info("question_event", "event", "question_archive_toggled", "question_id", q.ID, "archived", archived)
	return q, nil
}
