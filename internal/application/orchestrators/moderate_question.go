package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"academy/internal/adapters/ai"
	"academy/internal/domain/audit"
	"academy/internal/domain/identity"
	"academy/internal/domain/question"
)

// Drafter produces AI candidate answers.
type Drafter interface {
	Draft(ctx context.Context, p ai.Prompt) (ai.Draft, error)
}

// ModerationDeps holds dependencies shared by the admin moderation orchestrators.
type ModerationDeps struct {
	Store  QuestionStoreForOrchestrator
	Audit  AuditRecorder // optional
	Notify NotifyDeps
	Now    func() time.Time
}

func requireAdmin(actor identity.Identity) error {
	if !actor.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func loadQuestion(ctx context.Context, store QuestionStoreForOrchestrator, id string) (question.Question, error) {
	if strings.TrimSpace(id) == "" {
		return question.Question{}, ErrQuestionID
	}
	return store.GetByID(ctx, id)
}

// recordAudit writes an audit row. Failures are logged; they never undo the change.
func recordAudit(ctx context.Context, deps ModerationDeps, actor identity.Identity, action audit.Action, q question.Question, desc string, meta map[string]string) {
	if deps.Audit == nil {
		return
	}
	ev := audit.NewEvent(actor.Member.ID, actor.Member.Email, actor.Kind.String(), audit.CategoryQuestion, action, deps.Now()).
		WithResource(audit.ResourceQuestion, q.ID).
		WithDescription(desc)
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			ev = ev.WithMetadata(string(b))
		}
	}
	if err := deps.Audit.Save(ctx, ev); err != nil {
		slog.Error("audit_save_failed", "action", action, "question_id", q.ID, "error", err)
	}
}

// notifyAfterAnswer sends the optional notification and stamps member_notified_at.
func notifyAfterAnswer(ctx context.Context, deps ModerationDeps, q question.Question) question.Question {
	if !ExecuteNotifyMember(ctx, q, deps.Notify) {
		return q
	}
	q.MarkNotified(deps.Now())
	if err := deps.Store.UpdateAnswer(ctx, q); err != nil {
		slog.Error("notification_stamp_failed", "question_id", q.ID, "error", err)
	}
	return q
}

// --- AI Draft ---

// DraftAnswerInput carries input for the AI suggest orchestrator.
type DraftAnswerInput struct {
	Actor      identity.Identity
	QuestionID string
}

// ExecuteDraftAnswer asks the drafter for a candidate answer and stores it as a draft.
// PRE: Actor is admin; question exists
// POST: ai_answer, ai_answered_at, ai_model set; answer untouched. On AI failure nothing is written.
func ExecuteDraftAnswer(ctx context.Context, input DraftAnswerInput, drafter Drafter, deps ModerationDeps) (question.Question, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return question.Question{}, err
	}
	q, err := loadQuestion(ctx, deps.Store, input.QuestionID)
	if err != nil {
		return question.Question{}, err
	}
	if drafter == nil {
		return question.Question{}, fmt.Errorf("%w: no AI provider configured", ErrAIFailed)
	}

	draft, err := drafter.Draft(ctx, ai.Prompt{Question: q.Question, PageURL: q.PageURL, MemberName: q.MemberName})
	if err != nil {
		slog.Error("ai_draft_failed", "question_id", q.ID, "error", err)
		return question.Question{}, fmt.Errorf("%w: %v", ErrAIFailed, err)
	}
	if err := q.ApplyDraft(draft.Text, draft.Model, deps.Now()); err != nil {
		slog.Error("ai_draft_failed", "question_id", q.ID, "error", err)
		return question.Question{}, fmt.Errorf("%w: %v", ErrAIFailed, err)
	}
	if err := deps.Store.UpdateAnswer(ctx, q); err != nil {
		return question.Question{}, fmt.Errorf("question save: %w", err)
	}

	recordAudit(ctx, deps, input.Actor, audit.ActionDraft, q, "AI draft generated", map[string]string{"ai_model": q.AIModel})
	slog.Info("question_event", "event", "ai_draft_saved", "question_id", q.ID, "ai_model", q.AIModel, "status", q.Status)
	return q, nil
}

// --- Manual Answer ---

// AnswerQuestionInput carries input for a manual admin answer.
type AnswerQuestionInput struct {
	Actor      identity.Identity
	QuestionID string
	Answer     string
	AnsweredBy string // empty uses the admin's display name
	Notify     bool
}

// ExecuteAnswerQuestion publishes an admin-written answer.
// PRE: Actor is admin; Answer non-empty
// POST: status answered, source manual; notification attempted when requested
func ExecuteAnswerQuestion(ctx context.Context, input AnswerQuestionInput, deps ModerationDeps) (question.Question, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return question.Question{}, err
	}
	if strings.TrimSpace(input.Answer) == "" {
		return question.Question{}, question.ErrEmptyAnswer
	}
	q, err := loadQuestion(ctx, deps.Store, input.QuestionID)
	if err != nil {
		return question.Question{}, err
	}

	by := strings.TrimSpace(input.AnsweredBy)
	if by == "" {
		by = input.Actor.DisplayName()
	}
	if err := q.ApplyManualAnswer(input.Answer, by, deps.Now()); err != nil {
		return question.Question{}, err
	}
	if err := deps.Store.UpdateAnswer(ctx, q); err != nil {
		return question.Question{}, fmt.Errorf("question save: %w", err)
	}

	recordAudit(ctx, deps, input.Actor, audit.ActionAnswer, q, "Manual answer published", map[string]string{"answered_by": q.AnsweredBy})
	slog.Info("question_event", "event", "question_answered", "question_id", q.ID, "answer_source", q.AnswerSource)

	if input.Notify {
		q = notifyAfterAnswer(ctx, deps, q)
	}
	return q, nil
}

// --- Publish AI Draft ---

// PublishDraftInput carries input for publishing the stored AI draft.
type PublishDraftInput struct {
	Actor      identity.Identity
	QuestionID string
	Notify     bool
}

// ExecutePublishDraft copies the AI draft into the published answer.
// PRE: Actor is admin; question has an AI draft
// POST: answer = ai_answer, answered_by Robo-Ranger, source ai, status answered; audit row written.
// Returns question.ErrNoDraft without writing anything when no draft exists.
func ExecutePublishDraft(ctx context.Context, input PublishDraftInput, deps ModerationDeps) (question.Question, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return question.Question{}, err
	}
	q, err := loadQuestion(ctx, deps.Store, input.QuestionID)
	if err != nil {
		return question.Question{}, err
	}
	if err := q.PublishDraft(deps.Now()); err != nil {
		return question.Question{}, err
	}
	if err := deps.Store.UpdateAnswer(ctx, q); err != nil {
		return question.Question{}, fmt.Errorf("question save: %w", err)
	}

	recordAudit(ctx, deps, input.Actor, audit.ActionPublish, q, "AI draft published", map[string]string{
		"ai_model":      q.AIModel,
		"answer_source": string(q.AnswerSource),
	})
	slog.Info("question_event", "event", "ai_draft_published", "question_id", q.ID, "ai_model", q.AIModel)

	if input.Notify {
		q = notifyAfterAnswer(ctx, deps, q)
	}
	return q, nil
}

// --- Generic Edit ---

// EditAnswerInput carries input for the admin PATCH. An empty Answer clears it.
type EditAnswerInput struct {
	Actor      identity.Identity
	QuestionID string
	Answer     string
	AnsweredBy string
	Notify     bool
}

// ExecuteEditAnswer updates or clears the published answer.
// PRE: Actor is admin
// POST: empty Answer -> answer fields cleared together and status queued;
// otherwise manual answer with answered_by defaulting to Alan
func ExecuteEditAnswer(ctx context.Context, input EditAnswerInput, deps ModerationDeps) (question.Question, error) {
	if err := requireAdmin(input.Actor); err != nil {
		return question.Question{}, err
	}
	q, err := loadQuestion(ctx, deps.Store, input.QuestionID)
	if err != nil {
		return question.Question{}, err
	}

	q.EditAnswer(input.Answer, input.AnsweredBy, deps.Now())
	if err := deps.Store.UpdateAnswer(ctx, q); err != nil {
		return question.Question{}, fmt.Errorf("question save: %w", err)
	}

	if !q.HasAnswer() {
		recordAudit(ctx, deps, input.Actor, audit.ActionClear, q, "Answer cleared", nil)
		slog.Info("question_event", "event", "answer_cleared", "question_id", q.ID)
		return q, nil
	}

	recordAudit(ctx, deps, input.Actor, audit.ActionEdit, q, "Answer edited", map[string]string{"answered_by": q.AnsweredBy})
	slog.Info("question_event", "event", "answer_edited", "question_id", q.ID)
	if input.Notify {
		q = notifyAfterAnswer(ctx, deps, q)
	}
	return q, nil
}

// IsClientError reports whether err is a validation failure the caller can correct.
func IsClientError(err error) bool {
	for _, target := range []error{
		question.ErrPageURLRequired, question.ErrQuestionRequired, question.ErrQuestionTooShort,
		question.ErrQuestionTooLong, question.ErrEmptyAnswer, question.ErrNoDraft,
		question.ErrInvalidStatus, question.ErrInvalidSource, ErrQuestionID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
