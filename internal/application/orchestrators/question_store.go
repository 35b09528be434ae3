package orchestrators

import (
	"context"
	"errors"
	"time"

	"academy/internal/domain/audit"
	"academy/internal/domain/question"
)

// QuestionStoreForOrchestrator defines the store interface needed by question orchestrators.
type QuestionStoreForOrchestrator interface {
	Create(ctx context.Context, q question.Question) error
	GetByID(ctx context.Context, id string) (question.Question, error)
	UpdateAnswer(ctx context.Context, q question.Question) error
	ToggleArchive(ctx context.Context, id, memberID string, now time.Time) (bool, error)
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// Orchestrator errors
var (
	ErrAuthRequired  = errors.New("authentication required")
	ErrAdminRequired = errors.New("Admin access required")
	ErrNotOwner      = errors.New("you can only archive your own questions")
	ErrQuestionID    = errors.New("question_id is required")
	ErrAIFailed      = errors.New("AI draft failed")
)
