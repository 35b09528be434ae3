package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"academy/internal/domain/question"
)

// SeedExamplesDeps holds dependencies for SeedExamples.
type SeedExamplesDeps struct {
	Store QuestionStoreForOrchestrator
	Now   func() time.Time
}

type exampleQuestion struct {
	id, member, name, text, page, answer string
}

var exampleQuestions = []exampleQuestion{
	{"example-1", "example-member", "Sample Student", "How do I stop my highlights blowing out at the beach?", "/lessons/exposure-basics",
		"Expose for the highlights and lift the shadows in editing. Try -1 EV exposure compensation to start."},
	{"example-2", "example-member", "Sample Student", "What is the difference between aperture priority and manual mode?", "/lessons/camera-modes", ""},
}

// ExecuteSeedExamples inserts the demo questions shown in development. Example rows are
// flagged is_example so they never reach admin listings or stats. Idempotent.
// POST: every example question exists
func ExecuteSeedExamples(ctx context.Context, deps SeedExamplesDeps) (int, error) {
	created := 0
	for _, ex := range exampleQuestions {
		if _, err := deps.Store.GetByID(ctx, ex.id); err == nil {
			continue
		} else if !errors.Is(err, question.ErrNotFound) {
			return created, fmt.Errorf("seed lookup %s: %w", ex.id, err)
		}

		now := deps.Now()
		q, err := question.New(ex.id, ex.member, ex.name, "", ex.text, ex.page, now)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", ex.id, err)
		}
		q.IsExample = true
		if ex.answer != "" {
			_ = q.ApplyManualAnswer(ex.answer, question.DefaultAnswerer, now)
		}
		if err := deps.Store.Create(ctx, q); err != nil {
			return created, fmt.Errorf("seed %s: %w", ex.id, err)
		}
		created++
	}
	if created > 0 {
		slog.Info("seed_event", "event", "example_questions_seeded", "count", created)
	}
	return created, nil
}
