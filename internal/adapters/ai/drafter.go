// Package ai produces draft answers for member questions. Drafts are never shown to
// members directly; an admin has to publish them.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds a single draft request.
const DefaultTimeout = 30 * time.Second

// ErrEmptyResponse is returned when the provider answers with no text.
var ErrEmptyResponse = errors.New("ai provider returned an empty answer")

// Prompt is the context handed to the provider.
type Prompt struct {
	Question   string
	PageURL    string
	MemberName string
}

// Draft is a candidate answer and the model that wrote it.
type Draft struct {
	Text  string
	Model string
}

// Drafter generates a candidate answer.
type Drafter interface {
	Draft(ctx context.Context, p Prompt) (Draft, error)
}

const systemPrompt = `You are Robo-Ranger, the teaching assistant of an online photography academy.
Answer the member's question in plain, encouraging language. Keep it under 250 words.
Refer to the lesson they were reading when it helps. If you are not sure, say so and
suggest what the member could try or ask next. Use Markdown for short lists only.`

// UserMessage renders the member-specific part of the prompt.
func UserMessage(p Prompt) string {
	var sb strings.Builder
	if name := strings.TrimSpace(p.MemberName); name != "" {
		fmt.Fprintf(&sb, "Member: %s\n", name)
	}
	if page := strings.TrimSpace(p.PageURL); page != "" {
		fmt.Fprintf(&sb, "Lesson page: %s\n", page)
	}
	sb.WriteString("\nQuestion:\n")
	sb.WriteString(strings.TrimSpace(p.Question))
	return sb.String()
}
