package orchestrators

import (
	"context"
	"log/slog"
	"time"

	emailAdapter "academy/internal/adapters/email"
	"academy/internal/domain/question"
)

// NotifyDeps holds dependencies for answer notifications.
type NotifyDeps struct {
	Sender  emailAdapter.Sender // nil when no provider is configured
	SiteURL string
	ReplyTo string
	Timeout time.Duration
}

// ExecuteNotifyMember emails the member that their question was answered.
// Every failure is logged and swallowed.
// PRE: q has a published answer
// POST: returns true only when the provider accepted the message
func ExecuteNotifyMember(ctx context.Context, q question.Question, deps NotifyDeps) bool {
	if deps.Sender == nil {
		slog.Info("notification_skipped", "reason", "no_provider", "question_id", q.ID)
		return false
	}
	if q.MemberEmail == "" {
		slog.Info("notification_skipped", "reason", "no_email", "question_id", q.ID)
		return false
	}
	if !q.HasAnswer() {
		slog.Info("notification_skipped", "reason", "no_answer", "question_id", q.ID)
		return false
	}

	msg, err := emailAdapter.RenderAnswerNotice(emailAdapter.AnswerNotice{
		MemberName:  q.MemberName,
		MemberEmail: q.MemberEmail,
		Question:    q.Question,
		Answer:      q.Answer,
		AnsweredBy:  q.AnsweredBy,
		PageURL:     q.PageURL,
		SiteURL:     deps.SiteURL,
	})
	if err != nil {
		slog.Error("notification_failed", "question_id", q.ID, "error", err)
		return false
	}
	msg.ReplyTo = deps.ReplyTo

	if deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deps.Timeout)
		defer cancel()
	}
	receipt, err := deps.Sender.Send(ctx, msg)
	if err != nil {
		slog.Error("notification_failed", "question_id", q.ID, "error", err)
		return false
	}

	slog.Info("question_event", "event", "member_notified", "question_id", q.ID, "message_id", receipt.MessageID)
	return true
}
