package question

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newQueued(t *testing.T) Question {
	t.Helper()
	q, err := New("q1", "mem_1", "Ada", "ada@example.com", "How do I meter for snow?", "/lessons/exposure", now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return q
}

func TestNormalizeSubmission_TooShort(t *testing.T) {
	_, err := NormalizeSubmission("short", "/x")
	if !errors.Is(err, ErrQuestionTooShort) {
		t.Fatalf("err = %v, want ErrQuestionTooShort", err)
	}
	if err.Error() != "question must be at least 10 characters" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestNormalizeSubmission_TrimsBeforeCounting(t *testing.T) {
	_, err := NormalizeSubmission("   123456789   ", "/x")
	if !errors.Is(err, ErrQuestionTooShort) {
		t.Fatalf("err = %v, want ErrQuestionTooShort (9 chars after trim)", err)
	}
	text, err := NormalizeSubmission("  1234567890  ", "/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "1234567890" {
		t.Errorf("text = %q, want trimmed", text)
	}
}

func TestNormalizeSubmission_Bounds(t *testing.T) {
	if _, err := NormalizeSubmission(strings.Repeat("a", MaxQuestionLength), "/x"); err != nil {
		t.Errorf("2000 chars should pass: %v", err)
	}
	if _, err := NormalizeSubmission(strings.Repeat("a", MaxQuestionLength+1), "/x"); !errors.Is(err, ErrQuestionTooLong) {
		t.Errorf("2001 chars: err = %v, want ErrQuestionTooLong", err)
	}
}

func TestNormalizeSubmission_RequiredFields(t *testing.T) {
	if _, err := NormalizeSubmission("a valid question", " "); !errors.Is(err, ErrPageURLRequired) {
		t.Errorf("err = %v, want ErrPageURLRequired", err)
	}
	if _, err := NormalizeSubmission("   ", "/x"); !errors.Is(err, ErrQuestionRequired) {
		t.Errorf("err = %v, want ErrQuestionRequired", err)
	}
}

func TestNew_StartsQueuedWithoutAnswer(t *testing.T) {
	q := newQueued(t)
	if q.Status != StatusQueued {
		t.Errorf("status = %s, want queued", q.Status)
	}
	if q.HasAnswer() || q.HasDraft() {
		t.Error("new question must have no answer and no draft")
	}
	if !q.IsOutstanding() {
		t.Error("new question should be outstanding")
	}
}

func TestApplyDraft_LeavesAnswerEmpty(t *testing.T) {
	q := newQueued(t)
	if err := q.ApplyDraft("Use f/8", "rr-1", now); err != nil {
		t.Fatalf("ApplyDraft: %v", err)
	}
	if q.Status != StatusAISuggested {
		t.Errorf("status = %s, want ai_suggested", q.Status)
	}
	if q.Answer != "" {
		t.Errorf("answer = %q, want empty", q.Answer)
	}
	if !q.IsOutstanding() {
		t.Error("drafted question is still outstanding")
	}
	if q.AIModel != "rr-1" || !q.AIAnsweredAt.Equal(now) {
		t.Errorf("draft metadata not set: %+v", q)
	}
}

func TestApplyDraft_KeepsAnsweredStatus(t *testing.T) {
	q := newQueued(t)
	_ = q.ApplyManualAnswer("Bracket it", "Alan", now)
	if err := q.ApplyDraft("Use f/8", "rr-1", now); err != nil {
		t.Fatalf("ApplyDraft: %v", err)
	}
	if q.Status != StatusAnswered {
		t.Errorf("status = %s, want answered", q.Status)
	}
	if q.Answer != "Bracket it" {
		t.Errorf("answer changed to %q", q.Answer)
	}
}

func TestApplyDraft_Empty(t *testing.T) {
	q := newQueued(t)
	if err := q.ApplyDraft("  ", "m", now); !errors.Is(err, ErrEmptyDraft) {
		t.Fatalf("err = %v, want ErrEmptyDraft", err)
	}
	if q.Status != StatusQueued {
		t.Error("failed draft must not change status")
	}
}

func TestPublishDraft_CopiesDraft(t *testing.T) {
	q := newQueued(t)
	_ = q.ApplyDraft("Use f/8", "rr-1", now)
	later := now.Add(time.Hour)
	if err := q.PublishDraft(later); err != nil {
		t.Fatalf("PublishDraft: %v", err)
	}
	if q.Answer != "Use f/8" || q.AnswerSource != SourceAI || q.AnsweredBy != AIAuthorName || q.Status != StatusAnswered {
		t.Errorf("unexpected published state: %+v", q)
	}
	if q.AIAnswer != "Use f/8" {
		t.Error("draft must be kept for history")
	}
	if !q.AnsweredAt.Equal(later) {
		t.Errorf("answered_at = %v, want %v", q.AnsweredAt, later)
	}
}

func TestPublishDraft_NoDraftLeavesQuestionUnchanged(t *testing.T) {
	q := newQueued(t)
	before := q
	if err := q.PublishDraft(now); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("err = %v, want ErrNoDraft", err)
	}
	if q != before {
		t.Errorf("question mutated: %+v", q)
	}
}

func TestApplyManualAnswer(t *testing.T) {
	q := newQueued(t)
	if err := q.ApplyManualAnswer(" Use a tripod ", "", now); err != nil {
		t.Fatalf("ApplyManualAnswer: %v", err)
	}
	if q.Answer != "Use a tripod" || q.AnswerSource != SourceManual || q.AnsweredBy != DefaultAnswerer {
		t.Errorf("unexpected state: %+v", q)
	}
	if q.IsOutstanding() || !q.IsAnswered() {
		t.Error("answered question should not be outstanding")
	}
	if err := q.ApplyManualAnswer("", "Alan", now); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("err = %v, want ErrEmptyAnswer", err)
	}
}

func TestEditAnswer_ClearResetsAllFieldsTogether(t *testing.T) {
	q := newQueued(t)
	_ = q.ApplyDraft("Use f/8", "rr-1", now)
	_ = q.PublishDraft(now)
	q.EditAnswer("", "", now)
	if q.Status != StatusQueued {
		t.Errorf("status = %s, want queued", q.Status)
	}
	if q.Answer != "" || q.AnsweredBy != "" || !q.AnsweredAt.IsZero() || q.AnswerSource != "" {
		t.Errorf("answer fields not fully cleared: %+v", q)
	}
	if q.AIAnswer != "Use f/8" {
		t.Error("clearing must not drop the draft")
	}
}

func TestEditAnswer_SetsManualWithDefaultAuthor(t *testing.T) {
	q := newQueued(t)
	q.EditAnswer("Shoot raw", "", now)
	if q.AnsweredBy != "Alan" || q.AnswerSource != SourceManual || q.Status != StatusAnswered {
		t.Errorf("unexpected state: %+v", q)
	}
}

func TestLegacyStatuses(t *testing.T) {
	open := Question{Status: StatusOpen}
	if !open.IsOutstanding() {
		t.Error("open without answer is outstanding")
	}
	closed := Question{Status: StatusClosed}
	if closed.IsOutstanding() || !closed.IsAnswered() {
		t.Error("closed counts as answered")
	}
	if StatusOpen.Canonical() != StatusQueued || StatusClosed.Canonical() != StatusAnswered {
		t.Error("legacy aliases must fold onto canonical statuses")
	}
	withAnswer := Question{Status: StatusQueued, Answer: "x"}
	if withAnswer.IsOutstanding() {
		t.Error("a published answer is never outstanding")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses {
		if _, err := ParseStatus(string(s)); err != nil {
			t.Errorf("ParseStatus(%s): %v", s, err)
		}
	}
	if _, err := ParseStatus("pending"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestResponseTime_PrefersPublishedAnswer(t *testing.T) {
	q := Question{CreatedAt: now, AIAnsweredAt: now.Add(time.Hour), AnsweredAt: now.Add(3 * time.Hour)}
	d, ok := q.ResponseTime()
	if !ok || d != 3*time.Hour {
		t.Errorf("ResponseTime = %v,%v want 3h,true", d, ok)
	}
	q.AnsweredAt = time.Time{}
	d, ok = q.ResponseTime()
	if !ok || d != time.Hour {
		t.Errorf("ResponseTime = %v,%v want 1h,true", d, ok)
	}
	if _, ok := (Question{CreatedAt: now}).ResponseTime(); ok {
		t.Error("unanswered question has no response time")
	}
}

func TestToggleArchiveAndOwnership(t *testing.T) {
	q := newQueued(t)
	q.ToggleArchive(now)
	if !q.Archived {
		t.Error("expected archived")
	}
	q.ToggleArchive(now)
	if q.Archived {
		t.Error("expected unarchived")
	}
	if !q.OwnedBy("mem_1") || q.OwnedBy("mem_2") || q.OwnedBy("") {
		t.Error("ownership check wrong")
	}
}

func TestAliases(t *testing.T) {
	got := Aliases(StatusQueued)
	if len(got) != 2 || got[0] != StatusQueued || got[1] != StatusOpen {
		t.Errorf("Aliases(queued) = %v, want [queued open]", got)
	}
	got = Aliases(StatusClosed)
	if len(got) != 2 || got[0] != StatusAnswered || got[1] != StatusClosed {
		t.Errorf("Aliases(closed) = %v, want [answered closed]", got)
	}
	if got := Aliases(StatusAISuggested); len(got) != 1 {
		t.Errorf("Aliases(ai_suggested) = %v", got)
	}
}
