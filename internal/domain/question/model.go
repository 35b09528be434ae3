package question

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the lifecycle state of a question.
type Status string

// Question statuses. Open and Closed are legacy values still present in older rows;
// they are aliases of Queued and Answered and never written by this service.
const (
	StatusQueued      Status = "queued"
	StatusOpen        Status = "open"
	StatusAISuggested Status = "ai_suggested"
	StatusAnswered    Status = "answered"
	StatusClosed      Status = "closed"
)

// Source records who produced the published answer.
type Source string

// Answer sources
const (
	SourceManual Source = "manual"
	SourceAI     Source = "ai"
)

const (
	MinQuestionLength = 10
	MaxQuestionLength = 2000

	// AIAuthorName is shown as answered_by when an AI draft is published.
	AIAuthorName = "Robo-Ranger"
	// DefaultAnswerer is used when an admin edit does not name the author.
	DefaultAnswerer = "Alan"
)

// Domain errors
var (
	ErrNotFound         = errors.New("question not found")
	ErrPageURLRequired  = errors.New("page_url is required")
	ErrQuestionRequired = errors.New("question is required")
	ErrQuestionTooShort = errors.New("question must be at least 10 characters")
	ErrQuestionTooLong  = errors.New("question must be at most 2000 characters")
	ErrEmptyAnswer      = errors.New("answer is required")
	ErrEmptyDraft       = errors.New("AI answer is empty")
	ErrNoDraft          = errors.New("question has no AI answer to publish")
	ErrInvalidStatus    = errors.New("status must be one of: queued, open, ai_suggested, answered, closed")
	ErrInvalidSource    = errors.New("answer_source must be one of: manual, ai")
)

// AllStatuses lists every status value that may appear in storage.
var AllStatuses = []Status{StatusQueued, StatusOpen, StatusAISuggested, StatusAnswered, StatusClosed}

// OutstandingStatuses are the raw status values a question can hold while it still
// waits for a published answer. Listing filters and stats both derive from this.
func OutstandingStatuses() []Status {
	return []Status{StatusQueued, StatusOpen, StatusAISuggested}
}

// AnsweredStatuses are the raw status values of a resolved question.
func AnsweredStatuses() []Status {
	return []Status{StatusAnswered, StatusClosed}
}

// Aliases returns every stored status value whose canonical form is s.
func Aliases(s Status) []Status {
	want := s.Canonical()
	var out []Status
	for _, v := range AllStatuses {
		if v.Canonical() == want {
			out = append(out, v)
		}
	}
	return out
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	for _, v := range AllStatuses {
		if v == st {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// ParseSource validates a raw answer source string.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceManual, SourceAI:
		return Source(s), nil
	}
	return "", ErrInvalidSource
}

// Canonical folds legacy aliases onto the canonical enum.
func (s Status) Canonical() Status {
	switch s {
	case StatusOpen:
		return StatusQueued
	case StatusClosed:
		return StatusAnswered
	}
	return s
}

// Question is a member's question and its moderation state.
// INVARIANT: Answer is only set by ApplyManualAnswer, PublishDraft or EditAnswer.
// INVARIANT: Answer, AnsweredAt, AnsweredBy and AnswerSource are cleared together.
type Question struct {
	ID          string
	MemberID    string
	MemberName  string
	MemberEmail string
	Question    string
	PageURL     string
	Status      Status

	Answer       string
	AnswerSource Source
	AnsweredBy   string
	AnsweredAt   time.Time

	AIAnswer     string
	AIAnsweredAt time.Time
	AIModel      string

	Archived  bool
	IsExample bool

	CreatedAt        time.Time
	UpdatedAt        time.Time
	MemberNotifiedAt time.Time
}

// NormalizeSubmission trims the question text and checks the submission rules.
// PRE: none
// POST: returns the trimmed text, or the first rule that failed
func NormalizeSubmission(text, pageURL string) (string, error) {
	if strings.TrimSpace(pageURL) == "" {
		return "", ErrPageURLRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrQuestionRequired
	}
	n := utf8.RuneCountInString(text)
	if n < MinQuestionLength {
		return "", ErrQuestionTooShort
	}
	if n > MaxQuestionLength {
		return "", ErrQuestionTooLong
	}
	return text, nil
}

// New builds a queued question owned by the given member.
// PRE: memberID comes from a verified identity
// POST: status is queued; answer and draft fields are empty
func New(id, memberID, memberName, memberEmail, text, pageURL string, now time.Time) (Question, error) {
	trimmed, err := NormalizeSubmission(text, pageURL)
	if err != nil {
		return Question{}, err
	}
	return Question{
		ID:          id,
		MemberID:    memberID,
		MemberName:  memberName,
		MemberEmail: memberEmail,
		Question:    trimmed,
		PageURL:     strings.TrimSpace(pageURL),
		Status:      StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// HasAnswer reports whether a published answer exists.
func (q Question) HasAnswer() bool {
	return strings.TrimSpace(q.Answer) != ""
}

// HasDraft reports whether an AI draft exists.
func (q Question) HasDraft() bool {
	return strings.TrimSpace(q.AIAnswer) != ""
}

// IsOutstanding reports whether the question still waits for a published answer,
// regardless of whether a draft exists.
func (q Question) IsOutstanding() bool {
	if q.HasAnswer() {
		return false
	}
	for _, s := range OutstandingStatuses() {
		if q.Status == s {
			return true
		}
	}
	return false
}

// IsAnswered reports whether the question counts as answered.
func (q Question) IsAnswered() bool {
	return q.HasAnswer() || q.Status.Canonical() == StatusAnswered
}

// OwnedBy reports whether memberID owns the question.
func (q Question) OwnedBy(memberID string) bool {
	return memberID != "" && q.MemberID == memberID
}

// ResponseTime is the delay between submission and the first answer timestamp,
// preferring the published answer over the AI draft.
func (q Question) ResponseTime() (time.Duration, bool) {
	answered := q.AnsweredAt
	if answered.IsZero() {
		answered = q.AIAnsweredAt
	}
	if answered.IsZero() || q.CreatedAt.IsZero() {
		return 0, false
	}
	return answered.Sub(q.CreatedAt), true
}

// ApplyDraft stores an AI candidate answer. The published answer is never touched;
// a question that already has one keeps its answered status.
// PRE: text is the AI output
// POST: draft fields set; status ai_suggested unless already answered
func (q *Question) ApplyDraft(text, model string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyDraft
	}
	q.AIAnswer = text
	q.AIModel = model
	q.AIAnsweredAt = now
	if !q.HasAnswer() {
		q.Status = StatusAISuggested
	}
	q.UpdatedAt = now
	return nil
}

// ApplyManualAnswer publishes an admin-written answer.
// PRE: text non-empty
// POST: status answered, source manual
func (q *Question) ApplyManualAnswer(text, by string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}
	if strings.TrimSpace(by) == "" {
		by = DefaultAnswerer
	}
	q.Answer = text
	q.AnsweredBy = by
	q.AnswerSource = SourceManual
	q.AnsweredAt = now
	q.Status = StatusAnswered
	q.UpdatedAt = now
	return nil
}

// PublishDraft copies the AI draft into the published answer. The draft itself is kept.
// PRE: HasDraft()
// POST: status answered, source ai, answered_by Robo-Ranger; unchanged on error
func (q *Question) PublishDraft(now time.Time) error {
	if !q.HasDraft() {
		return ErrNoDraft
	}
	q.Answer = q.AIAnswer
	q.AnsweredBy = AIAuthorName
	q.AnswerSource = SourceAI
	q.AnsweredAt = now
	q.Status = StatusAnswered
	q.UpdatedAt = now
	return nil
}

// EditAnswer is the generic admin update: an empty answer clears it, anything else
// publishes it as a manual answer.
func (q *Question) EditAnswer(text, by string, now time.Time) {
	if strings.TrimSpace(text) == "" {
		q.ClearAnswer(now)
		return
	}
	// text is non-empty so this cannot fail
	_ = q.ApplyManualAnswer(text, by, now)
}

// ClearAnswer removes the published answer and requeues the question.
// POST: all answer fields empty, status queued; draft fields untouched
func (q *Question) ClearAnswer(now time.Time) {
	q.Answer = ""
	q.AnsweredBy = ""
	q.AnsweredAt = time.Time{}
	q.AnswerSource = ""
	q.Status = StatusQueued
	q.UpdatedAt = now
}

// ToggleArchive flips the member-controlled archived flag.
func (q *Question) ToggleArchive(now time.Time) {
	q.Archived = !q.Archived
	q.UpdatedAt = now
}

// MarkNotified records a successful answer notification.
func (q *Question) MarkNotified(now time.Time) {
	q.MemberNotifiedAt = now
}
