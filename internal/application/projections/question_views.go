package projections

import (
	"time"

	domainQuestion "academy/internal/domain/question"
)

// MemberQuestionView is a question as its owner sees it. AI drafts are never included.
type MemberQuestionView struct {
	ID           string     `json:"id"`
	Question     string     `json:"question"`
	PageURL      string     `json:"page_url"`
	Status       string     `json:"status"`
	Answer       *string    `json:"answer"`
	AdminAnswer  *string    `json:"admin_answer"` // legacy mirror of answer
	AnsweredBy   string     `json:"answered_by,omitempty"`
	AnswerSource string     `json:"answer_source,omitempty"`
	AnsweredAt   *time.Time `json:"answered_at"`
	Archived     bool       `json:"archived"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AdminQuestionView is the full moderation record.
type AdminQuestionView struct {
	ID               string     `json:"id"`
	MemberID         string     `json:"member_id"`
	MemberName       string     `json:"member_name"`
	MemberEmail      string     `json:"member_email"`
	Question         string     `json:"question"`
	PageURL          string     `json:"page_url"`
	Status           string     `json:"status"`
	Outstanding      bool       `json:"outstanding"`
	Answer           *string    `json:"answer"`
	AnswerSource     string     `json:"answer_source,omitempty"`
	AnsweredBy       string     `json:"answered_by,omitempty"`
	AnsweredAt       *time.Time `json:"answered_at"`
	AIAnswer         *string    `json:"ai_answer"`
	AIAnsweredAt     *time.Time `json:"ai_answered_at"`
	AIModel          string     `json:"ai_model,omitempty"`
	Archived         bool       `json:"archived"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	MemberNotifiedAt *time.Time `json:"member_notified_at"`
}

// NewMemberQuestionView hides the draft: a question with an unpublished draft
// reports as queued to its owner.
func NewMemberQuestionView(q domainQuestion.Question) MemberQuestionView {
	status := q.Status.Canonical()
	if status == domainQuestion.StatusAISuggested {
		status = domainQuestion.StatusQueued
	}
	answer := optionalText(q.Answer)
	return MemberQuestionView{
		ID:           q.ID,
		Question:     q.Question,
		PageURL:      q.PageURL,
		Status:       string(status),
		Answer:       answer,
		AdminAnswer:  answer,
		AnsweredBy:   q.AnsweredBy,
		AnswerSource: string(q.AnswerSource),
		AnsweredAt:   optionalTime(q.AnsweredAt),
		Archived:     q.Archived,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// NewAdminQuestionView maps a question for the moderation API.
func NewAdminQuestionView(q domainQuestion.Question) AdminQuestionView {
	return AdminQuestionView{
		ID:               q.ID,
		MemberID:         q.MemberID,
		MemberName:       q.MemberName,
		MemberEmail:      q.MemberEmail,
		Question:         q.Question,
		PageURL:          q.PageURL,
		Status:           string(q.Status),
		Outstanding:      q.IsOutstanding(),
		Answer:           optionalText(q.Answer),
		AnswerSource:     string(q.AnswerSource),
		AnsweredBy:       q.AnsweredBy,
		AnsweredAt:       optionalTime(q.AnsweredAt),
		AIAnswer:         optionalText(q.AIAnswer),
		AIAnsweredAt:     optionalTime(q.AIAnsweredAt),
		AIModel:          q.AIModel,
		Archived:         q.Archived,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
		MemberNotifiedAt: optionalTime(q.MemberNotifiedAt),
	}
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
