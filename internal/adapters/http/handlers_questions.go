package web

import (
	"context"
	"log/slog"
	"net/http"

	"academy/internal/adapters/http/middleware"
	"academy/internal/adapters/ratelimit"
	"academy/internal/application/listutil"
	"academy/internal/application/orchestrators"
	"academy/internal/application/projections"
	"academy/internal/domain/identity"
)

// submitQuestionRequest is the member POST body. Member fields are not part of it.
type submitQuestionRequest struct {
	Question string `json:"question"`
	PageURL  string `json:"page_url"`
}

// handleQuestions handles GET (own list) and POST (submit) for /questions.
func handleQuestions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handleListMyQuestions(w, r)
	case http.MethodPost:
		handleSubmitQuestion(w, r)
	default:
		methodNotAllowed(w)
	}
}

// handleListMyQuestions returns the caller's questions, newest first.
// PRE: caller authenticated
// POST: only rows owned by the caller; drafts never included
func handleListMyQuestions(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMember(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	result, err := projections.QueryGetMemberQuestions(r.Context(), projections.GetMemberQuestionsQuery{
		Caller:          caller,
		Limit:           listutil.ClampLimit(q.Get("limit"), listutil.MemberDefaultLimit, listutil.MemberMaxLimit),
		IncludeArchived: listutil.ParseBool(q.Get("include_archived")),
	}, projections.GetMemberQuestionsDeps{Store: stores.QuestionStore})
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSubmitQuestion stores a new question for the caller.
// PRE: caller authenticated (checked before the body is read)
// POST: 201 with the stored question; 429 when a rate limit is hit
func handleSubmitQuestion(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireMember(w, r)
	if !ok {
		return
	}
	if !allowSubmission(r.Context(), r, caller) {
		writeError(w, http.StatusTooManyRequests, "too many questions, please try again later")
		return
	}

	var req submitQuestionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := orchestrators.ExecuteSubmitQuestion(r.Context(), orchestrators.SubmitQuestionInput{
		Caller:   caller,
		Question: req.Question,
		PageURL:  req.PageURL,
	}, orchestrators.SubmitQuestionDeps{
		Store:      stores.QuestionStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"question": projections.NewMemberQuestionView(created)})
}

// allowSubmission applies the per-IP and per-member windows. Limiter errors fail open.
func allowSubmission(ctx context.Context, r *http.Request, caller identity.Identity) bool {
	checks := []struct {
		limiter ratelimit.Limiter
		key     string
	}{
		{opts.IPLimiter, "ip:" + middleware.ClientIP(r)},
		{opts.MemberLimiter, "member:" + caller.Member.ID},
	}
	for _, c := range checks {
		if c.limiter == nil {
			continue
		}
		ok, err := c.limiter.Allow(ctx, c.key)
		if err != nil {
			slog.Warn("rate_limit_unavailable", "key", c.key, "error", err)
			continue
		}
		if !ok {
			slog.Warn("rate_limit_exceeded", "key", c.key)
			return false
		}
	}
	return true
}

// handleQuestionArchive handles PATCH /questions/{id}/archive.
// PRE: caller owns the question
// POST: archived flipped; 403 for another member's question with the row unchanged
func handleQuestionArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	caller, ok := requireMember(w, r)
	if !ok {
		return
	}

	q, err := orchestrators.ExecuteToggleArchive(r.Context(), orchestrators.ToggleArchiveInput{
		Caller:     caller,
		QuestionID: r.PathValue("id"),
	}, orchestrators.ToggleArchiveDeps{Store: stores.QuestionStore, Now: timeNow})
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"question": projections.NewMemberQuestionView(q)})
}
