package web

import (
	"context"
	"net/http"

	"academy/internal/application/listutil"
	"academy/internal/application/orchestrators"
	"academy/internal/application/projections"
	"academy/internal/domain/question"
)

// questionIDRequest is the body of ai-suggest.
type questionIDRequest struct {
	QuestionID string `json:"question_id"`
}

// answerRequest is the body of the answer and publish-ai endpoints.
type answerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	AnsweredBy string `json:"answered_by"`
	Notify     bool   `json:"notify"`
}

// patchQuestionRequest is the PATCH body. A null or empty answer clears it.
type patchQuestionRequest struct {
	Answer     *string `json:"answer"`
	AnsweredBy string  `json:"answered_by"`
	Notify     bool    `json:"notify"`
}

func moderationDeps() orchestrators.ModerationDeps {
	deps := orchestrators.ModerationDeps{
		Store: stores.QuestionStore,
		Notify: orchestrators.NotifyDeps{
			Sender:  opts.EmailSender,
			SiteURL: opts.SiteURL,
			ReplyTo: opts.ReplyTo,
			Timeout: opts.NotifyTimeout,
		},
		Now: timeNow,
	}
	if stores.AuditStore != nil {
		deps.Audit = stores.AuditStore
	}
	return deps
}

func writeAdminQuestion(w http.ResponseWriter, q question.Question) {
	writeJSON(w, http.StatusOK, map[string]any{"question": projections.NewAdminQuestionView(q)})
}

// handleAdminQuestions handles GET /admin/questions.
// PRE: caller is admin
// POST: one page of non-example questions plus the total count
func handleAdminQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	caller, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	f, err := projections.ParseAdminFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := projections.QueryGetAdminQuestions(r.Context(), projections.GetAdminQuestionsQuery{
		Caller: caller,
		Filter: f,
	}, projections.GetAdminQuestionsDeps{Store: stores.QuestionStore})
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAdminQuestionStats handles GET /admin/questions/stats?window=7d|30d|all.
func handleAdminQuestionStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	caller, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	window, err := listutil.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := projections.QueryGetQuestionStats(r.Context(), projections.GetQuestionStatsQuery{
		Caller: caller,
		Window: window,
		Now:    timeNow(),
	}, projections.GetQuestionStatsDeps{Store: stores.QuestionStore})
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleAdminQuestion handles GET and PATCH for /admin/questions/{id}.
// The admin guard runs for every method.
func handleAdminQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	caller, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if r.Method == http.MethodGet {
		q, err := stores.QuestionStore.GetByID(r.Context(), id)
		if err != nil {
			writeOrchestratorError(w, r, err)
			return
		}
		writeAdminQuestion(w, q)
		return
	}

	var req patchQuestionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	answer := ""
	if req.Answer != nil {
		answer = *req.Answer
	}
	q, err := orchestrators.ExecuteEditAnswer(r.Context(), orchestrators.EditAnswerInput{
		Actor:      caller,
		QuestionID: id,
		Answer:     answer,
		AnsweredBy: req.AnsweredBy,
		Notify:     req.Notify,
	}, moderationDeps())
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeAdminQuestion(w, q)
}

// handleAdminAISuggest handles POST /admin/ai-suggest.
// PRE: caller is admin
// POST: draft stored; the published answer is untouched. AI failure is a 500 with no write.
func handleAdminAISuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	caller, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var req questionIDRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), opts.AITimeout)
	defer cancel()
	q, err := orchestrators.ExecuteDraftAnswer(ctx, orchestrators.DraftAnswerInput{
		Actor:      caller,
		QuestionID: req.QuestionID,
	}, opts.Drafter, moderationDeps())
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeAdminQuestion(w, q)
}

// handleAdminAnswer handles POST /admin/answer.
func handleAdminAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	caller, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := orchestrators.ExecuteAnswerQuestion(r.Context(), orchestrators.AnswerQuestionInput{
		Actor:      caller,
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		AnsweredBy: req.AnsweredBy,
		Notify:     req.Notify,
	}, moderationDeps())
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeAdminQuestion(w, q)
}

// handleAdminPublishAI handles POST /admin/publish-ai.
// POST: 400 without writing when the question has no draft
func handleAdminPublishAI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	caller, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := orchestrators.ExecutePublishDraft(r.Context(), orchestrators.PublishDraftInput{
		Actor:      caller,
		QuestionID: req.QuestionID,
		Notify:     req.Notify,
	}, moderationDeps())
	if err != nil {
		writeOrchestratorError(w, r, err)
		return
	}
	writeAdminQuestion(w, q)
}
