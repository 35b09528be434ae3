package projections

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"academy/internal/adapters/storage/question"
	"academy/internal/application/listutil"
	"academy/internal/domain/identity"
	domainQuestion "academy/internal/domain/question"
)

var adminSortColumns = []string{
	string(question.SortCreatedAt),
	string(question.SortUpdatedAt),
	string(question.SortAnsweredAt),
	string(question.SortStatus),
}

// GetAdminQuestionsQuery carries query parameters. Filter.IncludeExamples is ignored.
type GetAdminQuestionsQuery struct {
	Caller identity.Identity
	Filter question.Filter
}

// GetAdminQuestionsResult carries one page plus the total match count.
type GetAdminQuestionsResult struct {
	Questions []AdminQuestionView `json:"questions"`
	Total     int                 `json:"total"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

// GetAdminQuestionsDeps holds dependencies for GetAdminQuestions.
type GetAdminQuestionsDeps struct {
	Store QuestionReader
}

// QueryGetAdminQuestions lists questions for moderation.
// PRE: Caller is admin
// POST: example rows excluded; Limit in [1, 100]; no Sort means newest first
func QueryGetAdminQuestions(ctx context.Context, query GetAdminQuestionsQuery, deps GetAdminQuestionsDeps) (GetAdminQuestionsResult, error) {
	if !query.Caller.IsAdmin() {
		return GetAdminQuestionsResult{}, ErrAdminRequired
	}
	f := query.Filter
	f.IncludeExamples = false
	if f.Limit <= 0 {
		f.Limit = listutil.AdminDefaultLimit
	}
	if f.Limit > listutil.AdminMaxLimit {
		f.Limit = listutil.AdminMaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Sort == "" {
		f.Sort = question.SortCreatedAt
		f.Desc = true
	}

	list, total, err := deps.Store.List(ctx, f)
	if err != nil {
		return GetAdminQuestionsResult{}, fmt.Errorf("list questions: %w", err)
	}

	result := GetAdminQuestionsResult{
		Questions: make([]AdminQuestionView, 0, len(list)),
		Total:     total,
		Limit:     f.Limit,
		Offset:    f.Offset,
	}
	for _, q := range list {
		result.Questions = append(result.Questions, NewAdminQuestionView(q))
	}
	return result, nil
}

// ParseAdminFilter reads the listing filters from query parameters. status accepts a
// raw status, "outstanding", "answered" (the answered group) or "all". Unknown values
// are errors.
func ParseAdminFilter(q url.Values) (question.Filter, error) {
	var f question.Filter

	switch status := strings.ToLower(strings.TrimSpace(q.Get("status"))); status {
	case "", "all":
	case string(question.GroupOutstanding):
		f.Group = question.GroupOutstanding
	case string(question.GroupAnswered):
		f.Group = question.GroupAnswered
	default:
		st, err := domainQuestion.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}

	if raw := q.Get("answer_source"); raw != "" {
		src, err := domainQuestion.ParseSource(raw)
		if err != nil {
			return f, err
		}
		f.AnswerSource = src
	}
	f.PageURL = strings.TrimSpace(q.Get("page_url"))
	f.MemberID = strings.TrimSpace(q.Get("member_id"))
	f.Search = strings.TrimSpace(q.Get("search"))
	f.HideArchived = listutil.ParseBool(q.Get("hide_archived"))

	dates, err := listutil.ParseDateRange(q)
	if err != nil {
		return f, err
	}
	if dates.From != nil {
		f.CreatedFrom = *dates.From
	}
	if dates.To != nil {
		f.CreatedTo = *dates.To
	}

	sort, err := listutil.ParseSortParams(q, adminSortColumns)
	if err != nil {
		return f, err
	}
	f.Sort, _ = question.ParseSortField(sort.Sort)
	f.Desc = sort.Desc

	page := listutil.ParsePageParams(q, listutil.AdminDefaultLimit, listutil.AdminMaxLimit)
	f.Limit = page.Limit
	f.Offset = page.Offset
	return f, nil
}
