package projections

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"academy/internal/adapters/storage/question"
	"academy/internal/application/listutil"
	"academy/internal/domain/identity"
	domainQuestion "academy/internal/domain/question"
)

// Projection errors
var (
	ErrAuthRequired  = errors.New("authentication required")
	ErrAdminRequired = errors.New("Admin access required")
)

// GetQuestionStatsQuery carries query parameters.
type GetQuestionStatsQuery struct {
	Caller identity.Identity
	Window listutil.Window
	Now    time.Time
}

// QuestionStats summarises moderation workload over a window.
type QuestionStats struct {
	Window           string   `json:"window"`
	Posted           int      `json:"posted"`
	Answered         int      `json:"answered"`
	Outstanding      int      `json:"outstanding"`
	AnsweredByAI     int      `json:"answered_by_ai"`
	AvgResponseHours *float64 `json:"avg_response_hours"`
	MembersWaiting   int      `json:"members_waiting"`
}

// GetQuestionStatsDeps holds dependencies for GetQuestionStats.
type GetQuestionStatsDeps struct {
	Store QuestionReader
}

// QueryGetQuestionStats computes the stats tiles from questions created inside the window.
// PRE: Caller is admin
// POST: Outstanding and Answered use the domain predicates, so they agree with
// the outstanding/answered listing groups; example rows are excluded
func QueryGetQuestionStats(ctx context.Context, query GetQuestionStatsQuery, deps GetQuestionStatsDeps) (QuestionStats, error) {
	if !query.Caller.IsAdmin() {
		return QuestionStats{}, ErrAdminRequired
	}
	now := query.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	list, _, err := deps.Store.List(ctx, question.Filter{CreatedFrom: query.Window.Since(now)})
	if err != nil {
		return QuestionStats{}, fmt.Errorf("stats questions: %w", err)
	}

	stats := QuestionStats{Window: query.Window.Name, Posted: len(list)}
	waiting := make(map[string]struct{})
	var totalResponse time.Duration
	responded := 0

	for _, q := range list {
		if q.IsAnswered() {
			stats.Answered++
		}
		if q.IsOutstanding() {
			stats.Outstanding++
			waiting[q.MemberID] = struct{}{}
		}
		if q.HasAnswer() && q.AnswerSource == domainQuestion.SourceAI {
			stats.AnsweredByAI++
		}
		if d, ok := q.ResponseTime(); ok && d >= 0 {
			totalResponse += d
			responded++
		}
	}
	stats.MembersWaiting = len(waiting)
	if responded > 0 {
		hours := math.Round(totalResponse.Hours()/float64(responded)*10) / 10
		stats.AvgResponseHours = &hours
	}
	return stats, nil
}
