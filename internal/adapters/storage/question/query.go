package question

import (
	"strconv"
	"strings"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/question"
)

const columns = `id, member_id, member_name, member_email, question, page_url, status,
	answer, answer_source, answered_by, answered_at,
	ai_answer, ai_answered_at, ai_model,
	archived, is_example, created_at, updated_at, member_notified_at`

// dialect carries the few differences between SQLite and Postgres SQL.
type dialect struct {
	bind    func(n int) string
	like    string
	timeArg func(time.Time) any
	boolArg func(bool) any
}

var sqliteDialect = dialect{
	bind:    func(int) string { return "?" },
	like:    "LIKE",
	timeArg: storage.FormatTime,
	boolArg: func(b bool) any {
		if b {
			return 1
		}
		return 0
	},
}

var postgresDialect = dialect{
	bind: func(n int) string { return "$" + strconv.Itoa(n) },
	like: "ILIKE",
	timeArg: func(t time.Time) any {
		if t.IsZero() {
			return nil
		}
		return t.UTC()
	},
	boolArg: func(b bool) any { return b },
}

// likeEscaper makes the search term match literally under ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type queryBuilder struct {
	d     dialect
	conds []string
	args  []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return b.d.bind(len(b.args))
}

func (b *queryBuilder) statusIn(statuses []domain.Status) string {
	ph := make([]string, len(statuses))
	for i, s := range statuses {
		ph[i] = b.arg(string(s))
	}
	return "status IN (" + strings.Join(ph, ", ") + ")"
}

func (b *queryBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// buildWhere translates f into a WHERE clause. The outstanding and answered groups
// mirror domain.Question.IsOutstanding and IsAnswered.
func buildWhere(f Filter, d dialect) *queryBuilder {
	b := &queryBuilder{d: d}

	if !f.IncludeExamples {
		b.conds = append(b.conds, "is_example = "+b.arg(d.boolArg(false)))
	}
	if f.HideArchived {
		b.conds = append(b.conds, "archived = "+b.arg(d.boolArg(false)))
	}
	if f.MemberID != "" {
		b.conds = append(b.conds, "member_id = "+b.arg(f.MemberID))
	}
	if f.Status != "" {
		b.conds = append(b.conds, b.statusIn(domain.Aliases(f.Status)))
	}
	switch f.Group {
	case GroupOutstanding:
		b.conds = append(b.conds, b.statusIn(domain.OutstandingStatuses())+
			" AND (answer IS NULL OR TRIM(answer) = '')")
	case GroupAnswered:
		b.conds = append(b.conds, "((answer IS NOT NULL AND TRIM(answer) <> '') OR "+
			b.statusIn(domain.AnsweredStatuses())+")")
	}
	if f.AnswerSource != "" {
		b.conds = append(b.conds, "answer_source = "+b.arg(string(f.AnswerSource)))
	}
	if f.PageURL != "" {
		b.conds = append(b.conds, "page_url = "+b.arg(f.PageURL))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(s) + "%"
		match := func(col string) string {
			return col + " " + d.like + " " + b.arg(pattern) + ` ESCAPE '\'`
		}
		b.conds = append(b.conds, "("+match("question")+
			" OR "+match("member_name")+
			" OR "+match("member_email")+")")
	}
	if !f.CreatedFrom.IsZero() {
		b.conds = append(b.conds, "created_at >= "+b.arg(d.timeArg(f.CreatedFrom)))
	}
	if !f.CreatedTo.IsZero() {
		b.conds = append(b.conds, "created_at < "+b.arg(d.timeArg(f.CreatedTo)))
	}
	return b
}

func (b *queryBuilder) orderAndPage(f Filter) string {
	col := f.Sort
	if _, ok := ParseSortField(string(col)); !ok || col == "" {
		col = SortCreatedAt
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	q := " ORDER BY " + string(col) + " " + dir + ", id " + dir
	if f.Limit > 0 {
		q += " LIMIT " + b.arg(f.Limit) + " OFFSET " + b.arg(max(f.Offset, 0))
	}
	return q
}

func selectQuery(f Filter, d dialect) (string, []any) {
	b := buildWhere(f, d)
	q := "SELECT " + columns + " FROM academy_question" + b.where()
	q += b.orderAndPage(f)
	return q, b.args
}

func countQuery(f Filter, d dialect) (string, []any) {
	b := buildWhere(f, d)
	return "SELECT COUNT(*) FROM academy_question" + b.where(), b.args
}
