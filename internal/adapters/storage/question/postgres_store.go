package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "academy/internal/domain/question"
)

// PostgresStore implements Store against Postgres (the hosted academy database).
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a Postgres-backed question store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) Create(ctx context.Context, q domain.Question) error {
	const query = `
	INSERT INTO academy_question (` + columns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.pool.Exec(ctx, query,
		q.ID, q.MemberID, q.MemberName, q.MemberEmail, q.Question, q.PageURL, string(q.Status),
		nullText(q.Answer), nullText(string(q.AnswerSource)), nullText(q.AnsweredBy), nullTime(q.AnsweredAt),
		nullText(q.AIAnswer), nullTime(q.AIAnsweredAt), nullText(q.AIModel),
		q.Archived, q.IsExample, q.CreatedAt.UTC(), q.UpdatedAt.UTC(), nullTime(q.MemberNotifiedAt))
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *PostgresStore) GetByID(ctx context.Context, id string) (domain.Question, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM academy_question WHERE id = $1`, id)
	q, err := scanPostgres(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Question{}, domain.ErrNotFound
		}
		return domain.Question{}, err
	}
	return q, nil
}

func (r *PostgresStore) ListByMember(ctx context.Context, memberID string, limit int, includeArchived bool) ([]domain.Question, error) {
	if memberID == "" {
		return nil, nil
	}
	list, _, err := r.List(ctx, memberFilter(memberID, limit, includeArchived))
	return list, err
}

func (r *PostgresStore) List(ctx context.Context, f Filter) ([]domain.Question, int, error) {
	cq, cargs := countQuery(f, postgresDialect)
	var total int
	if err := r.pool.QueryRow(ctx, cq, cargs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	q, args := selectQuery(f, postgresDialect)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		item, err := scanPostgres(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

func (r *PostgresStore) UpdateAnswer(ctx context.Context, q domain.Question) error {
	const query = `
	UPDATE academy_question
	SET status = $1, answer = $2, answer_source = $3, answered_by = $4, answered_at = $5,
	    ai_answer = $6, ai_answered_at = $7, ai_model = $8, updated_at = $9, member_notified_at = $10
	WHERE id = $11;
	`
	tag, err := r.pool.Exec(ctx, query,
		string(q.Status), nullText(q.Answer), nullText(string(q.AnswerSource)), nullText(q.AnsweredBy), nullTime(q.AnsweredAt),
		nullText(q.AIAnswer), nullTime(q.AIAnsweredAt), nullText(q.AIModel),
		q.UpdatedAt.UTC(), nullTime(q.MemberNotifiedAt), q.ID)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresStore) ToggleArchive(ctx context.Context, id, memberID string, now time.Time) (bool, error) {
	const query = `
	UPDATE academy_question SET archived = NOT archived, updated_at = $1
	WHERE id = $2 AND member_id = $3
	RETURNING archived;
	`
	var archived bool
	if err := r.pool.QueryRow(ctx, query, now.UTC(), id, memberID).Scan(&archived); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("toggle archive: %w", err)
	}
	return archived, nil
}

func scanPostgres(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	var status string
	var answer, source, by, aiAnswer, aiModel *string
	var answeredAt, aiAt, notifiedAt *time.Time
	err := row.Scan(&q.ID, &q.MemberID, &q.MemberName, &q.MemberEmail, &q.Question, &q.PageURL, &status,
		&answer, &source, &by, &answeredAt,
		&aiAnswer, &aiAt, &aiModel,
		&q.Archived, &q.IsExample, &q.CreatedAt, &q.UpdatedAt, &notifiedAt)
	if err != nil {
		return domain.Question{}, err
	}
	q.Status = domain.Status(status)
	q.Answer = deref(answer)
	q.AnswerSource = domain.Source(deref(source))
	q.AnsweredBy = deref(by)
	q.AIAnswer = deref(aiAnswer)
	q.AIModel = deref(aiModel)
	q.AnsweredAt = derefTime(answeredAt)
	q.AIAnsweredAt = derefTime(aiAt)
	q.MemberNotifiedAt = derefTime(notifiedAt)
	return q, nil
}

func nullText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
