package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/question"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed question store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create persists a new question.
func (s *SQLiteStore) Create(ctx context.Context, q domain.Question) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO academy_question (`+columns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.MemberID, q.MemberName, q.MemberEmail, q.Question, q.PageURL, string(q.Status),
		storage.NullString(q.Answer), storage.NullString(string(q.AnswerSource)), storage.NullString(q.AnsweredBy), storage.FormatTime(q.AnsweredAt),
		storage.NullString(q.AIAnswer), storage.FormatTime(q.AIAnsweredAt), storage.NullString(q.AIModel),
		boolInt(q.Archived), boolInt(q.IsExample),
		storage.FormatTime(q.CreatedAt), storage.FormatTime(q.UpdatedAt), storage.FormatTime(q.MemberNotifiedAt))
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// GetByID retrieves a question by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM academy_question WHERE id = ?`, id)
	q, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrNotFound
	}
	return q, err
}

// ListByMember returns the member's own questions, newest first.
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID string, limit int, includeArchived bool) ([]domain.Question, error) {
	if memberID == "" {
		return nil, nil
	}
	list, _, err := s.List(ctx, memberFilter(memberID, limit, includeArchived))
	return list, err
}

// List returns one page of questions matching f plus the total match count.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]domain.Question, int, error) {
	cq, cargs := countQuery(f, sqliteDialect)
	var total int
	if err := s.db.QueryRowContext(ctx, cq, cargs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	q, args := selectQuery(f, sqliteDialect)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		item, err := scanSQLite(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

// UpdateAnswer writes the moderation fields of q.
func (s *SQLiteStore) UpdateAnswer(ctx context.Context, q domain.Question) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE academy_question SET status = ?, answer = ?, answer_source = ?, answered_by = ?, answered_at = ?,
		 ai_answer = ?, ai_answered_at = ?, ai_model = ?, updated_at = ?, member_notified_at = ?
		 WHERE id = ?`,
		string(q.Status), storage.NullString(q.Answer), storage.NullString(string(q.AnswerSource)),
		storage.NullString(q.AnsweredBy), storage.FormatTime(q.AnsweredAt),
		storage.NullString(q.AIAnswer), storage.FormatTime(q.AIAnsweredAt), storage.NullString(q.AIModel),
		storage.FormatTime(q.UpdatedAt), storage.FormatTime(q.MemberNotifiedAt), q.ID)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return requireRow(res)
}

// ToggleArchive flips archived for the row owned by memberID.
func (s *SQLiteStore) ToggleArchive(ctx context.Context, id, memberID string, now time.Time) (bool, error) {
	var archived int
	err := s.db.QueryRowContext(ctx,
		`UPDATE academy_question SET archived = 1 - archived, updated_at = ?
		 WHERE id = ? AND member_id = ? RETURNING archived`,
		storage.FormatTime(now), id, memberID).Scan(&archived)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle archive: %w", err)
	}
	return archived == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (domain.Question, error) {
	var q domain.Question
	var status string
	var answer, source, by, answeredAt, aiAnswer, aiAt, aiModel sql.NullString
	var createdAt, updatedAt, notifiedAt sql.NullString
	var archived, example int
	err := row.Scan(&q.ID, &q.MemberID, &q.MemberName, &q.MemberEmail, &q.Question, &q.PageURL, &status,
		&answer, &source, &by, &answeredAt,
		&aiAnswer, &aiAt, &aiModel,
		&archived, &example, &createdAt, &updatedAt, &notifiedAt)
	if err != nil {
		return domain.Question{}, err
	}
	q.Status = domain.Status(status)
	q.Answer = answer.String
	q.AnswerSource = domain.Source(source.String)
	q.AnsweredBy = by.String
	q.AnsweredAt = storage.ParseTime(answeredAt)
	q.AIAnswer = aiAnswer.String
	q.AIAnsweredAt = storage.ParseTime(aiAt)
	q.AIModel = aiModel.String
	q.Archived = archived != 0
	q.IsExample = example != 0
	q.CreatedAt = storage.ParseTime(createdAt)
	q.UpdatedAt = storage.ParseTime(updatedAt)
	q.MemberNotifiedAt = storage.ParseTime(notifiedAt)
	return q, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
