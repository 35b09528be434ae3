package question

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domain "academy/internal/domain/question"
)

// MemoryStore is an in-process Store for tests and ACADEMY_STORE=memory.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]domain.Question
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]domain.Question)}
}

func (m *MemoryStore) Create(_ context.Context, q domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[q.ID]; ok {
		return fmt.Errorf("insert question: duplicate id %q", q.ID)
	}
	m.rows[q.ID] = q
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (domain.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.rows[id]
	if !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	return q, nil
}

func (m *MemoryStore) ListByMember(ctx context.Context, memberID string, limit int, includeArchived bool) ([]domain.Question, error) {
	if memberID == "" {
		return nil, nil
	}
	list, _, err := m.List(ctx, memberFilter(memberID, limit, includeArchived))
	return list, err
}

func (m *MemoryStore) List(_ context.Context, f Filter) ([]domain.Question, int, error) {
	m.mu.RLock()
	var matched []domain.Question
	for _, q := range m.rows {
		if matches(q, f) {
			matched = append(matched, q)
		}
	}
	m.mu.RUnlock()

	sortQuestions(matched, f.Sort, f.Desc)

	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (m *MemoryStore) UpdateAnswer(_ context.Context, q domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[q.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = q.Status
	cur.Answer = q.Answer
	cur.AnswerSource = q.AnswerSource
	cur.AnsweredBy = q.AnsweredBy
	cur.AnsweredAt = q.AnsweredAt
	cur.AIAnswer = q.AIAnswer
	cur.AIAnsweredAt = q.AIAnsweredAt
	cur.AIModel = q.AIModel
	cur.UpdatedAt = q.UpdatedAt
	cur.MemberNotifiedAt = q.MemberNotifiedAt
	m.rows[q.ID] = cur
	return nil
}

func (m *MemoryStore) ToggleArchive(_ context.Context, id, memberID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.rows[id]
	if !ok || !q.OwnedBy(memberID) {
		return false, domain.ErrNotFound
	}
	q.ToggleArchive(now)
	m.rows[id] = q
	return q.Archived, nil
}

func matches(q domain.Question, f Filter) bool {
	if q.IsExample && !f.IncludeExamples {
		return false
	}
	if q.Archived && f.HideArchived {
		return false
	}
	if f.MemberID != "" && q.MemberID != f.MemberID {
		return false
	}
	if f.Status != "" && q.Status.Canonical() != f.Status.Canonical() {
		return false
	}
	switch f.Group {
	case GroupOutstanding:
		if !q.IsOutstanding() {
			return false
		}
	case GroupAnswered:
		if !q.IsAnswered() {
			return false
		}
	}
	if f.AnswerSource != "" && q.AnswerSource != f.AnswerSource {
		return false
	}
	if f.PageURL != "" && q.PageURL != f.PageURL {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		if !strings.Contains(strings.ToLower(q.Question), s) &&
			!strings.Contains(strings.ToLower(q.MemberName), s) &&
			!strings.Contains(strings.ToLower(q.MemberEmail), s) {
			return false
		}
	}
	if !f.CreatedFrom.IsZero() && q.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && !q.CreatedAt.Before(f.CreatedTo) {
		return false
	}
	return true
}

func sortQuestions(list []domain.Question, field SortField, desc bool) {
	less := func(a, b domain.Question) int {
		switch field {
		case SortUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case SortAnsweredAt:
			return a.AnsweredAt.Compare(b.AnsweredAt)
		case SortStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		c := less(list[i], list[j])
		if c == 0 {
			c = strings.Compare(list[i].ID, list[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
