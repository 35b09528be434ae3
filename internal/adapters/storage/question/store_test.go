package question

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/question"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	return NewSQLiteStore(db)
}

// forEachStore runs fn against every Store implementation that needs no external service.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
}

func mustCreate(t *testing.T, s Store, q domain.Question) {
	t.Helper()
	if err := s.Create(context.Background(), q); err != nil {
		t.Fatalf("Create(%s): %v", q.ID, err)
	}
}

func row(id, member string, status domain.Status, offset time.Duration) domain.Question {
	return domain.Question{
		ID:          id,
		MemberID:    member,
		MemberName:  "Member " + member,
		MemberEmail: member + "@example.com",
		Question:    "What shutter speed for " + id + "?",
		PageURL:     "/lessons/" + id,
		Status:      status,
		CreatedAt:   base.Add(offset),
		UpdatedAt:   base.Add(offset),
	}
}

// seedAllStatuses stores one row per status value, plus an answered-but-legacy-status
// row and an example row that must never be counted.
func seedAllStatuses(t *testing.T, s Store) {
	t.Helper()
	mustCreate(t, s, row("q-queued", "m1", domain.StatusQueued, 1*time.Hour))
	mustCreate(t, s, row("q-open", "m2", domain.StatusOpen, 2*time.Hour))

	drafted := row("q-ai", "m1", domain.StatusAISuggested, 3*time.Hour)
	drafted.AIAnswer = "Try 1/500"
	drafted.AIAnsweredAt = base.Add(4 * time.Hour)
	drafted.AIModel = "rr-1"
	mustCreate(t, s, drafted)

	answered := row("q-answered", "m3", domain.StatusAnswered, 4*time.Hour)
	answered.Answer = "Use a tripod"
	answered.AnswerSource = domain.SourceManual
	answered.AnsweredBy = "Alan"
	answered.AnsweredAt = base.Add(6 * time.Hour)
	mustCreate(t, s, answered)

	mustCreate(t, s, row("q-closed", "m3", domain.StatusClosed, 5*time.Hour))

	// an open row that somehow carries an answer is not outstanding
	odd := row("q-open-answered", "m4", domain.StatusOpen, 6*time.Hour)
	odd.Answer = "Already handled"
	mustCreate(t, s, odd)

	example := row("q-example", "m5", domain.StatusQueued, 7*time.Hour)
	example.IsExample = true
	mustCreate(t, s, example)
}

func ids(list []domain.Question) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, q := range list {
		out[q.ID] = true
	}
	return out
}

func TestStore_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		q := row("q1", "m1", domain.StatusQueued, 0)
		q.AIAnswer = "draft"
		q.AIAnsweredAt = base.Add(time.Minute)
		mustCreate(t, s, q)

		got, err := s.GetByID(context.Background(), "q1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.MemberID != "m1" || got.Status != domain.StatusQueued || got.AIAnswer != "draft" {
			t.Errorf("unexpected row: %+v", got)
		}
		if !got.CreatedAt.Equal(q.CreatedAt) || !got.AIAnsweredAt.Equal(q.AIAnsweredAt) {
			t.Errorf("timestamps not preserved: %+v", got)
		}
		if got.Answer != "" || !got.AnsweredAt.IsZero() {
			t.Errorf("answer should be empty: %+v", got)
		}
	})
}

func TestStore_GetByID_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.GetByID(context.Background(), "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_ListByMember_Isolation(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		seedAllStatuses(t, s)
		list, err := s.ListByMember(context.Background(), "m1", 25, false)
		if err != nil {
			t.Fatalf("ListByMember: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("len = %d, want 2", len(list))
		}
		for _, q := range list {
			if q.MemberID != "m1" {
				t.Errorf("leaked row %s owned by %s", q.ID, q.MemberID)
			}
		}
		if list[0].ID != "q-ai" {
			t.Errorf("first = %s, want newest q-ai", list[0].ID)
		}

		none, err := s.ListByMember(context.Background(), "", 25, true)
		if err != nil || len(none) != 0 {
			t.Errorf("empty member id returned %d rows, err %v", len(none), err)
		}
	})
}

func TestStore_ListByMember_LimitAndArchived(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		for i, id := range []string{"a", "b", "c"} {
			mustCreate(t, s, row(id, "m1", domain.StatusQueued, time.Duration(i)*time.Minute))
		}
		if _, err := s.ToggleArchive(context.Background(), "c", "m1", base); err != nil {
			t.Fatalf("ToggleArchive: %v", err)
		}

		visible, _ := s.ListByMember(context.Background(), "m1", 25, false)
		if ids(visible)["c"] || len(visible) != 2 {
			t.Errorf("archived row should be hidden: %v", ids(visible))
		}
		all, _ := s.ListByMember(context.Background(), "m1", 25, true)
		if len(all) != 3 {
			t.Errorf("include archived: len = %d, want 3", len(all))
		}
		one, _ := s.ListByMember(context.Background(), "m1", 1, true)
		if len(one) != 1 || one[0].ID != "c" {
			t.Errorf("limit 1 = %v, want [c]", ids(one))
		}
	})
}

func TestStore_List_Groups(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		seedAllStatuses(t, s)
		ctx := context.Background()

		outstanding, total, err := s.List(ctx, Filter{Group: GroupOutstanding})
		if err != nil {
			t.Fatalf("List outstanding: %v", err)
		}
		want := map[string]bool{"q-queued": true, "q-open": true, "q-ai": true}
		if total != len(want) || len(outstanding) != len(want) {
			t.Fatalf("outstanding total = %d, ids = %v", total, ids(outstanding))
		}
		for id := range want {
			if !ids(outstanding)[id] {
				t.Errorf("missing %s from outstanding", id)
			}
		}
		for _, q := range outstanding {
			if !q.IsOutstanding() {
				t.Errorf("%s listed as outstanding but predicate disagrees", q.ID)
			}
		}

		answered, total, err := s.List(ctx, Filter{Group: GroupAnswered})
		if err != nil {
			t.Fatalf("List answered: %v", err)
		}
		if total != 3 {
			t.Errorf("answered total = %d, want 3 (%v)", total, ids(answered))
		}
		for _, q := range answered {
			if !q.IsAnswered() {
				t.Errorf("%s listed as answered but predicate disagrees", q.ID)
			}
		}
	})
}

func TestStore_List_StatusAliases(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		seedAllStatuses(t, s)
		list, _, err := s.List(context.Background(), Filter{Status: domain.StatusQueued})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got := ids(list)
		if !got["q-queued"] || !got["q-open"] || !got["q-open-answered"] || len(got) != 3 {
			t.Errorf("queued filter = %v, want queued and open rows", got)
		}
		if got["q-example"] {
			t.Error("example rows must be excluded")
		}
	})
}

func TestStore_List_FiltersAndPaging(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		seedAllStatuses(t, s)
		ctx := context.Background()

		bySource, _, _ := s.List(ctx, Filter{AnswerSource: domain.SourceManual})
		if len(bySource) != 1 || bySource[0].ID != "q-answered" {
			t.Errorf("answer_source filter = %v", ids(bySource))
		}

		byPage, _, _ := s.List(ctx, Filter{PageURL: "/lessons/q-open"})
		if len(byPage) != 1 {
			t.Errorf("page_url filter = %v", ids(byPage))
		}

		bySearch, _, _ := s.List(ctx, Filter{Search: "M3@EXAMPLE"})
		if len(bySearch) != 2 {
			t.Errorf("search = %v, want the two m3 rows", ids(bySearch))
		}

		byDate, _, _ := s.List(ctx, Filter{CreatedFrom: base.Add(2 * time.Hour), CreatedTo: base.Add(4 * time.Hour)})
		if got := ids(byDate); len(got) != 2 || !got["q-open"] || !got["q-ai"] {
			t.Errorf("date range = %v, want q-open and q-ai", got)
		}

		page, total, _ := s.List(ctx, Filter{Sort: SortCreatedAt, Desc: true, Limit: 2, Offset: 1})
		if total != 6 {
			t.Errorf("total = %d, want 6 non-example rows", total)
		}
		if len(page) != 2 || page[0].ID != "q-closed" || page[1].ID != "q-answered" {
			t.Errorf("page = %v", ids(page))
		}

		withExamples, total, _ := s.List(ctx, Filter{IncludeExamples: true})
		if total != 7 || len(withExamples) != 7 {
			t.Errorf("include examples total = %d", total)
		}
	})
}

// TestStore_List_SearchWildcardsAreLiteral verifies LIKE metacharacters in the
// search term match themselves in every store.
func TestStore_List_SearchWildcardsAreLiteral(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		seedAllStatuses(t, s)
		percent := row("q-percent", "m6", domain.StatusQueued, 8*time.Hour)
		percent.Question = "Is 50% exposure compensation too much?"
		mustCreate(t, s, percent)
		underscore := row("q-underscore", "m7", domain.StatusQueued, 9*time.Hour)
		underscore.Question = "Where do I find raw_import settings?"
		mustCreate(t, s, underscore)
		ctx := context.Background()

		cases := []struct {
			search string
			want   []string
		}{
			{"%", []string{"q-percent"}},
			{"50%", []string{"q-percent"}},
			{"_", []string{"q-underscore"}},
			{"RAW_IMPORT", []string{"q-underscore"}},
			{`\`, nil},
		}
		for _, tc := range cases {
			got, total, err := s.List(ctx, Filter{Search: tc.search})
			if err != nil {
				t.Fatalf("List(%q): %v", tc.search, err)
			}
			gotIDs := ids(got)
			if total != len(tc.want) || len(gotIDs) != len(tc.want) {
				t.Errorf("search %q = %v, want %v", tc.search, gotIDs, tc.want)
				continue
			}
			for _, id := range tc.want {
				if !gotIDs[id] {
					t.Errorf("search %q missing %s", tc.search, id)
				}
			}
		}
	})
}

func TestStore_UpdateAnswer(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		q := row("q1", "m1", domain.StatusQueued, 0)
		mustCreate(t, s, q)

		_ = q.ApplyDraft("Use f/8", "rr-1", base.Add(time.Hour))
		_ = q.PublishDraft(base.Add(2 * time.Hour))
		q.MemberID = "attacker"
		if err := s.UpdateAnswer(ctx, q); err != nil {
			t.Fatalf("UpdateAnswer: %v", err)
		}

		got, _ := s.GetByID(ctx, "q1")
		if got.Answer != "Use f/8" || got.AnswerSource != domain.SourceAI || got.AnsweredBy != domain.AIAuthorName {
			t.Errorf("answer not persisted: %+v", got)
		}
		if got.AIAnswer != "Use f/8" || got.Status != domain.StatusAnswered {
			t.Errorf("draft or status wrong: %+v", got)
		}
		if got.MemberID != "m1" {
			t.Error("UpdateAnswer must not change ownership")
		}

		got.ClearAnswer(base.Add(3 * time.Hour))
		if err := s.UpdateAnswer(ctx, got); err != nil {
			t.Fatalf("UpdateAnswer clear: %v", err)
		}
		cleared, _ := s.GetByID(ctx, "q1")
		if cleared.Answer != "" || cleared.AnsweredBy != "" || !cleared.AnsweredAt.IsZero() || cleared.Status != domain.StatusQueued {
			t.Errorf("clear not persisted: %+v", cleared)
		}

		if err := s.UpdateAnswer(ctx, row("ghost", "m1", domain.StatusQueued, 0)); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_ToggleArchive_Ownership(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustCreate(t, s, row("q1", "m1", domain.StatusQueued, 0))

		if _, err := s.ToggleArchive(ctx, "q1", "m2", base); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("foreign toggle err = %v, want ErrNotFound", err)
		}
		got, _ := s.GetByID(ctx, "q1")
		if got.Archived {
			t.Fatal("foreign toggle mutated the row")
		}

		archived, err := s.ToggleArchive(ctx, "q1", "m1", base)
		if err != nil || !archived {
			t.Fatalf("ToggleArchive = %v, %v; want true", archived, err)
		}
		archived, _ = s.ToggleArchive(ctx, "q1", "m1", base)
		if archived {
			t.Error("second toggle should unarchive")
		}
	})
}
