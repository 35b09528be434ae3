package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"academy/internal/adapters/storage/backend"
	questionStore "academy/internal/adapters/storage/question"
	"academy/internal/application/listutil"
	"academy/internal/application/projections"
	"academy/internal/config"
	"academy/internal/domain/identity"
)

// operator is the identity qactl reads with. It never writes answers.
var operator = identity.Identity{
	Kind:   identity.KindAdmin,
	Member: identity.Member{ID: "qactl", Name: "qactl"},
}

func openStores(ctx context.Context) (*backend.Stores, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return backend.Open(ctx, cfg, nil)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema of the configured store",
		Long: `Apply pending schema migrations to the store selected by ACADEMY_STORE.

Examples:
  qactl migrate
  ACADEMY_STORE=postgres ACADEMY_DATABASE_URL=postgres://... qactl migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s store is up to date\n", stores.Kind)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	var window string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show moderation stats for a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()
			return runStats(cmd.Context(), cmd.OutOrStdout(), stores, window, asJSON, time.Now().UTC())
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", listutil.DefaultWindow, "window: 7d, 30d or all")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}

func runStats(ctx context.Context, w io.Writer, stores *backend.Stores, rawWindow string, asJSON bool, now time.Time) error {
	window, err := listutil.ParseWindow(rawWindow)
	if err != nil {
		return err
	}
	stats, err := projections.QueryGetQuestionStats(ctx, projections.GetQuestionStatsQuery{
		Caller: operator,
		Window: window,
		Now:    now,
	}, projections.GetQuestionStatsDeps{Store: stores.Questions})
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	avg := "n/a"
	if stats.AvgResponseHours != nil {
		avg = fmt.Sprintf("%.1fh", *stats.AvgResponseHours)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Window:\t%s\n", stats.Window)
	fmt.Fprintf(tw, "Posted:\t%d\n", stats.Posted)
	fmt.Fprintf(tw, "Answered:\t%d\n", stats.Answered)
	fmt.Fprintf(tw, "Outstanding:\t%d\n", stats.Outstanding)
	fmt.Fprintf(tw, "Answered by AI:\t%d\n", stats.AnsweredByAI)
	fmt.Fprintf(tw, "Avg response:\t%s\n", avg)
	fmt.Fprintf(tw, "Members waiting:\t%d\n", stats.MembersWaiting)
	return tw.Flush()
}

func listCmd() *cobra.Command {
	var status, search string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List questions for moderation",
		Long: `List non-example questions, newest first.

Examples:
  qactl list --status outstanding
  qactl list --status answered --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := openStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()
			return runList(cmd.Context(), cmd.OutOrStdout(), stores, status, search, limit)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "outstanding", "status, outstanding, answered or all")
	cmd.Flags().StringVar(&search, "search", "", "substring of question, member name or email")
	cmd.Flags().IntVarP(&limit, "limit", "n", listutil.AdminDefaultLimit, "maximum rows")
	return cmd
}

func runList(ctx context.Context, w io.Writer, stores *backend.Stores, status, search string, limit int) error {
	f, err := adminFilter(status, search, limit)
	if err != nil {
		return err
	}
	result, err := projections.QueryGetAdminQuestions(ctx, projections.GetAdminQuestionsQuery{
		Caller: operator,
		Filter: f,
	}, projections.GetAdminQuestionsDeps{Store: stores.Questions})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tMEMBER\tQUESTION")
	for _, q := range result.Questions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", q.ID, q.CreatedAt.Format("2006-01-02 15:04"), q.Status, q.MemberEmail, truncate(q.Question, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d of %d\n", len(result.Questions), result.Total)
	return nil
}

// adminFilter goes through the admin listing's parser so the CLI and the API agree.
func adminFilter(status, search string, limit int) (questionStore.Filter, error) {
	q := url.Values{}
	q.Set("status", status)
	q.Set("search", search)
	q.Set("limit", strconv.Itoa(limit))
	return projections.ParseAdminFilter(q)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
