package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	auditStore "academy/internal/adapters/storage/audit"
	"academy/internal/application/listutil"
	auditDomain "academy/internal/domain/audit"
)

// handleAdminAudit returns audit events as JSON (GET /admin/audit)
// PRE: caller is admin
// POST: newest first, at most limit events (default 100, max 1000)
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if stores.AuditStore == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []auditDomain.Event{}})
		return
	}

	q := r.URL.Query()
	filter := auditStore.Filter{}

	if category := q.Get("category"); category != "" {
		cat := auditDomain.Category(category)
		filter.Category = &cat
	}
	if action := q.Get("action"); action != "" {
		act := auditDomain.Action(action)
		filter.Action = &act
	}
	if actorID := q.Get("actor_id"); actorID != "" {
		filter.ActorID = &actorID
	}
	if resourceID := strings.TrimSpace(q.Get("resource_id")); resourceID != "" {
		filter.ResourceID = &resourceID
	}
	dates, err := listutil.ParseDateRange(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.From = dates.From
	if dates.To != nil {
		// store bounds are inclusive
		to := dates.To.Add(-time.Nanosecond)
		filter.To = &to
	}

	limit := 100
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "limit": limit})
}

// handleAdminPerf returns the request and query timing snapshot (GET /admin/perf?minutes=60).
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if opts.Collector == nil {
		writeError(w, http.StatusNotFound, "performance collection disabled")
		return
	}

	minutes := 60
	if m, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && m > 0 && m <= 24*60 {
		minutes = m
	}
	snap := opts.Collector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10)
	writeJSON(w, http.StatusOK, snap)
}
