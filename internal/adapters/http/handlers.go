package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"academy/internal/adapters/http/middleware"
	"academy/internal/application/orchestrators"
	"academy/internal/application/projections"
	auditDomain "academy/internal/domain/audit"
	"academy/internal/domain/identity"
	"academy/internal/domain/question"
)

// timeNow is a variable for testability.
var timeNow = func() time.Time { return time.Now().UTC() }

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err)
	}
}

// writeError writes the JSON error body {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err and returns its message with a 500.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeError(w, http.StatusInternalServerError, err.Error())
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeBody reads a JSON body. Unknown fields are ignored so legacy clients that
// still send member fields keep working; those fields are never read.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// requireMember returns the caller, or writes 401 when the request carries no
// verified identity.
func requireMember(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	caller := middleware.GetIdentity(r.Context())
	if !caller.IsAuthenticated() {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no identity")
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return identity.Identity{}, false
	}
	return caller, true
}

// requireAdmin returns the caller, or writes 403 for anyone without the admin capability.
// A signed-in member turned away here is also written to the audit log.
func requireAdmin(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	caller := middleware.GetIdentity(r.Context())
	if !caller.IsAdmin() {
		slog.Warn("auth_denied", "path", r.URL.Path, "member_id", caller.Member.ID, "kind", caller.Kind.String(), "required", "admin")
		if caller.IsAuthenticated() {
			recordDenied(r, caller)
		}
		writeError(w, http.StatusForbidden, orchestrators.ErrAdminRequired.Error())
		return identity.Identity{}, false
	}
	return caller, true
}

func recordDenied(r *http.Request, caller identity.Identity) {
	if stores == nil || stores.AuditStore == nil {
		return
	}
	event := auditDomain.NewEvent(caller.Member.ID, caller.Member.Email, caller.Kind.String(),
		auditDomain.CategorySecurity, auditDomain.ActionDenied, timeNow()).
		WithSeverity(auditDomain.SeverityWarning).
		WithDescription(r.Method + " " + r.URL.Path)
	if err := stores.AuditStore.Save(r.Context(), event); err != nil {
		slog.Error("audit_write_failed", "action", event.Action, "error", err)
	}
}

// writeOrchestratorError maps application errors to status codes.
func writeOrchestratorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orchestrators.ErrAuthRequired), errors.Is(err, projections.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, orchestrators.ErrAdminRequired), errors.Is(err, projections.ErrAdminRequired):
		writeError(w, http.StatusForbidden, orchestrators.ErrAdminRequired.Error())
	case errors.Is(err, orchestrators.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, question.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case orchestrators.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, r, err)
	}
}

// handleHealth handles GET /healthz.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": opts.Version})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
