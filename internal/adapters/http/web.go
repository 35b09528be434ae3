package web

import (
	"net/http"
	"time"

	"academy/internal/adapters/ai"
	"academy/internal/adapters/email"
	"academy/internal/adapters/http/middleware"
	"academy/internal/adapters/http/perf"
	"academy/internal/adapters/ratelimit"
	auditStore "academy/internal/adapters/storage/audit"
	questionStore "academy/internal/adapters/storage/question"
	"academy/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	QuestionStore questionStore.Store
	AuditStore    auditStore.Store
}

// Options carries the collaborators and settings NewMux wires into the handlers.
type Options struct {
	Version   string
	Collector *perf.Collector

	Resolver   middleware.IdentityResolver
	CookieName string

	Drafter   orchestrators.Drafter // nil disables AI drafts
	AITimeout time.Duration

	EmailSender   email.Sender // nil disables notifications
	SiteURL       string
	ReplyTo       string
	NotifyTimeout time.Duration

	MemberLimiter ratelimit.Limiter // nil disables the per-member limit
	IPLimiter     ratelimit.Limiter // nil disables the per-IP limit

	CORS           middleware.CORSConfig
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global options (set by NewMux)
var opts Options

// NewMux wires HTTP handlers for the app.
// PRE: s.QuestionStore non-nil; o.CSRFKey is 32 bytes
func NewMux(s *Stores, o Options) http.Handler {
	stores = s
	opts = o
	if opts.AITimeout <= 0 {
		opts.AITimeout = ai.DefaultTimeout
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Apply middleware: CORS -> SecurityHeaders -> Timing -> Recover -> CSRF -> Identity -> Mux
	return middleware.Chain(mux,
		middleware.Identity(opts.Resolver, opts.CookieName),
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.Recover,
		middleware.Timing(opts.Collector),
		middleware.SecurityHeaders,
		middleware.CORS(opts.CORS),
	)
}

// registerRoutes maps every endpoint. Handlers check the method themselves.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", handleHealth)

	// Member
	mux.HandleFunc("/questions", handleQuestions)
	mux.HandleFunc("/questions/{id}/archive", handleQuestionArchive)

	// Admin moderation
	mux.HandleFunc("/admin/questions", handleAdminQuestions)
	mux.HandleFunc("/admin/questions/stats", handleAdminQuestionStats)
	mux.HandleFunc("/admin/questions/{id}", handleAdminQuestion)
	mux.HandleFunc("/admin/ai-suggest", handleAdminAISuggest)
	mux.HandleFunc("/admin/answer", handleAdminAnswer)
	mux.HandleFunc("/admin/publish-ai", handleAdminPublishAI)

	// Admin tooling
	mux.HandleFunc("/admin/audit", handleAdminAudit)
	mux.HandleFunc("/admin/perf", handleAdminPerf)

	mux.HandleFunc("/", handleNotFound)
}
