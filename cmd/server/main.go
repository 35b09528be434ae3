package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"academy/internal/adapters/ai"
	"academy/internal/adapters/email"
	web "academy/internal/adapters/http"
	"academy/internal/adapters/http/middleware"
	"academy/internal/adapters/http/perf"
	"academy/internal/adapters/membership"
	"academy/internal/adapters/ratelimit"
	"academy/internal/adapters/storage/backend"
	"academy/internal/application/orchestrators"
	"academy/internal/config"
	"academy/internal/domain/identity"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	slog.SetDefault(cfg.NewLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Performance instrumentation: SQL stores are wrapped with timing
	collector := perf.NewCollector(perf.DefaultRingSize)
	stores, err := backend.Open(ctx, cfg, collector)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store, err)
	}
	defer stores.Close()

	if cfg.SeedExamples {
		if _, err := orchestrators.ExecuteSeedExamples(ctx, orchestrators.SeedExamplesDeps{
			Store: stores.Questions,
			Now:   func() time.Time { return time.Now().UTC() },
		}); err != nil {
			log.Fatalf("failed to seed examples: %v", err)
		}
	}

	drafter := newDrafter(ctx, cfg)
	memberLimiter, ipLimiter, closeLimiters := newLimiters(ctx, cfg)
	defer closeLimiters()

	csrfKey := cfg.CSRFKey
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			log.Fatalf("failed to generate CSRF key: %v", err)
		}
		slog.Warn("csrf_key_generated", "note", "set ACADEMY_CSRF_KEY to keep tokens valid across restarts")
	}

	handler := web.NewMux(&web.Stores{
		QuestionStore: stores.Questions,
		AuditStore:    stores.Audit,
	}, web.Options{
		Version:       version,
		Collector:     collector,
		Resolver:      newResolver(cfg),
		CookieName:    cfg.CookieName,
		Drafter:       drafter,
		AITimeout:     cfg.AITimeout,
		EmailSender:   newEmailSender(cfg),
		SiteURL:       cfg.SiteURL,
		ReplyTo:       cfg.ReplyTo,
		NotifyTimeout: cfg.NotifyTimeout,
		MemberLimiter: memberLimiter,
		IPLimiter:     ipLimiter,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSOrigins,
			MaxAgeSeconds:  600,
		},
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// ai-suggest waits on the provider
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Academy Q&A %s starting on %s (env=%s, store=%s)", version, cfg.Addr, cfg.Env, stores.Kind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown_started")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err)
		}
	}
}

// newDrafter returns nil when the selected provider is not configured; ai-suggest
// then fails with a 500 and no write.
func newDrafter(ctx context.Context, cfg config.Config) orchestrators.Drafter {
	switch cfg.AIProvider {
	case config.AIGemini:
		d, err := ai.NewGeminiDrafter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("ai_provider_disabled", "provider", cfg.AIProvider, "error", err)
			return nil
		}
		slog.Info("ai_provider_configured", "provider", cfg.AIProvider)
		return d
	default:
		if cfg.AIURL == "" {
			slog.Warn("ai_provider_disabled", "provider", cfg.AIProvider, "reason", "ACADEMY_AI_URL is not set")
			return nil
		}
		slog.Info("ai_provider_configured", "provider", cfg.AIProvider)
		return ai.NewRoboRangerClient(cfg.AIURL, cfg.AIKey, cfg.AIModel, nil)
	}
}

// newEmailSender returns nil in production when no provider is configured, so
// notifications are skipped rather than recorded as sent.
func newEmailSender(cfg config.Config) email.Sender {
	switch {
	case cfg.EmailProvider == config.EmailSMTP && cfg.SMTPHost != "":
		slog.Info("email_sender_configured", "provider", "smtp", "host", cfg.SMTPHost)
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		})
	case cfg.EmailProvider == config.EmailResend && cfg.ResendKey != "":
		slog.Info("email_sender_configured", "provider", "resend")
		return email.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
	case cfg.IsProduction():
		slog.Warn("email_sender_disabled", "provider", cfg.EmailProvider, "reason", "missing key or host")
		return nil
	default:
		slog.Info("email_sender_configured", "provider", "noop")
		return email.NewNoopSender()
	}
}

// newLimiters shares counters through Redis when configured, otherwise counts per process.
func newLimiters(ctx context.Context, cfg config.Config) (member, ip ratelimit.Limiter, closeFn func()) {
	memberWindow := ratelimit.Window{Limit: cfg.MemberLimit, Period: cfg.RateLimitEvery}
	ipWindow := ratelimit.Window{Limit: cfg.IPLimit, Period: cfg.RateLimitEvery}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid ACADEMY_REDIS_URL: %v", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			// limiter calls fail open until Redis is reachable
			slog.Warn("redis_unreachable", "error", err)
		}
		slog.Info("rate_limiter_configured", "kind", "redis")
		return ratelimit.NewRedisLimiter(client, "academy:rl", memberWindow),
			ratelimit.NewRedisLimiter(client, "academy:rl", ipWindow),
			func() { client.Close() }
	}

	slog.Info("rate_limiter_configured", "kind", "memory")
	return ratelimit.NewMemoryLimiter(memberWindow, nil), ratelimit.NewMemoryLimiter(ipWindow, nil), func() {}
}

func newResolver(cfg config.Config) *membership.Resolver {
	policy := identity.AdminPolicy{Plans: cfg.AdminPlans, Emails: cfg.AdminEmails}
	if cfg.MemberstackKey != "" {
		return &membership.Resolver{
			Client:              membership.NewMemberstackClient(cfg.MemberstackURL, cfg.MemberstackKey, nil),
			Policy:              policy,
			AllowMemberIDHeader: cfg.AllowMemberIDHeader,
		}
	}

	static := &membership.StaticClient{Tokens: map[string]string{}, Members: map[string]identity.Member{}}
	for _, m := range cfg.DevMembers {
		plans := make([]identity.Plan, 0, len(m.Plans))
		for _, p := range m.Plans {
			plans = append(plans, identity.Plan{ID: p, Name: p, Status: "ACTIVE"})
		}
		static.Tokens[m.Token] = m.ID
		static.Members[m.ID] = identity.Member{ID: m.ID, Name: m.Name, Email: m.Email, Plans: plans}
	}
	slog.Warn("membership_static", "members", len(cfg.DevMembers), "note", "ACADEMY_MEMBERSTACK_KEY is not set")
	return &membership.Resolver{Client: static, Policy: policy, AllowMemberIDHeader: cfg.AllowMemberIDHeader}
}
