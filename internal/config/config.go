// Package config loads service settings from the environment, an optional .env file
// and an optional YAML file for list-valued settings.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// AI providers
const (
	AIRoboRanger = "roboranger"
	AIGemini     = "gemini"
)

// Email providers
const (
	EmailResend = "resend"
	EmailSMTP   = "smtp"
)

// DevMember is a fixed login used when no membership provider key is configured.
type DevMember struct {
	Token string   `yaml:"token"`
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Email string   `yaml:"email"`
	Plans []string `yaml:"plans"`
}

// Config is the complete service configuration.
type Config struct {
	Env      string
	Addr     string
	LogLevel slog.Level

	Store       string
	SQLitePath  string
	DatabaseURL string

	AIProvider   string
	AIURL        string
	AIKey        string
	AIModel      string
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	EmailProvider string
	ResendKey     string
	EmailFrom     string
	ReplyTo       string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SiteURL       string
	NotifyTimeout time.Duration

	RedisURL       string
	MemberLimit    int
	IPLimit        int
	RateLimitEvery time.Duration

	MemberstackURL      string
	MemberstackKey      string
	CookieName          string
	AllowMemberIDHeader bool
	AdminEmails         []string
	AdminPlans          []string
	DevMembers          []DevMember

	CORSOrigins    []string
	TrustedOrigins []string
	CSRFKey        []byte

	SeedExamples bool
}

// fileConfig is the YAML layout of ACADEMY_CONFIG_FILE.
type fileConfig struct {
	AdminEmails    []string    `yaml:"admin_emails"`
	AdminPlans     []string    `yaml:"admin_plans"`
	CORSOrigins    []string    `yaml:"cors_origins"`
	TrustedOrigins []string    `yaml:"trusted_origins"`
	DevMembers     []DevMember `yaml:"dev_members"`
}

// IsProduction reports whether the service runs with production defaults.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// LoadDotEnv loads .env style files into the process environment. Missing files are
// skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads ACADEMY_* variables and the optional YAML file. Environment values
// override the file.
// POST: returned config passed Validate
func Load() (Config, error) {
	var file fileConfig
	if path := envOrDefault("ACADEMY_CONFIG_FILE", ""); path != "" {
		f, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		file = f
	}

	cfg := Config{
		Env:  strings.ToLower(envOrDefault("ACADEMY_ENV", EnvDevelopment)),
		Addr: envOrDefault("ACADEMY_ADDR", ":8080"),

		Store:       strings.ToLower(envOrDefault("ACADEMY_STORE", StoreSQLite)),
		SQLitePath:  envOrDefault("ACADEMY_SQLITE_PATH", "academy.db"),
		DatabaseURL: envOrDefault("ACADEMY_DATABASE_URL", ""),

		AIProvider:   strings.ToLower(envOrDefault("ACADEMY_AI_PROVIDER", AIRoboRanger)),
		AIURL:        envOrDefault("ACADEMY_AI_URL", ""),
		AIKey:        envOrDefault("ACADEMY_AI_KEY", ""),
		AIModel:      envOrDefault("ACADEMY_AI_MODEL", ""),
		GeminiAPIKey: envOrDefault("ACADEMY_GEMINI_API_KEY", ""),
		GeminiModel:  envOrDefault("ACADEMY_GEMINI_MODEL", ""),

		EmailProvider: strings.ToLower(envOrDefault("ACADEMY_EMAIL_PROVIDER", EmailResend)),
		ResendKey:     envOrDefault("ACADEMY_RESEND_KEY", ""),
		EmailFrom:     envOrDefault("ACADEMY_EMAIL_FROM", "Photo Academy <noreply@academy.example.com>"),
		ReplyTo:       envOrDefault("ACADEMY_REPLY_TO", ""),
		SMTPHost:      envOrDefault("ACADEMY_SMTP_HOST", ""),
		SMTPUser:      envOrDefault("ACADEMY_SMTP_USER", ""),
		SMTPPassword:  envOrDefault("ACADEMY_SMTP_PASSWORD", ""),
		SiteURL:       strings.TrimRight(envOrDefault("ACADEMY_SITE_URL", "http://localhost:3000"), "/"),

		RedisURL: envOrDefault("ACADEMY_REDIS_URL", ""),

		MemberstackURL: envOrDefault("ACADEMY_MEMBERSTACK_URL", ""),
		MemberstackKey: envOrDefault("ACADEMY_MEMBERSTACK_KEY", ""),
		CookieName:     envOrDefault("ACADEMY_COOKIE_NAME", ""),

		AdminEmails:    listOrDefault("ACADEMY_ADMIN_EMAILS", file.AdminEmails),
		AdminPlans:     listOrDefault("ACADEMY_ADMIN_PLANS", file.AdminPlans),
		CORSOrigins:    listOrDefault("ACADEMY_CORS_ORIGINS", file.CORSOrigins),
		TrustedOrigins: listOrDefault("ACADEMY_TRUSTED_ORIGINS", file.TrustedOrigins),
		DevMembers:     file.DevMembers,
	}

	var err error
	if cfg.LogLevel, err = parseLevel(envOrDefault("ACADEMY_LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"ACADEMY_SMTP_PORT", 587, &cfg.SMTPPort},
		{"ACADEMY_RATE_LIMIT_MEMBER", 5, &cfg.MemberLimit},
		{"ACADEMY_RATE_LIMIT_IP", 20, &cfg.IPLimit},
	}
	for _, i := range ints {
		if *i.dest, err = intOrDefault(i.key, i.def); err != nil {
			return Config{}, err
		}
	}
	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"ACADEMY_AI_TIMEOUT", 30 * time.Second, &cfg.AITimeout},
		{"ACADEMY_NOTIFY_TIMEOUT", 10 * time.Second, &cfg.NotifyTimeout},
		{"ACADEMY_RATE_LIMIT_WINDOW", 10 * time.Minute, &cfg.RateLimitEvery},
	}
	for _, d := range durations {
		if *d.dest, err = durationOrDefault(d.key, d.def); err != nil {
			return Config{}, err
		}
	}
	if cfg.AllowMemberIDHeader, err = boolOrDefault("ACADEMY_ALLOW_MEMBER_ID_HEADER", false); err != nil {
		return Config{}, err
	}
	if cfg.SeedExamples, err = boolOrDefault("ACADEMY_SEED_EXAMPLES", !cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if raw := envOrDefault("ACADEMY_CSRF_KEY", ""); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ACADEMY_CSRF_KEY: %w", err)
		}
		cfg.CSRFKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("ACADEMY_ENV must be development or production, got %q", c.Env)
	}
	switch c.Store {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("ACADEMY_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("ACADEMY_DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
		if c.IsProduction() {
			return errors.New("the memory store is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown ACADEMY_STORE %q", c.Store)
	}
	switch c.AIProvider {
	case AIRoboRanger, AIGemini:
	default:
		return fmt.Errorf("unknown ACADEMY_AI_PROVIDER %q", c.AIProvider)
	}
	switch c.EmailProvider {
	case EmailResend, EmailSMTP:
	default:
		return fmt.Errorf("unknown ACADEMY_EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if c.CSRFKey != nil && len(c.CSRFKey) != 32 {
		return fmt.Errorf("ACADEMY_CSRF_KEY must be 32 bytes (64 hex chars), got %d bytes", len(c.CSRFKey))
	}
	if c.IsProduction() {
		if c.CSRFKey == nil {
			return errors.New("ACADEMY_CSRF_KEY is required in production")
		}
		if c.MemberstackKey == "" {
			return errors.New("ACADEMY_MEMBERSTACK_KEY is required in production")
		}
	}
	if c.MemberLimit <= 0 || c.IPLimit <= 0 || c.RateLimitEvery <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

func loadFile(path string) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := yaml.NewDecoder(f).Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// listOrDefault splits a comma-separated variable, falling back to the file value.
func listOrDefault(key string, fallback []string) []string {
	raw := envOrDefault(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intOrDefault(key string, fallback int) (int, error) {
	raw := envOrDefault(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	raw := envOrDefault(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	raw := envOrDefault(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("invalid ACADEMY_LOG_LEVEL %q", raw)
	}
	return l, nil
}

// NewLogger returns the JSON handler in production and the text handler otherwise.
func (c Config) NewLogger() *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
}
