package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"academy/internal/adapters/http/perf"
)

// RequestIDHeader is echoed back on every timed response.
const RequestIDHeader = "X-Request-ID"

const defaultSlowRequest = 200 * time.Millisecond

// SlowRequestThreshold reads ACADEMY_SLOW_REQUEST_MS, falling back to 200ms.
func SlowRequestThreshold() time.Duration {
	if n, err := strconv.Atoi(os.Getenv("ACADEMY_SLOW_REQUEST_MS")); err == nil && n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return defaultSlowRequest
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Timing logs each request once it finishes and feeds the perf collector when one is
// given. Requests slower than SlowRequestThreshold log at WARN. /healthz and preflights
// pass through untimed.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	slow := SlowRequestThreshold()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" || len(reqID) > 64 {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			// deferred so a panicking handler is still recorded before Recover sees it
			defer func() {
				elapsed := time.Since(start)
				ms := float64(elapsed.Microseconds()) / 1000

				level, event := slog.LevelDebug, "request"
				if elapsed >= slow {
					level, event = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, event,
					"request_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"status", rec.status,
					"duration_ms", ms,
				)

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + RouteLabel(r.URL.Path),
						StatusCode: rec.status,
						DurationMs: ms,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// RouteLabel swaps UUID path segments for {id} so perf groups by route.
func RouteLabel(path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if len(seg) != 36 {
			continue
		}
		if _, err := uuid.Parse(seg); err == nil {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}
