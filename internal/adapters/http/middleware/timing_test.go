package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"academy/internal/adapters/http/perf"
)

func timed(collector *perf.Collector, h http.HandlerFunc) http.Handler {
	return Timing(collector)(h)
}

func TestTiming_RecordsStatusAndRoute(t *testing.T) {
	cases := []struct {
		name, method, path string
		handler            http.HandlerFunc
		wantStatus         int
		wantPath           string
	}{
		{"explicit status", "GET", "/missing",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			http.StatusNotFound, "GET /missing"},
		{"implicit 200", "GET", "/questions",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) },
			http.StatusOK, "GET /questions"},
		{"id collapsed", "PATCH", "/questions/7f9c24e8-3b12-4fef-91e3-3b6bd3c2a0f1/archive",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) },
			http.StatusCreated, "PATCH /questions/{id}/archive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			collector := perf.NewCollector(10)
			rr := httptest.NewRecorder()
			timed(collector, tc.handler).ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
			if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != tc.wantPath {
				t.Fatalf("paths = %+v, want %q", snap.SlowestPaths, tc.wantPath)
			}
			if snap.SlowestPaths[0].AvgMs < 0 {
				t.Errorf("AvgMs = %v", snap.SlowestPaths[0].AvgMs)
			}
		})
	}
}

func TestTiming_SkipsHealthzAndPreflight(t *testing.T) {
	collector := perf.NewCollector(10)
	h := timed(collector, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	for _, req := range []*http.Request{
		httptest.NewRequest("GET", "/healthz", nil),
		httptest.NewRequest("OPTIONS", "/questions", nil),
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Errorf("%s %s: status = %d", req.Method, req.URL.Path, rr.Code)
		}
		if rr.Header().Get(RequestIDHeader) != "" {
			t.Errorf("%s %s: untimed request got a request id", req.Method, req.URL.Path)
		}
	}
	if n := collector.TotalRecorded(); n != 0 {
		t.Errorf("TotalRecorded = %d, want 0", n)
	}
}

func TestTiming_NilCollector(t *testing.T) {
	rr := httptest.NewRecorder()
	timed(nil, func(w http.ResponseWriter, r *http.Request) {}).ServeHTTP(rr, httptest.NewRequest("GET", "/questions", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTiming_PanicStillRecorded verifies the entry is written before the panic reaches Recover.
func TestTiming_PanicStillRecorded(t *testing.T) {
	collector := perf.NewCollector(10)
	h := timed(collector, func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	defer func() {
		if recover() == nil {
			t.Fatal("panic should propagate")
		}
		if n := collector.TotalRecorded(); n != 1 {
			t.Errorf("TotalRecorded = %d, want 1", n)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/admin/questions", nil))
}

func TestTiming_RequestID(t *testing.T) {
	h := timed(nil, func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/questions", nil))
	generated := rr.Header().Get(RequestIDHeader)
	if len(generated) != 36 {
		t.Errorf("generated id = %q", generated)
	}

	req := httptest.NewRequest("GET", "/questions", nil)
	req.Header.Set(RequestIDHeader, "edge-42")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != "edge-42" {
		t.Errorf("forwarded id = %q, want edge-42", got)
	}
}

func TestSlowRequestThreshold(t *testing.T) {
	cases := map[string]time.Duration{
		"":     200 * time.Millisecond,
		"750":  750 * time.Millisecond,
		"0":    200 * time.Millisecond,
		"-5":   200 * time.Millisecond,
		"fast": 200 * time.Millisecond,
	}
	for in, want := range cases {
		t.Setenv("ACADEMY_SLOW_REQUEST_MS", in)
		if got := SlowRequestThreshold(); got != want {
			t.Errorf("SlowRequestThreshold(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRouteLabel(t *testing.T) {
	cases := map[string]string{
		"/questions": "/questions",
		"/admin/questions/7f9c24e8-3b12-4fef-91e3-3b6bd3c2a0f1": "/admin/questions/{id}",
		"/questions/not-a-uuid/archive":                         "/questions/not-a-uuid/archive",
	}
	for in, want := range cases {
		if got := RouteLabel(in); got != want {
			t.Errorf("RouteLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func BenchmarkTiming(b *testing.B) {
	collector := perf.NewCollector(perf.DefaultRingSize)
	h := timed(collector, func(w http.ResponseWriter, r *http.Request) {})

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/questions", nil))
		}
	})
}
