package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"academy/internal/adapters/membership"
	"academy/internal/domain/identity"
)

type recordingResolver struct {
	got   []membership.Credentials
	ident identity.Identity
}

func (r *recordingResolver) Resolve(_ context.Context, c membership.Credentials) identity.Identity {
	r.got = append(r.got, c)
	return r.ident
}

func identityEcho(seen *identity.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

// TestIdentity_ExtractsAllSources verifies bearer, cookie and header are passed on together.
func TestIdentity_ExtractsAllSources(t *testing.T) {
	res := &recordingResolver{ident: identity.Identity{Kind: identity.KindMember, Member: identity.Member{ID: "mem_1"}}}
	var seen identity.Identity
	handler := Identity(res, "")(identityEcho(&seen))

	req := httptest.NewRequest("GET", "/questions", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	req.AddCookie(&http.Cookie{Name: membership.DefaultCookieName, Value: "cookie-1"})
	req.Header.Set(MemberIDHeader, "mem_9")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(res.got) != 1 {
		t.Fatalf("resolver called %d times, want 1", len(res.got))
	}
	want := membership.Credentials{BearerToken: "tok-1", CookieToken: "cookie-1", MemberID: "mem_9"}
	if res.got[0] != want {
		t.Errorf("credentials = %+v, want %+v", res.got[0], want)
	}
	if seen.Member.ID != "mem_1" {
		t.Errorf("identity in context = %+v", seen)
	}
}

// TestIdentity_NoCredentials verifies anonymous requests skip the provider.
func TestIdentity_NoCredentials(t *testing.T) {
	res := &recordingResolver{}
	var seen identity.Identity
	Identity(res, "")(identityEcho(&seen)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/questions", nil))

	if len(res.got) != 0 {
		t.Error("resolver should not be called without credentials")
	}
	if seen.IsAuthenticated() {
		t.Error("expected unauthenticated identity")
	}
}

// TestExtractCredentials_NonBearerIgnored verifies other auth schemes are not treated as tokens.
func TestExtractCredentials_NonBearerIgnored(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if c := ExtractCredentials(req, membership.DefaultCookieName); c.BearerToken != "" {
		t.Errorf("BearerToken = %q, want empty", c.BearerToken)
	}
}

// TestCORS_PreflightAllowedOrigin verifies preflight returns 204 with credentials allowed.
func TestCORS_PreflightAllowedOrigin(t *testing.T) {
	called := false
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://academy.example.com/"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/questions", nil)
	req.Header.Set("Origin", "https://academy.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
	if called {
		t.Error("preflight must not reach the handler")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://academy.example.com" {
		t.Errorf("allow-origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials should be allowed")
	}
}

// TestCORS_UnknownOrigin verifies foreign origins get no CORS headers.
func TestCORS_UnknownOrigin(t *testing.T) {
	handler := CORS(CORSConfig{AllowedOrigins: []string{"https://academy.example.com"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/questions", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unexpected allow-origin for foreign origin")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestRecover_ReturnsJSON500 verifies panics become a JSON error.
func TestRecover_ReturnsJSON500(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if rr.Body.String() != `{"error":"internal server error"}` {
		t.Errorf("body = %s", rr.Body.String())
	}
}

// TestClientIP verifies forwarded headers win over RemoteAddr.
func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("ClientIP = %q, want 10.0.0.1", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP = %q, want 203.0.113.7", got)
	}
}

// TestCSRF_JSONExempt verifies JSON posts bypass the form token check while form posts need it.
func TestCSRF_JSONExempt(t *testing.T) {
	key := make([]byte, 32)
	handler := CSRF(key, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/questions", nil)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Errorf("JSON post status = %d, want 201", rr.Code)
	}

	req = httptest.NewRequest("POST", "/questions", nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form post status = %d, want 403", rr.Code)
	}

	req = httptest.NewRequest("PATCH", "/questions/q1/archive", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Errorf("bodiless patch status = %d, want 201", rr.Code)
	}
}

// TestSecurityHeaders verifies the API headers are set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("headers = %v", rr.Header())
	}
}

func TestChain_LastIsOutermost(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("inner"), tag("outer"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
