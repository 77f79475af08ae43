package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authgate"
	"github.com/MrEthical07/authgate/provider"
	"github.com/MrEthical07/authgate/provider/providertest"
)

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	handler  http.Handler
	provider *providertest.Provider
}

func newFixture(t *testing.T, mutate func(*authgate.Config)) *fixture {
	t.Helper()

	cfg := authgate.DefaultConfig()
	cfg.MagicLink.RedirectURL = "http://localhost:3000/auth/callback"
	if mutate != nil {
		mutate(&cfg)
	}

	p := providertest.New().WithClock(func() time.Time { return testNow })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := authgate.New().
		WithConfig(cfg).
		WithProvider(p).
		WithLogger(logger).
		WithClock(func() time.Time { return testNow }).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	h := NewRouter(engine, Options{
		Logger: logger,
		Now:    func() time.Time { return testNow },
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
	})
	return &fixture{handler: h, provider: p}
}

func (f *fixture) do(t *testing.T, method, target, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "kab_session" {
			return c
		}
	}
	return nil
}

func TestLoginRoute(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.PutUser(provider.Principal{ID: "user-1", Email: "alice@example.com"})

	rec := f.do(t, http.MethodPost, "/auth/login", `{"email":"alice@example.com","locale":"fr"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var res authgate.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.Message != "Magic link sent successfully" {
		t.Fatalf("unexpected body %+v", res)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
}

func TestLoginRouteErrors(t *testing.T) {
	f := newFixture(t, nil)

	cases := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest, "bad_request"},
		{"missing email", `{}`, http.StatusBadRequest, "bad_request"},
		{"unknown user", `{"email":"ghost@example.com"}`, http.StatusUnauthorized, "unauthorized"},
	}
	for _, tc := range cases {
		rec := f.do(t, http.MethodPost, "/auth/login", tc.body, nil)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
		if body := decodeError(t, rec); body.Error != tc.kind {
			t.Fatalf("%s: expected kind %q, got %+v", tc.name, tc.kind, body)
		}
	}
}

func TestLoginRouteDoesNotLeakProviderDetail(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.PutUser(provider.Principal{ID: "user-1", Email: "alice@example.com"})
	f.provider.FailWith(providertest.OpSendMagicLink, &provider.Error{StatusCode: 400, Type: "internal_detail", Message: "do not show"})

	rec := f.do(t, http.MethodPost, "/auth/login", `{"email":"alice@example.com"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "internal_detail") || strings.Contains(rec.Body.String(), "do not show") {
		t.Fatalf("provider detail leaked: %s", rec.Body.String())
	}
	if body := decodeError(t, rec); body.Message != "Failed to send magic link" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestAuthenticateRouteSetsCookie(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.PutUser(provider.Principal{ID: "user-1", Email: "alice@example.com", FirstName: "Alice"})
	f.provider.IssueMagicLink("alice@example.com", "ml_token")

	rec := f.do(t, http.MethodPost, "/auth/authenticate", `{"token":"ml_token","type":"magiclink"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(rec)
	if cookie == nil || !strings.HasPrefix(cookie.Value, "sess_") {
		t.Fatalf("expected session cookie, got %+v", cookie)
	}
	if !cookie.HttpOnly || cookie.Secure || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
		t.Fatalf("unexpected development cookie attributes %+v", cookie)
	}
	if cookie.MaxAge != int((720 * time.Hour).Seconds()) {
		t.Fatalf("expected max-age of the session duration, got %d", cookie.MaxAge)
	}

	var principal authgate.Principal
	if err := json.Unmarshal(rec.Body.Bytes(), &principal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if principal.UserID != "user-1" || principal.Name != "Alice" {
		t.Fatalf("unexpected principal %+v", principal)
	}
	if strings.Contains(rec.Body.String(), cookie.Value) {
		t.Fatal("session token must not appear in the body")
	}
}

func TestAuthenticateRouteProductionCookie(t *testing.T) {
	f := newFixture(t, func(c *authgate.Config) {
		c.Environment = "production"
		c.MagicLink.RedirectURL = "https://app.example.com/auth/callback"
	})
	f.provider.PutSession("sess_abc", provider.Principal{ID: "user-1"}, testNow.Add(time.Hour))

	rec := f.do(t, http.MethodPost, "/auth/authenticate", `{"token":"sess_abc"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "sess_abc" || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Fatalf("unexpected production cookie %+v", cookie)
	}
	if cookie.MaxAge != 3600 {
		t.Fatalf("expected max-age 3600, got %d", cookie.MaxAge)
	}
}

func TestAuthenticateRouteInvalidType(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/auth/authenticate", `{"token":"abc","type":"password"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if f.provider.TotalCalls() != 0 {
		t.Fatal("invalid type must not reach the provider")
	}
}

func TestCallbackRoute(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/auth/callback", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "Missing stytch_token in query parameters" {
		t.Fatalf("unexpected message %q", body.Message)
	}

	f.provider.IssueMagicLink("alice@example.com", "ml_cb")
	rec = f.do(t, http.MethodGet, "/auth/callback?stytch_token=ml_cb", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sessionCookie(rec) == nil {
		t.Fatal("expected session cookie from callback")
	}
}

func TestProtectedRoutesWithoutCredential(t *testing.T) {
	f := newFixture(t, nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/auth/validate"},
		{http.MethodPost, "/auth/logout"},
	} {
		rec := f.do(t, route.method, route.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", route.path, rec.Code)
		}
		if body := decodeError(t, rec); body.Message != "No authorization header or cookie provided" {
			t.Fatalf("%s: unexpected message %q", route.path, body.Message)
		}
	}
	if f.provider.TotalCalls() != 0 {
		t.Fatalf("expected zero provider calls, got %d", f.provider.TotalCalls())
	}
}

func TestValidateAndMeRoutes(t *testing.T) {
	f := newFixture(t, nil)
	expires := testNow.Add(time.Hour)
	f.provider.PutSession("sess_live", provider.Principal{ID: "user-1", Email: "alice@example.com"}, expires)

	withCookie := func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "kab_session", Value: "sess_live"})
	}

	rec := f.do(t, http.MethodGet, "/auth/validate", "", withCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("validate: expected 200, got %d", rec.Code)
	}
	var vr authgate.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !vr.Valid || vr.User.UserID != "user-1" || !vr.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected validation body %+v", vr)
	}

	rec = f.do(t, http.MethodGet, "/auth/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer sess_live")
	})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"email":"alice@example.com"`) {
		t.Fatalf("me: unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogoutRouteClearsCookie(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.PutSession("sess_live", provider.Principal{ID: "user-1"}, testNow.Add(time.Hour))

	rec := f.do(t, http.MethodPost, "/auth/logout", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "kab_session", Value: "sess_live"})
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("expected clearing cookie, got %+v", cookie)
	}
	if f.provider.HasSession("sess_live") {
		t.Fatal("session must be revoked")
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"provider":"configured"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "metrics" {
		t.Fatalf("unexpected metrics response %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORS(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodOptions, "/auth/login", "", func(r *http.Request) {
		r.Header.Set("Origin", "http://localhost:3001")
		r.Header.Set("Access-Control-Request-Method", "POST")
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3001" || rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("unexpected preflight headers %v", rec.Header())
	}

	rec = f.do(t, http.MethodGet, "/healthz", "", func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example.com")
	})
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not be allowed")
	}
}

func TestRequestIDPropagates(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/healthz", "", func(r *http.Request) {
		r.Header.Set(RequestIDHeader, "req-123")
	})
	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected request id echo, got %q", got)
	}
}

func TestServerServesUntilCanceled(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr())
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !bytes.Equal(body, []byte("ok")) {
		t.Fatalf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
