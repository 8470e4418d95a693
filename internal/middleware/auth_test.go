package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/commercegrid/backoffice/pkg/logger"
)

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetUserID(r.Context())))
	})
}

func TestAuthMiddlewareAcceptsIssuedToken(t *testing.T) {
	auth := NewAuthMiddleware([]byte("secret"), logger.NewDefault("test"), nil)
	token, err := auth.IssueToken("u-1", "a@example.com", "admin", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	auth.Handler(echoUserID()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", resp.Code)
	}
	if resp.Body.String() != "u-1" {
		t.Fatalf("user id in context = %q, want u-1", resp.Body.String())
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	auth := NewAuthMiddleware([]byte("secret"), logger.NewDefault("test"), nil)
	other := NewAuthMiddleware([]byte("other-secret"), logger.NewDefault("test"), nil)

	forged, err := other.IssueToken("u-1", "", "", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	expired, err := auth.IssueToken("u-1", "", "", -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"wrong secret", "Bearer " + forged},
		{"expired", "Bearer " + expired},
		{"garbage", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			auth.Handler(echoUserID()).ServeHTTP(resp, req)

			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("code = %d, want 401", resp.Code)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body["success"] != false {
				t.Fatalf("success = %v, want false", body["success"])
			}
		})
	}
}

func TestAuthMiddlewareSkipsConfiguredPaths(t *testing.T) {
	auth := NewAuthMiddleware([]byte("secret"), logger.NewDefault("test"), []string{"/healthz"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	auth.Handler(echoUserID()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("skip path code = %d, want 200", resp.Code)
	}
}

func TestRateLimiterReturns429(t *testing.T) {
	limiter := NewRateLimiter(1, 1, logger.NewDefault("test"))

	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.RemoteAddr = "10.0.0.1:12345"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request code = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request code = %d, want 429", second.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/users", nil)
	other.RemoteAddr = "10.0.0.2:12345"
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, other)
	if third.Code != http.StatusOK {
		t.Fatalf("other client code = %d, want 200", third.Code)
	}
}

func TestCORSMiddlewarePreflightAndHeaders(t *testing.T) {
	cors := NewCORSMiddleware([]string{"https://admin.example.com"})
	handler := cors.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("preflight code = %d, want 204", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.example.com" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin got header %q", got)
	}
}
