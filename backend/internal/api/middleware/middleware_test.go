package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"matehost-scheduler/backend/config"
	"matehost-scheduler/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mocks ──

type mockChecker struct {
	revoked map[string]bool
	err     error
}

func (m *mockChecker) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], m.err
}

type mockLimiter struct {
	allowed   bool
	remaining int
	err       error
	keys      []string
}

func (m *mockLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, int, error) {
	m.keys = append(m.keys, key)
	return m.allowed, m.remaining, m.err
}

func newJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func protectedRouter(mgr *jwt.Manager, checker TokenChecker) *gin.Engine {
	r := gin.New()
	r.GET("/protected", JWTAuth(mgr, checker), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ctxUserID)+"|"+c.GetString(ctxRole))
	})
	return r
}

// ═══════════════════════════════════════════════════════════
// JWTAuth Tests
// ═══════════════════════════════════════════════════════════

func TestJWTAuth_ValidAccessToken(t *testing.T) {
	mgr := newJWTManager()
	token, err := mgr.GenerateAccessToken("user-1", "alice", "assistant")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(mgr, nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "user-1|assistant" {
		t.Errorf("unexpected context values %q", w.Body.String())
	}
}

func TestJWTAuth_QueryToken(t *testing.T) {
	mgr := newJWTManager()
	token, _ := mgr.GenerateAccessToken("user-1", "alice", "matehost")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected?access_token="+token, nil)
	protectedRouter(mgr, nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestJWTAuth_Rejected(t *testing.T) {
	mgr := newJWTManager()
	refresh, _ := mgr.GenerateRefreshToken("user-1", "alice", "matehost", false)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"refresh token", "Bearer " + refresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			protectedRouter(mgr, nil).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestJWTAuth_Blacklisted(t *testing.T) {
	mgr := newJWTManager()
	token, _ := mgr.GenerateAccessToken("user-1", "alice", "matehost")
	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	checker := &mockChecker{revoked: map[string]bool{claims.ID: true}}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(mgr, checker).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", w.Code)
	}
}

func TestJWTAuth_BlacklistUnavailable(t *testing.T) {
	mgr := newJWTManager()
	token, _ := mgr.GenerateAccessToken("user-1", "alice", "matehost")

	checker := &mockChecker{err: errors.New("connection refused")}
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protectedRouter(mgr, checker).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when blacklist is unavailable, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// RateLimit Tests
// ═══════════════════════════════════════════════════════════

func rateLimitedRouter(limiter Limiter) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", RateLimit(limiter, 10, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimit_Exceeded(t *testing.T) {
	limiter := &mockLimiter{allowed: false}
	w := httptest.NewRecorder()
	rateLimitedRouter(limiter).ServeHTTP(w, httptest.NewRequest("POST", "/auth/login", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
	if len(limiter.keys) != 1 || !strings.HasSuffix(limiter.keys[0], ":/auth/login") {
		t.Errorf("unexpected limiter keys %v", limiter.keys)
	}
}

func TestRateLimit_Allowed(t *testing.T) {
	w := httptest.NewRecorder()
	rateLimitedRouter(&mockLimiter{allowed: true, remaining: 9}).ServeHTTP(w, httptest.NewRequest("POST", "/auth/login", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Remaining") != "9" {
		t.Errorf("expected remaining 9, got %q", w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_Degrades(t *testing.T) {
	for name, limiter := range map[string]Limiter{
		"no redis":    nil,
		"redis error": &mockLimiter{err: errors.New("timeout")},
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			rateLimitedRouter(limiter).ServeHTTP(w, httptest.NewRequest("POST", "/auth/login", nil))
			if w.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", w.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// BodyLimit / RequestID / CORS Tests
// ═══════════════════════════════════════════════════════════

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/echo", bytes.NewBufferString(`{"comments":"a long comment body"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/echo", bytes.NewBufferString(`{"a":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	r.ServeHTTP(w, req)
	if w.Body.String() != "trace-123" || w.Header().Get(requestIDHeader) != "trace-123" {
		t.Errorf("expected inbound request id to be kept, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	if len(w.Body.String()) != 36 {
		t.Errorf("expected generated uuid, got %q", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("expected origin to be allowed")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("unexpected allow origin for foreign site")
	}
}
