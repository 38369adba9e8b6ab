package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/internal/infrastructure/security"
)

func whoAmI(w http.ResponseWriter, r *http.Request) {
	if id, ok := UserIDFromContext(r.Context()); ok {
		_, _ = w.Write([]byte(id.String()))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func TestAuthenticate(t *testing.T) {
	auth := security.NewAuthService(config.AuthConfig{JWTSecret: "secret", Issuer: "recipebox"}, zaptest.NewLogger(t))
	userID := uuid.New()
	token, err := auth.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	handler := Authenticate(auth)(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "anonymous", header: "", status: http.StatusOK, body: "anonymous"},
		{name: "valid token", header: "Bearer " + token, status: http.StatusOK, body: userID.String()},
		{name: "lowercase scheme", header: "bearer " + token, status: http.StatusOK, body: userID.String()},
		{name: "bad scheme", header: "Basic abc", status: http.StatusUnauthorized, body: `{"error":"Invalid authorization header format"}`},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized, body: `{"error":"Invalid or expired token"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAuthenticate_DisabledIgnoresHeader(t *testing.T) {
	auth := security.NewAuthService(config.AuthConfig{}, zaptest.NewLogger(t))
	handler := Authenticate(auth)(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequireUser(t *testing.T) {
	handler := RequireUser(http.HandlerFunc(whoAmI))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(60, 2, zaptest.NewLogger(t))
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/parse-recipe", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:2222").Code)

	rejected := call("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "2", rejected.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1111").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:4444").Code)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(60, 1, zaptest.NewLogger(t))
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	limiter.Allow("b")
	assert.Len(t, limiter.clients, 2)

	now = now.Add(2 * limiterIdleTTL)
	limiter.Allow("c")
	assert.Len(t, limiter.clients, 1)
}
