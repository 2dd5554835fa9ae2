package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"photoshare/logger"
	"photoshare/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour)
	r := gin.New()
	r.GET("/me", SessionAuth(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, ActorFrom(c).UserID.Hex())
	})
	return r, sessions
}

func TestSessionAuthTokenSources(t *testing.T) {
	r, sessions := newAuthRouter(t)
	userID := primitive.NewObjectID()
	token, _, err := sessions.Issue(context.Background(), userID.Hex())
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func(req *http.Request)
	}{
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) }},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }},
		{"query", func(req *http.Request) { req.URL.RawQuery = "token=" + token }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.build(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, userID.Hex(), w.Body.String())
		})
	}
}

func TestSessionAuthRejects(t *testing.T) {
	r, sessions := newAuthRouter(t)
	token, sess, err := sessions.Issue(context.Background(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	require.NoError(t, sessions.Revoke(context.Background(), sess.ID))

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"garbage", "Bearer not-a-token"},
		{"wrong scheme", "Basic " + token},
		{"revoked", "Bearer " + token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "UNAUTHORIZED", body["code"])
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(2)
	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "buckets are per IP")

	// Two per minute refills one token every 30s.
	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 2, rl.Cleanup(time.Minute))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit("login", NewIPRateLimiter(1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestIDEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSessionAuthPrefersBearerOverStaleCookie(t *testing.T) {
	r, sessions := newAuthRouter(t)
	userID := primitive.NewObjectID()
	token, _, err := sessions.Issue(context.Background(), userID.Hex())
	require.NoError(t, err)
	stale, staleSess, err := sessions.Issue(context.Background(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	require.NoError(t, sessions.Revoke(context.Background(), staleSess.ID))

	for _, cookie := range []string{stale, "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.Hex(), w.Body.String())
	}
}

func TestRequestLoggerRedactsQueryToken(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour)
	token, _, err := sessions.Issue(context.Background(), primitive.NewObjectID().Hex())
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/me", SessionAuth(sessions), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me?page=2&token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	for key, value := range entries[0].ContextMap() {
		if s, ok := value.(string); ok {
			assert.NotContains(t, s, token, "field %s leaks the session token", key)
		}
	}
	assert.Contains(t, entries[0].ContextMap()["query"], "page=2")
}

func TestRedactQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want func(t *testing.T, got string)
	}{
		{"empty", "", func(t *testing.T, got string) { assert.Empty(t, got) }},
		{"no token", "page=2&q=cat", func(t *testing.T, got string) { assert.Equal(t, "page=2&q=cat", got) }},
		{"token", "token=secret&page=2", func(t *testing.T, got string) {
			assert.False(t, strings.Contains(got, "secret"))
			assert.Contains(t, got, "page=2")
		}},
		{"bad encoding", "token=%zz", func(t *testing.T, got string) { assert.NotContains(t, got, "%zz") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, redactQuery(tt.raw))
		})
	}
}
