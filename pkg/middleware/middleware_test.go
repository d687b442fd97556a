package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wvflights/flightlog-api/config"
	"github.com/wvflights/flightlog-api/pkg/cache"
	"github.com/wvflights/flightlog-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx = logger.RequestID(c.Request.Context())
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, id, fromCtx)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestResponseCache(t *testing.T) {
	cm := cache.NewCacheManager(cache.NewLocalCache(16, time.Minute))
	calls := 0

	r := gin.New()
	r.Use(ResponseCache(cm, CacheConfig{TTL: time.Minute, KeyPrefix: "t", SkipPaths: []string{"/skip"}}))
	r.GET("/stats", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/missing", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.GET("/skip", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/stats?b=2&a=1")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := get("/stats?a=1&b=2")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	get("/missing")
	get("/missing")
	assert.Equal(t, 3, calls, "errors are not cached")

	get("/skip")
	get("/skip")
	assert.Equal(t, 5, calls)
}

func TestResponseCache_NilManager(t *testing.T) {
	r := gin.New()
	r.Use(ResponseCache(nil, CacheConfig{}))
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
}

func TestAdminAuth(t *testing.T) {
	cfg := config.AdminAuthConfig{Enabled: true, Username: "admin", Password: "pw", Token: "tok"}
	r := gin.New()
	r.Use(AdminAuth(cfg))
	r.POST("/admin", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") }, http.StatusNoContent},
		{"wrong bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"basic", func(r *http.Request) { r.SetBasicAuth("admin", "pw") }, http.StatusNoContent},
		{"wrong basic", func(r *http.Request) { r.SetBasicAuth("admin", "x") }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	open := gin.New()
	open.Use(AdminAuth(config.AdminAuthConfig{}))
	open.POST("/admin", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
