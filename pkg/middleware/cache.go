package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wvflights/flightlog-api/pkg/cache"
	"github.com/wvflights/flightlog-api/pkg/logger"
)

// CacheConfig holds cache middleware configuration
type CacheConfig struct {
	TTL         time.Duration
	KeyPrefix   string
	SkipPaths   []string
	OnlyMethods []string
}

// responseWriter wraps gin.ResponseWriter to capture response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

// CachedResponse represents a cached HTTP response
type CachedResponse struct {
	StatusCode  int               `json:"status_code"`
	Headers     map[string]string `json:"headers"`
	Body        []byte            `json:"body"`
	ContentType string            `json:"content_type"`
	CachedAt    time.Time         `json:"cached_at"`
}

// ResponseCache caches successful JSON responses keyed by method, path and
// normalized query. A nil cacheManager disables it.
func ResponseCache(cacheManager *cache.CacheManager, config CacheConfig) gin.HandlerFunc {
	if config.OnlyMethods == nil {
		config.OnlyMethods = []string{http.MethodGet}
	}

	return func(c *gin.Context) {
		if cacheManager == nil || !contains(config.OnlyMethods, c.Request.Method) {
			c.Next()
			return
		}
		for _, skipPath := range config.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, skipPath) {
				c.Next()
				return
			}
		}

		ctx := c.Request.Context()
		cacheKey := generateCacheKey(config.KeyPrefix, c.Request)
		log := logger.WithContext(ctx).WithField("cache_key", cacheKey)

		var cached CachedResponse
		err := cacheManager.GetJSON(ctx, cacheKey, &cached)
		if err == nil {
			log.Debug("Cache hit")
			for key, value := range cached.Headers {
				c.Header(key, value)
			}
			c.Header("X-Cache", "HIT")
			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Error(err, "Cache get error")
		}

		body := &bytes.Buffer{}
		c.Writer = &responseWriter{ResponseWriter: c.Writer, body: body}
		c.Header("X-Cache", "MISS")

		c.Next()

		status := c.Writer.Status()
		contentType := c.Writer.Header().Get("Content-Type")
		if status < 200 || status >= 300 || !strings.Contains(contentType, "application/json") {
			return
		}

		resp := CachedResponse{
			StatusCode:  status,
			Headers:     make(map[string]string),
			Body:        body.Bytes(),
			ContentType: contentType,
			CachedAt:    time.Now(),
		}
		for key, values := range c.Writer.Header() {
			if len(values) > 0 && shouldCacheHeader(key) {
				resp.Headers[key] = values[0]
			}
		}
		if err := cacheManager.SetJSON(ctx, cacheKey, resp, config.TTL); err != nil {
			log.Error(err, "Cache set error")
		}
	}
}

// generateCacheKey hashes the method, path and query. Query parameters are
// re-encoded in sorted order so equivalent URLs share an entry.
func generateCacheKey(prefix string, req *http.Request) string {
	keyData := req.Method + ":" + req.URL.Path + ":" + req.URL.Query().Encode()
	hash := sha256.Sum256([]byte(keyData))
	key := "response:" + hex.EncodeToString(hash[:16])
	if prefix != "" {
		return prefix + ":" + key
	}
	return key
}

func shouldCacheHeader(header string) bool {
	switch strings.ToLower(header) {
	case "content-type", "content-encoding", "cache-control", "etag", "last-modified":
		return true
	}
	return false
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
