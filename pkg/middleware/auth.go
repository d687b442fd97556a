package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wvflights/flightlog-api/config"
	"github.com/wvflights/flightlog-api/pkg/logger"
)

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// AdminAuth guards the admin routes with a bearer token or basic auth.
// When disabled in config every request passes.
func AdminAuth(cfg config.AdminAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok && cfg.Token != "" {
			if equal(token, cfg.Token) {
				c.Next()
				return
			}
		}

		if cfg.Username != "" && cfg.Password != "" {
			if username, password, ok := c.Request.BasicAuth(); ok && equal(username, cfg.Username) && equal(password, cfg.Password) {
				c.Next()
				return
			}
		}

		logger.WithContext(c.Request.Context()).Warn("admin auth rejected", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
		c.Header("WWW-Authenticate", `Basic realm="flightlog admin"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "unauthorized",
		})
	}
}
