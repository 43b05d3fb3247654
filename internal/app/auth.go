package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/course-eligibility-go/internal/metrics"
)

// metricsAuthMiddleware enforces Basic Auth on /metrics when enabled.
// Rejected scrapes are counted as unauthorized HTTP errors.
func metricsAuthMiddleware(enabled bool, username, password string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		user, pass, hasAuth := c.Request.BasicAuth()
		// Constant-time comparison
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if !hasAuth || !userMatch || !passMatch {
			if m != nil {
				m.RecordHTTPError("unauthorized", "metrics")
			}
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
