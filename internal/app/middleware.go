package app

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyellow/course-eligibility-go/internal/ctxutil"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/metrics"
	"github.com/garyellow/course-eligibility-go/internal/ratelimit"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// requestIDMiddleware reuses a client request ID (X-Request-ID or
// X-Correlation-ID) or generates a UUID, and stores it with the client IP
// on the request context for ContextHandler.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-ID")
		}
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// timeoutMiddleware bounds the request context.
func timeoutMiddleware(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bodyLimitMiddleware rejects bodies declared larger than limit with 413
// and caps the rest with http.MaxBytesReader, so handlers fail on read.
func bodyLimitMiddleware(limit int64, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			if m != nil {
				m.RecordHTTPError("body_too_large", "api")
			}
			requestID, _ := ctxutil.GetRequestID(c.Request.Context())
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":      "request body too large",
				"request_id": requestID,
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// rateLimitMiddleware rejects clients over their request budget with 429
// and a Retry-After hint in whole seconds.
func rateLimitMiddleware(l *ratelimit.ClientLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := l.Allow(c.ClientIP())
		if allowed {
			c.Next()
			return
		}

		if m != nil {
			m.RecordHTTPError("rate_limited", "api")
		}
		requestID, _ := ctxutil.GetRequestID(c.Request.Context())
		seconds := max(int(math.Ceil(retryAfter.Seconds())), 1)
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":      "rate limit exceeded",
			"request_id": requestID,
		})
	}
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug.
// request_id and client_ip come from the context via ContextHandler.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(map[string]any{
			"http_method": method,
			"http_path":   path,
			"http_status": status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			entry.ErrorContext(ctx, "HTTP request failed")
		case status >= 400 && status != 404:
			entry.WarnContext(ctx, "HTTP request rejected")
		case status == 404:
			entry.DebugContext(ctx, "HTTP request not found")
		default:
			entry.DebugContext(ctx, "HTTP request completed")
		}
	}
}
