// Package api exposes the eligibility engine over HTTP.
// Handlers are thin adapters: they bind JSON, read the current catalog
// snapshot and delegate to the engine packages.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/course-eligibility-go/internal/ctxutil"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/metrics"
	"github.com/garyellow/course-eligibility-go/internal/sentry"
	"github.com/garyellow/course-eligibility-go/internal/snapshot"
)

const (
	moduleName = "api"

	// retryAfterSeconds is sent with 503 responses while no catalog is loaded.
	retryAfterSeconds = "30"

	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Snapshots provides the current catalog snapshot.
type Snapshots interface {
	Current() (*snapshot.Snapshot, error)
}

// Config holds handler dependencies.
type Config struct {
	Snapshots   Snapshots
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
	SearchLimit int // Default result count for program search
}

// Handler serves the /api/v1 routes.
type Handler struct {
	snapshots   Snapshots
	metrics     *metrics.Metrics
	logger      *logger.Logger
	searchLimit int
}

// NewHandler creates a Handler.
func NewHandler(cfg Config) *Handler {
	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &Handler{
		snapshots:   cfg.Snapshots,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.WithModule(moduleName),
		searchLimit: min(limit, maxSearchLimit),
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.POST("/eligibility", h.evaluate)
	v1.POST("/aps", h.computeAPS)
	v1.POST("/nsc", h.evaluateNSC)
	v1.POST("/subjects/availability", h.subjectAvailability)
	v1.POST("/subjects/normalize", h.normalizeSubjects)
	v1.GET("/programs/search", h.searchPrograms)
	v1.GET("/catalog", h.catalogSummary)
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// snapshot returns the loaded snapshot or writes a 503.
func (h *Handler) snapshot(c *gin.Context, operation string) (*snapshot.Snapshot, bool) {
	s, err := h.snapshots.Current()
	if err == nil {
		return s, true
	}
	h.recordError("catalog_unavailable", operation)
	c.Header("Retry-After", retryAfterSeconds)
	h.abort(c, http.StatusServiceUnavailable, "catalog not loaded")
	return nil, false
}

// badRequest writes a 400 for a body that failed to bind, or a 413 when
// the body hit the size limit.
func (h *Handler) badRequest(c *gin.Context, operation string, err error) {
	h.recordEvaluation(operation, "invalid", time.Time{})
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.recordError("body_too_large", operation)
		h.abort(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	h.recordError("bad_request", operation)
	h.abort(c, http.StatusBadRequest, bindMessage(err))
}

// internalError logs err, reports it to Sentry and writes a 500.
func (h *Handler) internalError(c *gin.Context, operation string, err error) {
	h.recordError("internal", operation)
	h.logger.WithError(err).WithField("operation", operation).ErrorContext(c.Request.Context(), "Request failed")
	sentry.CaptureExceptionWithContext(c, err)
	h.abort(c, http.StatusInternalServerError, "internal error")
}

func (h *Handler) abort(c *gin.Context, status int, msg string) {
	requestID, _ := ctxutil.GetRequestID(c.Request.Context())
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     msg,
		RequestID: requestID,
	})
}

func (h *Handler) recordError(errorType, operation string) {
	if h.metrics != nil {
		h.metrics.RecordHTTPError(errorType, operation)
	}
}

// recordEvaluation records a finished operation. A zero start records no duration.
func (h *Handler) recordEvaluation(operation, status string, start time.Time) {
	if h.metrics == nil {
		return
	}
	var d float64
	if !start.IsZero() {
		d = time.Since(start).Seconds()
	}
	h.metrics.RecordEvaluation(operation, status, d)
}

func bindMessage(err error) string {
	if err == nil {
		return "invalid request body"
	}
	return "invalid request body: " + err.Error()
}
