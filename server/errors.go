package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kweller/go-prodcat/catalog"
)

// writeError translates a taxonomy error into a transport-level outcome.
// Client errors carry the descriptive message; server errors get a generic
// body with the full detail kept in the logs only.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		status  int
		message string
	)

	var ve *catalog.ValidationError
	var rl *catalog.RateLimitError
	switch {
	case errors.As(err, &ve):
		status, message = http.StatusBadRequest, ve.Error()
	case errors.Is(err, catalog.ErrNotFound):
		status, message = http.StatusNotFound, "resource not found"
	case errors.Is(err, catalog.ErrConflict):
		status, message = http.StatusConflict, "resource already exists"
	case errors.Is(err, catalog.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, catalog.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	case errors.As(err, &rl):
		if rl.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(rl.RetryAfter/time.Second)))
		}
		status, message = http.StatusTooManyRequests, "store throughput limit reached, retry later"
	case errors.Is(err, catalog.ErrRateLimited):
		status, message = http.StatusTooManyRequests, "store throughput limit reached, retry later"
	case errors.Is(err, catalog.ErrEmbeddingFailure):
		status, message = http.StatusBadGateway, "embedding service failed"
	case errors.Is(err, catalog.ErrStoreUnavailable):
		status, message = http.StatusServiceUnavailable, "catalog store unavailable"
	default:
		s.logger.Error("unclassified error", "path", c.Request.URL.Path, "error", err)
		status, message = http.StatusInternalServerError, "an unexpected error occurred"
	}

	if status >= http.StatusInternalServerError && status != http.StatusInternalServerError {
		s.logger.Warn("request failed", "path", c.Request.URL.Path, "status", status, "error", err)
	}

	c.JSON(status, gin.H{
		"statusCode": status,
		"message":    message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
