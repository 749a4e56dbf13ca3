// Package respond writes service results and apperr failures as JSON.
package respond

import (
	"net/http"

	"musical-catalog/internal/domain/apperr"
	"musical-catalog/internal/logging"

	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

// Status maps an error kind to its HTTP status code.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidationFailed:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error aborts the request with the status and body for err. Internal
// failures are logged and reported with a generic message.
func Error(c *gin.Context, log logging.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		if log != nil {
			log.Error(c.Request.Context(), "request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", err.Error(),
			)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	body := gin.H{"error": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.AbortWithStatusJSON(Status(e.Kind), body)
}

// BadRequest reports a body or query that could not be decoded.
func BadRequest(c *gin.Context, msg string, fields map[string]string) {
	Error(c, nil, apperr.Validation(msg, fields))
}
