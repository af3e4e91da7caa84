package web

import (
	"fmt"
	"net/http"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
)

// TraceID injects a UUID trace ID into every request context and response header.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the Gin context.
func GetTraceID(c *gin.Context) string {
	if v, exists := c.Get(TraceIDKey); exists {
		return v.(string)
	}
	return ""
}

// Recovery catches handler panics, counts them with the anti-crash handler
// and answers with a generic 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(fmt.Sprintf("panic on %s [%s]: %v", c.Request.URL.Path, GetTraceID(c), r), "WebServer")
				if h := errors.Get(); h != nil {
					h.IncrementError()
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// respondError maps an error to its HTTP status. Internal errors are logged
// and never leak details to the caller.
func respondError(c *gin.Context, err error) {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.Message(err)})
	case errors.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": errors.Message(err)})
	case errors.KindUpstreamUnavailable:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream unavailable"})
	default:
		logger.Error(fmt.Sprintf("%s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, GetTraceID(c), err), "WebServer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
