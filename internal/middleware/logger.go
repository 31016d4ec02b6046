package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
)

const (
	ContextKeyRequestID   = "request_id"
	ContextKeyLogger      = "logger"
	ContextKeyDiagnostics = "diagnostics"
)

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger stores a request-scoped logger in the context and logs each HTTP
// request with method, path, status, and latency.
func Logger(base *zap.Logger) gin.HandlerFunc {
	base = logger.OrNop(base).Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := base.With(zap.String("request_id", c.GetString(ContextKeyRequestID)))
		c.Set(ContextKeyLogger, reqLog)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLog.Error("request", fields...)
		case status >= 400:
			reqLog.Warn("request", fields...)
		default:
			reqLog.Info("request", fields...)
		}
	}
}

// GetLogger returns the request-scoped logger, or a no-op logger outside a
// request pipeline.
func GetLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ContextKeyLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// Diagnostics marks whether error responses may carry captured engine
// output. Only development servers enable it.
func Diagnostics(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDiagnostics, enabled)
		c.Next()
	}
}

// DiagnosticsEnabled reports the flag set by Diagnostics.
func DiagnosticsEnabled(c *gin.Context) bool {
	return c.GetBool(ContextKeyDiagnostics)
}

// Recovery recovers from panics, logs them and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		GetLogger(c).Error("panic recovered", zap.Any("panic", recovered), zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
