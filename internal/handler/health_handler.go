package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiltepin/InsuranceAIPOCs/internal/middleware"
	"github.com/xiltepin/InsuranceAIPOCs/internal/port"
)

const readinessTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	engine  port.RecognitionEngine
	storage port.ObjectStorage
	bucket  string
}

// NewHealthHandler creates a new HealthHandler. storage may be nil when
// archiving is disabled.
func NewHealthHandler(engine port.RecognitionEngine, storage port.ObjectStorage, bucket string) *HealthHandler {
	return &HealthHandler{engine: engine, storage: storage, bucket: bucket}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	var engineErr, storageErr error
	// Both checks run to completion so the response can name every failure.
	var g errgroup.Group
	g.Go(func() error {
		engineErr = h.engine.Check(ctx)
		return engineErr
	})
	if h.storage != nil {
		g.Go(func() error {
			storageErr = h.storage.Ping(ctx, h.bucket)
			return storageErr
		})
	}
	if err := g.Wait(); err != nil {
		checks := gin.H{"engine": "ok"}
		if engineErr != nil {
			checks["engine"] = "unavailable"
		}
		if h.storage != nil {
			checks["storage"] = "ok"
			if storageErr != nil {
				checks["storage"] = "unavailable"
			}
		}
		middleware.GetLogger(c).Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
