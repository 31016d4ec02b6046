package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/handler"
	"github.com/xiltepin/InsuranceAIPOCs/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. tokens may
// be nil, in which case the API is open.
func Setup(
	cfg *config.Config,
	log *zap.Logger,
	tokens middleware.TokenValidator,
	ocrH *handler.OCRHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Diagnostics(cfg.Server.IsDevelopment()))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Route used by the existing web frontend
	r.POST("/api/upload-image", ocrH.UploadImage)

	v1 := r.Group("/api/v1")
	if tokens != nil {
		v1.Use(middleware.AuthMiddleware(tokens))
	}

	ocr := v1.Group("/ocr")
	ocr.POST("/image", ocrH.RecognizeImage)
	ocr.POST("/text", ocrH.RecognizeText)
	ocr.POST("/export", exportH.Export)

	return r
}
