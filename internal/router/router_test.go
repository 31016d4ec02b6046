package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiltepin/InsuranceAIPOCs/internal/auth"
	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/handler"
	"github.com/xiltepin/InsuranceAIPOCs/internal/middleware"
	"github.com/xiltepin/InsuranceAIPOCs/internal/router"
	"github.com/xiltepin/InsuranceAIPOCs/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, tokens middleware.TokenValidator) (*gin.Engine, *mocks.MockOCRService) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "production"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:4200"}},
	}
	ocrSvc := new(mocks.MockOCRService)
	engine := new(mocks.MockRecognitionEngine)
	engine.On("Check", mock.Anything).Return(nil)

	r := router.Setup(cfg, nil, tokens,
		handler.NewOCRHandler(ocrSvc, new(mocks.MockUploadService), 1<<20),
		handler.NewExportHandler(),
		handler.NewHealthHandler(engine, nil, ""),
	)
	return r, ocrSvc
}

func TestRouter_Health(t *testing.T) {
	r, _ := setupRouter(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestRouter_TextOpenWhenAuthDisabled(t *testing.T) {
	r, ocrSvc := setupRouter(t, nil)
	ocrSvc.On("Recognize", mock.Anything, mock.Anything).
		Return(&domain.RecognitionResult{Classification: domain.ClassificationRawTextOnly}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr/text", strings.NewReader(`{"text":"Agent: John"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AuthRequiredWhenEnabled(t *testing.T) {
	iss := auth.NewIssuer(&config.AuthConfig{JWTSecret: "secret", Issuer: "policy-ocr", TokenTTL: time.Hour})
	r, ocrSvc := setupRouter(t, iss)
	ocrSvc.On("Recognize", mock.Anything, mock.Anything).
		Return(&domain.RecognitionResult{Classification: domain.ClassificationRawTextOnly}, nil)

	send := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ocr/text", strings.NewReader(`{"text":"Agent: John"}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send(""))

	tok, err := iss.Issue("frontend", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, send(tok.Value))

	// health stays public
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _ := setupRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/upload-image", http.NoBody)
	req.Header.Set("Origin", "http://localhost:4200")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:4200", w.Header().Get("Access-Control-Allow-Origin"))
}
