package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var (
		spawnErr  *domain.ProcessSpawnError
		exitErr   *domain.ProcessExitError
		recErr    *domain.JSONRecoveryError
		engineErr *domain.EngineResultError
	)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpg, jpeg, png, gif, bmp"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrImageNotFound):
		return http.StatusNotFound, "IMAGE_NOT_FOUND", "image file not found"
	case errors.As(err, &spawnErr):
		return http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE", "recognition engine could not be started"
	case errors.Is(err, domain.ErrEngineTimeout):
		return http.StatusGatewayTimeout, "ENGINE_TIMEOUT", "recognition engine timed out"
	case errors.As(err, &exitErr):
		return http.StatusBadGateway, "ENGINE_FAILED", "recognition engine failed"
	case errors.As(err, &recErr):
		return http.StatusBadGateway, "ENGINE_OUTPUT_INVALID", "no valid JSON output from recognition engine"
	case errors.As(err, &engineErr):
		return http.StatusUnprocessableEntity, "ENGINE_REJECTED", engineErr.Message
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// errorDetails returns the diagnostic text captured with err, if any.
func errorDetails(err error) string {
	var (
		spawnErr *domain.ProcessSpawnError
		exitErr  *domain.ProcessExitError
		recErr   *domain.JSONRecoveryError
	)
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Stderr
	case errors.As(err, &recErr):
		return recErr.RawOutput
	case errors.As(err, &spawnErr):
		return spawnErr.Error()
	}
	return ""
}

// HandleError maps a domain error and sends the appropriate error response.
// Captured engine output is attached only when diagnostics are enabled.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	log := middleware.GetLogger(c)
	if status >= 500 {
		log.Error("request failed", zap.String("code", code), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("code", code), zap.Error(err))
	}

	apiErr := &APIError{Code: code, Message: msg}
	if middleware.DiagnosticsEnabled(c) {
		apiErr.Details = errorDetails(err)
	}
	c.JSON(status, APIResponse{Success: false, Error: apiErr})
}
