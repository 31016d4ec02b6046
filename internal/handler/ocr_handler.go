package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/service"
)

// multipartOverhead is added to the image limit when capping the request
// body, leaving room for boundaries and part headers.
const multipartOverhead = 1 << 20

// OCRHandler handles recognition endpoints.
type OCRHandler struct {
	ocrService    service.OCRService
	uploadService service.UploadService
	maxBodyBytes  int64
}

// NewOCRHandler creates a new OCRHandler. maxImageBytes is the upload limit.
func NewOCRHandler(ocrService service.OCRService, uploadService service.UploadService, maxImageBytes int64) *OCRHandler {
	return &OCRHandler{
		ocrService:    ocrService,
		uploadService: uploadService,
		maxBodyBytes:  maxImageBytes + multipartOverhead,
	}
}

// RecognizeTextRequest is the payload for text recognition.
type RecognizeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// LegacyUploadResponse is the body returned by POST /api/upload-image.
type LegacyUploadResponse struct {
	Success   bool              `json:"success"`
	Filename  string            `json:"filename"`
	OcrResult *domain.OcrResult `json:"ocrResult"`
}

// RecognizeImage handles POST /api/v1/ocr/image
func (h *OCRHandler) RecognizeImage(c *gin.Context) {
	_, result, ok := h.processUpload(c)
	if !ok {
		return
	}
	RespondOK(c, result)
}

// UploadImage handles POST /api/upload-image, the route the web frontend
// posts to. The response body is not enveloped.
func (h *OCRHandler) UploadImage(c *gin.Context) {
	img, result, ok := h.processUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, LegacyUploadResponse{
		Success:   true,
		Filename:  img.FileName,
		OcrResult: result.OcrResult,
	})
}

// RecognizeText handles POST /api/v1/ocr/text
func (h *OCRHandler) RecognizeText(c *gin.Context) {
	var req RecognizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.ocrService.Recognize(c.Request.Context(), domain.RecognitionRequest{
		SourceKind: domain.SourceRawText,
		RawText:    req.Text,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// processUpload stages the "image" form file, runs recognition on it and
// releases it. On failure the error response is already written.
func (h *OCRHandler) processUpload(c *gin.Context) (*domain.UploadedImage, *domain.RecognitionResult, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return nil, nil, false
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "image field is required")
		return nil, nil, false
	}
	defer func() { _ = file.Close() }()

	img, err := h.uploadService.Save(c.Request.Context(), service.ImageUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return nil, nil, false
	}
	defer h.uploadService.Release(img)

	result, err := h.ocrService.Recognize(c.Request.Context(), domain.RecognitionRequest{
		SourceKind: domain.SourceImage,
		ImagePath:  img.Path,
	})
	if err != nil {
		HandleError(c, err)
		return nil, nil, false
	}
	return img, result, true
}
