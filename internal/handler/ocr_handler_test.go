package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/extract"
	"github.com/xiltepin/InsuranceAIPOCs/internal/handler"
	"github.com/xiltepin/InsuranceAIPOCs/internal/middleware"
	"github.com/xiltepin/InsuranceAIPOCs/internal/recovery"
	"github.com/xiltepin/InsuranceAIPOCs/internal/service"
	"github.com/xiltepin/InsuranceAIPOCs/mocks"
)

const testMaxImageBytes = 1 << 20

func init() {
	gin.SetMode(gin.TestMode)
}

func imageForm(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, _ = part.Write(content)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func stagedImage() *domain.UploadedImage {
	return &domain.UploadedImage{
		ID:        "0b6f6c1e-2f7d-4c55-9d53-2b1f0a3c9e11",
		Path:      "/tmp/uploads/0b6f6c1e-2f7d-4c55-9d53-2b1f0a3c9e11.png",
		FileName:  "0b6f6c1e-2f7d-4c55-9d53-2b1f0a3c9e11.png",
		ImageType: domain.ImageTypePNG,
	}
}

func recognized() *domain.RecognitionResult {
	return &domain.RecognitionResult{
		OcrResult:      &domain.OcrResult{Status: "success", FullText: "Policy Number: AB123456", PolicyNumber: "AB123456"},
		Fields:         domain.FieldSet{PolicyNumber: "AB123456"},
		Classification: domain.ClassificationRawTextOnly,
		Confidence:     91.2,
		Completeness:   95,
	}
}

func setupOCRHandler() (*handler.OCRHandler, *mocks.MockOCRService, *mocks.MockUploadService) {
	ocrSvc := new(mocks.MockOCRService)
	uploadSvc := new(mocks.MockUploadService)
	return handler.NewOCRHandler(ocrSvc, uploadSvc, testMaxImageBytes), ocrSvc, uploadSvc
}

func TestOCRHandler_RecognizeImage_Success(t *testing.T) {
	h, ocrSvc, uploadSvc := setupOCRHandler()
	img := stagedImage()

	uploadSvc.On("Save", mock.Anything, mock.AnythingOfType("service.ImageUploadInput")).Return(img, nil)
	uploadSvc.On("Release", img).Return()
	ocrSvc.On("Recognize", mock.Anything, domain.RecognitionRequest{
		SourceKind: domain.SourceImage,
		ImagePath:  img.Path,
	}).Return(recognized(), nil)

	body, contentType := imageForm(t, "image", "policy.png", []byte("\x89PNG\r\n\x1a\n"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ocr/image", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.RecognizeImage(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    domain.RecognitionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "AB123456", resp.Data.Fields.PolicyNumber)
	assert.Equal(t, domain.ClassificationRawTextOnly, resp.Data.Classification)
	uploadSvc.AssertExpectations(t)
	ocrSvc.AssertExpectations(t)
}

func TestOCRHandler_UploadImage_LegacyShape(t *testing.T) {
	h, ocrSvc, uploadSvc := setupOCRHandler()
	img := stagedImage()

	uploadSvc.On("Save", mock.Anything, mock.Anything).Return(img, nil)
	uploadSvc.On("Release", img).Return()
	ocrSvc.On("Recognize", mock.Anything, mock.Anything).Return(recognized(), nil)

	body, contentType := imageForm(t, "image", "policy.png", []byte("\x89PNG\r\n\x1a\n"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/upload-image", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.UploadImage(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, img.FileName, resp["filename"])
	ocr, ok := resp["ocrResult"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Policy Number: AB123456", ocr["full_text"])
	assert.NotContains(t, resp, "data")
}

func TestOCRHandler_UploadImage_LegacyPayloadFillsSections(t *testing.T) {
	engine := new(mocks.MockRecognitionEngine)
	uploadSvc := new(mocks.MockUploadService)
	ocrSvc := service.NewOCRService(engine, recovery.DefaultChain(nil), extract.NewEngine(nil), nil)
	h := handler.NewOCRHandler(ocrSvc, uploadSvc, testMaxImageBytes)

	img := stagedImage()
	img.Path = filepath.Join(t.TempDir(), img.FileName)
	require.NoError(t, os.WriteFile(img.Path, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	uploadSvc.On("Save", mock.Anything, mock.Anything).Return(img, nil)
	uploadSvc.On("Release", img).Return()
	engine.On("Run", mock.Anything, img.Path).Return(&domain.RawEngineOutput{
		Stdout: "Engine starting\n" +
			`{"policy_number":"AB123456","full_name":"Jane Doe","vin":"1HGCM82633A004352"}` + "\nDone\n",
	}, nil)

	body, contentType := imageForm(t, "image", "policy.png", []byte("\x89PNG\r\n\x1a\n"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/upload-image", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.UploadImage(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success   bool `json:"success"`
		OcrResult struct {
			PolicyNumber        string         `json:"policy_number"`
			PolicyholderDetails map[string]any `json:"policyholder_details"`
			InsuredVehicle      map[string]any `json:"insured_vehicle"`
		} `json:"ocrResult"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "AB123456", resp.OcrResult.PolicyNumber)
	assert.Equal(t, "Jane Doe", resp.OcrResult.PolicyholderDetails["full_name"])
	assert.Equal(t, "1HGCM82633A004352", resp.OcrResult.InsuredVehicle["VIN Number"])
	engine.AssertExpectations(t)
	uploadSvc.AssertExpectations(t)
}

func TestOCRHandler_RecognizeImage_NoFile(t *testing.T) {
	h, ocrSvc, uploadSvc := setupOCRHandler()

	body, contentType := imageForm(t, "file", "policy.png", []byte("x"))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ocr/image", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.RecognizeImage(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FILE")
	uploadSvc.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	ocrSvc.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestOCRHandler_RecognizeImage_BodyTooLarge(t *testing.T) {
	h, _, uploadSvc := setupOCRHandler()

	big := bytes.Repeat([]byte{0xAB}, testMaxImageBytes+(1<<20)+1)
	body, contentType := imageForm(t, "image", "policy.png", big)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ocr/image", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.RecognizeImage(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	uploadSvc.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOCRHandler_RecognizeImage_Errors(t *testing.T) {
	tests := []struct {
		name        string
		saveErr     error
		recognize   error
		diagnostics bool
		wantStatus  int
		wantCode    string
		wantDetails string
	}{
		{name: "unsupported type", saveErr: domain.ErrUnsupportedFileType, wantStatus: http.StatusBadRequest, wantCode: "UNSUPPORTED_FILE_TYPE"},
		{name: "too large", saveErr: domain.ErrFileTooLarge, wantStatus: http.StatusRequestEntityTooLarge, wantCode: "FILE_TOO_LARGE"},
		{
			name:       "engine exit hides stderr",
			recognize:  &domain.ProcessExitError{Code: 1, Stderr: "model load failed"},
			wantStatus: http.StatusBadGateway,
			wantCode:   "ENGINE_FAILED",
		},
		{
			name:        "engine exit shows stderr in development",
			recognize:   &domain.ProcessExitError{Code: 1, Stderr: "model load failed"},
			diagnostics: true,
			wantStatus:  http.StatusBadGateway,
			wantCode:    "ENGINE_FAILED",
			wantDetails: "model load failed",
		},
		{
			name:       "engine timeout",
			recognize:  &domain.ProcessExitError{Code: -1, TimedOut: true},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "ENGINE_TIMEOUT",
		},
		{
			name:        "unrecoverable output",
			recognize:   &domain.JSONRecoveryError{RawOutput: "Traceback"},
			diagnostics: true,
			wantStatus:  http.StatusBadGateway,
			wantCode:    "ENGINE_OUTPUT_INVALID",
			wantDetails: "Traceback",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ocrSvc, uploadSvc := setupOCRHandler()
			img := stagedImage()

			if tt.saveErr != nil {
				uploadSvc.On("Save", mock.Anything, mock.Anything).Return(nil, tt.saveErr)
			} else {
				uploadSvc.On("Save", mock.Anything, mock.Anything).Return(img, nil)
				uploadSvc.On("Release", img).Return()
				ocrSvc.On("Recognize", mock.Anything, mock.Anything).Return(nil, tt.recognize)
			}

			body, contentType := imageForm(t, "image", "policy.png", []byte("\x89PNG\r\n\x1a\n"))
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ocr/image", body)
			c.Request.Header.Set("Content-Type", contentType)
			c.Set(middleware.ContextKeyDiagnostics, tt.diagnostics)

			h.RecognizeImage(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp handler.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
			uploadSvc.AssertExpectations(t)
		})
	}
}

func TestOCRHandler_RecognizeText(t *testing.T) {
	h, ocrSvc, _ := setupOCRHandler()
	ocrSvc.On("Recognize", mock.Anything, domain.RecognitionRequest{
		SourceKind: domain.SourceRawText,
		RawText:    "Policy Number: AB123456",
	}).Return(recognized(), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ocr/text",
		strings.NewReader(`{"text":"Policy Number: AB123456"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.RecognizeText(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"policy_number":"AB123456"`)
	ocrSvc.AssertExpectations(t)
}

func TestOCRHandler_RecognizeText_BadRequest(t *testing.T) {
	for _, body := range []string{`{}`, `not json`, `{"text":""}`} {
		h, ocrSvc, _ := setupOCRHandler()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ocr/text", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.RecognizeText(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		ocrSvc.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
	}
}
