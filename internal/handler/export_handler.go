package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/export"
)

// ExportHandler turns a FieldSet into a downloadable file.
type ExportHandler struct {
	now func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{now: time.Now}
}

// Export handles POST /api/v1/ocr/export?format=csv|xlsx
func (h *ExportHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportCSV))))
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	var fields domain.FieldSet
	if err := c.ShouldBindJSON(&fields); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, fields); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(fields, format, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}
