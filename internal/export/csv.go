// Package export writes FieldSets as CSV or XLSX downloads with one header
// row in domain.FieldKeys order.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns returns the header row.
func Columns() []string {
	cols := make([]string, len(domain.FieldKeys))
	for i, k := range domain.FieldKeys {
		cols[i] = domain.FieldLabels[k]
	}
	return cols
}

// CSVWriter wraps csv.Writer for exporting field sets.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(Columns())
}

// WriteFieldSets writes one row per field set.
func (w *CSVWriter) WriteFieldSets(sets ...domain.FieldSet) error {
	for i := range sets {
		if err := w.csv.Write(sets[i].Values()); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a BOM, the header and one row per field set to w.
func WriteCSV(w io.Writer, sets ...domain.FieldSet) error {
	if _, err := w.Write(BOM); err != nil {
		return fmt.Errorf("writing bom: %w", err)
	}
	cw := NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteFieldSets(sets...); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a download filename of the form
// policy_{number}_{YYYY-MM-DD}.{ext}. The policy number part is omitted when
// empty.
func BuildFilename(f domain.FieldSet, format domain.ExportFormat, now time.Time) string {
	base := "policy"
	if s := SanitizeFilename(f.PolicyNumber); s != "" {
		base += "_" + s
	}
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), format)
}
