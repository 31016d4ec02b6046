package domain

import (
	"encoding/json"
	"time"
)

// RecognitionRequest is one caller invocation of the pipeline. Exactly one of
// ImagePath or RawText is meaningful, selected by SourceKind.
type RecognitionRequest struct {
	SourceKind SourceKind
	ImagePath  string
	RawText    string
}

// RawEngineOutput is everything the recognition engine produced for one run.
type RawEngineOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// TextBlock is one recognized span of text.
type TextBlock struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	BBox       json.RawMessage `json:"bbox,omitempty"`
}

// Metrics carries the engine-reported quality numbers. Either field may be absent.
type Metrics struct {
	OcrConfidence          *float64 `json:"ocr_confidence,omitempty"`
	ExtractionCompleteness *float64 `json:"extraction_completeness,omitempty"`
}

// EffectiveDates is the policy period.
type EffectiveDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// OcrResult is the canonical, post-reconciliation result. Structured sections
// are kept as generic objects so engine-provided keys pass through unchanged.
type OcrResult struct {
	Status               string          `json:"status,omitempty"`
	FullText             string          `json:"full_text,omitempty"`
	TextBlocks           []TextBlock     `json:"text_blocks,omitempty"`
	DocumentMetadata     map[string]any  `json:"document_metadata,omitempty"`
	PolicyNumber         string          `json:"policy_number,omitempty"`
	EffectiveDates       *EffectiveDates `json:"effective_dates,omitempty"`
	PolicyholderDetails  map[string]any  `json:"policyholder_details,omitempty"`
	PolicyInformation    map[string]any  `json:"policy_information,omitempty"`
	InsuredVehicle       map[string]any  `json:"insured_vehicle,omitempty"`
	ConfidenceAssessment *Metrics        `json:"confidence_assessment,omitempty"`
	AccuracyMetrics      *Metrics        `json:"accuracy_metrics,omitempty"`
}

// HasStructuredSections reports whether any insurance sub-object is present.
func (r *OcrResult) HasStructuredSections() bool {
	return r.PolicyholderDetails != nil || r.PolicyInformation != nil || r.InsuredVehicle != nil
}

// RecognitionResult is the single mapping returned to the caller.
type RecognitionResult struct {
	OcrResult        *OcrResult     `json:"ocr_result"`
	Fields           FieldSet       `json:"fields"`
	Classification   Classification `json:"classification"`
	RecoveryStrategy string         `json:"recovery_strategy,omitempty"`
	Confidence       float64        `json:"confidence"`
	Completeness     float64        `json:"completeness"`
	FieldCoverage    float64        `json:"field_coverage"`
	DurationMS       int64          `json:"duration_ms"`
}

// SetDuration records the wall-clock time spent on the request.
func (r *RecognitionResult) SetDuration(d time.Duration) {
	r.DurationMS = d.Milliseconds()
}

// UploadedImage describes an image persisted for the duration of one request.
type UploadedImage struct {
	ID           string    `json:"id"`
	Path         string    `json:"-"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	ImageType    ImageType `json:"image_type"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	ArchiveKey   string    `json:"archive_key,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
