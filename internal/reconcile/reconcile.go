// Package reconcile classifies a recovered engine payload and normalizes it
// into the canonical OcrResult and FieldSet.
package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

const (
	sectionPolicyholder = "policyholder_details"
	sectionPolicyInfo   = "policy_information"
	sectionVehicle      = "insured_vehicle"

	defaultBlockConfidence = 1.0
)

// rawTextKeys are checked in order for the unstructured transcription.
var rawTextKeys = []string{"full_text", "raw_text", "raw_ocr_text"}

// Reconciled is the normalized form of one payload.
type Reconciled struct {
	Result         *domain.OcrResult
	Fields         domain.FieldSet
	Classification domain.Classification
	RawText        string
}

// Reconcile classifies payload and builds the canonical result from it.
// A payload whose status is "error" yields *domain.EngineResultError.
func Reconcile(payload map[string]any) (*Reconciled, error) {
	if strings.EqualFold(stringValue(payload["status"]), "error") {
		msg := stringValue(payload["message"])
		if msg == "" {
			msg = "unknown engine error"
		}
		return nil, &domain.EngineResultError{Message: msg}
	}

	res := &domain.OcrResult{
		Status:               stringValue(payload["status"]),
		DocumentMetadata:     objectValue(payload["document_metadata"]),
		PolicyholderDetails:  objectValue(payload[sectionPolicyholder]),
		PolicyInformation:    objectValue(payload[sectionPolicyInfo]),
		InsuredVehicle:       objectValue(payload[sectionVehicle]),
		ConfidenceAssessment: parseMetrics(payload["confidence_assessment"]),
		AccuracyMetrics:      parseMetrics(payload["accuracy_metrics"]),
		PolicyNumber:         stringValue(payload["policy_number"]),
		EffectiveDates:       parseEffectiveDates(payload["effective_dates"]),
	}

	blockConf := reportedConfidence(res)
	blocks, err := parseTextBlocks(payload["text_blocks"], blockConf)
	if err != nil {
		return nil, err
	}

	rawText := firstString(payload, rawTextKeys...)
	if rawText == "" && len(blocks) > 0 {
		texts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			texts = append(texts, b.Text)
		}
		rawText = strings.Join(texts, "\n")
	}

	out := &Reconciled{Result: res, RawText: rawText}
	switch {
	case res.HasStructuredSections():
		out.Classification = domain.ClassificationStructured
		fillFromSections(&out.Fields, res)
	case strings.TrimSpace(rawText) != "":
		out.Classification = domain.ClassificationRawTextOnly
	default:
		out.Classification = domain.ClassificationLegacyStructured
		fillFromTopLevel(&out.Fields, payload)
	}
	fillTopLevel(&out.Fields, res)

	if rawText != "" {
		res.FullText = rawText
		if len(blocks) == 0 {
			blocks = []domain.TextBlock{{
				Text:       rawText,
				Confidence: blockConf,
				BBox:       json.RawMessage(`"Block 1"`),
			}}
		}
	}
	res.TextBlocks = blocks

	return out, nil
}

// reportedConfidence returns the engine's own ocr_confidence on a [0,1]
// scale, or the default when none was reported.
func reportedConfidence(res *domain.OcrResult) float64 {
	for _, m := range []*domain.Metrics{res.ConfidenceAssessment, res.AccuracyMetrics} {
		if m != nil && m.OcrConfidence != nil {
			return unitScale(*m.OcrConfidence)
		}
	}
	return defaultBlockConfidence
}

// unitScale maps a confidence to [0,1]. Values above 1 are read as percentages.
func unitScale(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func parseTextBlocks(v any, defaultConf float64) ([]domain.TextBlock, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	blocks := make([]domain.TextBlock, 0, len(items))
	for i, item := range items {
		switch it := item.(type) {
		case string:
			blocks = append(blocks, domain.TextBlock{
				Text:       it,
				Confidence: defaultConf,
				BBox:       sentinelBBox("Line", i+1),
			})
		case map[string]any:
			b := domain.TextBlock{Text: stringValue(it["text"]), Confidence: defaultConf}
			if c, ok := numberValue(it["confidence"]); ok {
				b.Confidence = unitScale(c)
			}
			if raw, present := it["bbox"]; present && raw != nil {
				enc, err := json.Marshal(raw)
				if err != nil {
					return nil, fmt.Errorf("encoding bbox of text block %d: %w", i, err)
				}
				b.BBox = enc
			} else {
				b.BBox = sentinelBBox("Block", i+1)
			}
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

func sentinelBBox(kind string, n int) json.RawMessage {
	return json.RawMessage(strconv.Quote(kind + " " + strconv.Itoa(n)))
}

func parseMetrics(v any) *domain.Metrics {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	m := &domain.Metrics{}
	if f, ok := numberValue(obj["ocr_confidence"]); ok {
		m.OcrConfidence = &f
	}
	if f, ok := numberValue(obj["extraction_completeness"]); ok {
		m.ExtractionCompleteness = &f
	}
	return m
}

func parseEffectiveDates(v any) *domain.EffectiveDates {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	d := &domain.EffectiveDates{
		Start: stringValue(obj["start"]),
		End:   stringValue(obj["end"]),
	}
	if d.Start == "" && d.End == "" {
		return nil
	}
	return d
}

func objectValue(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

// stringValue renders scalars as strings. Objects and arrays yield "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	return ""
}

// numberValue accepts JSON numbers and numeric strings such as "92.5" or "92.5%".
func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(obj[k]); s != "" {
			return s
		}
	}
	return ""
}
