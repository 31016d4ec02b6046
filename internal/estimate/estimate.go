// Package estimate computes the confidence and completeness percentages
// reported with every recognition result.
package estimate

import (
	"math"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// RawTextCompleteness is reported for raw-text-only results that were
// recovered from engine output and extracted.
const RawTextCompleteness = 95.0

// Estimate is the pair of percentages attached to a result.
type Estimate struct {
	Confidence   float64
	Completeness float64
}

// Compute derives both percentages from the reconciled result. recovered
// reports whether the payload came out of the recovery chain.
func Compute(res *domain.OcrResult, class domain.Classification, recovered bool) Estimate {
	return Estimate{
		Confidence:   Confidence(res),
		Completeness: Completeness(res, class, recovered),
	}
}

// Confidence prefers the engine's own ocr_confidence, then the mean
// text-block confidence, then 0.
func Confidence(res *domain.OcrResult) float64 {
	if res == nil {
		return 0
	}
	for _, m := range []*domain.Metrics{res.ConfidenceAssessment, res.AccuracyMetrics} {
		if m != nil && m.OcrConfidence != nil {
			return toPercent(*m.OcrConfidence)
		}
	}
	if len(res.TextBlocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range res.TextBlocks {
		sum += b.Confidence
	}
	return toPercent(sum / float64(len(res.TextBlocks)))
}

// Completeness is fixed for recovered raw-text-only results; otherwise it
// is the engine-reported extraction_completeness, or 0.
func Completeness(res *domain.OcrResult, class domain.Classification, recovered bool) float64 {
	if class == domain.ClassificationRawTextOnly && recovered {
		return RawTextCompleteness
	}
	if res != nil && res.AccuracyMetrics != nil && res.AccuracyMetrics.ExtractionCompleteness != nil {
		return toPercent(*res.AccuracyMetrics.ExtractionCompleteness)
	}
	return 0
}

// FieldCoverage is the share of FieldSet keys that hold a value.
func FieldCoverage(f domain.FieldSet) float64 {
	return round1(float64(f.FilledCount()) / float64(len(domain.FieldKeys)) * 100)
}

// toPercent reads values up to 1 as fractions and larger values as
// percentages, then clamps to [0,100] with one decimal.
func toPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v <= 1 {
		v *= 100
	}
	return round1(math.Max(0, math.Min(100, v)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
