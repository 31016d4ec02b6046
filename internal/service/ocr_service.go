package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/estimate"
	"github.com/xiltepin/InsuranceAIPOCs/internal/extract"
	"github.com/xiltepin/InsuranceAIPOCs/internal/logger"
	"github.com/xiltepin/InsuranceAIPOCs/internal/port"
	"github.com/xiltepin/InsuranceAIPOCs/internal/reconcile"
	"github.com/xiltepin/InsuranceAIPOCs/internal/recovery"
)

// OCRService runs the recognition pipeline for one request at a time.
type OCRService interface {
	Recognize(ctx context.Context, req domain.RecognitionRequest) (*domain.RecognitionResult, error)
}

type ocrService struct {
	engine    port.RecognitionEngine
	recovery  *recovery.Chain
	extractor *extract.Engine
	log       *zap.Logger
}

// NewOCRService creates a new OCRService implementation.
func NewOCRService(
	engine port.RecognitionEngine,
	chain *recovery.Chain,
	extractor *extract.Engine,
	log *zap.Logger,
) OCRService {
	return &ocrService{
		engine:    engine,
		recovery:  chain,
		extractor: extractor,
		log:       logger.OrNop(log).Named("ocr"),
	}
}

// Recognize runs engine, recovery, reconciliation, extraction when needed,
// and estimation. Raw-text requests start at reconciliation. Engine and
// recovery errors are returned unchanged.
func (s *ocrService) Recognize(ctx context.Context, req domain.RecognitionRequest) (*domain.RecognitionResult, error) {
	start := time.Now()

	var (
		payload  map[string]any
		strategy string
	)
	switch req.SourceKind {
	case domain.SourceImage:
		if req.ImagePath == "" {
			return nil, fmt.Errorf("%w: image path is required", domain.ErrInvalidInput)
		}
		if _, err := os.Stat(req.ImagePath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, domain.ErrImageNotFound
			}
			return nil, fmt.Errorf("checking image: %w", err)
		}

		out, err := s.engine.Run(ctx, req.ImagePath)
		if err != nil {
			s.log.Warn("engine run failed", zap.String("image", req.ImagePath), zap.Error(err))
			return nil, err
		}
		rec, err := s.recovery.Recover(out.Stdout)
		if err != nil {
			s.log.Warn("no payload in engine output", zap.Int("stdout_bytes", len(out.Stdout)))
			return nil, err
		}
		payload, strategy = rec.Payload, rec.Strategy

	case domain.SourceRawText:
		if strings.TrimSpace(req.RawText) == "" {
			return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
		}
		payload = map[string]any{"full_text": req.RawText}

	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, req.SourceKind)
	}

	rec, err := reconcile.Reconcile(payload)
	if err != nil {
		return nil, err
	}

	fields := rec.Fields
	switch {
	case rec.Classification.NeedsExtraction():
		fields = s.extractor.Extract(rec.RawText)
		reconcile.ApplyFields(rec.Result, fields)
	case rec.Classification == domain.ClassificationLegacyStructured:
		// Flat payloads carry no sections; the legacy route returns only the OcrResult.
		reconcile.ApplyFields(rec.Result, fields)
	}

	est := estimate.Compute(rec.Result, rec.Classification, strategy != "")
	result := &domain.RecognitionResult{
		OcrResult:        rec.Result,
		Fields:           fields,
		Classification:   rec.Classification,
		RecoveryStrategy: strategy,
		Confidence:       est.Confidence,
		Completeness:     est.Completeness,
		FieldCoverage:    estimate.FieldCoverage(fields),
	}
	result.SetDuration(time.Since(start))

	s.log.Info("recognition complete",
		zap.String("source", string(req.SourceKind)),
		zap.String("classification", string(result.Classification)),
		zap.String("strategy", strategy),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("field_coverage", result.FieldCoverage),
		zap.Int64("duration_ms", result.DurationMS),
	)
	return result, nil
}
