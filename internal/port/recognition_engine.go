package port

import (
	"context"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// RecognitionEngine runs the external OCR engine against one image.
// Implementations return the raw process output and never parse it.
type RecognitionEngine interface {
	Run(ctx context.Context, imagePath string) (*domain.RawEngineOutput, error)
	// Check reports whether the engine can be launched at all.
	Check(ctx context.Context) error
}
