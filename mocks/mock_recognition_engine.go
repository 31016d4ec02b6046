package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// MockRecognitionEngine is a mock implementation of port.RecognitionEngine.
type MockRecognitionEngine struct {
	mock.Mock
}

func (m *MockRecognitionEngine) Run(ctx context.Context, imagePath string) (*domain.RawEngineOutput, error) {
	args := m.Called(ctx, imagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawEngineOutput), args.Error(1)
}

func (m *MockRecognitionEngine) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
