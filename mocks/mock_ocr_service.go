package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

// MockOCRService is a mock implementation of service.OCRService.
type MockOCRService struct {
	mock.Mock
}

func (m *MockOCRService) Recognize(ctx context.Context, req domain.RecognitionRequest) (*domain.RecognitionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecognitionResult), args.Error(1)
}
