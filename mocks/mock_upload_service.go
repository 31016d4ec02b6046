package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
	"github.com/xiltepin/InsuranceAIPOCs/internal/service"
)

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Save(ctx context.Context, input service.ImageUploadInput) (*domain.UploadedImage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedImage), args.Error(1)
}

func (m *MockUploadService) Release(img *domain.UploadedImage) {
	m.Called(img)
}
