package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

type MockVisionModel struct{ mock.Mock }

func (m *MockVisionModel) Generate(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	args := m.Called(ctx, image, mimeType, prompt)
	return args.String(0), args.Error(1)
}

type MockRateGate struct{ mock.Mock }

func (m *MockRateGate) Admit(ctx context.Context, key string, cost int64) (domain.Decision, error) {
	args := m.Called(ctx, key, cost)
	return args.Get(0).(domain.Decision), args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) FindByAuthID(ctx context.Context, authID string) (*domain.User, error) {
	args := m.Called(ctx, authID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.CarListing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) Search(ctx context.Context, query string) ([]*domain.CarListing, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarListing), args.Error(1)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.CarListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarListing), args.Error(1)
}
func (m *MockListingRepository) FindFeatured(ctx context.Context, limit int) ([]*domain.CarListing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarListing), args.Error(1)
}
func (m *MockListingRepository) UpdateFlags(ctx context.Context, id string, patch domain.ListingPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}
func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, objectKey, data, contentType)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) Remove(ctx context.Context, objectKeys []string) error {
	args := m.Called(ctx, objectKeys)
	return args.Error(0)
}
func (m *MockStorage) ObjectKeyFromURL(publicURL string) (string, bool) {
	args := m.Called(publicURL)
	return args.String(0), args.Bool(1)
}

type MockFeedCache struct{ mock.Mock }

func (m *MockFeedCache) Invalidate(ctx context.Context, listingID string) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}
func (m *MockFeedCache) GetFeatured(ctx context.Context) ([]*domain.CarListing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CarListing), args.Error(1)
}
func (m *MockFeedCache) SetFeatured(ctx context.Context, listings []*domain.CarListing) error {
	args := m.Called(ctx, listings)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) ListingCreated(toEmail, title string) error {
	args := m.Called(toEmail, title)
	return args.Error(0)
}
