package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

func newLifecycleMocks() (*MockUserRepository, *MockListingRepository, *MockStorage, *MockFeedCache) {
	return new(MockUserRepository), new(MockListingRepository), new(MockStorage), new(MockFeedCache)
}

func sampleListing(id string, images ...string) *domain.CarListing {
	return &domain.CarListing{
		ID: id, Make: "Toyota", Model: "Camry", Year: 2021,
		Status: domain.StatusAvailable, Images: images,
	}
}

func TestLifecycleUsecase_ListListings(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	want := []*domain.CarListing{sampleListing("l-1"), sampleListing("l-2")}
	users.On("FindByAuthID", ctx, "auth-1").Return(adminUser(), nil).Once()
	listings.On("Search", ctx, "camry").Return(want, nil).Once()

	got, err := uc.ListListings(ctx, "auth-1", "camry")

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLifecycleUsecase_ListListings_Unauthorized(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	_, err := uc.ListListings(context.Background(), "", "")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	listings.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestLifecycleUsecase_FeaturedListings_CacheHit(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	cached := []*domain.CarListing{sampleListing("l-1"), sampleListing("l-2"), sampleListing("l-3"), sampleListing("l-4")}
	feed.On("GetFeatured", ctx).Return(cached, nil).Once()

	got, err := uc.FeaturedListings(ctx, 2)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	listings.AssertNotCalled(t, "FindFeatured", mock.Anything, mock.Anything)
}

func TestLifecycleUsecase_FeaturedListings_CacheMiss(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	want := []*domain.CarListing{sampleListing("l-1")}
	feed.On("GetFeatured", ctx).Return(nil, nil).Once()
	listings.On("FindFeatured", ctx, 3).Return(want, nil).Once()
	feed.On("SetFeatured", ctx, want).Return(nil).Once()

	got, err := uc.FeaturedListings(ctx, 0)

	assert.NoError(t, err)
	assert.Equal(t, want, got)
	feed.AssertExpectations(t)
}

func TestLifecycleUsecase_FeaturedListings_CacheFailureFallsThrough(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	want := []*domain.CarListing{sampleListing("l-1")}
	feed.On("GetFeatured", ctx).Return(nil, errors.New("redis down")).Once()
	listings.On("FindFeatured", ctx, 3).Return(want, nil).Once()
	feed.On("SetFeatured", ctx, want).Return(errors.New("redis down")).Once()

	got, err := uc.FeaturedListings(ctx, 3)

	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLifecycleUsecase_UpdateListingFlags_PartialPatch(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	sold := domain.StatusSold
	patch := domain.ListingPatch{Status: &sold}
	users.On("FindByAuthID", ctx, "auth-1").Return(adminUser(), nil).Once()
	listings.On("UpdateFlags", ctx, "l-1", patch).Return(nil).Once()
	feed.On("Invalidate", ctx, "l-1").Return(nil).Once()

	err := uc.UpdateListingFlags(ctx, "auth-1", "l-1", patch)

	assert.NoError(t, err)
	listings.AssertExpectations(t)
}

func TestLifecycleUsecase_UpdateListingFlags_EmptyPatch(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	users.On("FindByAuthID", ctx, "auth-1").Return(adminUser(), nil).Once()

	err := uc.UpdateListingFlags(ctx, "auth-1", "l-1", domain.ListingPatch{})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	listings.AssertNotCalled(t, "UpdateFlags", mock.Anything, mock.Anything, mock.Anything)
}

func TestLifecycleUsecase_UpdateListingFlags_BadStatus(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	users.On("FindByAuthID", ctx, "auth-1").Return(adminUser(), nil).Once()

	bogus := domain.ListingStatus("PENDING")
	err := uc.UpdateListingFlags(ctx, "auth-1", "l-1", domain.ListingPatch{Status: &bogus})

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	listings.AssertNotCalled(t, "UpdateFlags", mock.Anything, mock.Anything, mock.Anything)
}

func TestLifecycleUsecase_DeleteListing_RemovesImages(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	listing := sampleListing("l-1",
		"https://s.example.com/car-images/cars/l-1/a.jpeg",
		"https://s.example.com/car-images/cars/l-1/b.jpeg",
	)
	users.On("FindByAuthID", ctx, "auth-1").Return(adminUser(), nil).Once()
	listings.On("FindByID", ctx, "l-1").Return(listing, nil).Once()
	listings.On("Delete", ctx, "l-1").Return(nil).Once()
	storage.On("ObjectKeyFromURL", listing.Images[0]).Return("cars/l-1/a.jpeg", true).Once()
	storage.On("ObjectKeyFromURL", listing.Images[1]).Return("cars/l-1/b.jpeg", true).Once()
	storage.On("Remove", ctx, []string{"cars/l-1/a.jpeg", "cars/l-1/b.jpeg"}).Return(nil).Once()
	feed.On("Invalidate", ctx, "l-1").Return(nil).Once()

	err := uc.DeleteListing(ctx, "auth-1", "l-1")

	assert.NoError(t, err)
	storage.AssertExpectations(t)
}

func TestLifecycleUsecase_DeleteListing_UnknownID(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	users.On("FindByAuthID", ctx, "auth-1").Return(adminUser(), nil).Once()
	listings.On("FindByID", ctx, "ghost").Return(nil, domain.ErrListingNotFound).Once()

	err := uc.DeleteListing(ctx, "auth-1", "ghost")

	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	listings.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	storage.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}

func TestLifecycleUsecase_DeleteListing_CleanupFailureIsNotFatal(t *testing.T) {
	users, listings, storage, feed := newLifecycleMocks()
	uc := NewLifecycleUsecase(users, listings, storage, feed, logger.NewNop())

	ctx := context.Background()
	listing := sampleListing("l-1", "https://s.example.com/car-images/cars/l-1/a.jpeg")
	users.On("FindByAuthID", ctx, "auth-1").Return(adminUser(), nil).Once()
	listings.On("FindByID", ctx, "l-1").Return(listing, nil).Once()
	listings.On("Delete", ctx, "l-1").Return(nil).Once()
	storage.On("ObjectKeyFromURL", listing.Images[0]).Return("cars/l-1/a.jpeg", true).Once()
	storage.On("Remove", ctx, mock.Anything).Return(errors.New("bucket unreachable")).Once()
	feed.On("Invalidate", ctx, "l-1").Return(nil).Once()

	err := uc.DeleteListing(ctx, "auth-1", "l-1")

	assert.NoError(t, err)
}
