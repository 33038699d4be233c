package usecase

import (
	"context"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

// LifecycleUsecase covers everything that happens to a listing after
// ingestion: search, the status/featured toggle and deletion with image
// cleanup.
type LifecycleUsecase struct {
	users    domain.UserRepository
	listings domain.ListingRepository
	storage  domain.Storage
	cache    domain.FeedCache
	log      logger.Logger
}

func NewLifecycleUsecase(
	users domain.UserRepository,
	listings domain.ListingRepository,
	storage domain.Storage,
	cache domain.FeedCache,
	log logger.Logger,
) *LifecycleUsecase {
	return &LifecycleUsecase{
		users:    users,
		listings: listings,
		storage:  storage,
		cache:    cache,
		log:      log,
	}
}

// ListListings returns listings newest first. A non-empty query matches
// make, model or color case-insensitively as a substring.
func (uc *LifecycleUsecase) ListListings(ctx context.Context, authUserID, query string) ([]*domain.CarListing, error) {
	if _, err := resolveUser(ctx, uc.users, authUserID); err != nil {
		return nil, err
	}
	return uc.listings.Search(ctx, query)
}

// FeaturedListings is the public homepage feed: featured, available, newest
// first. Served from cache until a write invalidates it.
func (uc *LifecycleUsecase) FeaturedListings(ctx context.Context, limit int) ([]*domain.CarListing, error) {
	if limit <= 0 {
		limit = 3
	}

	if cached, err := uc.cache.GetFeatured(ctx); err != nil {
		uc.log.Warnw("featured feed cache read failed", "error", err)
	} else if cached != nil {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	listings, err := uc.listings.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetFeatured(ctx, listings); err != nil {
		uc.log.Warnw("featured feed cache write failed", "error", err)
	}
	return listings, nil
}

// UpdateListingFlags applies a partial status/featured patch. Absent fields
// are left untouched.
func (uc *LifecycleUsecase) UpdateListingFlags(ctx context.Context, authUserID, id string, patch domain.ListingPatch) error {
	if _, err := resolveUser(ctx, uc.users, authUserID); err != nil {
		return err
	}
	if patch.Empty() {
		return &domain.ValidationError{Reason: "patch must set status or featured"}
	}
	if patch.Status != nil && !domain.ValidStatus(*patch.Status) {
		return &domain.ValidationError{Reason: "status " + string(*patch.Status) + " is not allowed"}
	}

	if err := uc.listings.UpdateFlags(ctx, id, patch); err != nil {
		return err
	}

	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.log.Warnw("view invalidation failed", "listing_id", id, "error", err)
	}
	uc.log.Infow("listing flags updated", "listing_id", id)
	return nil
}

// DeleteListing removes the record first, then best-effort removes the
// stored images. The record deletion is the authoritative success signal;
// cleanup failures only leave orphaned files behind.
func (uc *LifecycleUsecase) DeleteListing(ctx context.Context, authUserID, id string) error {
	if _, err := resolveUser(ctx, uc.users, authUserID); err != nil {
		return err
	}

	listing, err := uc.listings.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.listings.Delete(ctx, id); err != nil {
		return err
	}

	var objectKeys []string
	for _, url := range listing.Images {
		if key, ok := uc.storage.ObjectKeyFromURL(url); ok {
			objectKeys = append(objectKeys, key)
		} else {
			uc.log.Warnw("could not derive object key from image URL", "listing_id", id, "url", url)
		}
	}
	if len(objectKeys) > 0 {
		if err := uc.storage.Remove(ctx, objectKeys); err != nil {
			uc.log.Warnw("image cleanup failed, files orphaned",
				"listing_id", id, "keys", len(objectKeys), "error", err)
		}
	}

	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.log.Warnw("view invalidation failed", "listing_id", id, "error", err)
	}
	uc.log.Infow("listing deleted", "listing_id", id)
	return nil
}
