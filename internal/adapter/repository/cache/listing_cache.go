package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

const (
	featuredKey = "listings:featured"
	featuredTTL = 1 * time.Hour

	subjectViewInvalidated = "listings.view.invalidated"
)

// EventPublisher broadcasts invalidation events to interested consumers
// (presentation layer, future reconcilers).
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ListingViewCache keeps the featured feed in Redis and fans out an event
// whenever a write makes listing views stale.
type ListingViewCache struct {
	client *redis.Client
	events EventPublisher
}

func NewListingViewCache(client *redis.Client, events EventPublisher) *ListingViewCache {
	return &ListingViewCache{client: client, events: events}
}

func (c *ListingViewCache) GetFeatured(ctx context.Context) ([]*domain.CarListing, error) {
	data, err := c.client.Get(ctx, featuredKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var listings []*domain.CarListing
	if err := json.Unmarshal(data, &listings); err != nil {
		// Stale or corrupt entry; drop it and fall back to the store.
		_ = c.client.Del(ctx, featuredKey).Err()
		return nil, err
	}
	return listings, nil
}

func (c *ListingViewCache) SetFeatured(ctx context.Context, listings []*domain.CarListing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, featuredKey, data, featuredTTL).Err()
}

type invalidatedEvent struct {
	ListingID string    `json:"listing_id"`
	At        time.Time `json:"at"`
}

// Invalidate drops the cached feed and publishes the stale-view event. The
// event carries the listing id so a consumer can reconcile storage for it.
func (c *ListingViewCache) Invalidate(ctx context.Context, listingID string) error {
	if err := c.client.Del(ctx, featuredKey).Err(); err != nil {
		return err
	}
	if c.events == nil {
		return nil
	}
	return c.events.Publish(ctx, subjectViewInvalidated, invalidatedEvent{
		ListingID: listingID,
		At:        time.Now().UTC(),
	})
}
