package domain

import "context"

// ListingRepository is the relational store port for listings. Search with an
// empty query returns everything, newest first.
type ListingRepository interface {
	Create(ctx context.Context, listing *CarListing) error
	Search(ctx context.Context, query string) ([]*CarListing, error)
	FindByID(ctx context.Context, id string) (*CarListing, error)
	FindFeatured(ctx context.Context, limit int) ([]*CarListing, error)
	UpdateFlags(ctx context.Context, id string, patch ListingPatch) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	FindByAuthID(ctx context.Context, authID string) (*User, error)
}

// Storage is the object-store port. Upload returns the public URL of the
// stored object; Remove is best effort over a batch of object keys.
type Storage interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, objectKeys []string) error
	ObjectKeyFromURL(publicURL string) (string, bool)
}

// ViewInvalidator signals the presentation layer that listing views are
// stale after a write.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, listingID string) error
}

// FeedCache additionally caches the public featured feed. GetFeatured
// returns (nil, nil) on a miss.
type FeedCache interface {
	ViewInvalidator
	GetFeatured(ctx context.Context) ([]*CarListing, error)
	SetFeatured(ctx context.Context, listings []*CarListing) error
}
