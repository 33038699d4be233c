package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

// Notifier tells the admin a listing landed. Failures are logged, never
// surfaced.
type Notifier interface {
	ListingCreated(toEmail, title string) error
}

// IngestUsecase owns the only path from reviewed attributes plus raw image
// payloads to a durable CarListing.
type IngestUsecase struct {
	users       domain.UserRepository
	listings    domain.ListingRepository
	storage     domain.Storage
	invalidator domain.ViewInvalidator
	notifier    Notifier
	adminEmail  string
	log         logger.Logger
}

func NewIngestUsecase(
	users domain.UserRepository,
	listings domain.ListingRepository,
	storage domain.Storage,
	invalidator domain.ViewInvalidator,
	notifier Notifier,
	adminEmail string,
	log logger.Logger,
) *IngestUsecase {
	return &IngestUsecase{
		users:       users,
		listings:    listings,
		storage:     storage,
		invalidator: invalidator,
		notifier:    notifier,
		adminEmail:  adminEmail,
		log:         log,
	}
}

var dataURIExtRE = regexp.MustCompile(`^data:image/([a-zA-Z0-9]+);`)

// decodeImagePayload validates and decodes one embedded-image data URI.
// Returns the file extension declared by the payload and the raw bytes.
func decodeImagePayload(payload string) (ext string, data []byte, ok bool) {
	if !strings.HasPrefix(payload, "data:image/") {
		return "", nil, false
	}
	parts := strings.SplitN(payload, ",", 2)
	if len(parts) != 2 {
		return "", nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(decoded) == 0 {
		return "", nil, false
	}
	ext = "jpeg"
	if m := dataURIExtRE.FindStringSubmatch(payload); m != nil {
		ext = strings.ToLower(m[1])
	}
	return ext, decoded, true
}

func validateDraft(draft domain.ListingDraft) error {
	contains := func(set []string, v string) bool {
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}
	switch {
	case !contains(domain.BodyTypes, draft.BodyType):
		return &domain.ValidationError{Reason: fmt.Sprintf("body type %q is not allowed", draft.BodyType)}
	case !contains(domain.FuelTypes, draft.FuelType):
		return &domain.ValidationError{Reason: fmt.Sprintf("fuel type %q is not allowed", draft.FuelType)}
	case !contains(domain.Transmissions, draft.Transmission):
		return &domain.ValidationError{Reason: fmt.Sprintf("transmission %q is not allowed", draft.Transmission)}
	case draft.Status != "" && !domain.ValidStatus(draft.Status):
		return &domain.ValidationError{Reason: fmt.Sprintf("status %q is not allowed", draft.Status)}
	case draft.Mileage < 0:
		return &domain.ValidationError{Reason: "mileage must not be negative"}
	}
	return nil
}

// CreateListing uploads the images sequentially in input order, then writes
// the full record in a single insert keyed by the same identifier used for
// the storage prefix. Invalid or failed images are skipped with a warning;
// if none survive, nothing is written.
func (uc *IngestUsecase) CreateListing(ctx context.Context, authUserID string, draft domain.ListingDraft, images []string) (string, error) {
	ctx, span := otel.Tracer("listing.usecase").Start(ctx, "CreateListing")
	defer span.End()

	if _, err := resolveUser(ctx, uc.users, authUserID); err != nil {
		return "", err
	}
	if err := validateDraft(draft); err != nil {
		return "", err
	}

	listingID := uuid.New().String()
	span.SetAttributes(attribute.String("listing.id", listingID))

	imageURLs := make([]string, 0, len(images))
	for i, payload := range images {
		ext, data, ok := decodeImagePayload(payload)
		if !ok {
			uc.log.Warnw("skipping invalid image payload", "listing_id", listingID, "index", i)
			continue
		}

		objectKey := fmt.Sprintf("cars/%s/image-%d-%d.%s", listingID, time.Now().UnixMilli(), i, ext)
		url, err := uc.storage.Upload(ctx, objectKey, data, "image/"+ext)
		if err != nil {
			uc.log.Warnw("image upload failed, skipping",
				"listing_id", listingID, "index", i, "error", err)
			continue
		}
		imageURLs = append(imageURLs, url)
	}

	if len(imageURLs) == 0 {
		uc.log.Errorw("ingestion aborted: no valid images", "listing_id", listingID)
		return "", domain.ErrNoValidImages
	}

	listing := &domain.CarListing{
		ID:           listingID,
		Make:         draft.Make,
		Model:        draft.Model,
		Year:         draft.Year,
		Color:        draft.Color,
		Price:        draft.Price,
		Mileage:      draft.Mileage,
		BodyType:     draft.BodyType,
		FuelType:     draft.FuelType,
		Transmission: draft.Transmission,
		Seats:        draft.Seats,
		Description:  draft.Description,
		Status:       draft.Status,
		Featured:     draft.Featured,
		Images:       imageURLs,
		CreatedAt:    time.Now().UTC(),
	}
	if listing.Status == "" {
		listing.Status = domain.StatusAvailable
	}

	if err := uc.listings.Create(ctx, listing); err != nil {
		// The uploaded objects stay behind; the invalidation event below never
		// fires, so a reconciler can find them under the unused listing prefix.
		uc.log.Errorw("listing record write failed, uploaded images orphaned",
			"listing_id", listingID, "uploaded", len(imageURLs), "error", err)
		return "", err
	}

	if err := uc.invalidator.Invalidate(ctx, listingID); err != nil {
		uc.log.Warnw("view invalidation failed", "listing_id", listingID, "error", err)
	}

	if uc.notifier != nil && uc.adminEmail != "" {
		title := fmt.Sprintf("%d %s %s", listing.Year, listing.Make, listing.Model)
		if err := uc.notifier.ListingCreated(uc.adminEmail, title); err != nil {
			uc.log.Warnw("listing created notification failed", "listing_id", listingID, "error", err)
		}
	}

	uc.log.Infow("listing created", "listing_id", listingID, "images", len(imageURLs))
	return listingID, nil
}

// resolveUser maps the authenticated subject to a known account. An empty
// subject is an authorization failure; an unknown one is not-found.
func resolveUser(ctx context.Context, users domain.UserRepository, authUserID string) (*domain.User, error) {
	if authUserID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := users.FindByAuthID(ctx, authUserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}
