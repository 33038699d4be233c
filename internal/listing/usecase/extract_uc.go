package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

// VisionModel is the external vision-language model port. Implementations
// return the raw model text; cleanup and validation happen here.
type VisionModel interface {
	Generate(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// ExtractorUsecase turns car photos into structured attributes. The full
// extraction feeds admin ingestion; the lighter search variant is gated by
// the rate-decision service because it is publicly reachable.
type ExtractorUsecase struct {
	vision VisionModel
	gate   domain.RateGate
	log    logger.Logger
}

func NewExtractorUsecase(vision VisionModel, gate domain.RateGate, log logger.Logger) *ExtractorUsecase {
	return &ExtractorUsecase{vision: vision, gate: gate, log: log}
}

// ExtractAttributes runs one extraction attempt and validates the reply
// structurally: all ten listing fields present, enum fields within their
// closed sets. No internal retries; the caller owns the retry policy.
func (uc *ExtractorUsecase) ExtractAttributes(ctx context.Context, image []byte, mimeType string) (*domain.ExtractedAttributes, error) {
	ctx, span := otel.Tracer("listing.usecase").Start(ctx, "ExtractAttributes")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(image)))

	text, err := uc.vision.Generate(ctx, image, mimeType, buildListingPrompt())
	if err != nil {
		uc.log.Errorw("attribute extraction: model call failed", "error", err)
		return nil, err
	}

	reply, err := uc.parseReply(text, requiredListingFields)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("re-encode model reply: %w", err)
	}
	if err := validateAgainstSchema(buildListingReplySchema(), payload); err != nil {
		uc.log.Warnw("attribute extraction: reply failed schema validation", "error", err)
		return nil, &domain.ValidationError{Reason: err.Error()}
	}

	var attrs domain.ExtractedAttributes
	if err := json.Unmarshal(payload, &attrs); err != nil {
		return nil, fmt.Errorf("decode extracted attributes: %w", err)
	}

	uc.log.Infow("attribute extraction succeeded",
		"make", attrs.Make, "model", attrs.Model, "confidence", attrs.Confidence)
	return &attrs, nil
}

// ExtractSearchQuery is the public search-by-image path. The gate runs
// first: a denied request never reaches the model.
func (uc *ExtractorUsecase) ExtractSearchQuery(ctx context.Context, clientKey string, image []byte, mimeType string) (*domain.SearchQuery, error) {
	ctx, span := otel.Tracer("listing.usecase").Start(ctx, "ExtractSearchQuery")
	defer span.End()

	decision, err := uc.gate.Admit(ctx, clientKey, 1)
	if err != nil {
		return nil, &domain.UpstreamError{Service: "rate-decision", Err: err}
	}
	if !decision.Allowed {
		if decision.Reason == domain.DenyRateLimit {
			uc.log.Warnw("image search denied: rate limit exceeded",
				"client", clientKey, "remaining", decision.Remaining, "reset_in", decision.ResetIn)
			return nil, &domain.RateLimitError{Remaining: decision.Remaining, ResetIn: decision.ResetIn}
		}
		uc.log.Warnw("image search denied: request blocked", "client", clientKey)
		return nil, domain.ErrRequestBlocked
	}

	text, err := uc.vision.Generate(ctx, image, mimeType, buildSearchPrompt())
	if err != nil {
		uc.log.Errorw("image search: model call failed", "error", err)
		return nil, err
	}

	reply, err := uc.parseReply(text, requiredSearchFields)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("re-encode model reply: %w", err)
	}
	if err := validateAgainstSchema(buildSearchReplySchema(), payload); err != nil {
		return nil, &domain.ValidationError{Reason: err.Error()}
	}

	var query domain.SearchQuery
	if err := json.Unmarshal(payload, &query); err != nil {
		return nil, fmt.Errorf("decode search query: %w", err)
	}
	return &query, nil
}

// parseReply strips fence markup, decodes the JSON object, verifies required
// fields are present and sanitizes loose typing before schema validation.
func (uc *ExtractorUsecase) parseReply(text string, required []string) (map[string]any, error) {
	cleaned := stripCodeFences(text)

	var reply map[string]any
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		uc.log.Warnw("model reply is not valid JSON", "error", err, "reply_bytes", len(cleaned))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}

	if missing := missingFields(reply, required); len(missing) > 0 {
		return nil, &domain.ValidationError{Missing: missing}
	}

	if touched := sanitizeReply(reply, required); len(touched) > 0 {
		uc.log.Debugw("model reply sanitized", "fields", touched)
	}
	return reply, nil
}
