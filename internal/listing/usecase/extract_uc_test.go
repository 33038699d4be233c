package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

const validListingReply = `{
	"make": "Toyota",
	"model": "Camry",
	"year": 2021,
	"color": "White",
	"price": "25000",
	"mileage": "32000",
	"bodyType": "Sedan",
	"fuelType": "Petrol",
	"transmission": "Automatic",
	"description": "A clean mid-size sedan.",
	"confidence": 0.92
}`

func TestExtractorUsecase_ExtractAttributes_FencedReply(t *testing.T) {
	vision := new(MockVisionModel)
	gate := new(MockRateGate)
	uc := NewExtractorUsecase(vision, gate, logger.NewNop())

	ctx := context.Background()
	image := []byte{0xFF, 0xD8}
	vision.On("Generate", mock.Anything, image, "image/jpeg", mock.AnythingOfType("string")).
		Return("```json\n"+validListingReply+"\n```", nil).Once()

	attrs, err := uc.ExtractAttributes(ctx, image, "image/jpeg")

	assert.NoError(t, err)
	assert.Equal(t, "Toyota", attrs.Make)
	assert.Equal(t, "Camry", attrs.Model)
	assert.Equal(t, 2021, attrs.Year)
	assert.Equal(t, "25000", attrs.Price)
	assert.Equal(t, "32000", attrs.Mileage)
	assert.InDelta(t, 0.92, attrs.Confidence, 0.001)
	vision.AssertExpectations(t)
}

func TestExtractorUsecase_ExtractAttributes_NumericStringsCoerced(t *testing.T) {
	vision := new(MockVisionModel)
	uc := NewExtractorUsecase(vision, new(MockRateGate), logger.NewNop())

	reply := `{
		"make": "Honda",
		"model": "Civic",
		"year": "2019",
		"color": "Blue",
		"price": 18500,
		"mileage": 54000,
		"bodyType": "Hatchback",
		"fuelType": "Petrol",
		"transmission": "Manual",
		"description": "Compact hatchback.",
		"confidence": "0.8"
	}`
	ctx := context.Background()
	vision.On("Generate", mock.Anything, mock.Anything, "image/png", mock.Anything).Return(reply, nil).Once()

	attrs, err := uc.ExtractAttributes(ctx, []byte{0x89}, "image/png")

	assert.NoError(t, err)
	assert.Equal(t, 2019, attrs.Year)
	assert.Equal(t, "18500", attrs.Price)
	assert.Equal(t, "54000", attrs.Mileage)
	assert.InDelta(t, 0.8, attrs.Confidence, 0.001)
}

func TestExtractorUsecase_ExtractAttributes_MissingFieldsNamed(t *testing.T) {
	vision := new(MockVisionModel)
	uc := NewExtractorUsecase(vision, new(MockRateGate), logger.NewNop())

	ctx := context.Background()
	vision.On("Generate", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).
		Return(`{"make": "Toyota", "model": "Camry"}`, nil).Once()

	attrs, err := uc.ExtractAttributes(ctx, []byte{1}, "image/jpeg")

	assert.Nil(t, attrs)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Missing, "year")
	assert.Contains(t, validationErr.Missing, "price")
	assert.NotContains(t, validationErr.Missing, "make")
}

func TestExtractorUsecase_ExtractAttributes_MalformedJSON(t *testing.T) {
	vision := new(MockVisionModel)
	uc := NewExtractorUsecase(vision, new(MockRateGate), logger.NewNop())

	ctx := context.Background()
	vision.On("Generate", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).
		Return("I cannot identify this vehicle.", nil).Once()

	_, err := uc.ExtractAttributes(ctx, []byte{1}, "image/jpeg")

	assert.ErrorIs(t, err, domain.ErrMalformedReply)
}

func TestExtractorUsecase_ExtractAttributes_BadEnumRejected(t *testing.T) {
	vision := new(MockVisionModel)
	uc := NewExtractorUsecase(vision, new(MockRateGate), logger.NewNop())

	reply := `{
		"make": "Tesla",
		"model": "Model 3",
		"year": 2022,
		"color": "Red",
		"price": "40000",
		"mileage": "10000",
		"bodyType": "Spaceship",
		"fuelType": "Electric",
		"transmission": "Automatic",
		"description": "An electric sedan.",
		"confidence": 0.95
	}`
	ctx := context.Background()
	vision.On("Generate", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).Return(reply, nil).Once()

	_, err := uc.ExtractAttributes(ctx, []byte{1}, "image/jpeg")

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestExtractorUsecase_ExtractAttributes_UpstreamErrorPassesThrough(t *testing.T) {
	vision := new(MockVisionModel)
	uc := NewExtractorUsecase(vision, new(MockRateGate), logger.NewNop())

	upstream := &domain.UpstreamError{Service: "gemini", Status: 503, Err: errors.New("overloaded")}
	ctx := context.Background()
	vision.On("Generate", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).Return("", upstream).Once()

	_, err := uc.ExtractAttributes(ctx, []byte{1}, "image/jpeg")

	var got *domain.UpstreamError
	assert.ErrorAs(t, err, &got)
	assert.Equal(t, "gemini", got.Service)
}

func TestExtractorUsecase_ExtractSearchQuery_Allowed(t *testing.T) {
	vision := new(MockVisionModel)
	gate := new(MockRateGate)
	uc := NewExtractorUsecase(vision, gate, logger.NewNop())

	ctx := context.Background()
	gate.On("Admit", mock.Anything, "203.0.113.7", int64(1)).
		Return(domain.Decision{Allowed: true, Remaining: 9}, nil).Once()
	vision.On("Generate", mock.Anything, mock.Anything, "image/jpeg", mock.Anything).
		Return(`{"make": "BMW", "bodyType": "SUV", "color": "Black", "confidence": 0.7}`, nil).Once()

	query, err := uc.ExtractSearchQuery(ctx, "203.0.113.7", []byte{1}, "image/jpeg")

	assert.NoError(t, err)
	assert.Equal(t, "BMW", query.Make)
	assert.Equal(t, "SUV", query.BodyType)
	gate.AssertExpectations(t)
	vision.AssertExpectations(t)
}

func TestExtractorUsecase_ExtractSearchQuery_RateLimited(t *testing.T) {
	vision := new(MockVisionModel)
	gate := new(MockRateGate)
	uc := NewExtractorUsecase(vision, gate, logger.NewNop())

	ctx := context.Background()
	gate.On("Admit", mock.Anything, "203.0.113.7", int64(1)).
		Return(domain.Decision{Allowed: false, Reason: domain.DenyRateLimit, ResetIn: 30 * time.Second}, nil).Once()

	_, err := uc.ExtractSearchQuery(ctx, "203.0.113.7", []byte{1}, "image/jpeg")

	var rateErr *domain.RateLimitError
	assert.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 30*time.Second, rateErr.ResetIn)
	vision.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractorUsecase_ExtractSearchQuery_Blocked(t *testing.T) {
	vision := new(MockVisionModel)
	gate := new(MockRateGate)
	uc := NewExtractorUsecase(vision, gate, logger.NewNop())

	ctx := context.Background()
	gate.On("Admit", mock.Anything, "203.0.113.7", int64(1)).
		Return(domain.Decision{Allowed: false, Reason: domain.DenyBlocked}, nil).Once()

	_, err := uc.ExtractSearchQuery(ctx, "203.0.113.7", []byte{1}, "image/jpeg")

	assert.ErrorIs(t, err, domain.ErrRequestBlocked)
	vision.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractorUsecase_ExtractSearchQuery_GateFailure(t *testing.T) {
	vision := new(MockVisionModel)
	gate := new(MockRateGate)
	uc := NewExtractorUsecase(vision, gate, logger.NewNop())

	ctx := context.Background()
	gate.On("Admit", mock.Anything, "203.0.113.7", int64(1)).
		Return(domain.Decision{}, errors.New("redis down")).Once()

	_, err := uc.ExtractSearchQuery(ctx, "203.0.113.7", []byte{1}, "image/jpeg")

	var upstream *domain.UpstreamError
	assert.ErrorAs(t, err, &upstream)
	assert.Equal(t, "rate-decision", upstream.Service)
	vision.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
