package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
)

type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Success: false, Error: message})
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		upstreamErr   *domain.UpstreamError
		rateErr       *domain.RateLimitError
	)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrUserNotFound):
		respondError(w, http.StatusUnauthorized, "unknown user")
	case errors.Is(err, domain.ErrListingNotFound):
		respondError(w, http.StatusNotFound, "listing not found")
	case errors.Is(err, domain.ErrNoValidImages):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRequestBlocked):
		respondError(w, http.StatusForbidden, "request blocked")
	case errors.Is(err, domain.ErrMalformedReply):
		respondError(w, http.StatusBadGateway, "model returned an unusable reply")
	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.ResetIn.Seconds())))
		respondError(w, http.StatusTooManyRequests, rateErr.Error())
	case errors.As(err, &validationErr):
		respondError(w, http.StatusUnprocessableEntity, validationErr.Error())
	case errors.As(err, &upstreamErr):
		respondError(w, http.StatusBadGateway, upstreamErr.Service+" is unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
