package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arman61-hub/AutoDek/internal/listing/domain"
	"github.com/arman61-hub/AutoDek/internal/listing/usecase"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

const maxImageBytes = 10 << 20

// Handler exposes the listing service over HTTP.
type Handler struct {
	extractor *usecase.ExtractorUsecase
	ingest    *usecase.IngestUsecase
	lifecycle *usecase.LifecycleUsecase
	log       logger.Logger
}

func NewHandler(
	extractor *usecase.ExtractorUsecase,
	ingest *usecase.IngestUsecase,
	lifecycle *usecase.LifecycleUsecase,
	log logger.Logger,
) *Handler {
	return &Handler{extractor: extractor, ingest: ingest, lifecycle: lifecycle, log: log}
}

// readImageUpload pulls the "image" part out of a multipart form and returns
// its bytes with the detected content type.
func readImageUpload(r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, "", false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil || len(data) == 0 {
		return nil, "", false
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, true
}

// HandleExtractAttributes runs the full vision extraction over an uploaded
// photo. Admin only; the reply is reviewed before ingestion.
func (h *Handler) HandleExtractAttributes(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := readImageUpload(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "multipart field 'image' is required")
		return
	}

	attrs, err := h.extractor.ExtractAttributes(r.Context(), data, mimeType)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, attrs)
}

type createListingRequest struct {
	domain.ListingDraft
	Images []string `json:"images"`
}

type createListingResponse struct {
	ID string `json:"id"`
}

func (h *Handler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.ingest.CreateListing(r.Context(), UserIDFromContext(r.Context()), req.ListingDraft, req.Images)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createListingResponse{ID: id})
}

func (h *Handler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.lifecycle.ListListings(r.Context(), UserIDFromContext(r.Context()), r.URL.Query().Get("search"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

func (h *Handler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	var patch domain.ListingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.lifecycle.UpdateListingFlags(r.Context(), UserIDFromContext(r.Context()), id, patch); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.lifecycle.DeleteListing(r.Context(), UserIDFromContext(r.Context()), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// HandleSearchByImage is the public photo search. The rate gate inside the
// usecase runs before any model call.
func (h *Handler) HandleSearchByImage(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := readImageUpload(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "multipart field 'image' is required")
		return
	}

	query, err := h.extractor.ExtractSearchQuery(r.Context(), clientKey(r), data, mimeType)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, query)
}

func (h *Handler) HandleFeaturedListings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	listings, err := h.lifecycle.FeaturedListings(r.Context(), limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

func (h *Handler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
