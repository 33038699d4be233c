package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

// NewRouter wires the HTTP surface: admin routes behind JWT auth, the public
// search and featured feed without it.
func NewRouter(h *Handler, jwtSecret string, log logger.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(Tracing)

	mux.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret, log))

		r.Post("/api/admin/cars/extract", h.HandleExtractAttributes)
		r.Post("/api/admin/cars", h.HandleCreateListing)
		r.Get("/api/admin/cars", h.HandleListListings)
		r.Patch("/api/admin/cars/{id}", h.HandleUpdateListing)
		r.Delete("/api/admin/cars/{id}", h.HandleDeleteListing)
	})

	mux.Post("/api/search/image", h.HandleSearchByImage)
	mux.Get("/api/cars/featured", h.HandleFeaturedListings)
	mux.Get("/healthz", h.HandleHealthz)

	return mux
}
