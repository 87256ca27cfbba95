package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all regime routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/regime", func(r chi.Router) {
		r.Post("/classify", h.HandleClassify)
	})
}
