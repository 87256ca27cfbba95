package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts/{symbol}", func(r chi.Router) {
		r.Get("/indicators", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetIndicators(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/signal", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetSignal(w, r, chi.URLParam(r, "symbol"))
		})
		r.Get("/sparkline", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetSparkline(w, r, chi.URLParam(r, "symbol"))
		})
	})
}
