package inventory

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the availability lookup for the console.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	// GET /api/v1/inventory/{site}/{product_id}
	r.Get("/api/v1/inventory/{site}/{product_id}", h.getAvailability)
}

func (h *Handler) getAvailability(w http.ResponseWriter, r *http.Request) {
	site := Site(chi.URLParam(r, "site"))
	productID, err := uuid.Parse(chi.URLParam(r, "product_id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product_id"})
		return
	}
	avail, err := h.service.Available(r.Context(), site, productID, uuid.Nil)
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown site") {
			code = http.StatusBadRequest
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, avail)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
