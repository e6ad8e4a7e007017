package recommend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the recommendation endpoints for the dispatcher screens.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Get("/order/{order_id}", h.orderRecommendations)         // GET /api/v1/recommendations/order/{order_id}
		r.Get("/breakdown/{truck_id}", h.breakdownRecommendations) // GET /api/v1/recommendations/breakdown/{truck_id}
	})
}

func (h *Handler) orderRecommendations(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.GetOrderRecommendations(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, options)
}

func (h *Handler) breakdownRecommendations(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.GetBreakdownRecommendations(r.Context(), chi.URLParam(r, "truck_id"))
	if err != nil {
		code := http.StatusInternalServerError
		msg := err.Error()
		if strings.Contains(msg, "not found") {
			code = http.StatusNotFound
		} else if strings.Contains(msg, "not broken down") || strings.Contains(msg, "no assigned order") {
			code = http.StatusUnprocessableEntity
		}
		respond(w, code, map[string]string{"error": msg})
		return
	}
	respond(w, http.StatusOK, options)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
