package fleet

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes fleet HTTP endpoints for the dispatcher screens.
type Handler struct{ repo Repository }

func NewHandler(repo Repository) *Handler { return &Handler{repo: repo} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/trucks", func(r chi.Router) {
		r.Get("/", h.listTrucks)        // GET   /api/v1/trucks
		r.Get("/{id}", h.getTruck)      // GET   /api/v1/trucks/{id}
		r.Patch("/{id}", h.updateTruck) // PATCH /api/v1/trucks/{id}
	})
	r.Get("/api/v1/drivers", h.listDrivers) // GET /api/v1/drivers
}

func (h *Handler) listTrucks(w http.ResponseWriter, r *http.Request) {
	trucks, err := h.repo.ListTrucks(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, trucks)
}

func (h *Handler) getTruck(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.GetTruck(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) updateTruck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var update TruckUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.repo.UpdateTruck(r.Context(), id, update); err != nil {
		code := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "truck updated"})
}

func (h *Handler) listDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.repo.ListDrivers(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, drivers)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
