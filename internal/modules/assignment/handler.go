package assignment

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the direct-assignment endpoint for the produce and
// warehouse paths that skip human approval.
type Handler struct{ executor Executor }

func NewHandler(executor Executor) *Handler { return &Handler{executor: executor} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/assignments", h.assign) // POST /api/v1/assignments
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.executor.Assign(r.Context(), req); err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "assignment executed"})
}

// statusFor maps executor errors onto HTTP codes: precondition conflicts are
// 409, feasibility shortfalls 422, unknown records 404.
func statusFor(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "already has an active delivery"),
		strings.Contains(msg, "operation is in progress"):
		return http.StatusConflict
	case strings.Contains(msg, "insufficient"),
		strings.Contains(msg, "Need "),
		strings.Contains(msg, "not available"):
		return http.StatusUnprocessableEntity
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
