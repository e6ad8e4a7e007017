package approval

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arenex-logistics/arenex-backend/internal/platform/actor"
)

// Handler exposes the approval workflow endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/assignment-requests", func(r chi.Router) {
		r.Post("/", h.createAssignment)              // POST /api/v1/assignment-requests
		r.Get("/", h.listAssignments)                // GET  /api/v1/assignment-requests?status=PENDING_APPROVAL
		r.Post("/{id}/approve", h.approveAssignment) // POST /api/v1/assignment-requests/{id}/approve
		r.Post("/{id}/reject", h.rejectAssignment)   // POST /api/v1/assignment-requests/{id}/reject
	})
	r.Route("/api/v1/redirect-requests", func(r chi.Router) {
		r.Post("/", h.createRedirect)                       // POST /api/v1/redirect-requests
		r.Get("/", h.listRedirects)                         // GET  /api/v1/redirect-requests?status=PENDING_GERENCIA
		r.Post("/{id}/approve-jefatura", h.approveJefatura) // POST /api/v1/redirect-requests/{id}/approve-jefatura
		r.Post("/{id}/approve-gerencia", h.approveGerencia) // POST /api/v1/redirect-requests/{id}/approve-gerencia
		r.Post("/{id}/approve", h.approveRedirect)          // POST /api/v1/redirect-requests/{id}/approve
		r.Post("/{id}/reject", h.rejectRedirect)            // POST /api/v1/redirect-requests/{id}/reject
	})
}

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := h.service.CreateAssignmentRequest(r.Context(), req, actor.FromContext(r.Context()))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, a)
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAssignmentRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, list)
}

func (h *Handler) approveAssignment(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.ApproveAssignment(r.Context(), chi.URLParam(r, "id"), actor.FromContext(r.Context()))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) rejectAssignment(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := h.service.RejectAssignment(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) createRedirect(w http.ResponseWriter, r *http.Request) {
	var req CreateRedirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rr, err := h.service.CreateRedirectRequest(r.Context(), req, actor.FromContext(r.Context()))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, rr)
}

func (h *Handler) listRedirects(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRedirectRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, list)
}

func (h *Handler) approveJefatura(w http.ResponseWriter, r *http.Request) {
	rr, err := h.service.ApproveRedirectByJefatura(r.Context(), chi.URLParam(r, "id"), actor.FromContext(r.Context()))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, rr)
}

func (h *Handler) approveGerencia(w http.ResponseWriter, r *http.Request) {
	rr, err := h.service.ApproveRedirectByGerencia(r.Context(), chi.URLParam(r, "id"), actor.FromContext(r.Context()))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, rr)
}

func (h *Handler) approveRedirect(w http.ResponseWriter, r *http.Request) {
	rr, err := h.service.ApproveRedirect(r.Context(), chi.URLParam(r, "id"), actor.FromContext(r.Context()))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, rr)
}

func (h *Handler) rejectRedirect(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rr, err := h.service.RejectRedirect(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, rr)
}

// statusFor maps workflow errors onto HTTP codes.
func statusFor(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not pending"),
		strings.Contains(msg, "already resolved"),
		strings.Contains(msg, "not awaiting"),
		strings.Contains(msg, "already has an active delivery"),
		strings.Contains(msg, "operation is in progress"):
		return http.StatusConflict
	case strings.Contains(msg, "must have a QC certificate"),
		strings.Contains(msg, "insufficient"),
		strings.Contains(msg, "Need "),
		strings.Contains(msg, "not available"):
		return http.StatusUnprocessableEntity
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "required"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
