package alert

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cathshield/internal/platform/httpx"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	alerts, err := h.svc.List(r.Context(), Filter{
		PatientID:      q.Get("patientId"),
		Unacknowledged: q.Get("unacknowledged") == "true",
	})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	a, err := h.svc.Acknowledge(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to acknowledge alert")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"alert": a})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/alerts", h.ListAlerts)
	r.Patch("/alerts/{id}/acknowledge", h.AcknowledgeAlert)
}
