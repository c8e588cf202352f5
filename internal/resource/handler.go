package resource

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cathshield/internal/platform/httpx"
	"cathshield/internal/risk"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateMetric(w http.ResponseWriter, r *http.Request) {
	var req SupplyCheck
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	result, err := h.svc.Check(r.Context(), req)
	if err != nil {
		if errors.Is(err, risk.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "Patients count is required")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to record resource metric")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"metric": result})
}

func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	metrics, err := h.svc.History(r.Context(), r.URL.Query().Get("wardId"), limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to list resource metrics")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"metrics": metrics})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/resource-metrics", h.CreateMetric)
	r.Get("/resource-metrics", h.ListMetrics)
}
