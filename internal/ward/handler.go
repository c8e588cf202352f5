package ward

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cathshield/internal/platform/httpx"
	"cathshield/internal/report"
	"cathshield/internal/risk"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context(), r.URL.Query().Get("wardId"))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to load ward metrics")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) CreateMetric(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	m, err := h.svc.Record(r.Context(), req)
	if err != nil {
		if errors.Is(err, risk.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, "Line days must be positive")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to record ward metric")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.svc.Report(r.Context(), r.URL.Query().Get("wardId"))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	err := h.svc.SendReport(r.Context(), r.URL.Query().Get("wardId"))
	if err != nil {
		if errors.Is(err, report.ErrSenderNotConfigured) {
			httpx.WriteError(w, http.StatusServiceUnavailable, "Report delivery is not configured")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to send report")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/ward-metrics", h.GetMetrics)
	r.Post("/ward-metrics", h.CreateMetric)
	r.Get("/ward-metrics/report", h.DownloadReport)
	r.Post("/ward-metrics/report/send", h.SendReport)
}
