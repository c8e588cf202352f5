package patient

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cathshield/internal/platform/httpx"
	"cathshield/internal/speech"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.writeErr(w, err, "Failed to create patient")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"patient": p})
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to list patients")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"patients": patients})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err, "Failed to load patient")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"patient": p})
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	p, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		h.writeErr(w, err, "Failed to update patient")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"patient": p})
}

func (h *Handler) CreateConsent(w http.ResponseWriter, r *http.Request) {
	var req ConsentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	c, err := h.svc.RecordConsent(r.Context(), req)
	if err != nil {
		h.writeErr(w, err, "Failed to record consent")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"consent": c})
}

func (h *Handler) ConsentAudio(w http.ResponseWriter, r *http.Request) {
	audio, err := h.svc.ConsentAudio(r.Context(), r.URL.Query().Get("language"))
	if err != nil {
		if errors.Is(err, speech.ErrNotConfigured) {
			httpx.WriteError(w, http.StatusServiceUnavailable, "Consent audio is not configured")
			return
		}
		h.writeErr(w, err, "Failed to render consent audio")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	_, _ = w.Write(audio)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Not found")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/patients", h.CreatePatient)
	r.Get("/patients", h.ListPatients)
	r.Get("/patients/{id}", h.GetPatient)
	r.Patch("/patients/{id}", h.UpdatePatient)
	r.Post("/consent", h.CreateConsent)
	r.Get("/consent/audio", h.ConsentAudio)
}
