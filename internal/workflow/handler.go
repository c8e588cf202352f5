package workflow

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cathshield/internal/platform/httpx"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type AdvanceRequest struct {
	Stage string `json:"stage"`
}

type SetPatientRequest struct {
	PatientID string `json:"patientId"`
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	sess, err := h.svc.Advance(r.Context(), chi.URLParam(r, "sessionID"), req.Stage)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) SetPatient(w http.ResponseWriter, r *http.Request) {
	var req SetPatientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	sess, err := h.svc.SetPatient(r.Context(), chi.URLParam(r, "sessionID"), req.PatientID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) CanAccess(w http.ResponseWriter, r *http.Request) {
	stage := chi.URLParam(r, "stage")
	ok, err := h.svc.CanAccess(r.Context(), chi.URLParam(r, "sessionID"), stage)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"stage": stage, "allowed": ok})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidStage) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, "Workflow storage failed")
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/workflow/{sessionID}", h.GetSession)
	r.Post("/workflow/{sessionID}/advance", h.Advance)
	r.Put("/workflow/{sessionID}/patient", h.SetPatient)
	r.Get("/workflow/{sessionID}/access/{stage}", h.CanAccess)
	r.Delete("/workflow/{sessionID}", h.Reset)
}
