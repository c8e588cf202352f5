package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cathshield/internal/patient"
	"cathshield/internal/platform/httpx"
	"cathshield/internal/risk"
	"cathshield/internal/vision"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// CreateCapture accepts either a JSON body or a multipart form with an
// "image" file and a "context" JSON field.
func (h *Handler) CreateCapture(w http.ResponseWriter, r *http.Request) {
	var (
		req Request
		img *Image
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		if raw := r.FormValue("context"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "Invalid capture context")
				return
			}
		}
		if req.PatientID == "" {
			req.PatientID = r.FormValue("patientId")
		}

		file, hdr, err := r.FormFile("image")
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "Error retrieving image file")
			return
		}
		defer file.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to read image file")
			return
		}
		img = &Image{Data: buf.Bytes(), Filename: hdr.Filename}
	} else if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	result, err := h.svc.Capture(r.Context(), req, img)
	if err != nil {
		switch {
		case errors.Is(err, risk.ErrInvalidInput):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, patient.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Patient not found")
		case errors.Is(err, vision.ErrNotConfigured):
			httpx.WriteError(w, http.StatusServiceUnavailable, "Image analysis is not configured")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "Capture failed")
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	view, err := h.svc.Trend(r.Context(), id)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Patient not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to load trend")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/captures", h.CreateCapture)
	r.Get("/patients/{id}/trend", h.GetTrend)
}
