package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"growthlog/internal/service"
)

// MeasurementHandler serves the measurement endpoints of the JSON API.
type MeasurementHandler struct {
	growth *service.GrowthService
}

// NewMeasurementHandler creates a new measurement handler.
func NewMeasurementHandler(growth *service.GrowthService) *MeasurementHandler {
	return &MeasurementHandler{growth: growth}
}

type measurementRequest struct {
	Date                *string  `json:"date"`
	HeightCm            *float64 `json:"heightCm"`
	WeightKg            *float64 `json:"weightKg"`
	HeadCircumferenceCm *float64 `json:"headCircumferenceCm"`
	Note                *string  `json:"note"`
}

// ListMeasurements returns a child's full measurement history, most
// recent first.
func (h *MeasurementHandler) ListMeasurements(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())
	childID := chi.URLParam(r, "id")

	child, err := h.growth.GetChild(r.Context(), ownerID, childID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]measurementResponse, len(child.Measurements))
	for i, m := range child.Measurements {
		responses[i] = toMeasurementResponse(m)
	}
	writeJSON(w, http.StatusOK, responses)
}

// CreateMeasurement records a new measurement for a child.
func (h *MeasurementHandler) CreateMeasurement(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())
	childID := chi.URLParam(r, "id")

	var req measurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	in := service.CreateMeasurementInput{
		Date:                req.Date,
		HeightCm:            req.HeightCm,
		WeightKg:            req.WeightKg,
		HeadCircumferenceCm: req.HeadCircumferenceCm,
	}
	if req.Note != nil {
		in.Note = *req.Note
	}

	m, err := h.growth.CreateMeasurement(r.Context(), ownerID, childID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMeasurementResponse(*m))
}

// UpdateMeasurement applies a partial update to a measurement.
func (h *MeasurementHandler) UpdateMeasurement(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())
	measurementID := chi.URLParam(r, "id")

	var req measurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	m, err := h.growth.UpdateMeasurement(r.Context(), ownerID, measurementID, service.UpdateMeasurementInput{
		Date:                req.Date,
		HeightCm:            req.HeightCm,
		WeightKg:            req.WeightKg,
		HeadCircumferenceCm: req.HeadCircumferenceCm,
		Note:                req.Note,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMeasurementResponse(*m))
}

// DeleteMeasurement removes a measurement.
func (h *MeasurementHandler) DeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())
	measurementID := chi.URLParam(r, "id")

	if err := h.growth.DeleteMeasurement(r.Context(), ownerID, measurementID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
