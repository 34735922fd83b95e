package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"growthlog/internal/service"
)

// ChildHandler serves the child endpoints of the JSON API.
type ChildHandler struct {
	growth *service.GrowthService
}

// NewChildHandler creates a new child handler.
func NewChildHandler(growth *service.GrowthService) *ChildHandler {
	return &ChildHandler{growth: growth}
}

type childRequest struct {
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
	Gender    *string `json:"gender"`
}

// ListChildren returns the guardian's children with their most recent
// measurement.
func (h *ChildHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())

	children, err := h.growth.ListChildren(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]childResponse, len(children))
	for i, c := range children {
		responses[i] = toChildSummaryResponse(c)
	}
	writeJSON(w, http.StatusOK, responses)
}

// CreateChild creates a new child owned by the calling guardian.
func (h *ChildHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())

	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	in := service.CreateChildInput{BirthDate: req.BirthDate}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Gender != nil {
		in.Gender = *req.Gender
	}

	child, err := h.growth.CreateChild(r.Context(), ownerID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChildDetailResponse(*child))
}

// GetChild returns one child with its full measurement history.
func (h *ChildHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())
	childID := chi.URLParam(r, "id")

	child, err := h.growth.GetChild(r.Context(), ownerID, childID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildDetailResponse(*child))
}

// UpdateChild applies a partial update to a child.
func (h *ChildHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())
	childID := chi.URLParam(r, "id")

	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	child, err := h.growth.UpdateChild(r.Context(), ownerID, childID, service.UpdateChildInput{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildDetailResponse(*child))
}

// DeleteChild removes a child and all of its measurements.
func (h *ChildHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	ownerID := GuardianFromContext(r.Context())
	childID := chi.URLParam(r, "id")

	if err := h.growth.DeleteChild(r.Context(), ownerID, childID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
