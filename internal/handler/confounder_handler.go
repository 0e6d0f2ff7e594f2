package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/model"
	mongorepo "rev-saas-api/internal/repository/mongo"
)

// ConfounderHandler exposes CRUD on declared confounder events (spec.md
// §3/§4.3) — agency staff flag promotions, collabs, price changes, and
// similar external causes that bias attribution.
type ConfounderHandler struct {
	confounders *mongorepo.ConfounderRepository
}

// NewConfounderHandler creates a new ConfounderHandler.
func NewConfounderHandler(confounders *mongorepo.ConfounderRepository) *ConfounderHandler {
	return &ConfounderHandler{confounders: confounders}
}

type confounderRequest struct {
	CreatorID   string     `json:"creator_id"`
	Type        string     `json:"type"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Impact      string     `json:"impact"`
	Description string     `json:"description,omitempty"`
}

// Create handles POST /api/confounders
func (h *ConfounderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req confounderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(req.CreatorID)
	if err != nil {
		writeJSONError(w, "creator_id is required and must be a valid id", http.StatusBadRequest)
		return
	}
	if req.Type == "" || req.StartAt.IsZero() {
		writeJSONError(w, "type and start_at are required", http.StatusBadRequest)
		return
	}

	event := &model.ConfounderEvent{
		CreatorID:   creatorID,
		Type:        req.Type,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Impact:      req.Impact,
		Description: req.Description,
	}

	if err := h.confounders.Create(r.Context(), event); err != nil {
		writeJSONError(w, "failed to create confounder", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// List handles GET /api/creators/{id}/confounders
func (h *ConfounderHandler) List(w http.ResponseWriter, r *http.Request) {
	creatorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid creator id", http.StatusBadRequest)
		return
	}

	events, err := h.confounders.ListByCreator(r.Context(), creatorID)
	if err != nil {
		writeJSONError(w, "failed to list confounders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// Update handles PATCH /api/confounders/{id}
func (h *ConfounderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid confounder id", http.StatusBadRequest)
		return
	}

	var req confounderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	event := &model.ConfounderEvent{
		ID:          id,
		Type:        req.Type,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Impact:      req.Impact,
		Description: req.Description,
	}

	if err := h.confounders.Update(r.Context(), event); err != nil {
		writeJSONError(w, "failed to update confounder", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/confounders/{id}
func (h *ConfounderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid confounder id", http.StatusBadRequest)
		return
	}

	if err := h.confounders.Delete(r.Context(), id); err != nil {
		writeJSONError(w, "failed to delete confounder", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
