package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/middleware"
	"rev-saas-api/internal/model"
	mongorepo "rev-saas-api/internal/repository/mongo"
)

// CreatorHandler exposes CRUD on the creators an agency manages.
type CreatorHandler struct {
	creators *mongorepo.CreatorRepository
}

// NewCreatorHandler creates a new CreatorHandler.
func NewCreatorHandler(creators *mongorepo.CreatorRepository) *CreatorHandler {
	return &CreatorHandler{creators: creators}
}

type createCreatorRequest struct {
	Name                          string   `json:"name"`
	Platform                      string   `json:"platform"`
	OptimalAttributionWindowHours int      `json:"optimal_attribution_window_hours"`
	BaselineLookbackDays          int      `json:"baseline_lookback_days"`
	MinSubsRecommendation         int      `json:"min_subs_recommendation"`
	MinSubsConfident              int      `json:"min_subs_confident"`
	CategoryTaxonomy              []string `json:"category_taxonomy"`
	WeeklyPlanCap                 int      `json:"weekly_plan_cap"`
	Currency                      string   `json:"currency"`
}

// Create handles POST /api/creators
func (h *CreatorHandler) Create(w http.ResponseWriter, r *http.Request) {
	agencyID, err := primitive.ObjectIDFromHex(middleware.AgencyIDFromContext(r.Context()))
	if err != nil {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createCreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	creator := &model.Creator{
		AgencyID:                      agencyID,
		Name:                          req.Name,
		Platform:                      req.Platform,
		Status:                        model.CreatorStatusActive,
		OptimalAttributionWindowHours: req.OptimalAttributionWindowHours,
		BaselineLookbackDays:          req.BaselineLookbackDays,
		MinSubsRecommendation:         req.MinSubsRecommendation,
		MinSubsConfident:              req.MinSubsConfident,
		CategoryTaxonomy:              req.CategoryTaxonomy,
		WeeklyPlanCap:                 req.WeeklyPlanCap,
		Currency:                      req.Currency,
	}

	if err := h.creators.Create(r.Context(), creator); err != nil {
		writeJSONError(w, "failed to create creator", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, creator)
}

// List handles GET /api/creators
func (h *CreatorHandler) List(w http.ResponseWriter, r *http.Request) {
	agencyID, err := primitive.ObjectIDFromHex(middleware.AgencyIDFromContext(r.Context()))
	if err != nil {
		writeJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	creators, err := h.creators.ListByAgency(r.Context(), agencyID)
	if err != nil {
		writeJSONError(w, "failed to list creators", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, creators)
}

// Get handles GET /api/creators/{id}
func (h *CreatorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid creator id", http.StatusBadRequest)
		return
	}

	creator, err := h.creators.GetByID(r.Context(), id)
	if err != nil {
		writeJSONError(w, "failed to fetch creator", http.StatusInternalServerError)
		return
	}
	if creator == nil {
		writeJSONError(w, "creator not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, creator)
}

// Update handles PATCH /api/creators/{id}
func (h *CreatorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid creator id", http.StatusBadRequest)
		return
	}

	creator, err := h.creators.GetByID(r.Context(), id)
	if err != nil {
		writeJSONError(w, "failed to fetch creator", http.StatusInternalServerError)
		return
	}
	if creator == nil {
		writeJSONError(w, "creator not found", http.StatusNotFound)
		return
	}

	var req createCreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != "" {
		creator.Name = req.Name
	}
	if req.Platform != "" {
		creator.Platform = req.Platform
	}
	creator.OptimalAttributionWindowHours = req.OptimalAttributionWindowHours
	creator.BaselineLookbackDays = req.BaselineLookbackDays
	creator.MinSubsRecommendation = req.MinSubsRecommendation
	creator.MinSubsConfident = req.MinSubsConfident
	creator.CategoryTaxonomy = req.CategoryTaxonomy
	creator.WeeklyPlanCap = req.WeeklyPlanCap
	if req.Currency != "" {
		creator.Currency = req.Currency
	}

	if err := h.creators.Update(r.Context(), creator); err != nil {
		writeJSONError(w, "failed to update creator", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, creator)
}
