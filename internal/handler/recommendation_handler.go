package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongorepo "rev-saas-api/internal/repository/mongo"
	"rev-saas-api/internal/service"
)

// RecommendationHandler exposes RecommendationEngine.Generate over HTTP,
// including the Monday-style PDF digest export.
type RecommendationHandler struct {
	recommendations *service.RecommendationEngine
	creators        *mongorepo.CreatorRepository
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommendations *service.RecommendationEngine, creators *mongorepo.CreatorRepository) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations, creators: creators}
}

// Generate handles GET /api/creators/{id}/recommendation?days=30
func (h *RecommendationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	creatorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid creator id", http.StatusBadRequest)
		return
	}

	days := parseDays(r)

	rec, err := h.recommendations.Generate(r.Context(), creatorID, days)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// ExportPDF handles GET /api/creators/{id}/recommendation/export-pdf?days=30
func (h *RecommendationHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	creatorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid creator id", http.StatusBadRequest)
		return
	}

	days := parseDays(r)

	rec, err := h.recommendations.Generate(r.Context(), creatorID, days)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	creator, err := h.creators.GetByID(r.Context(), creatorID)
	if err != nil {
		writeJSONError(w, "failed to fetch creator", http.StatusInternalServerError)
		return
	}
	creatorName := "Creator"
	if creator != nil {
		creatorName = creator.Name
	}

	buf, err := service.GenerateRecommendationPDF(creatorName, rec)
	if err != nil {
		writeJSONError(w, fmt.Sprintf("failed to generate PDF: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("recommendation-%s-%s.pdf", creatorID.Hex(), rec.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func parseDays(r *http.Request) int {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	return days
}
