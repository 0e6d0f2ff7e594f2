package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"rev-saas-api/internal/handler"
	"rev-saas-api/internal/middleware"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	agencyHandler *handler.AgencyHandler,
	creatorHandler *handler.CreatorHandler,
	snapshotHandler *handler.SnapshotHandler,
	confounderHandler *handler.ConfounderHandler,
	analysisHandler *handler.AnalysisHandler,
	recommendationHandler *handler.RecommendationHandler,
	authMiddleware *middleware.AuthMiddleware,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/agencies", agencyHandler.Create).Methods(http.MethodPost)

	authed := api.PathPrefix("").Subrouter()
	authed.Use(authMiddleware.RequireAuth)

	authed.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	authed.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods(http.MethodPatch)

	authed.HandleFunc("/creators", creatorHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/creators", creatorHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/creators/{id}", creatorHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/creators/{id}", creatorHandler.Update).Methods(http.MethodPatch)

	authed.HandleFunc("/snapshots", snapshotHandler.RecordSnapshot).Methods(http.MethodPost)
	authed.HandleFunc("/fans", snapshotHandler.RecordFan).Methods(http.MethodPost)
	authed.HandleFunc("/revenue-events", snapshotHandler.RecordRevenue).Methods(http.MethodPost)

	authed.HandleFunc("/confounders", confounderHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/confounders/{id}", confounderHandler.Update).Methods(http.MethodPatch)
	authed.HandleFunc("/confounders/{id}", confounderHandler.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/creators/{id}/confounders", confounderHandler.List).Methods(http.MethodGet)

	authed.HandleFunc("/creators/{id}/attribution", analysisHandler.Attribute).Methods(http.MethodGet)
	authed.HandleFunc("/creators/{id}/attribute-fans", analysisHandler.AttributeFans).Methods(http.MethodPost)

	authed.HandleFunc("/creators/{id}/recommendation", recommendationHandler.Generate).Methods(http.MethodGet)
	authed.HandleFunc("/creators/{id}/recommendation/export-pdf", recommendationHandler.ExportPDF).Methods(http.MethodGet)

	return r
}
