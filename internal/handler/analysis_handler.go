package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/apperr"
	"rev-saas-api/internal/service"
)

// AnalysisHandler exposes AttributionEngine.Attribute over HTTP.
type AnalysisHandler struct {
	attribution  *service.AttributionEngine
	softDeadline time.Duration
}

// NewAnalysisHandler creates a new AnalysisHandler. softDeadline bounds how
// long a single analysis request may run before it is aborted with
// apperr.WindowTooWide (spec.md §5); a non-positive value disables the
// deadline.
func NewAnalysisHandler(attribution *service.AttributionEngine, softDeadline time.Duration) *AnalysisHandler {
	return &AnalysisHandler{attribution: attribution, softDeadline: softDeadline}
}

// withSoftDeadline bounds ctx by h.softDeadline, when configured.
func (h *AnalysisHandler) withSoftDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.softDeadline <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.softDeadline)
}

// asCoreError translates a context deadline exceeded while running an
// analysis into apperr.WindowTooWide so it surfaces as HTTP 408 rather than
// an opaque 500.
func asCoreError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded && !errors.As(err, new(*apperr.Error)) {
		return apperr.WindowTooWide("analysis exceeded its soft deadline")
	}
	return err
}

// Attribute handles GET /api/creators/{id}/attribution?window_start=...&window_end=...&category=...
func (h *AnalysisHandler) Attribute(w http.ResponseWriter, r *http.Request) {
	creatorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid creator id", http.StatusBadRequest)
		return
	}

	wStart, wEnd, err := parseWindow(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := r.URL.Query().Get("category")

	ctx, cancel := h.withSoftDeadline(r.Context())
	defer cancel()

	report, err := h.attribution.Attribute(ctx, creatorID, wStart, wEnd, category)
	if err != nil {
		writeCoreError(w, asCoreError(ctx, err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// AttributeFans handles POST /api/creators/{id}/attribute-fans?window_hours=48
func (h *AnalysisHandler) AttributeFans(w http.ResponseWriter, r *http.Request) {
	creatorID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "invalid creator id", http.StatusBadRequest)
		return
	}

	// 0 tells AttributeFans to fall back to the creator's (or its agency's)
	// configured optimal_attribution_window_hours.
	windowHours := 0
	if v := r.URL.Query().Get("window_hours"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			windowHours = parsed
		}
	}

	ctx, cancel := h.withSoftDeadline(r.Context())
	defer cancel()

	count, err := h.attribution.AttributeFans(ctx, creatorID, windowHours)
	if err != nil {
		writeCoreError(w, asCoreError(ctx, err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"fans_attributed": count})
}

func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	wStartStr := r.URL.Query().Get("window_start")
	wEndStr := r.URL.Query().Get("window_end")

	wEnd := time.Now().UTC()
	if wEndStr != "" {
		parsed, err := time.Parse(time.RFC3339, wEndStr)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidWindowParam("window_end")
		}
		wEnd = parsed
	}

	wStart := wEnd.AddDate(0, 0, -30)
	if wStartStr != "" {
		parsed, err := time.Parse(time.RFC3339, wStartStr)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidWindowParam("window_start")
		}
		wStart = parsed
	}

	return wStart, wEnd, nil
}

type windowParamError string

func (e windowParamError) Error() string { return "invalid " + string(e) + ": must be RFC3339" }

func errInvalidWindowParam(name string) error { return windowParamError(name) }
