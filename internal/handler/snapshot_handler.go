package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rev-saas-api/internal/model"
	mongorepo "rev-saas-api/internal/repository/mongo"
)

// SnapshotHandler exposes the raw ingestion surface for posts, snapshots,
// fan acquisitions, and revenue events — the normalised records SnapshotStore
// and its sibling stores consume (spec.md §1, §6).
type SnapshotHandler struct {
	posts     *mongorepo.PostRepository
	snapshots *mongorepo.SnapshotRepository
	fans      *mongorepo.FanRepository
	revenue   *mongorepo.RevenueRepository
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(
	posts *mongorepo.PostRepository,
	snapshots *mongorepo.SnapshotRepository,
	fans *mongorepo.FanRepository,
	revenue *mongorepo.RevenueRepository,
) *SnapshotHandler {
	return &SnapshotHandler{posts: posts, snapshots: snapshots, fans: fans, revenue: revenue}
}

type recordSnapshotRequest struct {
	CreatorID  string       `json:"creator_id"`
	PostID     string       `json:"post_id"`
	PostURL    string       `json:"post_url"`
	Platform   string       `json:"platform"`
	PostedAt   time.Time    `json:"posted_at"`
	Category   string       `json:"category"`
	SnapshotAt time.Time    `json:"snapshot_at"`
	Values     model.Metrics `json:"values"`
	ImportRef  string       `json:"import_ref"`
}

// RecordSnapshot handles POST /api/snapshots — records an observation for an
// existing post, or creates the post first if post_id is absent and
// post_url/platform/posted_at are supplied instead.
func (h *SnapshotHandler) RecordSnapshot(w http.ResponseWriter, r *http.Request) {
	var req recordSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(req.CreatorID)
	if err != nil {
		writeJSONError(w, "creator_id is required and must be a valid id", http.StatusBadRequest)
		return
	}

	var postID primitive.ObjectID
	if req.PostID != "" {
		postID, err = primitive.ObjectIDFromHex(req.PostID)
		if err != nil {
			writeJSONError(w, "invalid post_id", http.StatusBadRequest)
			return
		}
	} else {
		if req.PostURL == "" {
			writeJSONError(w, "post_id or post_url is required", http.StatusBadRequest)
			return
		}
		existing, err := h.posts.FindByCreatorAndURL(r.Context(), creatorID, req.PostURL)
		if err != nil {
			writeJSONError(w, "failed to look up post", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			postID = existing.ID
		} else {
			post := &model.SocialPost{
				CreatorID:   creatorID,
				Platform:    req.Platform,
				PostedAt:    req.PostedAt,
				URL:         req.PostURL,
				Category:    model.NormalizeCategory(req.Category, nil),
				LabelSource: model.LabelSourceMLSuggested,
			}
			if err := h.posts.Create(r.Context(), post); err != nil {
				writeJSONError(w, "failed to create post", http.StatusInternalServerError)
				return
			}
			postID = post.ID
		}
	}

	var importRef uuid.UUID
	if req.ImportRef != "" {
		importRef, err = uuid.Parse(req.ImportRef)
		if err != nil {
			writeJSONError(w, "invalid import_ref", http.StatusBadRequest)
			return
		}
	}

	snapshotAt := req.SnapshotAt
	if snapshotAt.IsZero() {
		snapshotAt = time.Now().UTC()
	}

	if err := h.snapshots.Record(r.Context(), postID, req.Values, snapshotAt, importRef); err != nil {
		writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"post_id": postID.Hex()})
}

type recordFanRequest struct {
	CreatorID        string    `json:"creator_id"`
	ExternalID       string    `json:"external_id"`
	AcquiredAt       time.Time `json:"acquired_at"`
	ReferralLinkID   string    `json:"referral_link_id,omitempty"`
	ReferralCategory string    `json:"referral_category,omitempty"`
}

// RecordFan handles POST /api/fans — registers a subscriber acquisition
// event. The raw external_id is hashed by the caller's agency salt before
// reaching here in a production deployment; this accepts the hash directly
// since hashing is exercised by service.FanIDHasher in the ingest pipeline,
// not at this HTTP boundary.
func (h *SnapshotHandler) RecordFan(w http.ResponseWriter, r *http.Request) {
	var req recordFanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(req.CreatorID)
	if err != nil {
		writeJSONError(w, "creator_id is required and must be a valid id", http.StatusBadRequest)
		return
	}
	if req.ExternalID == "" {
		writeJSONError(w, "external_id is required", http.StatusBadRequest)
		return
	}

	acquiredAt := req.AcquiredAt
	if acquiredAt.IsZero() {
		acquiredAt = time.Now().UTC()
	}

	fan := &model.Fan{
		CreatorID:         creatorID,
		ExternalIDHash:    req.ExternalID,
		AcquiredAt:        acquiredAt,
		ReferralCategory:  req.ReferralCategory,
		AttributionMethod: model.AttributionMethodNone,
	}
	if req.ReferralLinkID != "" {
		refID, err := primitive.ObjectIDFromHex(req.ReferralLinkID)
		if err != nil {
			writeJSONError(w, "invalid referral_link_id", http.StatusBadRequest)
			return
		}
		fan.ReferralLinkID = &refID
	}

	if err := h.fans.Create(r.Context(), fan); err != nil {
		writeJSONError(w, "failed to record fan", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"fan_id": fan.ID.Hex()})
}

type recordRevenueRequest struct {
	CreatorID string    `json:"creator_id"`
	FanID     string    `json:"fan_id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	EventAt   time.Time `json:"event_at"`
}

// RecordRevenue handles POST /api/revenue-events
func (h *SnapshotHandler) RecordRevenue(w http.ResponseWriter, r *http.Request) {
	var req recordRevenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(req.CreatorID)
	if err != nil {
		writeJSONError(w, "creator_id is required and must be a valid id", http.StatusBadRequest)
		return
	}
	fanID, err := primitive.ObjectIDFromHex(req.FanID)
	if err != nil {
		writeJSONError(w, "fan_id is required and must be a valid id", http.StatusBadRequest)
		return
	}

	amount, err := decimalFromString(req.Amount)
	if err != nil {
		writeJSONError(w, "invalid amount", http.StatusBadRequest)
		return
	}

	eventAt := req.EventAt
	if eventAt.IsZero() {
		eventAt = time.Now().UTC()
	}

	currency := req.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	event := &model.RevenueEvent{
		CreatorID: creatorID,
		FanID:     fanID,
		Type:      req.Type,
		Amount:    amount,
		Currency:  currency,
		EventAt:   eventAt,
	}

	if err := h.revenue.Create(r.Context(), event); err != nil {
		writeJSONError(w, "failed to record revenue event", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"revenue_event_id": event.ID.Hex()})
}
