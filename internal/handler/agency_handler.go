package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"rev-saas-api/internal/model"
	mongorepo "rev-saas-api/internal/repository/mongo"
	"rev-saas-api/internal/service"
)

// AgencyHandler handles agency onboarding — creating the tenant that a
// Register call then attaches AgencyUsers to.
type AgencyHandler struct {
	agencies   *mongorepo.AgencyRepository
	encryption *service.EncryptionService
}

// NewAgencyHandler creates a new AgencyHandler. encryption may be nil — an
// unconfigured deployment stores the salt as plain hex, same as the teacher's
// optional-encryption fields default to cleartext when no key is set.
func NewAgencyHandler(agencies *mongorepo.AgencyRepository, encryption *service.EncryptionService) *AgencyHandler {
	return &AgencyHandler{agencies: agencies, encryption: encryption}
}

type createAgencyRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/agencies. Mints a fresh HMAC salt for the
// agency's fan-identifier hashing (spec.md §6) — the salt never leaves the
// server.
func (h *AgencyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		writeJSONError(w, "failed to generate agency salt", http.StatusInternalServerError)
		return
	}
	saltHex := hex.EncodeToString(salt)

	if h.encryption != nil && h.encryption.IsConfigured() {
		encrypted, err := h.encryption.Encrypt(saltHex)
		if err != nil {
			writeJSONError(w, "failed to secure agency salt", http.StatusInternalServerError)
			return
		}
		saltHex = encrypted
	}

	agency := &model.Agency{
		Name:        req.Name,
		HashSaltHex: saltHex,
	}

	if err := h.agencies.Create(r.Context(), agency); err != nil {
		writeJSONError(w, "failed to create agency", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": agency.ID.Hex(), "name": agency.Name})
}
