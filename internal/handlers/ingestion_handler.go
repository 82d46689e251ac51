package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chameleon/server/internal/middleware"
	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/services"
)

// IngestionHandler handles recipe ingestion endpoints. Both endpoints return
// an unsaved draft; persisting it goes through the normal save path.
type IngestionHandler struct {
	ingestionService *services.IngestionService
}

// NewIngestionHandler creates a new IngestionHandler
func NewIngestionHandler(ingestionService *services.IngestionService) *IngestionHandler {
	return &IngestionHandler{
		ingestionService: ingestionService,
	}
}

// ParseURL extracts a recipe draft from a web page
func (h *IngestionHandler) ParseURL(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.IngestURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	draft, err := h.ingestionService.ParseURL(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, services.ErrInvalidIngestURL) {
			http.Error(w, "Invalid recipe URL", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to parse recipe", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(draft)
}

// ParseScan extracts a recipe draft from a scanned page
func (h *IngestionHandler) ParseScan(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	draft, err := h.ingestionService.ParseScan(r.Context())
	if err != nil {
		http.Error(w, "Failed to parse scan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(draft)
}
