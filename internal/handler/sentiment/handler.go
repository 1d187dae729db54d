package sentiment

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arogya-ai/consult-backend/internal/analysis/sentiment"
	"github.com/arogya-ai/consult-backend/pkg/utils"
)

// Handler serves standalone sentiment analysis for arbitrary text.
type Handler struct{}

// New creates the sentiment handler.
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes mounts the sentiment route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sentiment", h.handleAnalyze)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	decision := sentiment.Analyze(payload.Text)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sentiment":      decision.Label,
		"confidence":     decision.Score,
		"recommendation": sentiment.Recommendation(decision.Label),
	})
}
