package questions

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
	consultservice "github.com/arogya-ai/consult-backend/internal/service/consult"
	"github.com/arogya-ai/consult-backend/pkg/utils"
)

// FollowUpService abstracts the orchestrator for testing.
type FollowUpService interface {
	RequestFollowUps(ctx context.Context, id, transcriptChunk, contextText, questionType string) (*assist.QuestionResult, error)
}

// Handler serves the follow-up question endpoint.
type Handler struct {
	consultSvc FollowUpService
}

// New creates the questions handler.
func New(consultSvc FollowUpService) *Handler {
	return &Handler{consultSvc: consultSvc}
}

// RegisterRoutes mounts the question generation route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/questions/generate", h.handleGenerate)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID    string `json:"sessionId"`
		Transcript   string `json:"transcript"`
		Context      string `json:"context"`
		QuestionType string `json:"questionType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.SessionID) == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	result, err := h.consultSvc.RequestFollowUps(r.Context(), payload.SessionID, payload.Transcript, payload.Context, payload.QuestionType)
	if err != nil {
		log.Printf("[questions] generation failed session=%s: %v", payload.SessionID, err)
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"questions":         result.Questions,
		"suggestedQuestion": result.SuggestedQuestion,
		"emotionAlert":      result.EmotionAlert,
		"emotionDetails":    result.EmotionDetails,
		"medicalInsights":   result.MedicalInsights,
		"sessionId":         payload.SessionID,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, consultmodel.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, consultservice.ErrSessionEnded):
		return http.StatusConflict
	case errors.Is(err, consultservice.ErrAssistUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
