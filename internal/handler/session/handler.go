package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
	consultservice "github.com/arogya-ai/consult-backend/internal/service/consult"
	"github.com/arogya-ai/consult-backend/pkg/utils"
)

// ConsultService abstracts the orchestrator so handlers can be tested
// with fakes.
type ConsultService interface {
	StartSession(ctx context.Context, doctorID, patientName, sessionType string) (consultmodel.Session, error)
	UpdateContext(ctx context.Context, id, contextText string, medicalHistory []string) error
	GetContext(ctx context.Context, id string) (consultmodel.Session, error)
	EndSession(ctx context.Context, id string) (consultmodel.Summary, error)
	RequestFollowUps(ctx context.Context, id, transcriptChunk, contextText, questionType string) (*assist.QuestionResult, error)
}

// Handler serves the session lifecycle endpoints.
type Handler struct {
	consultSvc ConsultService
}

// New creates the session handler.
func New(consultSvc ConsultService) *Handler {
	return &Handler{consultSvc: consultSvc}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(sessionRouter chi.Router) {
		sessionRouter.Post("/start", h.handleStart)
		sessionRouter.Route("/{sessionID}", func(idRouter chi.Router) {
			idRouter.Put("/context", h.handleUpdateContext)
			idRouter.Get("/context", h.handleGetContext)
			idRouter.Post("/end", h.handleEnd)
			idRouter.Get("/events", h.handleEvents)
			idRouter.Get("/live", h.handleLive)
		})
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DoctorID    string `json:"doctorId"`
		PatientName string `json:"patientName"`
		SessionType string `json:"sessionType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.consultSvc.StartSession(r.Context(), payload.DoctorID, payload.PatientName, payload.SessionType)
	if err != nil {
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"sessionId": session.ID,
		"status":    session.Status,
		"message":   "Session started successfully",
	})
}

func (h *Handler) handleUpdateContext(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Context        string   `json:"context"`
		MedicalHistory []string `json:"medicalHistory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.consultSvc.UpdateContext(r.Context(), sessionID, payload.Context, payload.MedicalHistory); err != nil {
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Context updated successfully",
	})
}

func (h *Handler) handleGetContext(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.consultSvc.GetContext(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId":      session.ID,
		"status":         session.Status,
		"context":        session.Context,
		"medicalHistory": session.MedicalHistory,
		"transcript":     session.Transcript,
		"questions":      session.QuestionLog,
	})
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	summary, err := h.consultSvc.EndSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": summary,
		"message": "Session ended successfully",
	})
}

// statusForError maps orchestrator errors onto the HTTP taxonomy:
// validation 400, unknown session 404, state conflict 409, missing
// capability 503, everything else 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, consultservice.ErrDoctorRequired),
		errors.Is(err, consultservice.ErrPatientRequired):
		return http.StatusBadRequest
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
