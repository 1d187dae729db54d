package session

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
	"github.com/arogya-ai/consult-backend/pkg/utils"
)

const eventsInterval = 5 * time.Second

// handleEvents streams periodic session snapshots over SSE so a
// dashboard can follow transcript growth and question activity.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	session, err := h.consultSvc.GetContext(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	utils.SetupSSEHeaders(w)
	log.Printf("[events] opening stream session=%s", sessionID)

	sendSnapshot := func() {
		utils.SendSSEEvent(w, flusher, "snapshot", map[string]any{
			"sessionId":        session.ID,
			"status":           session.Status,
			"transcriptLength": len(session.Transcript),
			"questionCount":    len(session.QuestionLog),
			"time":             time.Now().UTC().Format(time.RFC3339),
		})
	}
	// An ended session will never produce another change, so the stream
	// finishes with a terminal event instead of ticking idle.
	sendEnded := func() {
		utils.SendSSEEvent(w, flusher, "ended", map[string]string{"sessionId": session.ID})
		log.Printf("[events] closing stream session=%s", sessionID)
	}

	sendSnapshot()
	if session.Status == consultmodel.StatusEnded {
		sendEnded()
		return
	}

	ctx := r.Context()
	ticker := time.NewTicker(eventsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[events] closing stream session=%s", sessionID)
			return
		case <-ticker.C:
			session, err = h.consultSvc.GetContext(ctx, sessionID)
			if err != nil {
				utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
				return
			}
			sendSnapshot()
			if session.Status == consultmodel.StatusEnded {
				sendEnded()
				return
			}
		}
	}
}
