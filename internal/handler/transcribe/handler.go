package transcribe

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
	consultservice "github.com/arogya-ai/consult-backend/internal/service/consult"
	transcribesvc "github.com/arogya-ai/consult-backend/internal/service/transcribe"
	"github.com/arogya-ai/consult-backend/pkg/utils"
)

// multipart parsing headroom on top of the audio size limit
const formOverhead = 1 << 20

// TranscribeService performs stateless transcription.
type TranscribeService interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*assist.TranscriptionResult, error)
	MaxBytes() int64
}

// Ingestor appends transcribed audio to a session.
type Ingestor interface {
	IngestTranscript(ctx context.Context, id string, audio []byte, mimeType string) (*assist.TranscriptionResult, error)
}

// Handler serves the audio upload endpoints.
type Handler struct {
	transcribeSvc TranscribeService
	consultSvc    Ingestor
}

// New creates the transcription handler.
func New(transcribeSvc TranscribeService, consultSvc Ingestor) *Handler {
	return &Handler{transcribeSvc: transcribeSvc, consultSvc: consultSvc}
}

// RegisterRoutes mounts the transcription routes. The bare endpoint
// transcribes without touching any session; the session-scoped variant
// also appends to the session transcript.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.handleTranscribe)
	r.Post("/transcribe/{sessionID}", h.handleTranscribeWithSession)
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	audio, mimeType, ok := h.readAudio(w, r)
	if !ok {
		return
	}

	result, err := h.transcribeSvc.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		log.Printf("[transcribe] failed: %v", err)
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	h.respondResult(w, "", result)
}

func (h *Handler) handleTranscribeWithSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	audio, mimeType, ok := h.readAudio(w, r)
	if !ok {
		return
	}

	result, err := h.consultSvc.IngestTranscript(r.Context(), sessionID, audio, mimeType)
	if err != nil {
		log.Printf("[transcribe] ingest failed session=%s: %v", sessionID, err)
		utils.RespondError(w, statusForError(err), err.Error())
		return
	}

	h.respondResult(w, sessionID, result)
}

// readAudio pulls the uploaded audio field out of the multipart form and
// removes the form's temp files before returning.
func (h *Handler) readAudio(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	maxBytes := h.transcribeSvc.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return nil, "", false
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return nil, "", false
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return nil, "", false
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(mimeType), "audio/") {
		mimeType = inferAudioMime(header.Filename)
	}
	return audio, mimeType, true
}

func (h *Handler) respondResult(w http.ResponseWriter, sessionID string, result *assist.TranscriptionResult) {
	payload := map[string]any{
		"transcript": result.Transcript,
		"language":   result.Language,
		"confidence": result.Confidence,
		"sentiment":  result.Sentiment,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if sessionID != "" {
		payload["sessionId"] = sessionID
	}
	utils.RespondJSON(w, http.StatusOK, payload)
}

// inferAudioMime falls back to the filename extension when the part
// carries no usable content type.
func inferAudioMime(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".webm":
		return "audio/webm"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/wav"
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, transcribesvc.ErrAudioRequired),
		errors.Is(err, transcribesvc.ErrAudioTooLarge),
		errors.Is(err, transcribesvc.ErrUnsupportedMediaType):
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
