// Package consult implements the session lifecycle: create, transcribe,
// generate follow-ups, update context and end with a summary. External
// model calls run outside the store lock; the resulting mutation is
// applied atomically and re-checks the active guard.
package consult

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
)

var (
	ErrDoctorRequired  = errors.New("doctorId is required")
	ErrPatientRequired = errors.New("patientName is required")
	// ErrSessionEnded is the state-conflict error: the session exists but
	// is no longer active.
	ErrSessionEnded = errors.New("session already ended")
	// ErrAssistUnavailable means the required model adapter was not
	// configured at startup.
	ErrAssistUnavailable = errors.New("assist service unavailable")
)

// DefaultSessionType mirrors the audio-first consultation flow.
const DefaultSessionType = "audio"

// Transcriber converts raw audio into a normalized transcription result.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*assist.TranscriptionResult, error)
}

// QuestionGenerator proposes follow-up questions for a prompt context.
type QuestionGenerator interface {
	Generate(ctx context.Context, promptCtx *assist.PromptContext) (*assist.QuestionResult, error)
}

// SummaryArchive persists summaries of ended sessions.
type SummaryArchive interface {
	SaveSummary(ctx context.Context, summary consultmodel.Summary) error
}

// Service orchestrates session state around the adapters. transcriber,
// generator and archive may be nil when the corresponding capability is
// not configured.
type Service struct {
	store       consultmodel.Store
	transcriber Transcriber
	generator   QuestionGenerator
	archive     SummaryArchive
	now         func() time.Time
}

// NewService wires the orchestrator.
func NewService(store consultmodel.Store, transcriber Transcriber, generator QuestionGenerator, archive SummaryArchive) *Service {
	return &Service{
		store:       store,
		transcriber: transcriber,
		generator:   generator,
		archive:     archive,
		now:         time.Now,
	}
}

// StartSession validates the required fields and registers a fresh active
// session.
func (s *Service) StartSession(_ context.Context, doctorID, patientName, sessionType string) (consultmodel.Session, error) {
	if strings.TrimSpace(doctorID) == "" {
		return consultmodel.Session{}, ErrDoctorRequired
	}
	if strings.TrimSpace(patientName) == "" {
		return consultmodel.Session{}, ErrPatientRequired
	}
	if strings.TrimSpace(sessionType) == "" {
		sessionType = DefaultSessionType
	}

	session := consultmodel.Session{
		ID:             uuid.NewString(),
		DoctorID:       doctorID,
		PatientName:    patientName,
		SessionType:    sessionType,
		Status:         consultmodel.StatusActive,
		StartTime:      s.now().UTC(),
		MedicalHistory: []string{},
		QuestionLog:    []consultmodel.QuestionRecord{},
	}

	if err := s.store.Create(session); err != nil {
		return consultmodel.Session{}, err
	}
	return session, nil
}

// IngestTranscript transcribes the audio and appends the text to the
// session transcript. Adapter failures leave the session untouched.
func (s *Service) IngestTranscript(ctx context.Context, id string, audio []byte, mimeType string) (*assist.TranscriptionResult, error) {
	if s.transcriber == nil {
		return nil, ErrAssistUnavailable
	}

	session, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Status != consultmodel.StatusActive {
		return nil, ErrSessionEnded
	}

	result, err := s.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return nil, err
	}

	// The session may have ended while the model call was in flight.
	if _, err := s.store.Update(id, func(session *consultmodel.Session) error {
		if session.Status != consultmodel.StatusActive {
			return ErrSessionEnded
		}
		session.Transcript = consultmodel.AppendChunk(session.Transcript, result.Transcript)
		return nil
	}); err != nil {
		return nil, err
	}

	log.Printf("[consult] transcript ingested session=%s language=%s chars=%d", id, result.Language, len(result.Transcript))
	return result, nil
}

// RequestFollowUps generates follow-up questions from the accumulated
// transcript plus the supplied chunk, then commits the chunk append and
// the question record in one atomic update. The caller-supplied context
// feeds the prompt only; it is not merged into the session.
func (s *Service) RequestFollowUps(ctx context.Context, id, transcriptChunk, contextText, questionType string) (*assist.QuestionResult, error) {
	if s.generator == nil {
		return nil, ErrAssistUnavailable
	}

	session, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Status != consultmodel.StatusActive {
		return nil, ErrSessionEnded
	}

	history := consultmodel.AppendChunk(session.Transcript, transcriptChunk)
	result, err := s.generator.Generate(ctx, &assist.PromptContext{
		Utterance:    transcriptChunk,
		Context:      contextText,
		QuestionType: questionType,
		History:      history,
	})
	if err != nil {
		return nil, err
	}

	record := consultmodel.QuestionRecord{
		Timestamp:          s.now().UTC(),
		Transcript:         transcriptChunk,
		GeneratedQuestions: result.Questions,
		SuggestedQuestion:  result.SuggestedQuestion,
		EmotionAlert:       result.EmotionAlert,
	}
	if _, err := s.store.Update(id, func(session *consultmodel.Session) error {
		if session.Status != consultmodel.StatusActive {
			return ErrSessionEnded
		}
		session.Transcript = consultmodel.AppendChunk(session.Transcript, transcriptChunk)
		session.QuestionLog = append(session.QuestionLog, record)
		return nil
	}); err != nil {
		return nil, err
	}

	log.Printf("[consult] follow-ups generated session=%s questions=%d alert=%t", id, len(result.Questions), result.EmotionAlert)
	return result, nil
}

// UpdateContext replaces the clinical context and medical history
// wholesale. Permitted in any session status.
func (s *Service) UpdateContext(_ context.Context, id, contextText string, medicalHistory []string) error {
	if medicalHistory == nil {
		medicalHistory = []string{}
	}
	_, err := s.store.Update(id, func(session *consultmodel.Session) error {
		session.Context = contextText
		session.MedicalHistory = medicalHistory
		return nil
	})
	return err
}

// GetContext returns a snapshot of the session.
func (s *Service) GetContext(_ context.Context, id string) (consultmodel.Session, error) {
	return s.store.Get(id)
}

// EndSession transitions an active session to ended, stamps the end time
// and returns the summary. A second call is a state conflict and does not
// disturb the first summary.
func (s *Service) EndSession(ctx context.Context, id string) (consultmodel.Summary, error) {
	session, err := s.store.Update(id, func(session *consultmodel.Session) error {
		if session.Status != consultmodel.StatusActive {
			return ErrSessionEnded
		}
		end := s.now().UTC()
		session.Status = consultmodel.StatusEnded
		session.EndTime = &end
		return nil
	})
	if err != nil {
		return consultmodel.Summary{}, err
	}

	summary := BuildSummary(session)
	if s.archive != nil {
		// Archival is best effort; the session itself has already ended.
		if err := s.archive.SaveSummary(ctx, summary); err != nil {
			log.Printf("[consult] failed to archive summary session=%s: %v", id, err)
		}
	}

	log.Printf("[consult] session ended session=%s duration=%ds questions=%d", id, summary.TotalDuration, summary.TotalQuestions)
	return summary, nil
}
