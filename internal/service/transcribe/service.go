// Package transcribe wraps the external speech-to-text capability behind
// a small engine interface so the orchestrator can run against fakes.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
)

// DefaultMaxAudioBytes caps uploads at 10 MiB unless configured otherwise.
const DefaultMaxAudioBytes = 10 << 20

var (
	ErrAudioRequired        = errors.New("audio payload is required")
	ErrAudioTooLarge        = errors.New("audio payload exceeds size limit")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrMalformedResponse marks an engine reply that could not be parsed,
	// as opposed to the call itself failing.
	ErrMalformedResponse = errors.New("malformed transcription response")
)

// Engine performs the actual model call.
type Engine interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*assist.TranscriptionResult, error)
}

// Service validates audio payloads before handing them to the engine and
// normalizes whatever comes back.
type Service struct {
	engine   Engine
	maxBytes int64
}

// NewService wires an engine with an upload size limit. A non-positive
// limit falls back to DefaultMaxAudioBytes.
func NewService(engine Engine, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAudioBytes
	}
	return &Service{engine: engine, maxBytes: maxBytes}
}

// MaxBytes reports the configured upload limit.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Transcribe converts raw audio into a normalized transcription result.
// Validation failures never reach the engine.
func (s *Service) Transcribe(ctx context.Context, audio []byte, mimeType string) (*assist.TranscriptionResult, error) {
	if len(audio) == 0 {
		return nil, ErrAudioRequired
	}
	if int64(len(audio)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrAudioTooLarge, len(audio))
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "audio/") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mimeType)
	}

	result, err := s.engine.Transcribe(ctx, audio, mimeType)
	if err != nil {
		return nil, err
	}

	normalizeResult(result)
	return result, nil
}

func normalizeResult(result *assist.TranscriptionResult) {
	result.Transcript = strings.TrimSpace(result.Transcript)
	result.Confidence = clamp01(result.Confidence)
	result.Sentiment.Score = clamp01(result.Sentiment.Score)
	if result.Sentiment.Label == "" {
		result.Sentiment.Label = "neutral"
	}
}

func clamp01(val float64) float64 {
	if val < 0 {
		return 0
	}
	if val > 1 {
		return 1
	}
	return val
}
