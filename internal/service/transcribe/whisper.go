package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arogya-ai/consult-backend/internal/analysis/sentiment"
	"github.com/arogya-ai/consult-backend/internal/model/assist"
)

// WhisperEngine transcribes through the OpenAI audio endpoint. Whisper
// reports no sentiment, so the keyword analyzer fills that in.
type WhisperEngine struct {
	client *openai.Client
	model  string
}

// NewWhisperEngine builds an engine from an API key. baseURL may be empty;
// model defaults to whisper-1.
func NewWhisperEngine(apiKey, baseURL, model string) (*WhisperEngine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperEngine{client: openai.NewClientWithConfig(config), model: model}, nil
}

// Transcribe uploads the audio buffer and maps the verbose response onto
// the normalized result shape.
func (e *WhisperEngine) Transcribe(ctx context.Context, audio []byte, mimeType string) (*assist.TranscriptionResult, error) {
	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "utterance" + extensionForMime(mimeType),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper call: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty transcript", ErrMalformedResponse)
	}

	decision := sentiment.Analyze(text)
	return &assist.TranscriptionResult{
		Transcript: text,
		Language:   resp.Language,
		Confidence: confidenceFromSegments(resp.Segments),
		Sentiment: assist.Sentiment{
			Label: string(decision.Label),
			Score: decision.Score,
		},
	}, nil
}

// whisperSegment aliases the anonymous segment struct embedded in
// openai.AudioResponse, which exports no named type for it.
type whisperSegment = struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	Transient        bool    `json:"transient"`
}

// confidenceFromSegments averages per-segment log probabilities into a
// rough 0..1 score. Whisper exposes no direct confidence value.
func confidenceFromSegments(segments []whisperSegment) float64 {
	if len(segments) == 0 {
		return 0.8
	}
	total := 0.0
	for _, segment := range segments {
		total += math.Exp(segment.AvgLogprob)
	}
	return clamp01(total / float64(len(segments)))
}

func extensionForMime(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/webm":
		return ".webm"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	case "audio/ogg":
		return ".ogg"
	case "audio/flac":
		return ".flac"
	default:
		return ".wav"
	}
}
