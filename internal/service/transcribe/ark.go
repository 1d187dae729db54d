package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
)

// The model is asked for strict JSON so the reply can be parsed rather
// than trusted as-is. Field names match assist.TranscriptionResult.
const transcribeInstruction = "Transcribe the following audio to text. " +
	"The audio contains a medical consultation conversation in Hindi and English. " +
	"Return a single JSON object and nothing else, with fields: " +
	"transcript (the transcribed text), " +
	"language (primary language code such as hi or en), " +
	"confidence (number between 0 and 1), " +
	"sentiment (object with label being one of positive/negative/neutral/confused/distressed " +
	"and score between 0 and 1)."

// ArkEngine transcribes by sending the audio inline to a multimodal chat
// model and parsing the JSON it returns.
type ArkEngine struct {
	chatModel model.ChatModel
}

// NewArkEngine wraps an existing chat model instance.
func NewArkEngine(chatModel model.ChatModel) (*ArkEngine, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	return &ArkEngine{chatModel: chatModel}, nil
}

// Transcribe sends the audio as a base64 data URL part next to the
// instruction text and decodes the model's JSON reply.
func (e *ArkEngine) Transcribe(ctx context.Context, audio []byte, mimeType string) (*assist.TranscriptionResult, error) {
	encoded := base64.StdEncoding.EncodeToString(audio)
	message := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{
				Type: schema.ChatMessagePartTypeText,
				Text: transcribeInstruction,
			},
			{
				Type: schema.ChatMessagePartTypeAudioURL,
				AudioURL: &schema.ChatMessageAudioURL{
					URL:      fmt.Sprintf("data:%s;base64,%s", mimeType, encoded),
					MIMEType: mimeType,
				},
			},
		},
	}

	reply, err := e.chatModel.Generate(ctx, []*schema.Message{message})
	if err != nil {
		return nil, fmt.Errorf("transcription model call: %w", err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	return parseTranscription(reply.Content)
}

// parseTranscription extracts the JSON object from a model reply that may
// be wrapped in markdown fences or prose.
func parseTranscription(content string) (*assist.TranscriptionResult, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: missing json object", ErrMalformedResponse)
	}

	result := &assist.TranscriptionResult{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Transcript == "" {
		return nil, fmt.Errorf("%w: missing transcript field", ErrMalformedResponse)
	}
	return result, nil
}
