// Package questions wraps the follow-up question generator. The prompt is
// built from the accumulated transcript plus the latest utterance and the
// model reply is parsed as strict JSON.
package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
)

// DefaultQuestionType is used when the caller gives no hint.
const DefaultQuestionType = "open"

// ErrMalformedResponse marks a generator reply that could not be parsed.
// A parse failure is never coerced into empty results.
var ErrMalformedResponse = errors.New("malformed generation response")

// Service runs the question-generation chain.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the generation chain against the given chat model.
func NewService(ctx context.Context, chatModel model.ChatModel) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(generationSystemPrompt),
		schema.UserMessage(generationUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile question chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Generate produces follow-up questions for the supplied prompt context.
func (s *Service) Generate(ctx context.Context, promptCtx *assist.PromptContext) (*assist.QuestionResult, error) {
	questionType := strings.TrimSpace(promptCtx.QuestionType)
	if questionType == "" {
		questionType = DefaultQuestionType
	}

	input := map[string]any{
		"utterance":     strings.TrimSpace(promptCtx.Utterance),
		"context":       strings.TrimSpace(promptCtx.Context),
		"question_type": questionType,
		"history":       strings.TrimSpace(promptCtx.History),
	}

	reply, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("question generation call: %w", err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	return parseGeneration(reply.Content)
}

// parseGeneration extracts the JSON object from the model reply. The
// question count is tolerated at any length, including zero, but a
// missing or undecodable object is an error.
func parseGeneration(content string) (*assist.QuestionResult, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: missing json object", ErrMalformedResponse)
	}

	result := &assist.QuestionResult{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if result.Questions == nil {
		result.Questions = []string{}
	}
	if result.MedicalInsights == nil {
		result.MedicalInsights = []string{}
	}
	return result, nil
}
