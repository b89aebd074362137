package recognizer

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/pkg/metrics"
)

// OpenAIRecognizer is the OpenAI-backed recognizer.
type OpenAIRecognizer struct {
	client *openai.Client
}

// NewOpenAIRecognizer creates a new OpenAI recognizer.
func NewOpenAIRecognizer(apiKey string) (*OpenAIRecognizer, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(apiKey)

	return &OpenAIRecognizer{
		client: client,
	}, nil
}

// Name returns the provider name.
func (r *OpenAIRecognizer) Name() string {
	return "openai"
}

// IsConfigured reports whether the provider can be called.
func (r *OpenAIRecognizer) IsConfigured() bool {
	return r != nil && r.client != nil
}

// Recognize classifies an utterance into intents and entities.
func (r *OpenAIRecognizer) Recognize(ctx context.Context, text string) (*model.RecognitionResult, error) {
	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: recognitionInstruction + text,
			},
		},
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		metrics.RecordRecognition(r.Name(), "error", time.Since(start).Seconds())
		return nil, err
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	result, err := parseResult(text, content)
	if err != nil {
		metrics.RecordRecognition(r.Name(), "error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordRecognition(r.Name(), "success", time.Since(start).Seconds())
	return result, nil
}
