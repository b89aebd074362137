package recognizer

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/pkg/metrics"
)

// AnthropicRecognizer is the Anthropic-backed recognizer.
type AnthropicRecognizer struct {
	client *anthropic.Client
	apiKey string
}

// NewAnthropicRecognizer creates a new Anthropic recognizer.
func NewAnthropicRecognizer(apiKey string) (*AnthropicRecognizer, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicRecognizer{
		client: client,
		apiKey: apiKey,
	}, nil
}

// Name returns the provider name.
func (r *AnthropicRecognizer) Name() string {
	return "anthropic"
}

// IsConfigured reports whether the provider can be called.
func (r *AnthropicRecognizer) IsConfigured() bool {
	return r != nil && r.client != nil && r.apiKey != ""
}

// Recognize classifies an utterance into intents and entities.
func (r *AnthropicRecognizer) Recognize(ctx context.Context, text string) (*model.RecognitionResult, error) {
	start := time.Now()

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F("claude-3-5-haiku-20241022"),
		MaxTokens: anthropic.F(int64(512)),
		Messages: anthropic.F([]anthropic.MessageParam{
			{
				Role: anthropic.F(anthropic.MessageParamRoleUser),
				Content: anthropic.F([]anthropic.ContentBlockParamUnion{
					anthropic.TextBlockParam{
						Type: anthropic.F(anthropic.TextBlockParamTypeText),
						Text: anthropic.F(recognitionInstruction + text),
					},
				}),
			},
		}),
	})
	if err != nil {
		metrics.RecordRecognition(r.Name(), "error", time.Since(start).Seconds())
		return nil, err
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}

	result, err := parseResult(text, content)
	if err != nil {
		metrics.RecordRecognition(r.Name(), "error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordRecognition(r.Name(), "success", time.Since(start).Seconds())
	return result, nil
}
