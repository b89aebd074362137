// Package recognizer provides intent recognition client interfaces and
// implementations.
package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tripware/travel-skill/internal/model"
)

// Recognizer is the interface for language-understanding providers.
type Recognizer interface {
	// Recognize classifies an utterance into intents and entities.
	Recognize(ctx context.Context, text string) (*model.RecognitionResult, error)

	// IsConfigured reports whether the provider can be called.
	IsConfigured() bool

	// Name returns the provider name.
	Name() string
}

// Provider is the type of recognition provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a new recognizer client based on provider.
func NewClient(provider Provider, apiKey string) (Recognizer, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicRecognizer(apiKey)
	case ProviderOpenAI:
		return NewOpenAIRecognizer(apiKey)
	default:
		return NewAnthropicRecognizer(apiKey)
	}
}

// recognitionInstruction asks the model for the conversation-analysis wire
// shape the rest of the skill consumes.
const recognitionInstruction = `You are the language understanding layer of a flight booking assistant.
Classify the user utterance into exactly one of these intents: BookFlight, GetWeather, Cancel, None.
Extract entities with categories "Destination" and "Date" when present.
Respond with only a JSON object of this shape, no prose and no code fences:
{"topIntent":"BookFlight","intents":[{"category":"BookFlight","confidenceScore":0.98}],"entities":[{"category":"Destination","text":"Berlin","confidenceScore":0.95},{"category":"Date","text":"2024-09-01","confidenceScore":0.9,"resolutions":[{"resolutionKind":"DateTimeResolution","timex":"2024-09-01","value":"2024-09-01"}]}]}
For date ranges use resolutionKind "TemporalSpanResolution" with "begin" and "end".
Utterance: `

// wireResult is the JSON shape emitted by the model.
type wireResult struct {
	TopIntent string `json:"topIntent"`
	Intents   []struct {
		Category        string  `json:"category"`
		ConfidenceScore float32 `json:"confidenceScore"`
	} `json:"intents"`
	Entities []model.Entity `json:"entities"`
}

// parseResult decodes the model output into a RecognitionResult.
func parseResult(text, raw string) (*model.RecognitionResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var wire wireResult
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("failed to decode recognition payload: %w", err)
	}

	result := &model.RecognitionResult{
		Text:     text,
		Top:      wire.TopIntent,
		Intents:  make(map[string]model.IntentScore, len(wire.Intents)),
		Entities: wire.Entities,
	}
	for _, intent := range wire.Intents {
		if _, exists := result.Intents[intent.Category]; exists {
			continue
		}
		result.Intents[intent.Category] = model.IntentScore{Score: intent.ConfidenceScore}
	}
	return result, nil
}
