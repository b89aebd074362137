package model

// Entity categories produced by the language-understanding service.
const (
	EntityCategoryDestination = "Destination"
	EntityCategoryDate        = "Date"
)

// Resolution kinds carried on a Date entity.
const (
	ResolutionKindDateTime     = "DateTimeResolution"
	ResolutionKindTemporalSpan = "TemporalSpanResolution"
)

// IntentScore holds the confidence for one recognized intent.
type IntentScore struct {
	Score float32 `json:"confidenceScore"`
}

// EntityResolution encodes a date/time value resolved from an entity.
// Begin and End are set for range resolutions only.
type EntityResolution struct {
	ResolutionKind string `json:"resolutionKind"`
	Timex          string `json:"timex,omitempty"`
	Value          string `json:"value,omitempty"`
	Begin          string `json:"begin,omitempty"`
	End            string `json:"end,omitempty"`
}

// Entity is one categorized span recognized in an utterance.
type Entity struct {
	Category    string             `json:"category"`
	Text        string             `json:"text"`
	Confidence  float32            `json:"confidenceScore"`
	Resolutions []EntityResolution `json:"resolutions,omitempty"`
}

// RecognitionResult is the output of the intent recognizer for one utterance.
type RecognitionResult struct {
	Text     string                 `json:"text"`
	Top      string                 `json:"topIntent"`
	Intents  map[string]IntentScore `json:"intents"`
	Entities []Entity               `json:"entities"`
}

// TopIntent returns the highest-scoring intent and its score. The
// service-reported top intent wins when present; otherwise the scan keeps
// the first strictly greater score so equal scores never displace an
// earlier intent.
func (r *RecognitionResult) TopIntent() (string, float32) {
	if r.Top != "" {
		if s, ok := r.Intents[r.Top]; ok {
			return r.Top, s.Score
		}
	}
	var name string
	var best float32 = -1
	for intent, score := range r.Intents {
		if score.Score > best {
			name = intent
			best = score.Score
		}
	}
	if name == "" {
		return "None", 0
	}
	return name, best
}
