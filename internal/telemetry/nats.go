package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	natsclient "github.com/tripware/travel-skill/internal/nats"
	"github.com/tripware/travel-skill/pkg/logger"
)

const (
	// StreamName is the name of the telemetry stream.
	StreamName = "SKILL_TELEMETRY"

	// SubjectPrefix is the prefix for all telemetry subjects.
	SubjectPrefix = "skill.telemetry"
)

// Event is the wire shape published for each telemetry event.
type Event struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NATSSink publishes telemetry events to JetStream.
type NATSSink struct {
	client *natsclient.Client
	logger *logger.Logger
}

// NewNATSSink creates a JetStream-backed telemetry sink.
func NewNATSSink(client *natsclient.Client, log *logger.Logger) *NATSSink {
	return &NATSSink{client: client, logger: log}
}

// EnsureStream ensures the telemetry stream exists with proper configuration.
func (s *NATSSink) EnsureStream(ctx context.Context) error {
	js := s.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Skill telemetry events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// TrackEvent publishes the event. Delivery is best-effort: failures are
// logged and never surfaced to the turn.
func (s *NATSSink) TrackEvent(ctx context.Context, name string, properties map[string]string) {
	event := Event{
		ID:         uuid.NewString(),
		Name:       name,
		Properties: properties,
		CreatedAt:  time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal telemetry event", zap.String("event", name), zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.%s", SubjectPrefix, name)
	if _, err := s.client.JetStream().Publish(ctx, subject, data); err != nil {
		s.logger.Warn("failed to publish telemetry event", zap.String("event", name), zap.Error(err))
	}
}
