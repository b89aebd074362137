package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tripware/travel-skill/internal/dialog"
	natsclient "github.com/tripware/travel-skill/internal/nats"
)

// DefaultBucket is the JetStream key-value bucket for dialog state.
const DefaultBucket = "dialog_state"

// NATSStore persists dialog state in a JetStream key-value bucket, keyed by
// conversation id. Bucket TTL handles stale-conversation reclamation.
type NATSStore struct {
	kv jetstream.KeyValue
}

// NewNATSStore binds to the dialog-state bucket, creating it if needed.
func NewNATSStore(ctx context.Context, client *natsclient.Client, bucket string) (*NATSStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	js := client.JetStream()
	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		History:     1,
		Description: "Per-conversation dialog stacks",
	})
	if err != nil {
		kv, err = js.KeyValue(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to bind dialog state bucket: %w", err)
		}
	}

	return &NATSStore{kv: kv}, nil
}

// Load returns the dialog state for a conversation, or an empty state when
// none is stored.
func (s *NATSStore) Load(ctx context.Context, conversationID string) (*dialog.DialogState, error) {
	entry, err := s.kv.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return &dialog.DialogState{}, nil
		}
		return nil, fmt.Errorf("failed to load dialog state: %w", err)
	}

	var st dialog.DialogState
	if err := json.Unmarshal(entry.Value(), &st); err != nil {
		return nil, fmt.Errorf("failed to decode dialog state: %w", err)
	}
	return &st, nil
}

// Save stores the dialog state for a conversation.
func (s *NATSStore) Save(ctx context.Context, conversationID string, st *dialog.DialogState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode dialog state: %w", err)
	}

	if _, err := s.kv.Put(ctx, conversationID, data); err != nil {
		return fmt.Errorf("failed to save dialog state: %w", err)
	}
	return nil
}

// Clear removes the dialog state for a conversation.
func (s *NATSStore) Clear(ctx context.Context, conversationID string) error {
	if err := s.kv.Delete(ctx, conversationID); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to clear dialog state: %w", err)
	}
	return nil
}
