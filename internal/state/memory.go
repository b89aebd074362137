// Package state persists per-conversation dialog stacks.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tripware/travel-skill/internal/dialog"
)

// MemoryStore keeps dialog state in process memory. Suitable for a single
// instance and for tests; production deployments use the NATS-backed store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

// Load returns the dialog state for a conversation, or an empty state when
// none is stored.
func (s *MemoryStore) Load(ctx context.Context, conversationID string) (*dialog.DialogState, error) {
	s.mu.RLock()
	data, ok := s.states[conversationID]
	s.mu.RUnlock()

	if !ok {
		return &dialog.DialogState{}, nil
	}

	var st dialog.DialogState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode dialog state: %w", err)
	}
	return &st, nil
}

// Save stores the dialog state for a conversation.
func (s *MemoryStore) Save(ctx context.Context, conversationID string, st *dialog.DialogState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode dialog state: %w", err)
	}

	s.mu.Lock()
	s.states[conversationID] = data
	s.mu.Unlock()
	return nil
}

// Clear removes the dialog state for a conversation.
func (s *MemoryStore) Clear(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.states, conversationID)
	s.mu.Unlock()
	return nil
}
