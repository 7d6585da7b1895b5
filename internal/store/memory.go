package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/swellyo/matching-platform/internal/model"
)

// MemoryStore keeps conversations in process memory. Used by tests and
// single-node development runs.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string][]byte)}
}

// Load retrieves a conversation by id.
func (s *MemoryStore) Load(ctx context.Context, conversationID string) (*model.Conversation, error) {
	s.mu.RLock()
	data, ok := s.convs[conversationID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Save stores the full conversation record, replacing any previous value.
func (s *MemoryStore) Save(ctx context.Context, conv *model.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.convs[conv.ID] = data
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
