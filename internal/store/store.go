// Package store persists conversation state.
package store

import (
	"context"
	"errors"

	"github.com/swellyo/matching-platform/internal/model"
)

// ErrNotFound is returned when a conversation id is unknown.
var ErrNotFound = errors.New("conversation not found")

// Store persists and retrieves whole conversations. There is no partial
// update: callers read-modify-write the full record, and writes are
// last-writer-wins at conversation-id granularity. Concurrent turns on the
// same conversation id can drop one side's update; this is a documented gap,
// not a supported mode.
type Store interface {
	Load(ctx context.Context, conversationID string) (*model.Conversation, error)
	Save(ctx context.Context, conv *model.Conversation) error
	Close() error
}
