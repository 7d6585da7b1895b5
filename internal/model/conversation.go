package model

import (
	"time"
)

// Phase is the turn-controller state of a conversation. It lives on the
// conversation record itself so exactly one decision flag can be active,
// instead of being inferred by scanning turn metadata.
type Phase string

const (
	PhaseNormal                      Phase = "normal"
	PhaseAwaitingFilterDecision      Phase = "awaiting_filter_decision"
	PhaseAwaitingFilterClarification Phase = "awaiting_filter_clarification"
)

// Conversation is the persisted state for one dialogue.
type Conversation struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	GroupID string `json:"group_id,omitempty"`

	Phase Phase  `json:"phase"`
	Turns []Turn `json:"turns"`

	// Filters is the accumulated filter set carried across turns.
	Filters FilterSet `json:"filters"`

	// PendingFilters holds a freshly extracted set while a replace-vs-add
	// clarification is outstanding.
	PendingFilters *FilterSet `json:"pending_filters,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LastTurn returns the most recent turn, or nil for an empty conversation.
func (c *Conversation) LastTurn() *Turn {
	if len(c.Turns) == 0 {
		return nil
	}
	return &c.Turns[len(c.Turns)-1]
}

// Append adds a turn stamped with the current time.
func (c *Conversation) Append(role Role, content string, meta *TurnMetadata) {
	c.Turns = append(c.Turns, Turn{
		Role:      role,
		Content:   content,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	})
}

// StartChatRequest begins a new conversation.
type StartChatRequest struct {
	Message string `json:"message"`
	GroupID string `json:"group_id,omitempty"`
}

// ContinueChatRequest sends a follow-up user message.
type ContinueChatRequest struct {
	Message string `json:"message"`
}

// AttachMatchesRequest attaches match results produced by the matching engine.
type AttachMatchesRequest struct {
	Matches          []MatchSummary `json:"matches"`
	DestinationLabel string         `json:"destination_label,omitempty"`
}

// ChatHistoryResponse returns the full turn list for a conversation.
type ChatHistoryResponse struct {
	ConversationID string    `json:"conversation_id"`
	Phase          Phase     `json:"phase"`
	Turns          []Turn    `json:"turns"`
	Filters        FilterSet `json:"filters"`
}
