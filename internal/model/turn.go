// Package model defines data structures for the matching platform.
package model

import (
	"time"
)

// Role represents the role of a turn author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MatchSummary is an opaque matched-user summary attached to a finished turn.
// Only the user ID is meaningful to this service.
type MatchSummary struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Blurb  string `json:"blurb,omitempty"`
}

// TurnMetadata carries per-turn annotations. Only assistant turns carry it.
// The decision flags are mirrored here for wire compatibility with older
// clients; the authoritative flag is Conversation.Phase.
type TurnMetadata struct {
	Matches                     []MatchSummary `json:"matches,omitempty"`
	AwaitingFilterDecision      bool           `json:"awaiting_filter_decision,omitempty"`
	AwaitingFilterClarification bool           `json:"awaiting_filter_clarification,omitempty"`
	PendingFilters              *FilterSet     `json:"pending_filters,omitempty"`
	Trip                        *TripRequest   `json:"trip,omitempty"`
}

// Turn is one message in a conversation.
type Turn struct {
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	Metadata  *TurnMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// HasMatches reports whether match results were already attached to this turn.
func (t *Turn) HasMatches() bool {
	return t.Metadata != nil && len(t.Metadata.Matches) > 0
}

// FinishedTrip returns the finished trip payload carried by this turn, if any.
func (t *Turn) FinishedTrip() *TripRequest {
	if t.Metadata == nil {
		return nil
	}
	return t.Metadata.Trip
}
