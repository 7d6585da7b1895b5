package model

// Destination describes where the user wants to go. Country is always set on
// a finished trip when any destination was mentioned during the conversation.
type Destination struct {
	Country string  `json:"country"`
	State   *string `json:"state,omitempty"`
	Area    *string `json:"area,omitempty"`
}

// Preference priority bands. Scores are additive hints for the matching
// engine: 1-10 nice-to-have, 10-30 very helpful, 30-50 major advantage,
// 100 near-mandatory.
const (
	PriorityNiceToHave    = 10
	PriorityVeryHelpful   = 30
	PriorityMajorBenefit  = 50
	PriorityNearMandatory = 100
)

// Preference is a soft "prioritize" hint with a weight on the defined scale.
type Preference struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// TripRequest is the finished-state payload handed to the matching engine.
// It is never mutated after creation; consumers append match results to turn
// metadata instead.
type TripRequest struct {
	Destination Destination  `json:"destination"`
	Purpose     string       `json:"purpose,omitempty"`
	Filters     FilterSet    `json:"filters"`
	Prioritize  []Preference `json:"prioritize,omitempty"`
}

// TurnResponse is the per-turn response returned to API callers.
type TurnResponse struct {
	ConversationID string       `json:"conversation_id,omitempty"`
	Message        string       `json:"message"`
	Finished       bool         `json:"finished"`
	Trip           *TripRequest `json:"trip,omitempty"`
}
