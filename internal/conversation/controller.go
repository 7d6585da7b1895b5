// Package conversation implements the turn controller: the state machine
// that drives a dialogue from first message to a finished trip request.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swellyo/matching-platform/internal/extract"
	"github.com/swellyo/matching-platform/internal/filter"
	"github.com/swellyo/matching-platform/internal/geo"
	"github.com/swellyo/matching-platform/internal/intent"
	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/internal/model"
	"github.com/swellyo/matching-platform/internal/repair"
	"github.com/swellyo/matching-platform/internal/store"
	"github.com/swellyo/matching-platform/pkg/logger"
	"github.com/swellyo/matching-platform/pkg/metrics"
)

var (
	// ErrDecisionPending rejects match attachment while a filter decision or
	// clarification is still unresolved. At most one flag is active per
	// conversation; a second one is refused rather than queued.
	ErrDecisionPending = errors.New("conversation has an unresolved filter decision")

	// ErrNoFinishedTurn means no finished payload exists to attach matches to.
	ErrNoFinishedTurn = errors.New("no finished turn without match results")
)

// Controller orchestrates conversations over a store, a completion client and
// the extraction/classification components.
type Controller struct {
	store      store.Store
	retry      *llm.RetryPolicy
	geo        *geo.Validator
	extractor  *extract.Extractor
	fallback   *extract.Fallback
	classifier *intent.Classifier
	logger     *logger.Logger
	chatModel  string
}

// NewController wires a controller.
func NewController(st store.Store, client llm.Client, validator *geo.Validator, chatModel string, log *logger.Logger) *Controller {
	return &Controller{
		store:      st,
		retry:      llm.NewRetryPolicy(client),
		geo:        validator,
		extractor:  extract.NewExtractor(client, validator, log),
		fallback:   extract.NewFallback(validator),
		classifier: intent.NewClassifier(client),
		logger:     log,
		chatModel:  chatModel,
	}
}

// Start creates a conversation with the system persona turn and processes the
// opening user message.
func (c *Controller) Start(ctx context.Context, ownerID, groupID, message string) (*model.TurnResponse, error) {
	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:        uuid.Must(uuid.NewV7()).String(),
		OwnerID:   ownerID,
		GroupID:   groupID,
		Phase:     model.PhaseNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	conv.Append(model.RoleSystem, systemPrompt, nil)
	metrics.ConversationsTotal.Inc()

	return c.runNormalTurn(ctx, conv, message)
}

// Continue processes a follow-up user message according to the conversation
// phase.
func (c *Controller) Continue(ctx context.Context, conversationID, message string) (*model.TurnResponse, error) {
	conv, err := c.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	metrics.TurnsTotal.WithLabelValues(string(conv.Phase)).Inc()
	switch conv.Phase {
	case model.PhaseAwaitingFilterDecision:
		return c.runDecisionTurn(ctx, conv, message)
	case model.PhaseAwaitingFilterClarification:
		return c.runClarificationTurn(ctx, conv, message)
	default:
		return c.runNormalTurn(ctx, conv, message)
	}
}

// History returns the stored conversation.
func (c *Controller) History(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return c.store.Load(ctx, conversationID)
}

// AttachMatches attaches match results to the most recent finished turn that
// has none yet, then arms the filter-decision flow.
func (c *Controller) AttachMatches(ctx context.Context, conversationID string, matches []model.MatchSummary, destinationLabel string) error {
	conv, err := c.store.Load(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Phase != model.PhaseNormal {
		return ErrDecisionPending
	}

	attached := false
	for i := len(conv.Turns) - 1; i >= 0; i-- {
		t := &conv.Turns[i]
		if t.Role != model.RoleAssistant || t.FinishedTrip() == nil || t.HasMatches() {
			continue
		}
		t.Metadata.Matches = matches
		attached = true
		break
	}
	if !attached {
		return ErrNoFinishedTurn
	}

	prompt := decisionPrompt
	if destinationLabel != "" {
		prompt = fmt.Sprintf("Found some matches for %s! ", destinationLabel) + prompt
	}
	conv.Append(model.RoleAssistant, prompt, &model.TurnMetadata{AwaitingFilterDecision: true})
	conv.Phase = model.PhaseAwaitingFilterDecision
	conv.UpdatedAt = time.Now().UTC()

	return c.store.Save(ctx, conv)
}

// runNormalTurn is the default flow: extract, accumulate, converse, persist.
func (c *Controller) runNormalTurn(ctx context.Context, conv *model.Conversation, message string) (*model.TurnResponse, error) {
	history := conv.Turns
	conv.Append(model.RoleUser, message, nil)

	extraction := c.extractTurn(ctx, conv, history, message)
	conv.Filters = filter.Merge(conv.Filters, extraction.Filters, intent.Add)

	parsed, raw, err := c.converse(ctx, conv, message, extraction)
	if err != nil {
		return nil, err
	}

	var trip *model.TripRequest
	if parsed.Finished {
		trip = c.finalizeTrip(ctx, conv, parsed.Trip)
	}

	var meta *model.TurnMetadata
	if trip != nil {
		meta = &model.TurnMetadata{Trip: trip}
	}
	conv.Append(model.RoleAssistant, raw, meta)
	conv.UpdatedAt = time.Now().UTC()
	if err := c.store.Save(ctx, conv); err != nil {
		return nil, err
	}

	return &model.TurnResponse{
		ConversationID: conv.ID,
		Message:        parsed.Message,
		Finished:       trip != nil,
		Trip:           trip,
	}, nil
}

// runDecisionTurn resolves the prompt issued after match attachment. The
// classifier and the extractor only depend on the incoming utterance and
// prior history, so they run concurrently.
func (c *Controller) runDecisionTurn(ctx context.Context, conv *model.Conversation, message string) (*model.TurnResponse, error) {
	history := conv.Turns
	conv.Append(model.RoleUser, message, nil)

	var (
		wg         sync.WaitGroup
		label      intent.Intent
		extraction *model.ExtractionResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		label = c.classifier.Classify(ctx, message, history)
	}()
	go func() {
		defer wg.Done()
		extraction = c.extractTurn(ctx, conv, history, message)
	}()
	wg.Wait()

	switch label {
	case intent.More:
		// Keep the accumulated set; newly extracted filters are ignored.
		return c.resolveDecision(ctx, conv, conv.Filters, ackMore)

	case intent.Replace, intent.Add:
		merged := filter.Merge(conv.Filters, extraction.Filters, label)
		ack := ackAdd
		if label == intent.Replace {
			ack = ackReplace
		}
		return c.resolveDecision(ctx, conv, merged, ack)

	default: // unclear
		if !extraction.Filters.IsEmpty() {
			// New criteria are on the table; never guess replace-vs-add.
			pending := extraction.Filters.Clone()
			conv.PendingFilters = &pending
			conv.Phase = model.PhaseAwaitingFilterClarification
			conv.Append(model.RoleAssistant, clarificationPrompt,
				&model.TurnMetadata{AwaitingFilterClarification: true, PendingFilters: &pending})
		} else {
			// Nothing new to clarify; re-ask the original question.
			conv.Append(model.RoleAssistant, decisionPrompt,
				&model.TurnMetadata{AwaitingFilterDecision: true})
		}
		conv.UpdatedAt = time.Now().UTC()
		if err := c.store.Save(ctx, conv); err != nil {
			return nil, err
		}
		return &model.TurnResponse{
			ConversationID: conv.ID,
			Message:        conv.LastTurn().Content,
		}, nil
	}
}

// runClarificationTurn resolves the explicit replace-vs-add question; unclear
// re-asks rather than defaulting.
func (c *Controller) runClarificationTurn(ctx context.Context, conv *model.Conversation, message string) (*model.TurnResponse, error) {
	history := conv.Turns
	conv.Append(model.RoleUser, message, nil)

	label := c.classifier.ClassifyClarification(ctx, message, history)
	if label == intent.Unclear {
		pending := conv.PendingFilters
		conv.Append(model.RoleAssistant, clarificationPrompt,
			&model.TurnMetadata{AwaitingFilterClarification: true, PendingFilters: pending})
		conv.UpdatedAt = time.Now().UTC()
		if err := c.store.Save(ctx, conv); err != nil {
			return nil, err
		}
		return &model.TurnResponse{
			ConversationID: conv.ID,
			Message:        clarificationPrompt,
		}, nil
	}

	var pending model.FilterSet
	if conv.PendingFilters != nil {
		pending = *conv.PendingFilters
	}
	merged := filter.Merge(conv.Filters, pending, label)
	conv.PendingFilters = nil

	ack := ackAdd
	if label == intent.Replace {
		ack = ackReplace
	}
	return c.resolveDecision(ctx, conv, merged, ack)
}

// resolveDecision ends a decision/clarification flow: the accumulated set is
// updated, the phase returns to normal and a finished response re-triggers
// matching with the effective filters.
func (c *Controller) resolveDecision(ctx context.Context, conv *model.Conversation, filters model.FilterSet, ack string) (*model.TurnResponse, error) {
	conv.Filters = filters
	conv.PendingFilters = nil
	conv.Phase = model.PhaseNormal

	trip := c.finalizeTrip(ctx, conv, nil)
	conv.Append(model.RoleAssistant, ack, &model.TurnMetadata{Trip: trip})
	conv.UpdatedAt = time.Now().UTC()
	if err := c.store.Save(ctx, conv); err != nil {
		return nil, err
	}

	return &model.TurnResponse{
		ConversationID: conv.ID,
		Message:        ack,
		Finished:       true,
		Trip:           trip,
	}, nil
}

// extractTurn runs the primary extractor and, when it comes back empty, the
// keyword fallback. history excludes the utterance itself.
func (c *Controller) extractTurn(ctx context.Context, conv *model.Conversation, history []model.Turn, message string) *model.ExtractionResult {
	dest := c.currentDestination(conv)
	result := c.extractor.Extract(ctx, message, dest, history)
	if result.Filters.IsEmpty() {
		if fb := c.fallback.Extract(ctx, message); !fb.Filters.IsEmpty() {
			fb.Unmappable = append(fb.Unmappable, result.Unmappable...)
			return fb
		}
	}
	return result
}

// converse produces the assistant's next turn with the bounded retry applied
// to non-structured output.
func (c *Controller) converse(ctx context.Context, conv *model.Conversation, message string, extraction *model.ExtractionResult) (repair.ParsedReply, string, error) {
	messages := make([]llm.ChatMessage, 0, len(conv.Turns)+3)
	for _, t := range conv.Turns {
		messages = append(messages, llm.ChatMessage{Role: string(t.Role), Content: t.Content})
	}
	if wantsDestinationReminder(message) {
		messages = append(messages, llm.ChatMessage{Role: "system", Content: destinationReminder})
	}
	if len(conv.Turns) >= formatReminderAfterTurns {
		messages = append(messages, llm.ChatMessage{Role: "system", Content: formatReminder})
	}
	if len(extraction.Unmappable) > 0 {
		// Unmappable criteria are context, not errors: the assistant moves on
		// without them instead of stalling.
		messages = append(messages, llm.ChatMessage{
			Role: "system",
			Content: "These criteria cannot be used as filters, acknowledge them naturally and continue: " +
				strings.Join(extraction.Unmappable, "; "),
		})
	}

	start := time.Now()
	resp, retried, err := c.retry.Complete(ctx, &llm.CompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		MaxTokens:   512,
		Temperature: 0.7,
		JSONMode:    true,
	}, func(r *llm.CompletionResponse) bool {
		return repair.Parse(r.Content).Structured
	})
	if err != nil {
		metrics.RecordLLMCall("chat", "error", time.Since(start).Seconds(), "", 0, 0)
		return repair.ParsedReply{}, "", fmt.Errorf("completion failed: %w", err)
	}
	if retried {
		metrics.LLMRetriesTotal.Inc()
	}
	metrics.RecordLLMCall("chat", "success", time.Since(start).Seconds(), resp.Model, resp.TokensIn, resp.TokensOut)

	parsed := repair.Parse(resp.Content)
	if !parsed.Structured {
		c.logger.Warn("completion stayed non-structured after retry",
			zap.String("conversation_id", conv.ID))
	}
	return parsed, resp.Content, nil
}

// finalizeTrip builds the immutable finished payload. The accumulated filter
// set always wins over whatever the model put in the payload, and the
// destination is validated, corrected or reconstructed so a finished response
// never carries a null destination once one was mentioned.
func (c *Controller) finalizeTrip(ctx context.Context, conv *model.Conversation, fromModel *model.TripRequest) *model.TripRequest {
	trip := &model.TripRequest{}
	if fromModel != nil {
		*trip = *fromModel
	} else if prior := c.latestTrip(conv); prior != nil {
		*trip = *prior
	}
	trip.Filters = conv.Filters.Clone()

	for i := range trip.Prioritize {
		if trip.Prioritize[i].Score < 1 {
			trip.Prioritize[i].Score = 1
		}
		if trip.Prioritize[i].Score > model.PriorityNearMandatory {
			trip.Prioritize[i].Score = model.PriorityNearMandatory
		}
	}

	if trip.Destination.Country != "" {
		if canon, ok := c.geo.Normalize(trip.Destination.Country); ok {
			trip.Destination.Country = canon
		} else if canon, ok := c.geo.CorrectViaModel(ctx, trip.Destination.Country); ok {
			trip.Destination.Country = canon
		}
	} else if dest := c.reconstructDestination(conv); dest != nil {
		trip.Destination = *dest
	}

	metrics.ConversationsFinished.Inc()
	return trip
}

// latestTrip finds the most recent finished payload in history.
func (c *Controller) latestTrip(conv *model.Conversation) *model.TripRequest {
	for i := len(conv.Turns) - 1; i >= 0; i-- {
		if trip := conv.Turns[i].FinishedTrip(); trip != nil {
			return trip
		}
	}
	return nil
}

// currentDestination is the destination of the most recent finished payload,
// used as extraction context.
func (c *Controller) currentDestination(conv *model.Conversation) *model.Destination {
	if trip := c.latestTrip(conv); trip != nil && trip.Destination.Country != "" {
		d := trip.Destination
		return &d
	}
	return nil
}

// reconstructDestination scans backward through history when the completion
// declared the session finished without a payload: first for a repairable
// structured payload in assistant turns, then for a plain country mention in
// user turns.
func (c *Controller) reconstructDestination(conv *model.Conversation) *model.Destination {
	for i := len(conv.Turns) - 1; i >= 0; i-- {
		t := conv.Turns[i]
		if t.Role != model.RoleAssistant {
			continue
		}
		if parsed := repair.Parse(t.Content); parsed.Trip != nil && parsed.Trip.Destination.Country != "" {
			d := parsed.Trip.Destination
			return &d
		}
	}
	for i := len(conv.Turns) - 1; i >= 0; i-- {
		t := conv.Turns[i]
		if t.Role != model.RoleUser {
			continue
		}
		if d := c.fallback.GuessDestination(t.Content); d != nil {
			return d
		}
	}
	return nil
}
