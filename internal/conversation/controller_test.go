package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swellyo/matching-platform/internal/geo"
	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/internal/model"
	"github.com/swellyo/matching-platform/internal/store"
	"github.com/swellyo/matching-platform/pkg/logger"
)

// scriptedLLM routes completion calls by their system prompt: extraction and
// classification get canned answers, geo corrections come from a map, and
// persona chat replies play back in order.
type scriptedLLM struct {
	mu        sync.Mutex
	chat      []string
	extract   []string
	label     string
	correct   map[string]string
	chatCalls int
}

func (c *scriptedLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sys := ""
	if len(req.Messages) > 0 && req.Messages[0].Role == "system" {
		sys = req.Messages[0].Content
	}
	switch {
	case strings.HasPrefix(sys, "You extract match filters"):
		if len(c.extract) == 0 {
			return &llm.CompletionResponse{Content: `{"filters": {}}`}, nil
		}
		out := c.extract[0]
		c.extract = c.extract[1:]
		return &llm.CompletionResponse{Content: out}, nil

	case strings.HasPrefix(sys, "You label one short user reply"):
		return &llm.CompletionResponse{Content: c.label}, nil

	case strings.HasPrefix(sys, "You correct misspelled"):
		name := req.Messages[len(req.Messages)-1].Content
		if canon, ok := c.correct[name]; ok {
			return &llm.CompletionResponse{Content: canon}, nil
		}
		return &llm.CompletionResponse{Content: geo.NoMatchSentinel}, nil

	default:
		c.chatCalls++
		if len(c.chat) == 0 {
			return nil, errors.New("chat script exhausted")
		}
		out := c.chat[0]
		c.chat = c.chat[1:]
		return &llm.CompletionResponse{Content: out}, nil
	}
}

func (c *scriptedLLM) Name() string     { return "scripted" }
func (c *scriptedLLM) Models() []string { return nil }

func newTestController(fake *scriptedLLM) (*Controller, store.Store) {
	st := store.NewMemoryStore()
	log := &logger.Logger{Logger: zap.NewNop()}
	validator := geo.NewValidator(fake, log)
	return NewController(st, fake, validator, "test-model", log), st
}

const finishedPayload = `{
	"return_message": "Epic, that paints the full picture!",
	"is_finished": true,
	"data": {
		"destination": {"country": "filipins", "area": "Siargao"},
		"purpose": "surf trip",
		"filters": {}
	}
}`

// startFinished drives a conversation to a finished turn with attached
// matches, leaving it in the filter-decision phase.
func startFinished(t *testing.T, fake *scriptedLLM) (*Controller, string) {
	t.Helper()
	fake.chat = append(fake.chat, finishedPayload)
	fake.extract = append(fake.extract, `{"filters": {"skill": ["advanced"]}, "origin_filter_requested": false}`)
	if fake.correct == nil {
		fake.correct = map[string]string{}
	}
	fake.correct["filipins"] = "Philippines"

	ctrl, _ := newTestController(fake)
	resp, err := ctrl.Start(context.Background(), "owner-1", "", "Surf trip to filipins, advanced riders only")
	require.NoError(t, err)
	require.True(t, resp.Finished)

	err = ctrl.AttachMatches(context.Background(), resp.ConversationID,
		[]model.MatchSummary{{UserID: "u1", Name: "Kelly"}}, "Philippines")
	require.NoError(t, err)
	return ctrl, resp.ConversationID
}

func TestStartProducesReplyAndPersists(t *testing.T) {
	fake := &scriptedLLM{chat: []string{
		`{"return_message": "Where to, dude?", "is_finished": false, "data": null}`,
	}}
	ctrl, st := newTestController(fake)

	resp, err := ctrl.Start(context.Background(), "owner-1", "group-1", "hey, I want to find surf buddies")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, "Where to, dude?", resp.Message)
	assert.False(t, resp.Finished)
	assert.Nil(t, resp.Trip)

	conv, err := st.Load(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseNormal, conv.Phase)
	assert.Equal(t, "owner-1", conv.OwnerID)
	assert.Equal(t, "group-1", conv.GroupID)
	require.Len(t, conv.Turns, 3)
	assert.Equal(t, model.RoleSystem, conv.Turns[0].Role)
	assert.Equal(t, model.RoleUser, conv.Turns[1].Role)
	assert.Equal(t, model.RoleAssistant, conv.Turns[2].Role)
}

func TestFinishedTurnCorrectsDestinationAndOwnsFilters(t *testing.T) {
	fake := &scriptedLLM{
		chat:    []string{finishedPayload},
		extract: []string{`{"filters": {"skill": ["advanced"]}, "origin_filter_requested": false}`},
		correct: map[string]string{"filipins": "Philippines"},
	}
	ctrl, st := newTestController(fake)

	resp, err := ctrl.Start(context.Background(), "owner-1", "", "Surf trip to filipins, advanced riders only")
	require.NoError(t, err)

	require.True(t, resp.Finished)
	require.NotNil(t, resp.Trip)
	assert.Equal(t, "Philippines", resp.Trip.Destination.Country)
	require.NotNil(t, resp.Trip.Destination.Area)
	assert.Equal(t, "Siargao", *resp.Trip.Destination.Area)
	assert.Equal(t, "surf trip", resp.Trip.Purpose)

	// the accumulated set wins over the payload's empty filters
	assert.Equal(t, []model.SkillLevel{model.SkillAdvanced, model.SkillPro}, resp.Trip.Filters.Skill)

	conv, err := st.Load(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, conv.LastTurn().FinishedTrip())
	assert.Equal(t, "Philippines", conv.LastTurn().FinishedTrip().Destination.Country)
}

func TestAttachMatchesArmsDecisionPhase(t *testing.T) {
	fake := &scriptedLLM{}
	ctrl, id := startFinished(t, fake)

	conv, err := ctrl.History(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseAwaitingFilterDecision, conv.Phase)

	last := conv.LastTurn()
	assert.Contains(t, last.Content, "Philippines")
	assert.Contains(t, last.Content, decisionPrompt)
	require.NotNil(t, last.Metadata)
	assert.True(t, last.Metadata.AwaitingFilterDecision)

	// the finished turn now carries the matches
	var attached bool
	for _, turn := range conv.Turns {
		if turn.HasMatches() {
			attached = true
		}
	}
	assert.True(t, attached)

	// a second attach while the decision is pending is refused
	err = ctrl.AttachMatches(context.Background(), id, []model.MatchSummary{{UserID: "u2"}}, "")
	assert.ErrorIs(t, err, ErrDecisionPending)
}

func TestAttachMatchesRequiresFinishedTurn(t *testing.T) {
	fake := &scriptedLLM{chat: []string{
		`{"return_message": "Where to?", "is_finished": false, "data": null}`,
	}}
	ctrl, _ := newTestController(fake)

	resp, err := ctrl.Start(context.Background(), "owner-1", "", "hey")
	require.NoError(t, err)

	err = ctrl.AttachMatches(context.Background(), resp.ConversationID, []model.MatchSummary{{UserID: "u1"}}, "")
	assert.ErrorIs(t, err, ErrNoFinishedTurn)
}

func TestAttachMatchesUnknownConversation(t *testing.T) {
	ctrl, _ := newTestController(&scriptedLLM{})
	err := ctrl.AttachMatches(context.Background(), "missing", []model.MatchSummary{{UserID: "u1"}}, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDecisionMoreKeepsFiltersUnchanged(t *testing.T) {
	fake := &scriptedLLM{}
	ctrl, id := startFinished(t, fake)
	fake.label = "more"

	resp, err := ctrl.Continue(context.Background(), id, "send me more matches")
	require.NoError(t, err)

	assert.True(t, resp.Finished)
	assert.Equal(t, ackMore, resp.Message)
	require.NotNil(t, resp.Trip)
	assert.Equal(t, []model.SkillLevel{model.SkillAdvanced, model.SkillPro}, resp.Trip.Filters.Skill)
	assert.Equal(t, "Philippines", resp.Trip.Destination.Country)

	conv, err := ctrl.History(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseNormal, conv.Phase)
}

func TestDecisionReplaceDiscardsAccumulatedFilters(t *testing.T) {
	fake := &scriptedLLM{}
	ctrl, id := startFinished(t, fake)
	fake.label = "replace"
	fake.extract = append(fake.extract, `{"filters": {"equipment": ["longboard"]}, "origin_filter_requested": false}`)

	resp, err := ctrl.Continue(context.Background(), id, "scratch that, just longboarders")
	require.NoError(t, err)

	assert.True(t, resp.Finished)
	assert.Equal(t, ackReplace, resp.Message)
	require.NotNil(t, resp.Trip)
	assert.Empty(t, resp.Trip.Filters.Skill)
	assert.Equal(t, []string{"longboard"}, resp.Trip.Filters.Equipment)
}

func TestDecisionAddStacksFilters(t *testing.T) {
	fake := &scriptedLLM{}
	ctrl, id := startFinished(t, fake)
	fake.label = "add"
	fake.extract = append(fake.extract, `{"filters": {"equipment": ["longboard"]}, "origin_filter_requested": false}`)

	resp, err := ctrl.Continue(context.Background(), id, "also longboarders please")
	require.NoError(t, err)

	assert.True(t, resp.Finished)
	assert.Equal(t, ackAdd, resp.Message)
	require.NotNil(t, resp.Trip)
	assert.Equal(t, []model.SkillLevel{model.SkillAdvanced, model.SkillPro}, resp.Trip.Filters.Skill)
	assert.Equal(t, []string{"longboard"}, resp.Trip.Filters.Equipment)
}

func TestDecisionUnclearWithNewFiltersAsksClarification(t *testing.T) {
	fake := &scriptedLLM{}
	ctrl, id := startFinished(t, fake)
	fake.label = "unclear"
	fake.extract = append(fake.extract, `{"filters": {"age_min": 20, "age_max": 30}, "origin_filter_requested": false}`)

	resp, err := ctrl.Continue(context.Background(), id, "more but in their twenties")
	require.NoError(t, err)

	assert.False(t, resp.Finished)
	assert.Equal(t, clarificationPrompt, resp.Message)

	conv, err := ctrl.History(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseAwaitingFilterClarification, conv.Phase)
	require.NotNil(t, conv.PendingFilters)
	require.NotNil(t, conv.PendingFilters.AgeMin)
	assert.Equal(t, 20, *conv.PendingFilters.AgeMin)

	// resolving with "add" merges pending over the accumulated set
	fake.label = "add"
	resp, err = ctrl.Continue(context.Background(), id, "add them on top")
	require.NoError(t, err)

	assert.True(t, resp.Finished)
	assert.Equal(t, ackAdd, resp.Message)
	require.NotNil(t, resp.Trip)
	assert.Equal(t, []model.SkillLevel{model.SkillAdvanced, model.SkillPro}, resp.Trip.Filters.Skill)
	require.NotNil(t, resp.Trip.Filters.AgeMin)
	assert.Equal(t, 20, *resp.Trip.Filters.AgeMin)

	conv, err = ctrl.History(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, conv.PendingFilters)
	assert.Equal(t, model.PhaseNormal, conv.Phase)
}

func TestDecisionUnclearWithoutFiltersReasks(t *testing.T) {
	fake := &scriptedLLM{}
	ctrl, id := startFinished(t, fake)
	fake.label = "unclear"

	resp, err := ctrl.Continue(context.Background(), id, "hmm, not sure")
	require.NoError(t, err)

	assert.False(t, resp.Finished)
	assert.Equal(t, decisionPrompt, resp.Message)

	conv, err := ctrl.History(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseAwaitingFilterDecision, conv.Phase)
}

func TestClarificationUnclearReasksVerbatim(t *testing.T) {
	fake := &scriptedLLM{}
	ctrl, id := startFinished(t, fake)
	fake.label = "unclear"
	fake.extract = append(fake.extract, `{"filters": {"age_min": 20, "age_max": 30}, "origin_filter_requested": false}`)

	_, err := ctrl.Continue(context.Background(), id, "more but in their twenties")
	require.NoError(t, err)

	// still unclear: the clarification is asked again, pending set kept
	resp, err := ctrl.Continue(context.Background(), id, "whichever")
	require.NoError(t, err)
	assert.Equal(t, clarificationPrompt, resp.Message)

	conv, err := ctrl.History(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseAwaitingFilterClarification, conv.Phase)
	require.NotNil(t, conv.PendingFilters)
}

func TestNonStructuredReplyIsRetriedOnce(t *testing.T) {
	fake := &scriptedLLM{chat: []string{
		"totally just prose, no JSON at all",
		`{"return_message": "ok dude", "is_finished": false, "data": null}`,
	}}
	ctrl, _ := newTestController(fake)

	resp, err := ctrl.Start(context.Background(), "owner-1", "", "yo")
	require.NoError(t, err)
	assert.Equal(t, "ok dude", resp.Message)
	assert.Equal(t, 2, fake.chatCalls)
}

func TestFinishedWithoutPayloadReconstructsDestination(t *testing.T) {
	fake := &scriptedLLM{
		chat: []string{
			`{"return_message": "Epic, that paints the full picture!", "is_finished": true, "data": null}`,
		},
		extract: []string{`{"filters": {"skill": ["intermediate"]}, "origin_filter_requested": false}`},
	}
	ctrl, _ := newTestController(fake)

	resp, err := ctrl.Start(context.Background(), "owner-1", "",
		"I'm heading to portugal, any intermediate surfers around?")
	require.NoError(t, err)

	require.True(t, resp.Finished)
	require.NotNil(t, resp.Trip)
	assert.Equal(t, "Portugal", resp.Trip.Destination.Country)
	assert.Equal(t, []model.SkillLevel{model.SkillIntermediate}, resp.Trip.Filters.Skill)
}

func TestContinueUnknownConversation(t *testing.T) {
	ctrl, _ := newTestController(&scriptedLLM{})
	_, err := ctrl.Continue(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
