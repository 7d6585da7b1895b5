package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swellyo/matching-platform/internal/geo"
	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/internal/model"
	"github.com/swellyo/matching-platform/pkg/logger"
)

// fakeClient returns one canned completion for every call.
type fakeClient struct {
	content string
	err     error
	lastReq *llm.CompletionRequest
}

func (c *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &llm.CompletionResponse{Content: c.content}, nil
}

func (c *fakeClient) Name() string     { return "fake" }
func (c *fakeClient) Models() []string { return nil }

func nopLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func newTestExtractor(client llm.Client) *Extractor {
	// nil correction client: only directly known names survive normalization
	return NewExtractor(client, geo.NewValidator(nil, nopLogger()), nopLogger())
}

func TestExtractFullResult(t *testing.T) {
	client := &fakeClient{content: `{
		"filters": {
			"country_from": ["Israel", "Portugal"],
			"age_min": 20, "age_max": 35,
			"skill": ["Intermediate"],
			"equipment": ["Shortboard"],
			"min_days_in_destination": 14
		},
		"origin_filter_requested": true,
		"unmappable": ["vegan"],
		"rationale": "explicit criteria"
	}`}
	ex := newTestExtractor(client)

	got := ex.Extract(context.Background(), "must be from Israel or Portugal, 20-35, intermediate, shortboard, 14+ days, vegan", nil, nil)

	assert.Equal(t, []string{"Israel", "Portugal"}, got.Filters.CountryFrom)
	require.NotNil(t, got.Filters.AgeMin)
	assert.Equal(t, 20, *got.Filters.AgeMin)
	require.NotNil(t, got.Filters.AgeMax)
	assert.Equal(t, 35, *got.Filters.AgeMax)
	assert.Equal(t, []model.SkillLevel{model.SkillIntermediate}, got.Filters.Skill)
	assert.Equal(t, []string{"shortboard"}, got.Filters.Equipment)
	require.NotNil(t, got.Filters.MinDaysInDestination)
	assert.Equal(t, 14, *got.Filters.MinDaysInDestination)
	assert.Equal(t, []string{"vegan"}, got.Unmappable)
}

func TestExtractAdvancedImpliesPro(t *testing.T) {
	client := &fakeClient{content: `{"filters": {"skill": ["advanced"]}, "origin_filter_requested": false}`}
	ex := newTestExtractor(client)

	got := ex.Extract(context.Background(), "advanced surfers only", nil, nil)
	assert.Equal(t, []model.SkillLevel{model.SkillAdvanced, model.SkillPro}, got.Filters.Skill)
}

func TestExtractSwapsInvertedAgeRange(t *testing.T) {
	client := &fakeClient{content: `{"filters": {"age_min": 35, "age_max": 20}, "origin_filter_requested": false}`}
	ex := newTestExtractor(client)

	got := ex.Extract(context.Background(), "between 35 and 20", nil, nil)
	require.NotNil(t, got.Filters.AgeMin)
	require.NotNil(t, got.Filters.AgeMax)
	assert.Equal(t, 20, *got.Filters.AgeMin)
	assert.Equal(t, 35, *got.Filters.AgeMax)
}

func TestExtractIgnoresOriginsWithoutExplicitRequest(t *testing.T) {
	// destination bleed-through: the model filled country_from but did not
	// flag an explicit origin-filter request
	client := &fakeClient{content: `{"filters": {"country_from": ["Philippines"]}, "origin_filter_requested": false}`}
	ex := newTestExtractor(client)

	got := ex.Extract(context.Background(), "I'm going to the Philippines", nil, nil)
	assert.Empty(t, got.Filters.CountryFrom)
	assert.True(t, got.Filters.IsEmpty())
}

func TestExtractPassesDestinationContext(t *testing.T) {
	client := &fakeClient{content: `{"filters": {}}`}
	ex := newTestExtractor(client)
	area := "Siargao"

	ex.Extract(context.Background(), "anything", &model.Destination{Country: "Philippines", Area: &area}, nil)

	require.NotNil(t, client.lastReq)
	require.GreaterOrEqual(t, len(client.lastReq.Messages), 2)
	assert.Contains(t, client.lastReq.Messages[1].Content, "Philippines, Siargao")
}

func TestExtractFailuresAreNonFatal(t *testing.T) {
	cases := []struct {
		name   string
		client *fakeClient
	}{
		{"transport error", &fakeClient{err: errors.New("boom")}},
		{"no structured output", &fakeClient{content: "totally rad, no JSON here"}},
		{"undecodable output", &fakeClient{content: `{"filters": "not an object"}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex := newTestExtractor(tc.client)
			got := ex.Extract(context.Background(), "whatever", nil, nil)
			require.NotNil(t, got)
			assert.True(t, got.Filters.IsEmpty())
			assert.Contains(t, got.Rationale, "extraction failed")
		})
	}
}

func TestLastUserAssistantSkipsSystemTurns(t *testing.T) {
	history := []model.Turn{
		{Role: model.RoleSystem, Content: "persona"},
		{Role: model.RoleUser, Content: "u1"},
		{Role: model.RoleAssistant, Content: "a1"},
		{Role: model.RoleUser, Content: "u2"},
		{Role: model.RoleAssistant, Content: "a2"},
		{Role: model.RoleUser, Content: "u3"},
	}
	got := lastUserAssistant(history, 4)
	require.Len(t, got, 4)
	assert.Equal(t, "a1", got[0].Content)
	assert.Equal(t, "u3", got[3].Content)
}
