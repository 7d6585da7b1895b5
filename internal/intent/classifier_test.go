package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/internal/model"
)

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

func TestClassifyCoercesLabels(t *testing.T) {
	cases := []struct {
		raw  string
		want Intent
	}{
		{"more", More},
		{" MORE \n", More},
		{"replace", Replace},
		{"add", Add},
		{"unclear", Unclear},
		{"definitely more results", Unclear},
		{"", Unclear},
	}
	for _, tc := range cases {
		c := NewClassifier(&fakeClient{content: tc.raw})
		got := c.Classify(context.Background(), "send me more", nil)
		assert.Equal(t, tc.want, got, "raw %q", tc.raw)
	}
}

func TestClassifyErrorDegradesToUnclear(t *testing.T) {
	c := NewClassifier(&fakeClient{err: errors.New("boom")})
	assert.Equal(t, Unclear, c.Classify(context.Background(), "more please", nil))
}

func TestClassifyClarificationForbidsMore(t *testing.T) {
	c := NewClassifier(&fakeClient{content: "more"})
	assert.Equal(t, Unclear, c.ClassifyClarification(context.Background(), "more", nil))

	c = NewClassifier(&fakeClient{content: "replace"})
	assert.Equal(t, Replace, c.ClassifyClarification(context.Background(), "start fresh", nil))

	c = NewClassifier(&fakeClient{content: "add"})
	assert.Equal(t, Add, c.ClassifyClarification(context.Background(), "stack them", nil))
}

func TestClassifySendsRecentContext(t *testing.T) {
	history := []model.Turn{
		{Role: model.RoleSystem, Content: "persona"},
		{Role: model.RoleUser, Content: "u1"},
		{Role: model.RoleAssistant, Content: "a1"},
		{Role: model.RoleUser, Content: "u2"},
		{Role: model.RoleAssistant, Content: "a2"},
		{Role: model.RoleUser, Content: "u3"},
	}
	client := &fakeClient{content: "more"}
	NewClassifier(client).Classify(context.Background(), "the reply", history)

	require.NotNil(t, client.lastReq)
	// system prompt + last 4 non-system turns + the utterance itself
	require.Len(t, client.lastReq.Messages, 6)
	assert.Equal(t, "a1", client.lastReq.Messages[1].Content)
	assert.Equal(t, "u3", client.lastReq.Messages[4].Content)
	assert.Equal(t, "the reply", client.lastReq.Messages[5].Content)
}

func TestRecentTurnsOrder(t *testing.T) {
	history := []model.Turn{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleUser, Content: "second"},
	}
	got := recentTurns(history, 4)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
}
