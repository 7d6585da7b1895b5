package geo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/pkg/logger"
)

// fakeClient answers correction calls from a canned map keyed by the name
// being corrected. Unknown names get the no-match sentinel.
type fakeClient struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	calls   int
}

func (c *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	name := req.Messages[len(req.Messages)-1].Content
	answer, ok := c.answers[name]
	if !ok {
		answer = NoMatchSentinel
	}
	return &llm.CompletionResponse{Content: answer}, nil
}

func (c *fakeClient) Name() string     { return "fake" }
func (c *fakeClient) Models() []string { return nil }

func nopLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func newTestValidator(client llm.Client) *Validator {
	return NewValidator(client, nopLogger())
}

func TestNormalize(t *testing.T) {
	v := newTestValidator(nil)

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"israel", "Israel", true},
		{"  Portugal ", "Portugal", true},
		{"united states - california", "United States - California", true},
		{"Atlantis", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := v.Normalize(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestValidate(t *testing.T) {
	v := newTestValidator(nil)

	assert.True(t, v.Validate("Philippines"))
	assert.True(t, v.Validate("australia - queensland"))
	assert.False(t, v.Validate("Narnia"))
}

func TestSubdivisions(t *testing.T) {
	v := newTestValidator(nil)

	subs := v.Subdivisions("australia")
	require.Len(t, subs, 8)
	assert.Contains(t, subs, "Australia - Queensland")

	assert.Len(t, v.Subdivisions("United States"), 50)
	assert.Nil(t, v.Subdivisions("France"))
	assert.Nil(t, v.Subdivisions("Narnia"))
}

func TestResolvePrefersCountryOverSubdivision(t *testing.T) {
	v := newTestValidator(nil)

	// Georgia is both a country and a US state; the country wins.
	canon, ok := v.resolve("georgia")
	require.True(t, ok)
	assert.Equal(t, "Georgia", canon)

	// A bare state with no country clash lands on its compound form.
	canon, ok = v.resolve("california")
	require.True(t, ok)
	assert.Equal(t, "United States - California", canon)
}

func TestCorrectViaModelRevalidates(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted", func(t *testing.T) {
		v := newTestValidator(&fakeClient{answers: map[string]string{"filipins": `"Philippines"`}})
		got, ok := v.CorrectViaModel(ctx, "filipins")
		require.True(t, ok)
		assert.Equal(t, "Philippines", got)
	})

	t.Run("no match sentinel", func(t *testing.T) {
		v := newTestValidator(&fakeClient{})
		_, ok := v.CorrectViaModel(ctx, "blorgistan")
		assert.False(t, ok)
	})

	t.Run("invented name discarded", func(t *testing.T) {
		v := newTestValidator(&fakeClient{answers: map[string]string{"atlantis": "Atlantis"}})
		_, ok := v.CorrectViaModel(ctx, "atlantis")
		assert.False(t, ok)
	})

	t.Run("transport error", func(t *testing.T) {
		v := newTestValidator(&fakeClient{err: errors.New("boom")})
		_, ok := v.CorrectViaModel(ctx, "filipins")
		assert.False(t, ok)
	})

	t.Run("nil client", func(t *testing.T) {
		v := newTestValidator(nil)
		_, ok := v.CorrectViaModel(ctx, "filipins")
		assert.False(t, ok)
	})
}

func TestNormalizeListCorrectsExpandsAndDrops(t *testing.T) {
	client := &fakeClient{answers: map[string]string{"filipins": "Philippines"}}
	v := newTestValidator(client)

	got := v.NormalizeList(context.Background(), []string{
		"israel", "filipins", "blorgistan", "Israel", "australia", "",
	})

	assert.Contains(t, got, "Israel")
	assert.Contains(t, got, "Philippines")
	assert.NotContains(t, got, "blorgistan")

	// bare federated country expands to every compound subdivision
	assert.Contains(t, got, "Australia - Queensland")
	assert.Contains(t, got, "Australia - Tasmania")
	assert.NotContains(t, got, "Australia")

	// israel + Israel dedupe to one entry; 2 known + 1 corrected + 8 expansions
	assert.Len(t, got, 10)

	// only the two unknown names hit the corrector
	assert.Equal(t, 2, client.calls)
}

func TestNormalizeListOrderIsStable(t *testing.T) {
	v := newTestValidator(nil)
	got := v.NormalizeList(context.Background(), []string{"portugal", "Israel", "france"})
	assert.Equal(t, []string{"Portugal", "Israel", "France"}, got)
}

func TestFindMention(t *testing.T) {
	v := newTestValidator(nil)

	country, ok := v.FindMention("I want to surf in portugal next month")
	require.True(t, ok)
	assert.Equal(t, "Portugal", country)

	// word-bounded only: "Indian" must not match India
	_, ok = v.FindMention("looking for an Indian restaurant")
	assert.False(t, ok)

	_, ok = v.FindMention("somewhere warm, dunno where")
	assert.False(t, ok)
}
