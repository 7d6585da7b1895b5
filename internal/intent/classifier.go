// Package intent classifies short user replies during filter-decision flows.
package intent

import (
	"context"
	"strings"

	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/internal/model"
	"github.com/swellyo/matching-platform/pkg/metrics"
)

// Intent is the classified meaning of a user reply after match results were
// presented.
type Intent string

const (
	// More: fetch more results with the filters unchanged.
	More Intent = "more"
	// Replace: discard accumulated filters and use only the new ones.
	Replace Intent = "replace"
	// Add: merge new filters over the accumulated ones.
	Add Intent = "add"
	// Unclear: the reply cannot be resolved without asking.
	Unclear Intent = "unclear"
)

const classifyPrompt = `You label one short user reply in a matchmaking chat.
The user was just shown match results and asked whether to fetch more results,
add filters, or replace filters.

Answer with exactly one word, lowercase, nothing else:
more    - the user wants more results with the same criteria
replace - the user wants to start over with only the new criteria
add     - the user wants the new criteria on top of the existing ones
unclear - you cannot tell

If the reply both asks for more results AND supplies new criteria in the same
sentence, answer unclear rather than guessing.`

const clarifyPrompt = `You label one short user reply in a matchmaking chat.
The user was just asked explicitly whether their new criteria should REPLACE
the existing filters or be ADDED on top of them.

Answer with exactly one word, lowercase, nothing else:
replace - start over with only the new criteria
add     - keep existing filters and add the new criteria
unclear - you cannot tell`

// Classifier labels user replies with a single constrained completion call.
type Classifier struct {
	client llm.Client
}

// NewClassifier creates a classifier over a completion client.
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify labels a reply as more/replace/add/unclear. Any malformed or
// non-label output, and any transport failure, degrades to Unclear.
func (c *Classifier) Classify(ctx context.Context, utterance string, history []model.Turn) Intent {
	label := c.ask(ctx, classifyPrompt, utterance, history)
	switch label {
	case More, Replace, Add:
		metrics.IntentLabels.WithLabelValues(string(label)).Inc()
		return label
	}
	metrics.IntentLabels.WithLabelValues(string(Unclear)).Inc()
	return Unclear
}

// ClassifyClarification labels the answer to an explicit replace-vs-add
// question; More is not a permitted outcome here.
func (c *Classifier) ClassifyClarification(ctx context.Context, utterance string, history []model.Turn) Intent {
	label := c.ask(ctx, clarifyPrompt, utterance, history)
	switch label {
	case Replace, Add:
		metrics.IntentLabels.WithLabelValues(string(label)).Inc()
		return label
	}
	metrics.IntentLabels.WithLabelValues(string(Unclear)).Inc()
	return Unclear
}

func (c *Classifier) ask(ctx context.Context, system, utterance string, history []model.Turn) Intent {
	messages := []llm.ChatMessage{{Role: "system", Content: system}}
	for _, t := range recentTurns(history, 4) {
		messages = append(messages, llm.ChatMessage{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: utterance})

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		Temperature: 0,
		MaxTokens:   8,
		Messages:    messages,
	})
	if err != nil {
		return Unclear
	}
	return Intent(strings.ToLower(strings.TrimSpace(resp.Content)))
}

// recentTurns returns the last n non-system turns for classifier context.
func recentTurns(history []model.Turn, n int) []model.Turn {
	var out []model.Turn
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if history[i].Role == model.RoleSystem {
			continue
		}
		out = append(out, history[i])
	}
	// restore chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
