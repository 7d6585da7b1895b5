// Package extract turns free-form user utterances into structured filter
// sets, with a rule-based fallback for when the model yields nothing.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/swellyo/matching-platform/internal/geo"
	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/internal/model"
	"github.com/swellyo/matching-platform/internal/repair"
	"github.com/swellyo/matching-platform/pkg/logger"
	"github.com/swellyo/matching-platform/pkg/metrics"
)

const schemaPrompt = `You extract match filters from one message in a surf-travel chat.
Return a single JSON object, nothing else:

{
  "filters": {
    "country_from": ["..."],          // candidate ORIGIN countries, canonical English names
    "age_min": 18, "age_max": 35,     // integers, omit if not stated
    "skill": ["beginner"|"intermediate"|"advanced"|"pro"],
    "equipment": ["shortboard"|"longboard"|"fish"|"gun"|"foil"|"bodyboard"|"softtop"],
    "min_days_in_destination": 14     // integer days, omit if not stated
  },
  "origin_filter_requested": false,   // true ONLY if the user asks to filter people by where they are FROM
  "unmappable": ["..."],              // criteria you recognized but cannot map to any field above
  "rationale": "one short sentence"
}

Rules:
- Correct typos to canonical names: "filipins" -> "Philippines", "austrailia" -> "Australia".
- Expand regions to country lists: "Scandinavia" -> ["Denmark","Norway","Sweden"],
  "Central America" -> the countries of Central America.
- Expand language families to the countries where the language is dominant:
  "Spanish speakers" -> ["Spain","Mexico","Argentina","Colombia","Chile","Peru"].
- "advanced" surfers always include "pro" as well.
- NEVER put the user's travel destination into country_from. Where the user wants
  to GO and where candidates should be FROM are different things; leave
  country_from empty unless the message explicitly filters by candidate origin.
- Omit every field the message says nothing about. Empty object is a valid answer.`

// wireExtraction is the raw model output shape before normalization.
type wireExtraction struct {
	Filters struct {
		CountryFrom          []string `json:"country_from"`
		AgeMin               *int     `json:"age_min"`
		AgeMax               *int     `json:"age_max"`
		Skill                []string `json:"skill"`
		Equipment            []string `json:"equipment"`
		MinDaysInDestination *int     `json:"min_days_in_destination"`
	} `json:"filters"`
	OriginFilterRequested bool     `json:"origin_filter_requested"`
	Unmappable            []string `json:"unmappable"`
	Rationale             string   `json:"rationale"`
}

// Extractor prompts the completion client to translate an utterance into an
// ExtractionResult.
type Extractor struct {
	client llm.Client
	geo    *geo.Validator
	logger *logger.Logger
}

// NewExtractor creates a filter extractor.
func NewExtractor(client llm.Client, validator *geo.Validator, log *logger.Logger) *Extractor {
	return &Extractor{client: client, geo: validator, logger: log}
}

// Extract runs one extraction pass. Extraction failure is non-fatal: the
// result carries an empty filter set and a rationale noting the failure, and
// the conversation continues without new filters for the turn.
func (e *Extractor) Extract(ctx context.Context, utterance string, dest *model.Destination, history []model.Turn) *model.ExtractionResult {
	messages := []llm.ChatMessage{{Role: "system", Content: schemaPrompt}}
	if dest != nil && dest.Country != "" {
		messages = append(messages, llm.ChatMessage{
			Role:    "system",
			Content: fmt.Sprintf("Current travel destination (do NOT treat as origin filter): %s", destinationLabel(dest)),
		})
	}
	for _, t := range lastUserAssistant(history, 4) {
		messages = append(messages, llm.ChatMessage{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: utterance})

	resp, err := e.client.Complete(ctx, &llm.CompletionRequest{
		Temperature: 0,
		MaxTokens:   512,
		JSONMode:    true,
		Messages:    messages,
	})
	if err != nil {
		metrics.ExtractionFailures.Inc()
		e.logger.Warn("filter extraction call failed", zap.Error(err))
		return &model.ExtractionResult{Rationale: "extraction failed: completion error"}
	}

	obj, ok := repair.ExtractObject(resp.Content)
	if !ok {
		metrics.ExtractionFailures.Inc()
		return &model.ExtractionResult{Rationale: "extraction failed: no structured output"}
	}
	var wire wireExtraction
	if err := json.Unmarshal([]byte(obj), &wire); err != nil {
		metrics.ExtractionFailures.Inc()
		e.logger.Warn("filter extraction output did not decode", zap.Error(err))
		return &model.ExtractionResult{Rationale: "extraction failed: undecodable output"}
	}

	return e.normalize(ctx, &wire)
}

// normalize applies the post-hoc design rules the prompt alone is not trusted
// to enforce.
func (e *Extractor) normalize(ctx context.Context, wire *wireExtraction) *model.ExtractionResult {
	out := &model.ExtractionResult{
		Unmappable: wire.Unmappable,
		Rationale:  wire.Rationale,
	}

	f := &out.Filters
	for _, s := range wire.Filters.Skill {
		f.Skill = append(f.Skill, model.SkillLevel(strings.ToLower(strings.TrimSpace(s))))
	}
	f.NormalizeSkill()

	for _, eq := range wire.Filters.Equipment {
		eq = strings.ToLower(strings.TrimSpace(eq))
		if eq != "" {
			f.Equipment = append(f.Equipment, eq)
		}
	}

	f.AgeMin = wire.Filters.AgeMin
	f.AgeMax = wire.Filters.AgeMax
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		f.AgeMin, f.AgeMax = f.AgeMax, f.AgeMin
	}
	f.MinDaysInDestination = wire.Filters.MinDaysInDestination

	// Origin filters only exist when the user explicitly asked for them;
	// everything else the model put there is destination bleed-through.
	if wire.OriginFilterRequested && len(wire.Filters.CountryFrom) > 0 {
		f.CountryFrom = e.geo.NormalizeList(ctx, wire.Filters.CountryFrom)
	}

	return out
}

func destinationLabel(d *model.Destination) string {
	parts := []string{d.Country}
	if d.State != nil {
		parts = append(parts, *d.State)
	}
	if d.Area != nil {
		parts = append(parts, *d.Area)
	}
	return strings.Join(parts, ", ")
}

// lastUserAssistant returns the trailing n user/assistant turns in order.
func lastUserAssistant(history []model.Turn, n int) []model.Turn {
	var out []model.Turn
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if history[i].Role == model.RoleSystem {
			continue
		}
		out = append(out, history[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
