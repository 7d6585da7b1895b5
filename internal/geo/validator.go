// Package geo validates and normalizes geographic names against the
// canonical reference list used by the matching engine.
package geo

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/swellyo/matching-platform/internal/llm"
	"github.com/swellyo/matching-platform/pkg/logger"
	"github.com/swellyo/matching-platform/pkg/metrics"
)

// NoMatchSentinel is the only non-list answer the correction prompt permits.
const NoMatchSentinel = "NO_MATCH"

// Validator validates candidate names against the canonical list and uses a
// completion client as a fallback corrector for unrecognized names.
type Validator struct {
	client llm.Client
	logger *logger.Logger

	names  []string          // full canonical list, stable order
	index  map[string]string // lower(name) -> canonical form
	subIdx map[string]string // lower(bare subdivision) -> compound form
}

// NewValidator builds a validator over the embedded reference list.
func NewValidator(client llm.Client, log *logger.Logger) *Validator {
	v := &Validator{
		client: client,
		logger: log,
		index:  make(map[string]string, len(countries)*2),
		subIdx: make(map[string]string),
	}
	for _, c := range countries {
		v.names = append(v.names, c)
		v.index[strings.ToLower(c)] = c
	}
	ambiguous := map[string]bool{}
	for country, subs := range subdivisions {
		for _, sub := range subs {
			name := compound(country, sub)
			v.names = append(v.names, name)
			v.index[strings.ToLower(name)] = name

			key := strings.ToLower(sub)
			if _, clash := v.index[key]; clash {
				continue // a bare country already owns this name (e.g. Georgia)
			}
			if _, dup := v.subIdx[key]; dup {
				ambiguous[key] = true
				continue
			}
			v.subIdx[key] = name
		}
	}
	for key := range ambiguous {
		delete(v.subIdx, key)
	}
	return v
}

// Validate checks case-insensitive exact membership in the reference list.
func (v *Validator) Validate(name string) bool {
	_, ok := v.index[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Normalize returns the exact canonical form for a directly known name.
// No fuzzy matching happens locally.
func (v *Validator) Normalize(name string) (string, bool) {
	canon, ok := v.index[strings.ToLower(strings.TrimSpace(name))]
	return canon, ok
}

// Subdivisions returns the full compound enumeration for a federated country,
// or nil when the country has no subdivision entries.
func (v *Validator) Subdivisions(country string) []string {
	canon, ok := v.Normalize(country)
	if !ok {
		return nil
	}
	subs, ok := subdivisions[canon]
	if !ok {
		return nil
	}
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = compound(canon, s)
	}
	return out
}

// CorrectViaModel asks the completion client to map an unrecognized name to
// the closest canonical entry. The answer is constrained to the list or the
// no-match sentinel and is re-validated before being accepted; an
// uncorroborated suggestion is discarded.
func (v *Validator) CorrectViaModel(ctx context.Context, name string) (string, bool) {
	if v.client == nil {
		return "", false
	}
	resp, err := v.client.Complete(ctx, &llm.CompletionRequest{
		Temperature: 0,
		MaxTokens:   32,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: correctionPrompt(v.names)},
			{Role: "user", Content: name},
		},
	})
	if err != nil {
		metrics.GeoCorrectionsTotal.WithLabelValues("error").Inc()
		v.logger.Warn("geo correction call failed", zap.String("name", name), zap.Error(err))
		return "", false
	}

	answer := strings.Trim(strings.TrimSpace(resp.Content), "\"'` ")
	if strings.EqualFold(answer, NoMatchSentinel) {
		metrics.GeoCorrectionsTotal.WithLabelValues("no_match").Inc()
		return "", false
	}
	canon, ok := v.Normalize(answer)
	if !ok {
		metrics.GeoCorrectionsTotal.WithLabelValues("invalid_suggestion").Inc()
		v.logger.Warn("geo correction suggested a name outside the reference list",
			zap.String("name", name), zap.String("suggestion", answer))
		return "", false
	}
	metrics.GeoCorrectionsTotal.WithLabelValues("corrected").Inc()
	return canon, true
}

// NormalizeList applies validate, correct and dedupe to every element.
// Corrections for unknown names run concurrently; each name's outcome is
// independent and names that cannot be validated are dropped with a
// diagnostic, never a turn-level failure. Bare federated countries expand to
// their full compound subdivision enumeration.
func (v *Validator) NormalizeList(ctx context.Context, names []string) []string {
	resolved := make([][]string, len(names))
	var wg sync.WaitGroup
	for i, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if canon, ok := v.resolve(name); ok {
			resolved[i] = v.expand(canon)
			continue
		}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if canon, ok := v.CorrectViaModel(ctx, name); ok {
				resolved[i] = v.expand(canon)
				return
			}
			metrics.GeoNamesDropped.Inc()
			v.logger.Warn("dropped unresolvable origin name", zap.String("name", name))
		}(i, name)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var out []string
	for _, group := range resolved {
		for _, name := range group {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// resolve tries the direct canonical lookup, then the bare-subdivision index
// so "California" lands on "United States - California".
func (v *Validator) resolve(name string) (string, bool) {
	if canon, ok := v.Normalize(name); ok {
		return canon, true
	}
	canon, ok := v.subIdx[strings.ToLower(name)]
	return canon, ok
}

// expand turns a bare federated country into its full subdivision
// enumeration; everything else passes through unchanged.
func (v *Validator) expand(canon string) []string {
	if subs := v.Subdivisions(canon); len(subs) > 0 {
		return subs
	}
	return []string{canon}
}

// FindMention returns the first canonical country name mentioned anywhere in
// the text, used as a last-resort destination recovery. Exact word-bounded
// matches only.
func (v *Validator) FindMention(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, c := range countries {
		if containsWord(lower, strings.ToLower(c)) {
			return c, true
		}
	}
	return "", false
}

func containsWord(haystack, needle string) bool {
	for start := 0; ; {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		beforeOK := i == 0 || !isLetter(haystack[i-1])
		afterOK := end == len(haystack) || !isLetter(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func correctionPrompt(names []string) string {
	var b strings.Builder
	b.WriteString("You correct misspelled or non-canonical place names. ")
	b.WriteString("Answer with exactly one entry copied verbatim from the reference list below, ")
	b.WriteString("or the single word " + NoMatchSentinel + " if nothing on the list plausibly matches. ")
	b.WriteString("Never invent a name.\n\nReference list:\n")
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return b.String()
}
