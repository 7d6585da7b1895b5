package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/swellyo/matching-platform/internal/geo"
	"github.com/swellyo/matching-platform/internal/model"
	"github.com/swellyo/matching-platform/pkg/metrics"
)

var (
	ageRangeRe = regexp.MustCompile(`\b(\d{2})\s*(?:-|–|to)\s*(\d{2})\b`)
	minDaysRe  = regexp.MustCompile(`(?i)\b(?:at least|minimum(?: of)?|min\.?)\s*(\d{1,3})\s*days?\b|\b(\d{1,3})\+\s*days?\b`)
	fromRe     = regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z][A-Za-z .'-]*(?:\s*(?:,|or|and)\s*[A-Za-z][A-Za-z .'-]*)*)`)
	fromSplit  = regexp.MustCompile(`(?i)\s*(?:,|\bor\b|\band\b)\s*`)
)

var skillWords = map[string]model.SkillLevel{
	"beginner":     model.SkillBeginner,
	"newbie":       model.SkillBeginner,
	"intermediate": model.SkillIntermediate,
	"advanced":     model.SkillAdvanced,
	"pro":          model.SkillPro,
	"professional": model.SkillPro,
}

var equipmentWords = []string{
	"shortboard", "longboard", "fish", "gun", "foil", "bodyboard", "softtop",
}

// Fallback is the rule-based secondary extractor. The controller invokes it
// only when the primary extractor produced an empty filter set; it shares the
// ExtractionResult contract so the two are interchangeable downstream.
type Fallback struct {
	geo *geo.Validator
}

// NewFallback creates the keyword extractor.
func NewFallback(validator *geo.Validator) *Fallback {
	return &Fallback{geo: validator}
}

// Extract scans the utterance with keyword and pattern rules.
func (fb *Fallback) Extract(ctx context.Context, utterance string) *model.ExtractionResult {
	out := &model.ExtractionResult{Rationale: "keyword fallback"}
	f := &out.Filters
	lower := strings.ToLower(utterance)

	if m := ageRangeRe.FindStringSubmatch(utterance); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		// plausible human age range only; "7-10 days" is not an age
		if lo >= 16 && hi <= 99 && !strings.Contains(lower, m[0]+" day") {
			f.AgeMin, f.AgeMax = &lo, &hi
		}
	}

	if m := minDaysRe.FindStringSubmatch(utterance); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			f.MinDaysInDestination = &days
		}
	}

	for word, level := range skillWords {
		if strings.Contains(lower, word) {
			f.Skill = append(f.Skill, level)
		}
	}
	f.NormalizeSkill()

	for _, eq := range equipmentWords {
		if strings.Contains(lower, eq) {
			f.Equipment = append(f.Equipment, eq)
		}
	}

	if m := fromRe.FindStringSubmatch(utterance); m != nil {
		var candidates []string
		for _, part := range fromSplit.Split(m[1], -1) {
			part = strings.TrimSpace(part)
			if part != "" {
				candidates = append(candidates, part)
			}
		}
		f.CountryFrom = fb.geo.NormalizeList(ctx, candidates)
	}

	if !f.IsEmpty() {
		metrics.FallbackExtractions.Inc()
	}
	return out
}

// GuessDestination scans text for a canonical country mention. It backs the
// finished-payload reconstruction when no structured destination survives in
// history; first hit wins.
func (fb *Fallback) GuessDestination(text string) *model.Destination {
	country, ok := fb.geo.FindMention(text)
	if !ok {
		return nil
	}
	return &model.Destination{Country: country}
}
