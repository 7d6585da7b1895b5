// Package filter holds the pure merge logic for accumulated filter sets.
package filter

import (
	"github.com/swellyo/matching-platform/internal/intent"
	"github.com/swellyo/matching-platform/internal/model"
)

// Merge combines newly extracted filters with previously accumulated ones
// according to classified intent. It performs no I/O and never mutates its
// inputs.
//
// Laws: more returns existing unchanged; replace returns incoming unchanged,
// even when incoming is empty; add (and any other intent) shallow-merges with
// incoming fields winning on collision. Merge is whole-object; field-level
// partial replace is not supported.
func Merge(existing, incoming model.FilterSet, in intent.Intent) model.FilterSet {
	switch in {
	case intent.More:
		return existing.Clone()
	case intent.Replace:
		return incoming.Clone()
	}

	out := existing.Clone()
	inc := incoming.Clone()
	if len(inc.CountryFrom) > 0 {
		out.CountryFrom = dedupe(inc.CountryFrom)
	}
	if inc.AgeMin != nil {
		out.AgeMin = inc.AgeMin
	}
	if inc.AgeMax != nil {
		out.AgeMax = inc.AgeMax
	}
	if len(inc.Skill) > 0 {
		out.Skill = dedupeSkill(inc.Skill)
	}
	if len(inc.Equipment) > 0 {
		out.Equipment = dedupe(inc.Equipment)
	}
	if inc.MinDaysInDestination != nil {
		out.MinDaysInDestination = inc.MinDaysInDestination
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func dedupeSkill(in []model.SkillLevel) []model.SkillLevel {
	seen := make(map[model.SkillLevel]bool, len(in))
	out := make([]model.SkillLevel, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
