package model

// SkillLevel is a surf skill category.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillPro          SkillLevel = "pro"
)

// ValidSkillLevel reports whether s is a known skill category.
func ValidSkillLevel(s SkillLevel) bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillPro:
		return true
	}
	return false
}

// FilterSet is the structured, validated set of match-filtering criteria.
// Absent fields are nil/empty; there are no null sentinels inside values.
type FilterSet struct {
	CountryFrom          []string     `json:"country_from,omitempty"`
	AgeMin               *int         `json:"age_min,omitempty"`
	AgeMax               *int         `json:"age_max,omitempty"`
	Skill                []SkillLevel `json:"skill,omitempty"`
	Equipment            []string     `json:"equipment,omitempty"`
	MinDaysInDestination *int         `json:"min_days_in_destination,omitempty"`
}

// IsEmpty reports whether no filter field is set.
func (f FilterSet) IsEmpty() bool {
	return len(f.CountryFrom) == 0 &&
		f.AgeMin == nil &&
		f.AgeMax == nil &&
		len(f.Skill) == 0 &&
		len(f.Equipment) == 0 &&
		f.MinDaysInDestination == nil
}

// Clone returns a deep copy of the filter set.
func (f FilterSet) Clone() FilterSet {
	out := FilterSet{}
	if len(f.CountryFrom) > 0 {
		out.CountryFrom = append([]string(nil), f.CountryFrom...)
	}
	if len(f.Skill) > 0 {
		out.Skill = append([]SkillLevel(nil), f.Skill...)
	}
	if len(f.Equipment) > 0 {
		out.Equipment = append([]string(nil), f.Equipment...)
	}
	out.AgeMin = cloneInt(f.AgeMin)
	out.AgeMax = cloneInt(f.AgeMax)
	out.MinDaysInDestination = cloneInt(f.MinDaysInDestination)
	return out
}

// NormalizeSkill enforces the category rule that "advanced" always implies
// "pro", and drops unknown categories and duplicates.
func (f *FilterSet) NormalizeSkill() {
	if len(f.Skill) == 0 {
		return
	}
	seen := make(map[SkillLevel]bool, len(f.Skill))
	out := f.Skill[:0]
	hasAdvanced := false
	for _, s := range f.Skill {
		if !ValidSkillLevel(s) || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if s == SkillAdvanced {
			hasAdvanced = true
		}
	}
	if hasAdvanced && !seen[SkillPro] {
		out = append(out, SkillPro)
	}
	f.Skill = out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ExtractionResult is the outcome of one filter-extraction pass over a single
// user utterance.
type ExtractionResult struct {
	Filters    FilterSet `json:"filters"`
	Unmappable []string  `json:"unmappable,omitempty"`
	Rationale  string    `json:"rationale,omitempty"`
}
