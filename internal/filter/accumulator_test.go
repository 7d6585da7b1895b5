package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellyo/matching-platform/internal/intent"
	"github.com/swellyo/matching-platform/internal/model"
)

func intPtr(v int) *int { return &v }

func sampleExisting() model.FilterSet {
	return model.FilterSet{
		CountryFrom: []string{"Israel", "Portugal"},
		AgeMin:      intPtr(20),
		AgeMax:      intPtr(35),
		Skill:       []model.SkillLevel{model.SkillIntermediate},
	}
}

func sampleIncoming() model.FilterSet {
	return model.FilterSet{
		CountryFrom: []string{"Brazil - Santa Catarina"},
		Skill:       []model.SkillLevel{model.SkillAdvanced, model.SkillPro},
		Equipment:   []string{"shortboard"},
	}
}

func TestMergeMoreReturnsExisting(t *testing.T) {
	existing := sampleExisting()
	got := Merge(existing, sampleIncoming(), intent.More)
	assert.Equal(t, existing, got)

	// empty incoming as well
	got = Merge(existing, model.FilterSet{}, intent.More)
	assert.Equal(t, existing, got)
}

func TestMergeReplaceReturnsIncoming(t *testing.T) {
	incoming := sampleIncoming()
	got := Merge(sampleExisting(), incoming, intent.Replace)
	assert.Equal(t, incoming, got)
}

func TestMergeReplaceWithEmptyIncomingClearsEverything(t *testing.T) {
	got := Merge(sampleExisting(), model.FilterSet{}, intent.Replace)
	assert.True(t, got.IsEmpty())
}

func TestMergeAddIncomingWinsOnCollision(t *testing.T) {
	got := Merge(sampleExisting(), sampleIncoming(), intent.Add)

	assert.Equal(t, []string{"Brazil - Santa Catarina"}, got.CountryFrom)
	assert.Equal(t, []model.SkillLevel{model.SkillAdvanced, model.SkillPro}, got.Skill)
	assert.Equal(t, []string{"shortboard"}, got.Equipment)

	// untouched fields survive
	require.NotNil(t, got.AgeMin)
	assert.Equal(t, 20, *got.AgeMin)
	require.NotNil(t, got.AgeMax)
	assert.Equal(t, 35, *got.AgeMax)
}

func TestMergeAddDeduplicatesSlices(t *testing.T) {
	incoming := model.FilterSet{
		CountryFrom: []string{"Israel", "Israel", "France"},
		Equipment:   []string{"fish", "fish"},
	}
	got := Merge(model.FilterSet{}, incoming, intent.Add)

	assert.Equal(t, []string{"Israel", "France"}, got.CountryFrom)
	assert.Equal(t, []string{"fish"}, got.Equipment)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := sampleExisting()
	incoming := sampleIncoming()
	_ = Merge(existing, incoming, intent.Add)

	assert.Equal(t, sampleExisting(), existing)
	assert.Equal(t, sampleIncoming(), incoming)
}

func TestMergeUnknownIntentBehavesLikeAdd(t *testing.T) {
	got := Merge(sampleExisting(), sampleIncoming(), intent.Unclear)
	want := Merge(sampleExisting(), sampleIncoming(), intent.Add)
	assert.Equal(t, want, got)
}
