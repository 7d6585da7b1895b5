package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellyo/matching-platform/internal/geo"
	"github.com/swellyo/matching-platform/internal/model"
)

func newTestFallback() *Fallback {
	return NewFallback(geo.NewValidator(nil, nopLogger()))
}

func TestFallbackExtractKeywords(t *testing.T) {
	fb := newTestFallback()

	got := fb.Extract(context.Background(), "advanced surfers aged 25-35 with a shortboard from Israel or Portugal")

	require.NotNil(t, got.Filters.AgeMin)
	assert.Equal(t, 25, *got.Filters.AgeMin)
	require.NotNil(t, got.Filters.AgeMax)
	assert.Equal(t, 35, *got.Filters.AgeMax)
	assert.ElementsMatch(t, []model.SkillLevel{model.SkillAdvanced, model.SkillPro}, got.Filters.Skill)
	assert.Equal(t, []string{"shortboard"}, got.Filters.Equipment)
	assert.Equal(t, []string{"Israel", "Portugal"}, got.Filters.CountryFrom)
}

func TestFallbackExtractMinDays(t *testing.T) {
	fb := newTestFallback()

	got := fb.Extract(context.Background(), "people staying at least 14 days")
	require.NotNil(t, got.Filters.MinDaysInDestination)
	assert.Equal(t, 14, *got.Filters.MinDaysInDestination)

	got = fb.Extract(context.Background(), "21+ days in town")
	require.NotNil(t, got.Filters.MinDaysInDestination)
	assert.Equal(t, 21, *got.Filters.MinDaysInDestination)
}

func TestFallbackExtractIgnoresTripLengthAsAge(t *testing.T) {
	fb := newTestFallback()

	got := fb.Extract(context.Background(), "staying 10-14 days")
	assert.Nil(t, got.Filters.AgeMin)
	assert.Nil(t, got.Filters.AgeMax)
}

func TestFallbackExtractSwapsInvertedRange(t *testing.T) {
	fb := newTestFallback()

	got := fb.Extract(context.Background(), "between 35-20 years old")
	require.NotNil(t, got.Filters.AgeMin)
	assert.Equal(t, 20, *got.Filters.AgeMin)
	require.NotNil(t, got.Filters.AgeMax)
	assert.Equal(t, 35, *got.Filters.AgeMax)
}

func TestFallbackExtractNothing(t *testing.T) {
	fb := newTestFallback()

	got := fb.Extract(context.Background(), "sounds good, let's do it")
	assert.True(t, got.Filters.IsEmpty())
}

func TestGuessDestination(t *testing.T) {
	fb := newTestFallback()

	dest := fb.GuessDestination("thinking about a surf trip to indonesia")
	require.NotNil(t, dest)
	assert.Equal(t, "Indonesia", dest.Country)

	assert.Nil(t, fb.GuessDestination("somewhere with good waves"))
}
