package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripware/travel-skill/internal/model"
)

func TestResolvePicksHighestConfidencePerCategory(t *testing.T) {
	draft := Resolve([]model.Entity{
		{Category: model.EntityCategoryDestination, Text: "Paris", Confidence: 0.55},
		{Category: model.EntityCategoryDestination, Text: "Berlin", Confidence: 0.91},
		{Category: model.EntityCategoryDate, Text: "2026-05-01", Confidence: 0.80},
	})

	assert.Equal(t, "Berlin", draft.Destination)
	assert.Equal(t, "2026-05-01", draft.TravelDate)
	assert.False(t, draft.MultipleDates)
}

func TestResolveTieKeepsFirstEntity(t *testing.T) {
	draft := Resolve([]model.Entity{
		{Category: model.EntityCategoryDestination, Text: "Paris", Confidence: 0.75},
		{Category: model.EntityCategoryDestination, Text: "Berlin", Confidence: 0.75},
	})

	assert.Equal(t, "Paris", draft.Destination)
}

func TestResolveOriginNeverPopulated(t *testing.T) {
	draft := Resolve([]model.Entity{
		{Category: "Origin", Text: "Seattle", Confidence: 0.99},
		{Category: model.EntityCategoryDestination, Text: "Paris", Confidence: 0.9},
	})

	assert.Empty(t, draft.Origin)
	assert.Equal(t, "Paris", draft.Destination)
}

func TestResolveAmbiguousDateFlagsMultipleDates(t *testing.T) {
	tests := []struct {
		name     string
		entities []model.Entity
		multiple bool
	}{
		{
			"definite date",
			[]model.Entity{{Category: model.EntityCategoryDate, Text: "2026-05-01", Confidence: 0.9}},
			false,
		},
		{
			"weekday only",
			[]model.Entity{{Category: model.EntityCategoryDate, Text: "friday", Confidence: 0.9}},
			true,
		},
		{
			"no date entity",
			[]model.Entity{{Category: model.EntityCategoryDestination, Text: "Paris", Confidence: 0.9}},
			true,
		},
		{
			"garbage date text",
			[]model.Entity{{Category: model.EntityCategoryDate, Text: "whenever works", Confidence: 0.9}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := Resolve(tt.entities)
			assert.Equal(t, tt.multiple, draft.MultipleDates)
		})
	}
}

func TestResolveNoEntities(t *testing.T) {
	draft := Resolve(nil)

	assert.Empty(t, draft.Destination)
	assert.Empty(t, draft.Origin)
	assert.Empty(t, draft.TravelDate)
	assert.True(t, draft.MultipleDates)
}
