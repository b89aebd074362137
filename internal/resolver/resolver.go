// Package resolver reduces raw recognizer entities into a booking draft.
package resolver

import (
	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/internal/timex"
)

// Resolve keeps one winning entity per category and builds a partially
// filled BookingRequest from the winners.
//
// Within a category only a strictly greater confidence replaces the
// incumbent, so the first entity encountered wins ties. A missing
// Destination or Date category is not an error; the waterfall asks the
// user for absent slots. Origin is never populated here.
func Resolve(entities []model.Entity) model.BookingRequest {
	winners := make(map[string]model.Entity)
	for _, entity := range entities {
		incumbent, ok := winners[entity.Category]
		if !ok || incumbent.Confidence < entity.Confidence {
			winners[entity.Category] = entity
		}
	}

	draft := model.BookingRequest{}
	if destination, ok := winners[model.EntityCategoryDestination]; ok {
		draft.Destination = destination.Text
	}
	if date, ok := winners[model.EntityCategoryDate]; ok {
		draft.TravelDate = date.Text
	}

	// An unparseable or absent date text stands for multiple or partial
	// dates, not a failure.
	_, validDate := timex.ParseDate(draft.TravelDate)
	draft.MultipleDates = !validDate

	return draft
}
