package dialog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/internal/telemetry"
	"github.com/tripware/travel-skill/internal/timex"
	"github.com/tripware/travel-skill/pkg/logger"
	"github.com/tripware/travel-skill/pkg/metrics"
)

// BookingDialogID identifies the slot-filling booking dialog.
const BookingDialogID = "BookingDialog"

const (
	destinationPromptText = "Where would you like to travel to?"
	originPromptText      = "Where are you traveling from?"
)

type bookingDialog struct {
	sink   telemetry.Sink
	logger *logger.Logger
}

// NewBookingDialog creates the waterfall that fills destination, origin and
// travel date, confirms with the user, and completes or cancels.
func NewBookingDialog(sink telemetry.Sink, log *logger.Logger) *Waterfall {
	b := &bookingDialog{sink: sink, logger: log}
	return NewWaterfall(BookingDialogID,
		b.destinationStep,
		b.originStep,
		b.travelDateStep,
		b.confirmStep,
		b.finalStep,
	)
}

func (b *bookingDialog) destinationStep(ctx context.Context, sc *StepContext) (StepResult, error) {
	var booking model.BookingRequest
	if err := sc.Frame.Options(&booking); err != nil {
		return StepResult{}, err
	}

	if booking.Destination == "" {
		return Prompt(AwaitText, destinationPromptText), nil
	}

	return Next(booking.Destination), nil
}

func (b *bookingDialog) originStep(ctx context.Context, sc *StepContext) (StepResult, error) {
	var booking model.BookingRequest
	if err := sc.Frame.Options(&booking); err != nil {
		return StepResult{}, err
	}

	booking.Destination = sc.ResultText()
	if err := sc.Frame.SetOptions(booking); err != nil {
		return StepResult{}, err
	}

	if booking.Origin == "" {
		return Prompt(AwaitText, originPromptText), nil
	}

	return Next(booking.Origin), nil
}

func (b *bookingDialog) travelDateStep(ctx context.Context, sc *StepContext) (StepResult, error) {
	var booking model.BookingRequest
	if err := sc.Frame.Options(&booking); err != nil {
		return StepResult{}, err
	}

	booking.Origin = sc.ResultText()
	if err := sc.Frame.SetOptions(booking); err != nil {
		return StepResult{}, err
	}

	if booking.TravelDate == "" || (!booking.MultipleDates && timex.IsAmbiguous(booking.TravelDate)) {
		return Begin(DateResolverDialogID, booking.TravelDate), nil
	}

	return Next(booking.TravelDate), nil
}

func (b *bookingDialog) confirmStep(ctx context.Context, sc *StepContext) (StepResult, error) {
	var booking model.BookingRequest
	if err := sc.Frame.Options(&booking); err != nil {
		return StepResult{}, err
	}

	booking.TravelDate = sc.ResultText()
	if err := sc.Frame.SetOptions(booking); err != nil {
		return StepResult{}, err
	}

	dates := booking.TravelDate
	if !booking.MultipleDates {
		dates = "on: " + booking.TravelDate
	}
	text := fmt.Sprintf("Please confirm, I have you traveling to: %s from: %s %s. Is this correct?",
		booking.Destination, booking.Origin, dates)

	return Prompt(AwaitConfirm, text), nil
}

func (b *bookingDialog) finalStep(ctx context.Context, sc *StepContext) (StepResult, error) {
	if !sc.ResultBool() {
		metrics.BookingsTotal.WithLabelValues("declined").Inc()
		return End(nil), nil
	}

	var booking model.BookingRequest
	if err := sc.Frame.Options(&booking); err != nil {
		return StepResult{}, err
	}

	conversationID := sc.Turn.Activity.ConversationID
	b.sink.TrackEvent(ctx, "Booking", map[string]string{
		"conversationId": conversationID,
		"origin":         booking.Origin,
		"destination":    booking.Destination,
		"travelDate":     booking.TravelDate,
	})
	metrics.BookingsTotal.WithLabelValues("completed").Inc()

	b.logger.Info("booking confirmed",
		zap.String("conversation_id", conversationID),
		zap.String("destination", booking.Destination),
		zap.String("origin", booking.Origin),
		zap.String("travel_date", booking.TravelDate),
	)

	return End(booking), nil
}
