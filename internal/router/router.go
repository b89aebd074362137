// Package router dispatches inbound activities: events go straight to a
// handler table, messages go through intent recognition, and booking
// requests start the slot-filling dialog.
package router

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tripware/travel-skill/internal/dialog"
	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/internal/recognizer"
	"github.com/tripware/travel-skill/internal/resolver"
	"github.com/tripware/travel-skill/pkg/logger"
	"github.com/tripware/travel-skill/pkg/metrics"
)

// DialogID identifies the root activity-routing dialog.
const DialogID = "ActivityRouterDialog"

// Event names dispatched without recognition.
const (
	EventBookFlight = "BookFlight"
	EventGetWeather = "GetWeather"
)

const notConfiguredText = "NOTE: Intent recognition is not configured. " +
	"To enable all capabilities, set NLU_PROVIDER and NLU_API_KEY."

// EventHandler handles one named event activity.
type EventHandler func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error)

// Router is the top-level activity dispatcher, run as the engine's root
// dialog.
type Router struct {
	recognizer    recognizer.Recognizer
	bookingIntent string
	logger        *logger.Logger
	events        map[string]EventHandler
}

// New creates a router. rec may be nil when no recognizer is configured;
// message activities then get a configuration-missing diagnostic.
func New(rec recognizer.Recognizer, bookingIntent string, log *logger.Logger) *Router {
	r := &Router{
		recognizer:    rec,
		bookingIntent: bookingIntent,
		logger:        log,
		events:        make(map[string]EventHandler),
	}
	r.HandleEvent(EventBookFlight, r.beginBookFlight)
	r.HandleEvent(EventGetWeather, r.getWeather)
	return r
}

// HandleEvent registers a handler for an event name, replacing any
// previous handler for that name.
func (r *Router) HandleEvent(name string, handler EventHandler) {
	r.events[name] = handler
}

// Dialog returns the router as the engine's root waterfall.
func (r *Router) Dialog() *dialog.Waterfall {
	return dialog.NewWaterfall(DialogID, r.processActivity, r.finalStep)
}

func (r *Router) processActivity(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	activity := sc.Turn.Activity

	r.logger.Debug("processing activity",
		zap.String("conversation_id", activity.ConversationID),
		zap.String("type", string(activity.Type)),
		zap.String("name", activity.Name),
		zap.ByteString("value", activity.Value),
	)
	metrics.ActivitiesTotal.WithLabelValues(string(activity.Type)).Inc()

	switch activity.Type {
	case model.ActivityTypeEvent:
		return r.onEvent(ctx, sc)

	case model.ActivityTypeMessage:
		return r.onMessage(ctx, sc)

	default:
		sc.Turn.SendText(fmt.Sprintf("Unrecognized ActivityType: %q.", string(activity.Type)))
		return dialog.End(nil), nil
	}
}

// onEvent dispatches strictly by event name. Event payloads are trusted as
// already-structured slot data and skip recognition entirely.
func (r *Router) onEvent(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	activity := sc.Turn.Activity

	handler, ok := r.events[activity.Name]
	if !ok {
		sc.Turn.SendText(fmt.Sprintf("Unrecognized EventName: %q.", activity.Name))
		return dialog.End(nil), nil
	}
	return handler(ctx, sc)
}

func (r *Router) onMessage(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	activity := sc.Turn.Activity

	if r.recognizer == nil || !r.recognizer.IsConfigured() {
		sc.Turn.SendText(notConfiguredText)
		return dialog.End(nil), nil
	}

	result, err := r.recognizer.Recognize(ctx, activity.Text)
	if err != nil {
		return dialog.StepResult{}, fmt.Errorf("intent recognition failed: %w", err)
	}

	intent, score := result.TopIntent()
	sc.Turn.SendText(fmt.Sprintf("Recognition results for %q:\nIntent: %q Score: %.2f", activity.Text, intent, score))

	switch intent {
	case r.bookingIntent:
		draft := resolver.Resolve(result.Entities)
		if data, err := json.Marshal(draft); err == nil {
			activity.Value = data
		}
		return dialog.Begin(dialog.BookingDialogID, draft), nil

	case "GetWeather":
		return r.getWeather(ctx, sc)

	default:
		sc.Turn.SendText(fmt.Sprintf("Sorry, I didn't get that. Please try asking in a different way (intent was %s)", intent))
		return dialog.End(nil), nil
	}
}

// beginBookFlight starts the booking dialog from an event payload. A
// payload that fails to decode is rejected with a diagnostic rather than
// silently replaced by an empty booking.
func (r *Router) beginBookFlight(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	activity := sc.Turn.Activity

	var booking model.BookingRequest
	if len(activity.Value) > 0 {
		if err := json.Unmarshal(activity.Value, &booking); err != nil {
			r.logger.Warn("rejected malformed event payload",
				zap.String("conversation_id", activity.ConversationID),
				zap.Error(err),
			)
			sc.Turn.SendText("Malformed BookingRequest payload.")
			return dialog.End(nil), nil
		}
	}

	return dialog.Begin(dialog.BookingDialogID, booking), nil
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// getWeather is a stub action; the skill advertises it but has no weather
// backend.
func (r *Router) getWeather(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	activity := sc.Turn.Activity

	var loc location
	if len(activity.Value) > 0 {
		// Best effort; the stub reply renders zeros for a missing payload.
		_ = json.Unmarshal(activity.Value, &loc)
	}

	sc.Turn.SendText(fmt.Sprintf("It's always sunny here in Florida! (lat: %v, long: %v)", loc.Latitude, loc.Longitude))
	return dialog.End(nil), nil
}

func (r *Router) finalStep(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
	return dialog.End(sc.Result), nil
}
