package dialog_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripware/travel-skill/internal/dialog"
	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/internal/state"
	"github.com/tripware/travel-skill/pkg/logger"
)

// captureSink records telemetry events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	name       string
	properties map[string]string
}

func (s *captureSink) TrackEvent(ctx context.Context, name string, properties map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, capturedEvent{name: name, properties: properties})
}

func newBookingEngine(t *testing.T) (*dialog.Engine, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	engine := dialog.NewEngine(state.NewMemoryStore(), logger.NewNop())
	engine.Register(dialog.NewBookingDialog(sink, logger.NewNop()))
	engine.Register(dialog.NewDateResolverDialog())
	engine.SetRoot(dialog.BookingDialogID)
	return engine, sink
}

func message(conversationID, text string) *dialog.TurnContext {
	return dialog.NewTurnContext(&model.Activity{
		Type:           model.ActivityTypeMessage,
		Text:           text,
		ConversationID: conversationID,
	})
}

func runTurn(t *testing.T, engine *dialog.Engine, tc *dialog.TurnContext) *dialog.TurnResult {
	t.Helper()
	result, err := engine.RunTurn(context.Background(), tc)
	require.NoError(t, err)
	return result
}

func replyTexts(tc *dialog.TurnContext) []string {
	var texts []string
	for _, a := range tc.Replies() {
		texts = append(texts, a.Text)
	}
	return texts
}

func TestBookingFullWaterfall(t *testing.T) {
	engine, sink := newBookingEngine(t)
	conv := "conv-full"

	tc := message(conv, "hi")
	result := runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{"Where would you like to travel to?"}, replyTexts(tc))

	tc = message(conv, "Paris")
	result = runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{"Where are you traveling from?"}, replyTexts(tc))

	tc = message(conv, "Berlin")
	result = runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{"On what date would you like to travel?"}, replyTexts(tc))

	tc = message(conv, "2026-05-01")
	result = runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{
		"Please confirm, I have you traveling to: Paris from: Berlin on: 2026-05-01. Is this correct?",
	}, replyTexts(tc))

	tc = message(conv, "yes")
	result = runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusComplete, result.Status)

	booking, ok := result.Result.(model.BookingRequest)
	require.True(t, ok)
	assert.Equal(t, "Paris", booking.Destination)
	assert.Equal(t, "Berlin", booking.Origin)
	assert.Equal(t, "2026-05-01", booking.TravelDate)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "Booking", sink.events[0].name)
	assert.Equal(t, map[string]string{
		"conversationId": conv,
		"origin":         "Berlin",
		"destination":    "Paris",
		"travelDate":     "2026-05-01",
	}, sink.events[0].properties)
}

func TestBookingSkipsPrefilledSlots(t *testing.T) {
	// The parent begins the booking dialog with destination and a definite
	// travel date already filled; only the origin should be asked for.
	sink := &captureSink{}
	engine := dialog.NewEngine(state.NewMemoryStore(), logger.NewNop())
	engine.Register(dialog.NewWaterfall("Root",
		func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
			return dialog.Begin(dialog.BookingDialogID, model.BookingRequest{
				Destination: "Paris",
				TravelDate:  "2026-05-01",
			}), nil
		},
		func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
			return dialog.End(sc.Result), nil
		},
	))
	engine.Register(dialog.NewBookingDialog(sink, logger.NewNop()))
	engine.Register(dialog.NewDateResolverDialog())
	engine.SetRoot("Root")

	conv := "conv-prefilled"
	tc := message(conv, "book me a flight")
	result := runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{"Where are you traveling from?"}, replyTexts(tc))

	tc = message(conv, "Berlin")
	result = runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{
		"Please confirm, I have you traveling to: Paris from: Berlin on: 2026-05-01. Is this correct?",
	}, replyTexts(tc))

	tc = message(conv, "yes")
	result = runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusComplete, result.Status)

	booking, ok := result.Result.(model.BookingRequest)
	require.True(t, ok)
	assert.Equal(t, "Paris", booking.Destination)
	assert.Equal(t, "Berlin", booking.Origin)
}

func TestBookingAmbiguousDateRepromptedOnce(t *testing.T) {
	engine, _ := newBookingEngine(t)
	conv := "conv-ambiguous"

	runTurn(t, engine, message(conv, "hi"))
	runTurn(t, engine, message(conv, "Paris"))

	tc := message(conv, "Berlin")
	runTurn(t, engine, tc)
	assert.Equal(t, []string{"On what date would you like to travel?"}, replyTexts(tc))

	// An ambiguous answer draws exactly one retry prompt.
	tc = message(conv, "friday")
	result := runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{
		"I'm sorry, for best results, please enter your travel date including the month, day and year.",
	}, replyTexts(tc))

	// The second answer is accepted as given, even if still ambiguous.
	tc = message(conv, "friday")
	result = runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{
		"Please confirm, I have you traveling to: Paris from: Berlin on: friday. Is this correct?",
	}, replyTexts(tc))
}

func TestBookingDeclinedAtConfirmation(t *testing.T) {
	engine, sink := newBookingEngine(t)
	conv := "conv-declined"

	runTurn(t, engine, message(conv, "hi"))
	runTurn(t, engine, message(conv, "Paris"))
	runTurn(t, engine, message(conv, "Berlin"))
	runTurn(t, engine, message(conv, "2026-05-01"))

	result := runTurn(t, engine, message(conv, "no"))
	assert.Equal(t, dialog.TurnStatusComplete, result.Status)
	assert.Nil(t, result.Result)
	assert.Empty(t, sink.events)
}

func TestBookingConfirmRetriesOnUnparseableAnswer(t *testing.T) {
	engine, _ := newBookingEngine(t)
	conv := "conv-confirm-retry"

	runTurn(t, engine, message(conv, "hi"))
	runTurn(t, engine, message(conv, "Paris"))
	runTurn(t, engine, message(conv, "Berlin"))
	runTurn(t, engine, message(conv, "2026-05-01"))

	tc := message(conv, "maybe")
	result := runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	assert.Equal(t, []string{
		"Please answer with yes or no.",
		"Please confirm, I have you traveling to: Paris from: Berlin on: 2026-05-01. Is this correct?",
	}, replyTexts(tc))

	result = runTurn(t, engine, message(conv, "yes"))
	assert.Equal(t, dialog.TurnStatusComplete, result.Status)
}

func TestCancelInterruptionClearsState(t *testing.T) {
	engine, _ := newBookingEngine(t)
	conv := "conv-cancel"

	runTurn(t, engine, message(conv, "hi"))
	runTurn(t, engine, message(conv, "Paris"))

	tc := message(conv, "cancel")
	result := runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusCancelled, result.Status)
	assert.Equal(t, []string{"Cancelling..."}, replyTexts(tc))

	// The stack is gone; the next turn starts the dialog from scratch.
	tc = message(conv, "hi")
	runTurn(t, engine, tc)
	assert.Equal(t, []string{"Where would you like to travel to?"}, replyTexts(tc))
}

func TestHelpInterruptionKeepsStack(t *testing.T) {
	engine, _ := newBookingEngine(t)
	conv := "conv-help"

	runTurn(t, engine, message(conv, "hi"))

	tc := message(conv, "help")
	result := runTurn(t, engine, tc)
	assert.Equal(t, dialog.TurnStatusWaiting, result.Status)
	require.Len(t, tc.Replies(), 1)
	assert.Contains(t, tc.Replies()[0].Text, "cancel")

	// The suspended prompt still accepts its answer afterwards.
	tc = message(conv, "Paris")
	runTurn(t, engine, tc)
	assert.Equal(t, []string{"Where are you traveling from?"}, replyTexts(tc))
}

func TestConversationsAreIsolated(t *testing.T) {
	engine, _ := newBookingEngine(t)

	runTurn(t, engine, message("conv-a", "hi"))
	runTurn(t, engine, message("conv-a", "Paris"))

	// A fresh conversation starts at the top of the waterfall regardless of
	// progress elsewhere.
	tc := message("conv-b", "hi")
	runTurn(t, engine, tc)
	assert.Equal(t, []string{"Where would you like to travel to?"}, replyTexts(tc))
}

func TestUnregisteredDialogFails(t *testing.T) {
	engine := dialog.NewEngine(state.NewMemoryStore(), logger.NewNop())
	engine.Register(dialog.NewWaterfall("Root",
		func(ctx context.Context, sc *dialog.StepContext) (dialog.StepResult, error) {
			return dialog.Begin("Missing", nil), nil
		},
	))

	_, err := engine.RunTurn(context.Background(), message("conv-x", "hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}
