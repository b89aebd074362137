package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripware/travel-skill/internal/dialog"
	"github.com/tripware/travel-skill/internal/handler"
	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/internal/router"
	"github.com/tripware/travel-skill/internal/state"
	"github.com/tripware/travel-skill/internal/telemetry"
	"github.com/tripware/travel-skill/pkg/logger"
)

type errorRecognizer struct{}

func (errorRecognizer) Recognize(ctx context.Context, text string) (*model.RecognitionResult, error) {
	return nil, errors.New("recognition backend down")
}
func (errorRecognizer) IsConfigured() bool { return true }
func (errorRecognizer) Name() string       { return "error" }

func newHandler(t *testing.T, withErrorRecognizer bool) (*handler.MessagesHandler, dialog.Store) {
	t.Helper()
	store := state.NewMemoryStore()

	var r *router.Router
	if withErrorRecognizer {
		r = router.New(errorRecognizer{}, "BookFlight", logger.NewNop())
	} else {
		r = router.New(nil, "BookFlight", logger.NewNop())
	}

	engine := dialog.NewEngine(store, logger.NewNop())
	engine.Register(r.Dialog())
	engine.Register(dialog.NewBookingDialog(telemetry.Noop{}, logger.NewNop()))
	engine.Register(dialog.NewDateResolverDialog())
	engine.SetRoot(router.DialogID)

	return handler.NewMessagesHandler(engine, store, logger.NewNop()), store
}

func post(t *testing.T, h *handler.MessagesHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Process(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) handler.TurnResponse {
	t.Helper()
	var resp handler.TurnResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestProcessRejectsInvalidBody(t *testing.T) {
	h, _ := newHandler(t, false)

	rec := post(t, h, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessRejectsMissingConversationID(t *testing.T) {
	h, _ := newHandler(t, false)

	body, _ := json.Marshal(model.Activity{Type: model.ActivityTypeMessage, Text: "hi"})
	rec := post(t, h, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessCompletedTurnAppendsEndOfConversation(t *testing.T) {
	h, _ := newHandler(t, false)

	body, _ := json.Marshal(model.Activity{
		Type:           model.ActivityTypeMessage,
		Text:           "book a flight",
		ConversationID: "conv-1",
	})
	rec := post(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Len(t, resp.Activities, 2)
	assert.Contains(t, resp.Activities[0].Text, "Intent recognition is not configured")

	eoc := resp.Activities[1]
	assert.Equal(t, model.ActivityTypeEndOfConversation, eoc.Type)
	assert.Equal(t, model.EndOfConversationCompleted, eoc.Code)
}

func TestProcessWaitingTurnHasNoEndOfConversation(t *testing.T) {
	h, _ := newHandler(t, false)

	body, _ := json.Marshal(model.Activity{
		Type:           model.ActivityTypeEvent,
		Name:           router.EventBookFlight,
		ConversationID: "conv-1",
	})
	rec := post(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Len(t, resp.Activities, 1)
	assert.Equal(t, model.ActivityTypeMessage, resp.Activities[0].Type)
	assert.Equal(t, "Where would you like to travel to?", resp.Activities[0].Text)
}

func TestProcessCancelledTurnAppendsUserCancelled(t *testing.T) {
	h, _ := newHandler(t, false)

	begin, _ := json.Marshal(model.Activity{
		Type:           model.ActivityTypeEvent,
		Name:           router.EventBookFlight,
		ConversationID: "conv-1",
	})
	post(t, h, begin)

	cancel, _ := json.Marshal(model.Activity{
		Type:           model.ActivityTypeMessage,
		Text:           "cancel",
		ConversationID: "conv-1",
	})
	rec := post(t, h, cancel)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Len(t, resp.Activities, 2)
	assert.Equal(t, "Cancelling...", resp.Activities[0].Text)

	eoc := resp.Activities[1]
	assert.Equal(t, model.ActivityTypeEndOfConversation, eoc.Type)
	assert.Equal(t, model.EndOfConversationCancelled, eoc.Code)
}

func TestProcessTurnErrorClearsStateAndReportsSkillError(t *testing.T) {
	h, store := newHandler(t, true)

	body, _ := json.Marshal(model.Activity{
		Type:           model.ActivityTypeMessage,
		Text:           "book a flight",
		ConversationID: "conv-err",
	})
	rec := post(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Len(t, resp.Activities, 3)
	assert.Equal(t, "The skill encountered an error or bug.", resp.Activities[0].Text)
	assert.Equal(t, "To continue to run this skill, please fix the skill source code.", resp.Activities[1].Text)

	eoc := resp.Activities[2]
	assert.Equal(t, model.ActivityTypeEndOfConversation, eoc.Type)
	assert.Equal(t, model.EndOfConversationError, eoc.Code)
	assert.Contains(t, eoc.Text, "recognition backend down")

	st, err := store.Load(context.Background(), "conv-err")
	require.NoError(t, err)
	assert.True(t, st.Empty())
}
