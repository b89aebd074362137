// Package handler provides HTTP handlers for the skill host.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tripware/travel-skill/internal/dialog"
	"github.com/tripware/travel-skill/internal/middleware"
	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/pkg/logger"
	"github.com/tripware/travel-skill/pkg/metrics"
)

// TurnResponse is the reply envelope returned to the parent bot: every
// outbound activity produced while processing the inbound one.
type TurnResponse struct {
	Activities []*model.Activity `json:"activities"`
}

// MessagesHandler runs one dialog turn per inbound activity.
type MessagesHandler struct {
	engine *dialog.Engine
	store  dialog.Store
	logger *logger.Logger
	tracer trace.Tracer
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(engine *dialog.Engine, store dialog.Store, log *logger.Logger) *MessagesHandler {
	return &MessagesHandler{
		engine: engine,
		store:  store,
		logger: log,
		tracer: otel.Tracer("travel-skill"),
	}
}

// Process handles POST /api/messages
func (h *MessagesHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var activity model.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateActivity(&activity); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := h.tracer.Start(ctx, "skill.turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("conversation.id", activity.ConversationID),
		attribute.String("activity.type", string(activity.Type)),
	)

	log := h.logger.WithConversation(middleware.GetCorrelationID(ctx), activity.ConversationID)

	tc := dialog.NewTurnContext(&activity)
	result, err := h.engine.RunTurn(ctx, tc)
	if err != nil {
		h.failTurn(ctx, w, &activity, err)
		return
	}
	log.Debug("turn finished",
		zap.String("status", string(result.Status)),
		zap.Int("replies", len(tc.Replies())),
	)

	replies := tc.Replies()
	switch result.Status {
	case dialog.TurnStatusComplete:
		replies = append(replies, model.NewEndOfConversation(
			activity.ConversationID, model.EndOfConversationCompleted, "", result.Result))
	case dialog.TurnStatusCancelled:
		replies = append(replies, model.NewEndOfConversation(
			activity.ConversationID, model.EndOfConversationCancelled, "", nil))
	}

	writeJSON(w, http.StatusOK, &TurnResponse{Activities: replies})
}

// failTurn is the single translation point for unhandled turn failures:
// notify the user, hand control back to the parent bot with an error code,
// and clear conversation state so a retry does not resume a broken stack.
func (h *MessagesHandler) failTurn(ctx context.Context, w http.ResponseWriter, activity *model.Activity, err error) {
	h.logger.Error("unhandled turn error",
		zap.String("conversation_id", activity.ConversationID),
		zap.Error(err),
	)
	metrics.TurnFailuresTotal.Inc()

	if clearErr := h.store.Clear(ctx, activity.ConversationID); clearErr != nil {
		h.logger.Error("failed to clear conversation state",
			zap.String("conversation_id", activity.ConversationID),
			zap.Error(clearErr),
		)
	}

	replies := []*model.Activity{
		model.NewReply(activity.ConversationID, "The skill encountered an error or bug."),
		model.NewReply(activity.ConversationID, "To continue to run this skill, please fix the skill source code."),
		model.NewEndOfConversation(activity.ConversationID, model.EndOfConversationError, err.Error(), nil),
	}

	writeJSON(w, http.StatusOK, &TurnResponse{Activities: replies})
}
