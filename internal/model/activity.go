// Package model defines data structures exchanged between the skill and its callers.
package model

import (
	"encoding/json"
	"time"
)

// ActivityType represents the type of a conversational activity.
type ActivityType string

const (
	ActivityTypeMessage           ActivityType = "message"
	ActivityTypeEvent             ActivityType = "event"
	ActivityTypeEndOfConversation ActivityType = "endOfConversation"
	ActivityTypeTrace             ActivityType = "trace"
)

// EndOfConversation codes reported to the parent bot.
const (
	EndOfConversationCompleted = "completedSuccessfully"
	EndOfConversationCancelled = "userCancelled"
	EndOfConversationError     = "SkillError"
)

// Activity is one unit of conversational input or output exchanged per turn.
type Activity struct {
	ID             string          `json:"id,omitempty"`
	Type           ActivityType    `json:"type"`
	Name           string          `json:"name,omitempty"`
	Text           string          `json:"text,omitempty"`
	Value          json.RawMessage `json:"value,omitempty"`
	Code           string          `json:"code,omitempty"`
	ConversationID string          `json:"conversation_id"`
	From           string          `json:"from,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// NewReply creates an outbound message activity for the same conversation.
func NewReply(conversationID, text string) *Activity {
	return &Activity{
		Type:           ActivityTypeMessage,
		Text:           text,
		ConversationID: conversationID,
		CreatedAt:      time.Now(),
	}
}

// NewEndOfConversation creates the terminal activity returned to the parent
// bot, carrying either a completed result or an error code.
func NewEndOfConversation(conversationID, code, text string, value any) *Activity {
	a := &Activity{
		Type:           ActivityTypeEndOfConversation,
		Code:           code,
		Text:           text,
		ConversationID: conversationID,
		CreatedAt:      time.Now(),
	}
	if value != nil {
		if data, err := json.Marshal(value); err == nil {
			a.Value = data
		}
	}
	return a
}
