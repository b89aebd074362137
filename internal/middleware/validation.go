package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/tripware/travel-skill/internal/model"
)

// ValidateActivity validates an inbound activity before it reaches the
// dialog engine.
func ValidateActivity(a *model.Activity) error {
	if a.ConversationID == "" {
		return errors.New("conversation_id cannot be empty")
	}
	if len(a.ConversationID) > 256 {
		return errors.New("conversation_id exceeds maximum length")
	}
	if a.Type == "" {
		return errors.New("activity type cannot be empty")
	}
	if len(a.Text) > 100000 { // ~100KB limit
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(a.Text) {
		return errors.New("text must be valid UTF-8")
	}
	if a.Type == model.ActivityTypeEvent && a.Name == "" {
		return errors.New("event activities require a name")
	}
	return nil
}
