// Package dialog implements the resumable dialog runtime: an explicit stack
// of waterfall frames persisted per conversation, resumed one turn at a time.
package dialog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tripware/travel-skill/internal/model"
)

// TurnContext carries the inbound activity for one turn and collects the
// outbound activities produced while processing it.
type TurnContext struct {
	Activity *model.Activity

	replies []*model.Activity
}

// NewTurnContext creates a turn context for an inbound activity.
func NewTurnContext(activity *model.Activity) *TurnContext {
	return &TurnContext{Activity: activity}
}

// SendText queues an outbound message reply.
func (tc *TurnContext) SendText(text string) {
	reply := model.NewReply(tc.Activity.ConversationID, text)
	reply.ID = uuid.NewString()
	tc.replies = append(tc.replies, reply)
}

// Send queues an outbound activity.
func (tc *TurnContext) Send(activity *model.Activity) {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	tc.replies = append(tc.replies, activity)
}

// Replies returns the outbound activities queued so far, in send order.
func (tc *TurnContext) Replies() []*model.Activity {
	return tc.replies
}

// StepContext is handed to each waterfall step. Result carries the value
// delivered to this step: the answer to the previous step's prompt or the
// result of the child dialog it began.
type StepContext struct {
	Turn   *TurnContext
	Frame  *Frame
	Result any
}

// ResultText returns the delivered value as a string.
func (sc *StepContext) ResultText() string {
	if s, ok := sc.Result.(string); ok {
		return s
	}
	return ""
}

// ResultBool returns the delivered value as a bool.
func (sc *StepContext) ResultBool() bool {
	if b, ok := sc.Result.(bool); ok {
		return b
	}
	return false
}

// Step is one waterfall step: a pure transition from the delivered input to
// the next engine instruction.
type Step func(ctx context.Context, sc *StepContext) (StepResult, error)

// Waterfall is a fixed, ordered sequence of steps run as one dialog.
type Waterfall struct {
	id    string
	steps []Step
}

// NewWaterfall creates a waterfall dialog.
func NewWaterfall(id string, steps ...Step) *Waterfall {
	return &Waterfall{id: id, steps: steps}
}

// ID returns the dialog identifier used on stack frames.
func (w *Waterfall) ID() string {
	return w.id
}

type signal int

const (
	signalNext signal = iota
	signalPrompt
	signalBegin
	signalEnd
)

// StepResult is the instruction a step returns to the engine.
type StepResult struct {
	sig     signal
	value   any
	await   AwaitKind
	prompt  string
	retry   string
	childID string
	options any
}

// Next advances to the following step, delivering value to it.
func Next(value any) StepResult {
	return StepResult{sig: signalNext, value: value}
}

// Prompt sends text, suspends the dialog, and delivers the user's answer to
// the following step.
func Prompt(kind AwaitKind, text string) StepResult {
	return StepResult{sig: signalPrompt, await: kind, prompt: text}
}

// PromptWithRetry is Prompt with a distinct re-prompt sent when the answer
// does not validate.
func PromptWithRetry(kind AwaitKind, text, retry string) StepResult {
	return StepResult{sig: signalPrompt, await: kind, prompt: text, retry: retry}
}

// Begin pushes a child dialog; its end result is delivered to the following
// step of this dialog.
func Begin(dialogID string, options any) StepResult {
	return StepResult{sig: signalBegin, childID: dialogID, options: options}
}

// End pops this dialog, returning value to the parent. A nil value means
// the dialog finished without a result.
func End(value any) StepResult {
	return StepResult{sig: signalEnd, value: value}
}
