package dialog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tripware/travel-skill/internal/model"
	"github.com/tripware/travel-skill/internal/timex"
	"github.com/tripware/travel-skill/pkg/logger"
	"github.com/tripware/travel-skill/pkg/metrics"
)

// Store persists dialog state across turns, keyed by conversation id.
// Load returns an empty state for a conversation with no stack.
type Store interface {
	Load(ctx context.Context, conversationID string) (*DialogState, error)
	Save(ctx context.Context, conversationID string, state *DialogState) error
	Clear(ctx context.Context, conversationID string) error
}

// TurnStatus is the outcome of processing one inbound activity.
type TurnStatus string

const (
	// TurnStatusWaiting means a dialog is suspended on a prompt.
	TurnStatusWaiting TurnStatus = "waiting"
	// TurnStatusComplete means the root dialog finished; Result may be nil.
	TurnStatusComplete TurnStatus = "complete"
	// TurnStatusCancelled means the user aborted the dialog stack.
	TurnStatusCancelled TurnStatus = "cancelled"
)

// TurnResult reports how a turn ended and, on completion, the root
// dialog's result.
type TurnResult struct {
	Status TurnStatus
	Result any
}

const (
	helpText      = "Say something about a flight to get started, or \"cancel\" to stop."
	cancellingMsg = "Cancelling..."
	confirmRetry  = "Please answer with yes or no."
)

// Engine runs the registered dialogs against persisted per-conversation
// stacks. Turns for the same conversation are serialized; distinct
// conversations run concurrently.
type Engine struct {
	root    string
	dialogs map[string]*Waterfall
	store   Store
	logger  *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a dialog engine backed by the given state store.
func NewEngine(store Store, log *logger.Logger) *Engine {
	return &Engine{
		dialogs: make(map[string]*Waterfall),
		store:   store,
		logger:  log,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Register adds a dialog. The first registered dialog is the root unless
// SetRoot overrides it.
func (e *Engine) Register(w *Waterfall) {
	if e.root == "" {
		e.root = w.ID()
	}
	e.dialogs[w.ID()] = w
}

// SetRoot selects the dialog begun on a fresh conversation.
func (e *Engine) SetRoot(id string) {
	e.root = id
}

func (e *Engine) conversationLock(conversationID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[conversationID] = lock
	}
	return lock
}

// RunTurn processes one inbound activity: it resumes the suspended dialog
// stack (or begins the root dialog) and drives steps until the stack
// suspends again or unwinds. Errors from collaborators propagate to the
// caller untouched; the host turn handler owns their translation.
func (e *Engine) RunTurn(ctx context.Context, tc *TurnContext) (*TurnResult, error) {
	conversationID := tc.Activity.ConversationID
	lock := e.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	st, err := e.store.Load(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dialog state: %w", err)
	}

	var input any
	if st.Empty() {
		st.push(Frame{DialogID: e.root})
	} else {
		switch e.interruption(tc.Activity) {
		case interruptCancel:
			tc.SendText(cancellingMsg)
			if err := e.store.Clear(ctx, conversationID); err != nil {
				return nil, fmt.Errorf("failed to clear dialog state: %w", err)
			}
			metrics.TurnsTotal.WithLabelValues(string(TurnStatusCancelled)).Inc()
			return &TurnResult{Status: TurnStatusCancelled}, nil
		case interruptHelp:
			tc.SendText(helpText)
			return &TurnResult{Status: TurnStatusWaiting}, nil
		}

		answer, ok := e.acceptAnswer(st.top(), tc)
		if !ok {
			if err := e.store.Save(ctx, conversationID, st); err != nil {
				return nil, fmt.Errorf("failed to save dialog state: %w", err)
			}
			return &TurnResult{Status: TurnStatusWaiting}, nil
		}
		input = answer
	}

	for {
		if st.Empty() {
			if err := e.store.Clear(ctx, conversationID); err != nil {
				return nil, fmt.Errorf("failed to clear dialog state: %w", err)
			}
			metrics.TurnsTotal.WithLabelValues(string(TurnStatusComplete)).Inc()
			return &TurnResult{Status: TurnStatusComplete, Result: input}, nil
		}

		frame := st.top()
		wf, ok := e.dialogs[frame.DialogID]
		if !ok {
			return nil, fmt.Errorf("dialog %q not registered", frame.DialogID)
		}

		if frame.Step >= len(wf.steps) {
			// Running past the last step ends the dialog with the
			// delivered value, mirroring an explicit End.
			st.pop()
			continue
		}

		result, err := wf.steps[frame.Step](ctx, &StepContext{Turn: tc, Frame: frame, Result: input})
		if err != nil {
			return nil, err
		}

		switch result.sig {
		case signalNext:
			frame.Step++
			input = result.value

		case signalPrompt:
			tc.SendText(result.prompt)
			frame.Step++
			frame.Await = result.await
			frame.Prompt = result.prompt
			frame.Retry = result.retry
			frame.Retried = false
			metrics.PromptsTotal.WithLabelValues(string(result.await)).Inc()
			if err := e.store.Save(ctx, conversationID, st); err != nil {
				return nil, fmt.Errorf("failed to save dialog state: %w", err)
			}
			return &TurnResult{Status: TurnStatusWaiting}, nil

		case signalBegin:
			frame.Step++
			child := Frame{DialogID: result.childID}
			if result.options != nil {
				if err := child.SetOptions(result.options); err != nil {
					return nil, err
				}
			}
			st.push(child)
			e.logger.Debug("dialog begun",
				zap.String("conversation_id", conversationID),
				zap.String("dialog_id", result.childID),
			)
			input = nil

		case signalEnd:
			st.pop()
			input = result.value
		}
	}
}

type interrupt int

const (
	interruptNone interrupt = iota
	interruptHelp
	interruptCancel
)

// interruption inspects a message arriving at a suspension point for the
// out-of-band help and cancel signals.
func (e *Engine) interruption(activity *model.Activity) interrupt {
	if activity.Type != model.ActivityTypeMessage {
		return interruptNone
	}
	switch strings.ToLower(strings.TrimSpace(activity.Text)) {
	case "help", "?":
		return interruptHelp
	case "cancel", "quit":
		return interruptCancel
	}
	return interruptNone
}

// acceptAnswer converts the inbound activity into the value awaited by the
// suspended frame. A false return means the frame re-prompted and stays
// suspended.
func (e *Engine) acceptAnswer(frame *Frame, tc *TurnContext) (any, bool) {
	text := strings.TrimSpace(tc.Activity.Text)

	switch frame.Await {
	case AwaitConfirm:
		confirmed, ok := parseConfirm(text)
		if !ok {
			tc.SendText(confirmRetry)
			tc.SendText(frame.Prompt)
			return nil, false
		}
		frame.Await = ""
		return confirmed, true

	case AwaitDate:
		// One reprompt round for an ambiguous answer; after that the
		// user's expression is accepted as given.
		if timex.IsAmbiguous(text) && !frame.Retried {
			frame.Retried = true
			retry := frame.Retry
			if retry == "" {
				retry = frame.Prompt
			}
			e.logger.Debug("reprompting for date",
				zap.String("conversation_id", tc.Activity.ConversationID),
				zap.Bool("partial_date", timex.DescribesPartialDate(text)),
			)
			tc.SendText(retry)
			return nil, false
		}
		frame.Await = ""
		return text, true

	default:
		frame.Await = ""
		return text, true
	}
}

func parseConfirm(text string) (bool, bool) {
	switch strings.ToLower(text) {
	case "yes", "y", "yeah", "yep", "sure", "ok", "okay", "confirm", "true":
		return true, true
	case "no", "n", "nope", "false":
		return false, true
	}
	return false, false
}
