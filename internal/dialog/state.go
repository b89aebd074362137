package dialog

import (
	"encoding/json"
	"fmt"
)

// AwaitKind tells the engine how to interpret the next inbound activity for
// a suspended frame.
type AwaitKind string

const (
	AwaitText    AwaitKind = "text"
	AwaitConfirm AwaitKind = "confirm"
	AwaitDate    AwaitKind = "date"
)

// Frame is one entry on a conversation's dialog stack: which dialog is
// running, the next step to execute, what input it is suspended on, and its
// working data.
type Frame struct {
	DialogID string          `json:"dialog_id"`
	Step     int             `json:"step"`
	Await    AwaitKind       `json:"await,omitempty"`
	Prompt   string          `json:"prompt,omitempty"`
	Retry    string          `json:"retry,omitempty"`
	Retried  bool            `json:"retried,omitempty"`
	State    json.RawMessage `json:"state,omitempty"`
}

// Options decodes the frame's working data into v. A frame without working
// data leaves v untouched.
func (f *Frame) Options(v any) error {
	if len(f.State) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.State, v); err != nil {
		return fmt.Errorf("failed to decode dialog state: %w", err)
	}
	return nil
}

// SetOptions stores v as the frame's working data.
func (f *Frame) SetOptions(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode dialog state: %w", err)
	}
	f.State = data
	return nil
}

// DialogState is the persisted stack of active and suspended dialogs for
// one conversation.
type DialogState struct {
	Stack []Frame `json:"stack"`
}

// Empty reports whether no dialog is in progress.
func (s *DialogState) Empty() bool {
	return len(s.Stack) == 0
}

func (s *DialogState) top() *Frame {
	return &s.Stack[len(s.Stack)-1]
}

func (s *DialogState) push(f Frame) {
	s.Stack = append(s.Stack, f)
}

func (s *DialogState) pop() {
	s.Stack = s.Stack[:len(s.Stack)-1]
}
