// Package telemetry provides the event sink the dialogs report to.
package telemetry

import "context"

// Sink receives named telemetry events. Delivery is best-effort; sinks
// must never fail a turn.
type Sink interface {
	TrackEvent(ctx context.Context, name string, properties map[string]string)
}

// Noop is a sink that discards events. Used when no telemetry backend is
// configured and throughout the tests.
type Noop struct{}

// TrackEvent discards the event.
func (Noop) TrackEvent(context.Context, string, map[string]string) {}
