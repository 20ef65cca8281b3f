// Package channel — context wiring.
package channel

import "context"

type ctxKey struct{}

type binding struct {
	ch     *Channel
	onSend OnSend
}

// WithContext attaches ch and onSend to ctx. A Runner calls this once per
// task, ahead of starting its step.Loop, so a Client- or Agent-kind tool's
// Call can reach its own Runner's Channel without holding a direct
// reference to the Runner that owns it.
func WithContext(ctx context.Context, ch *Channel, onSend OnSend) context.Context {
	return context.WithValue(ctx, ctxKey{}, binding{ch: ch, onSend: onSend})
}

// FromContext retrieves the Channel and OnSend bound by WithContext.
func FromContext(ctx context.Context) (*Channel, OnSend, bool) {
	b, ok := ctx.Value(ctxKey{}).(binding)
	if !ok {
		return nil, nil, false
	}
	return b.ch, b.onSend, true
}
