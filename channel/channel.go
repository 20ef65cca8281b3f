// Package channel implements the request/response correlation primitive
// used to fire an out-of-band request (to a WebSocket client, a child
// agent, or a human) and await its matching response by opaque request id.
package channel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-agentrt-go/log"
)

// ErrTimeout is returned by SendRequest when no response arrives before the
// deadline.
var ErrTimeout = errors.New("channel: request timed out")

// ErrCancelled is returned by SendRequest when the caller's context is
// cancelled before a response arrives.
var ErrCancelled = errors.New("channel: request cancelled")

// OnSend is invoked synchronously once a request has been allocated a
// request id and registered, so the caller can deliver it out-of-band
// (emit a CLIENT_TOOL_CALL event, call an MCP server, etc.) before
// SendRequest starts blocking.
type OnSend func(toolName string, schema any, parameters map[string]any) error

type pendingSlot struct {
	once sync.Once
	done chan struct{}
	data any
	err  error
}

func (s *pendingSlot) resolve(data any, err error) {
	s.once.Do(func() {
		s.data, s.err = data, err
		close(s.done)
	})
}

// Channel correlates SendRequest callers with SetResponse callers by
// request id. At most one waiter exists per request id; the pending entry
// is always removed on resolution, cancellation, or timeout, so there are
// no leaks.
type Channel struct {
	mu      sync.Mutex
	pending map[string]*pendingSlot
}

// New creates an empty Channel.
func New() *Channel {
	return &Channel{pending: make(map[string]*pendingSlot)}
}

// SendRequest allocates a request id (if requestID is empty), registers a
// one-shot waiter, invokes onSend with the parameters (request id already
// injected under "request_id"), then blocks until SetResponse resolves the
// request id, the timeout elapses, or ctx is cancelled.
func (c *Channel) SendRequest(
	ctx context.Context,
	toolName string,
	parameters map[string]any,
	schema any,
	requestID string,
	timeout time.Duration,
	onSend OnSend,
) (string, any, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}

	slot := &pendingSlot{done: make(chan struct{})}

	c.mu.Lock()
	if _, exists := c.pending[requestID]; exists {
		c.mu.Unlock()
		return requestID, nil, errors.New("channel: request id already pending")
	}
	c.pending[requestID] = slot
	c.mu.Unlock()

	removePending := func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}

	params := make(map[string]any, len(parameters)+1)
	for k, v := range parameters {
		params[k] = v
	}
	params["request_id"] = requestID

	if onSend != nil {
		if err := onSend(toolName, schema, params); err != nil {
			removePending()
			return requestID, nil, err
		}
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-slot.done:
		removePending()
		return requestID, slot.data, slot.err
	case <-timeoutCh:
		removePending()
		log.Warnf("channel: request %s (%s) timed out after %s", requestID, toolName, timeout)
		return requestID, nil, ErrTimeout
	case <-ctx.Done():
		removePending()
		return requestID, nil, ErrCancelled
	}
}

// SetResponse resolves the pending request exactly once. Unknown request
// ids (already timed out, cancelled, or never registered) are silently
// ignored. Double resolution of a known id is also a silent no-op.
func (c *Channel) SetResponse(requestID string, data any, err error) {
	c.mu.Lock()
	slot, ok := c.pending[requestID]
	c.mu.Unlock()
	if !ok {
		log.Debugf("channel: set_response for unknown or already-resolved request %s", requestID)
		return
	}
	slot.resolve(data, err)
}

// Pending reports how many requests are currently awaiting a response.
// Intended for diagnostics/tests.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
