package channel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequestResolvedBySetResponse(t *testing.T) {
	c := New()

	var requestID string
	go func() {
		// Poll until the request is registered, then resolve it.
		for c.Pending() == 0 {
			time.Sleep(time.Millisecond)
		}
		c.mu.Lock()
		for id := range c.pending {
			requestID = id
		}
		c.mu.Unlock()
		c.SetResponse(requestID, "the-answer", nil)
	}()

	id, data, err := c.SendRequest(context.Background(), "ask_input", map[string]any{"prompt": "?"}, nil, "", 2*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, requestID, id)
	assert.Equal(t, "the-answer", data)
	assert.Equal(t, 0, c.Pending())
}

func TestSendRequestTimeout(t *testing.T) {
	c := New()
	_, _, err := c.SendRequest(context.Background(), "ask_input", nil, nil, "", 20*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 0, c.Pending())
}

func TestSendRequestCancellation(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, _, err := c.SendRequest(ctx, "ask_input", nil, nil, "", time.Second, nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, c.Pending())
}

func TestSetResponseIgnoresUnknownAndDouble(t *testing.T) {
	c := New()
	c.SetResponse("unknown", "x", nil) // must not panic

	done := make(chan struct{})
	go func() {
		_, _, _ = c.SendRequest(context.Background(), "t", nil, nil, "req-1", time.Second, nil)
		close(done)
	}()
	for c.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	c.SetResponse("req-1", "first", nil)
	c.SetResponse("req-1", "second", nil) // no-op, silently ignored
	<-done
}

func TestSendRequestFixedRequestID(t *testing.T) {
	c := New()
	go func() {
		for c.Pending() == 0 {
			time.Sleep(time.Millisecond)
		}
		c.SetResponse("fixed-id", "ok", nil)
	}()
	id, data, err := c.SendRequest(context.Background(), "t", nil, nil, "fixed-id", time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
	assert.Equal(t, "ok", data)
}

func TestOnSendInjectsRequestID(t *testing.T) {
	c := New()
	var gotRequestID any
	onSend := func(toolName string, schema any, parameters map[string]any) error {
		gotRequestID = parameters["request_id"]
		go c.SetResponse(gotRequestID.(string), "done", nil)
		return nil
	}
	_, data, err := c.SendRequest(context.Background(), "t", map[string]any{"a": 1}, nil, "", time.Second, onSend)
	require.NoError(t, err)
	assert.Equal(t, "done", data)
	assert.NotEmpty(t, gotRequestID)
}
