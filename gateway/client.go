// Package gateway correlates outbound generation requests with the inbound
// chunk/complete/error events streamed back over one shared duplex channel.
//
// Many concurrent calls multiplex on the same channel; events are demuxed
// strictly by request id, and all per-request state lives in the pending
// entry owned by the client, never in the channel itself.
package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arbiterhq/arbiter-go/types"
)

// DefaultCallTimeout bounds a single generation request, independent of any
// batch-level cancellation.
const DefaultCallTimeout = 5 * time.Minute

// Channel is the outbound half of the shared streaming channel. Inbound
// events are pushed back through Client.Deliver by the transport.
type Channel interface {
	Send(ctx context.Context, event OutboundEvent) error
}

// ChannelFunc adapts a function to the Channel interface.
type ChannelFunc func(ctx context.Context, event OutboundEvent) error

func (f ChannelFunc) Send(ctx context.Context, event OutboundEvent) error {
	if f == nil {
		return ErrNotConnected
	}
	return f(ctx, event)
}

type connectedChannel interface {
	Connected() bool
}

type settled struct {
	result Result
	err    error
}

// pendingCall accumulates streamed fragments for one in-flight request.
// The done channel is buffered so the transport goroutine never blocks on a
// caller that already gave up.
type pendingCall struct {
	text      strings.Builder
	reasoning strings.Builder
	done      chan settled
}

type Client struct {
	timeout time.Duration

	mu      sync.Mutex
	channel Channel
	pending map[string]*pendingCall
}

type Option func(*Client)

// WithCallTimeout overrides the per-request deadline.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewClient(channel Channel, opts ...Option) *Client {
	c := &Client{
		channel: channel,
		timeout: DefaultCallTimeout,
		pending: make(map[string]*pendingCall),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach binds the client to a transport. It exists because the transport's
// read loop needs the client as its receiver before the client can hold the
// transport; call it once, before the first Call.
func (c *Client) Attach(channel Channel) {
	c.mu.Lock()
	c.channel = channel
	c.mu.Unlock()
}

func (c *Client) transport() Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// Connected reports whether the underlying channel can accept requests.
func (c *Client) Connected() bool {
	if c == nil {
		return false
	}
	channel := c.transport()
	if channel == nil {
		return false
	}
	if cc, ok := channel.(connectedChannel); ok {
		return cc.Connected()
	}
	return true
}

// Call sends one generation request and blocks until it settles: terminal
// complete or error event, per-call timeout, or context cancellation. The
// pending entry is removed on every exit path, so late events for the request
// id are dropped instead of leaking into a later call.
func (c *Client) Call(ctx context.Context, payload Payload, opts types.GenerateOptions) (Result, error) {
	if c == nil {
		return Result{}, ErrNotConnected
	}
	channel := c.transport()
	if channel == nil {
		return Result{}, ErrNotConnected
	}

	id := uuid.NewString()
	call := &pendingCall{done: make(chan settled, 1)}
	c.mu.Lock()
	c.pending[id] = call
	c.mu.Unlock()

	event := OutboundEvent{
		Type:    EventGenerate,
		ID:      id,
		Prompt:  payload.Prompt,
		Options: opts.Map(),
	}
	if len(payload.Messages) > 0 {
		event.Type = EventGenerateWithMessages
		event.Prompt = ""
		event.Messages = payload.Messages
	}
	if err := channel.Send(ctx, event); err != nil {
		c.forget(id)
		if errors.Is(err, ErrNotConnected) {
			return Result{}, err
		}
		return Result{}, &RemoteError{RequestID: id, Message: err.Error()}
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case s := <-call.done:
		return s.result, s.err
	case <-timer.C:
		c.forget(id)
		return Result{}, &TimeoutError{RequestID: id, Timeout: c.timeout}
	case <-ctx.Done():
		c.forget(id)
		return Result{}, ctx.Err()
	}
}

// Deliver routes one inbound event to its pending call. Events for unknown
// ids (settled, timed out, or abandoned calls) are dropped.
func (c *Client) Deliver(event InboundEvent) {
	c.mu.Lock()
	call, ok := c.pending[event.ID]
	if !ok {
		c.mu.Unlock()
		return
	}

	switch event.Type {
	case EventChunk:
		call.text.WriteString(event.Chunk)
		call.reasoning.WriteString(event.Reasoning)
		c.mu.Unlock()
	case EventComplete:
		delete(c.pending, event.ID)
		result := Result{Text: event.Response, Reasoning: event.Reasoning}
		// An empty terminal response falls back to the accumulated chunks.
		if result.Text == "" {
			result.Text = call.text.String()
		}
		if result.Reasoning == "" {
			result.Reasoning = call.reasoning.String()
		}
		c.mu.Unlock()
		call.done <- settled{result: result}
	case EventError:
		delete(c.pending, event.ID)
		c.mu.Unlock()
		call.done <- settled{err: &RemoteError{RequestID: event.ID, Message: event.Message}}
	default:
		c.mu.Unlock()
	}
}

// InFlight reports the number of unsettled requests.
func (c *Client) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
