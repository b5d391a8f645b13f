package gateway

import (
	"context"
	"sync"
)

// Handler serves one outbound request on a loopback channel. It pushes any
// number of inbound events through respond; the request settles when a
// terminal complete or error event arrives.
type Handler func(ctx context.Context, event OutboundEvent, respond func(InboundEvent))

// Loopback is an in-process Channel for tests and embedding: outbound events
// are handed to a handler goroutine instead of a network transport.
type Loopback struct {
	handler Handler

	mu       sync.Mutex
	receiver interface{ Deliver(event InboundEvent) }
}

func NewLoopback(handler Handler) *Loopback {
	return &Loopback{handler: handler}
}

// Bind points the loopback at the receiver that inbound events go to,
// normally a *Client.
func (l *Loopback) Bind(receiver interface{ Deliver(event InboundEvent) }) {
	l.mu.Lock()
	l.receiver = receiver
	l.mu.Unlock()
}

func (l *Loopback) Send(ctx context.Context, event OutboundEvent) error {
	if l == nil || l.handler == nil {
		return ErrNotConnected
	}
	go l.handler(ctx, event, l.deliver)
	return nil
}

func (l *Loopback) deliver(event InboundEvent) {
	l.mu.Lock()
	receiver := l.receiver
	l.mu.Unlock()
	if receiver != nil {
		receiver.Deliver(event)
	}
}

// NewLoopbackClient wires a client to an in-process handler in one step.
func NewLoopbackClient(handler Handler, opts ...Option) *Client {
	lb := NewLoopback(handler)
	c := NewClient(lb, opts...)
	lb.Bind(c)
	return c
}

var _ Channel = (*Loopback)(nil)
