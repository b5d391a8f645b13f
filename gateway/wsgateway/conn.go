// Package wsgateway carries the streaming channel protocol over a single
// websocket connection to a model gateway.
package wsgateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arbiterhq/arbiter-go/gateway"
)

// Receiver accepts inbound events read off the wire. *gateway.Client
// satisfies it.
type Receiver interface {
	Deliver(event gateway.InboundEvent)
}

type Conn struct {
	ws       *websocket.Conn
	receiver Receiver

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
	err    error
}

type Option func(*dialConfig)

type dialConfig struct {
	header           http.Header
	handshakeTimeout time.Duration
}

func WithHeader(header http.Header) Option {
	return func(cfg *dialConfig) { cfg.header = header }
}

func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(cfg *dialConfig) {
		if timeout > 0 {
			cfg.handshakeTimeout = timeout
		}
	}
}

// Dial connects to the gateway endpoint and starts the read loop that
// demuxes inbound events into the receiver.
func Dial(ctx context.Context, url string, receiver Receiver, opts ...Option) (*Conn, error) {
	if receiver == nil {
		return nil, fmt.Errorf("wsgateway receiver is required")
	}
	cfg := dialConfig{handshakeTimeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.handshakeTimeout}
	ws, resp, err := dialer.DialContext(ctx, url, cfg.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("gateway dial %s failed (status %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("gateway dial %s failed: %w", url, err)
	}

	c := &Conn{ws: ws, receiver: receiver}
	go c.readLoop()
	return c, nil
}

// Send writes one outbound event. Writes are serialized: the websocket
// supports only one concurrent writer, while many calls share the channel.
func (c *Conn) Send(ctx context.Context, event gateway.OutboundEvent) error {
	if c == nil || !c.Connected() {
		return gateway.ErrNotConnected
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(deadline)
	} else {
		_ = c.ws.SetWriteDeadline(time.Time{})
	}

	c.writeMu.Lock()
	err := c.ws.WriteJSON(event)
	c.writeMu.Unlock()
	if err != nil {
		c.fail(fmt.Errorf("gateway write failed: %w", err))
		return gateway.ErrNotConnected
	}
	return nil
}

// Connected reports whether the connection is still usable.
func (c *Conn) Connected() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Err returns the error that terminated the connection, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.ws.Close()
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.err = err
	}
	c.mu.Unlock()
	_ = c.ws.Close()
}

func (c *Conn) readLoop() {
	for {
		var event gateway.InboundEvent
		if err := c.ws.ReadJSON(&event); err != nil {
			c.fail(fmt.Errorf("gateway read failed: %w", err))
			return
		}
		c.receiver.Deliver(event)
	}
}

var _ gateway.Channel = (*Conn)(nil)
