// Package transport carries protocol messages over a websocket, keeping the
// connection alive and reconnecting with exponential backoff.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"

	"github.com/iw2rmb/quill/protocol"
)

var (
	// ErrNotConnected is returned by Send while no connection is up. The
	// message is dropped.
	ErrNotConnected = errors.New("transport: not connected")
	// ErrSendBufferFull is returned when the outgoing queue is saturated.
	ErrSendBufferFull = errors.New("transport: send buffer full")
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Config struct {
	URL    string
	Header http.Header
	Dialer *websocket.Dialer
	Logger *slog.Logger

	InitialBackoff time.Duration // default: 500ms
	MaxBackoff     time.Duration // default: 30s
	SendBuffer     int           // default: 64
	RecvBuffer     int           // default: 64
}

// Client is a reconnecting websocket client. Run drives it; Send and
// Incoming may be used from any goroutine.
type Client struct {
	cfg Config
	log *slog.Logger

	incoming  chan protocol.Message
	connected atomic.Bool

	mu   sync.Mutex
	conn *conn
}

type conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func New(cfg Config) *Client {
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.RecvBuffer <= 0 {
		cfg.RecvBuffer = 64
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		log:      log.With("component", "transport"),
		incoming: make(chan protocol.Message, cfg.RecvBuffer),
	}
}

// Incoming delivers decoded server messages, plus a ConnectionStatus each
// time the connection comes up or goes down. It is closed when Run returns.
func (c *Client) Incoming() <-chan protocol.Message { return c.incoming }

func (c *Client) Connected() bool { return c.connected.Load() }

// Send validates and queues m. Malformed messages are rejected with an
// error wrapping protocol.ErrInvalidMessage or protocol.ErrInvalidWord and
// never transmitted.
func (c *Client) Send(m protocol.Message) error {
	if err := protocol.Validate(m); err != nil {
		return err
	}
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}

	c.mu.Lock()
	cur := c.conn
	c.mu.Unlock()
	if cur == nil || !c.connected.Load() {
		return ErrNotConnected
	}
	select {
	case cur.send <- data:
		return nil
	case <-cur.done:
		return ErrNotConnected
	default:
		return ErrSendBufferFull
	}
}

// Run dials and serves the connection until ctx is done, reconnecting with
// exponential backoff after every failure.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.incoming)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialBackoff
	bo.MaxInterval = c.cfg.MaxBackoff

	for {
		err := c.serve(ctx, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		wait := bo.NextBackOff()
		c.log.Warn("connection lost, retrying", "error", err, "retry_in", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// serve runs one connection to completion.
func (c *Client) serve(ctx context.Context, bo *backoff.ExponentialBackOff) error {
	ws, _, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, c.cfg.Header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	bo.Reset()

	cur := &conn{ws: ws, send: make(chan []byte, c.cfg.SendBuffer), done: make(chan struct{})}
	c.mu.Lock()
	c.conn = cur
	c.mu.Unlock()
	c.connected.Store(true)
	c.log.Info("connected", "url", c.cfg.URL)
	c.deliver(ctx, protocol.ConnectionStatus{Status: "connected"})

	go c.writePump(cur)
	stop := context.AfterFunc(ctx, cur.close)
	defer stop()

	err = c.readPump(ctx, cur)

	cur.close()
	c.connected.Store(false)
	c.mu.Lock()
	if c.conn == cur {
		c.conn = nil
	}
	c.mu.Unlock()
	c.deliver(ctx, protocol.ConnectionStatus{Status: "disconnected", Message: errString(err)})
	return err
}

func (c *Client) readPump(ctx context.Context, cur *conn) error {
	cur.ws.SetReadLimit(1 << 20)
	_ = cur.ws.SetReadDeadline(time.Now().Add(pongWait))
	cur.ws.SetPongHandler(func(string) error {
		return cur.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cur.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Error("websocket unexpected close", "error", err)
			}
			return err
		}
		m, err := protocol.Decode(data)
		if err != nil {
			c.log.Warn("dropping undecodable message", "error", err)
			continue
		}
		c.deliver(ctx, m)
	}
}

func (c *Client) writePump(cur *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cur.close()
	}()

	for {
		select {
		case <-cur.done:
			return
		case data := <-cur.send:
			_ = cur.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cur.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warn("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = cur.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cur.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) deliver(ctx context.Context, m protocol.Message) {
	select {
	case c.incoming <- m:
	case <-ctx.Done():
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
