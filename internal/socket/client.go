package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"classbattle-client/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Local pseudo-events, delivered to handlers like server events.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// Handler receives the first argument of an event.
type Handler func(payload json.RawMessage)

// Subscription removes a handler. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Emitter is the part of the client that screens and flows depend on.
type Emitter interface {
	Emit(event string, payload any) error
	On(event string, h Handler) Subscription
	Connected() bool
}

// Options configure the connection. Only the websocket transport is used.
type Options struct {
	URL         string
	Path        string
	Auth        map[string]any
	Reconnect   bool
	MaxAttempts int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
	Dialer      *websocket.Dialer
	Logger      *zap.Logger
}

type handlerEntry struct {
	id uint64
	fn Handler
}

// Client is one Socket.IO connection on the default namespace.
type Client struct {
	opts Options
	log  *zap.Logger
	id   string

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	conn      *websocket.Conn
	sid       string
	connected bool
	// reconnecting is set while the backoff loop owns the link
	reconnecting bool
	closed       bool
	handlers     map[string][]handlerEntry
	nextID       uint64

	writeMu sync.Mutex
}

func newClient(opts Options) *Client {
	if opts.Path == "" {
		opts.Path = "/socket.io/"
	}
	if opts.BackoffMin <= 0 {
		opts.BackoffMin = time.Second
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 5 * time.Second
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		opts:     opts,
		id:       uuid.NewString(),
		ctx:      ctx,
		cancel:   cancel,
		handlers: make(map[string][]handlerEntry),
	}
	c.log = log.With(zap.String("client", c.id))
	return c
}

// ID is the local identifier of this client, stable across reconnects.
func (c *Client) ID() string { return c.id }

// SID returns the server-assigned Socket.IO session id.
func (c *Client) SID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sid
}

// Connected reports whether the namespace handshake completed and the link is up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// active reports whether the client is up or still trying to come back.
func (c *Client) active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && (c.connected || c.reconnecting)
}

// Emit sends an event. It never queues: while down it returns domain.ErrNotConnected.
func (c *Client) Emit(event string, payload any) error {
	c.mu.Lock()
	conn, ok := c.conn, c.connected
	c.mu.Unlock()
	if !ok || conn == nil {
		return domain.ErrNotConnected
	}
	frame, err := encodeEvent(event, payload)
	if err != nil {
		return err
	}
	return c.write(conn, frame)
}

// On registers a handler. Handlers run on the read goroutine in arrival order
// and survive reconnects.
func (c *Client) On(event string, h Handler) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	entry := handlerEntry{id: c.nextID, fn: h}
	c.handlers[event] = append(c.handlers[event], entry)
	return &subscription{client: c, event: event, id: entry.id}
}

// Off drops every handler registered for event.
func (c *Client) Off(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

func (c *Client) off(event string, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.handlers[event]
	for i, e := range entries {
		if e.id == id {
			c.handlers[event] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(c.handlers[event]) == 0 {
		delete(c.handlers, event)
	}
}

func (c *Client) dispatch(event string, payload json.RawMessage) {
	c.mu.Lock()
	entries := append([]handlerEntry(nil), c.handlers[event]...)
	c.mu.Unlock()
	for _, e := range entries {
		e.fn(payload)
	}
}

// connect dials, performs both handshakes and starts the read loop.
func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errClosed
	}
	c.mu.Unlock()

	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}
	conn, _, err := c.opts.Dialer.DialContext(ctx, endpoint, http.Header{})
	if err != nil {
		return errors.Wrap(err, "dial socket")
	}

	hs, err := readHandshake(conn)
	if err != nil {
		conn.Close()
		return err
	}
	frame, err := encodeConnect(c.opts.Auth)
	if err != nil {
		conn.Close()
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		conn.Close()
		return errors.Wrap(err, "send namespace connect")
	}
	sid, err := awaitNamespace(conn, hs)
	if err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return errClosed
	}
	c.conn = conn
	c.sid = sid
	c.connected = true
	c.reconnecting = false
	c.mu.Unlock()

	c.log.Info("socket connected", zap.String("sid", sid))
	go c.readLoop(conn, hs)
	c.dispatch(EventConnect, nil)
	return nil
}

var errClosed = errors.New("socket client closed")

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return "", errors.Wrap(err, "parse socket url")
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	}
	u.Path = "/" + strings.Trim(c.opts.Path, "/") + "/"
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func readHandshake(conn *websocket.Conn) (handshake, error) {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		return handshake{}, errors.Wrap(err, "read open packet")
	}
	p, err := decode(frame)
	if err != nil {
		return handshake{}, err
	}
	if p.engine != eioOpen {
		return handshake{}, errors.Errorf("expected open packet, got %q", p.engine)
	}
	var hs handshake
	if err := json.Unmarshal(p.data, &hs); err != nil {
		return handshake{}, errors.Wrap(err, "decode handshake")
	}
	if hs.PingInterval <= 0 {
		hs.PingInterval = 25000
	}
	if hs.PingTimeout <= 0 {
		hs.PingTimeout = 20000
	}
	return hs, nil
}

func awaitNamespace(conn *websocket.Conn, hs handshake) (string, error) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(hs.liveness()))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return "", errors.Wrap(err, "await namespace connect")
		}
		p, err := decode(frame)
		if err != nil {
			return "", err
		}
		switch {
		case p.engine == eioPing:
			if err := conn.WriteMessage(websocket.TextMessage, []byte{eioPong}); err != nil {
				return "", errors.Wrap(err, "pong")
			}
		case p.engine == eioMessage && p.kind == sioConnect:
			var ack struct {
				SID string `json:"sid"`
			}
			_ = json.Unmarshal(p.data, &ack)
			return ack.SID, nil
		case p.engine == eioMessage && p.kind == sioConnectError:
			var reason struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(p.data, &reason)
			return "", errors.Wrap(domain.ErrRejected, reason.Message)
		}
	}
}

func (hs handshake) liveness() time.Duration {
	return time.Duration(hs.PingInterval+hs.PingTimeout) * time.Millisecond
}

func (c *Client) readLoop(conn *websocket.Conn, hs handshake) {
	reason := "transport close"
	for {
		_ = conn.SetReadDeadline(time.Now().Add(hs.liveness()))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
				reason = "ping timeout"
			}
			break
		}
		p, err := decode(frame)
		if err != nil {
			c.log.Warn("dropping malformed frame", zap.Error(err))
			continue
		}
		if p.engine == eioPing {
			if err := c.write(conn, []byte{eioPong}); err != nil {
				break
			}
			continue
		}
		if p.engine == eioClose {
			break
		}
		if p.engine != eioMessage || (p.namespace != "" && p.namespace != "/") {
			continue
		}
		switch p.kind {
		case sioEvent:
			c.dispatch(p.event, p.data)
		case sioDisconnect:
			c.dropped(conn, "io server disconnect")
			return
		}
	}
	c.dropped(conn, reason)
}

// dropped tears down a dead link and starts reconnecting when allowed.
func (c *Client) dropped(conn *websocket.Conn, reason string) {
	conn.Close()

	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	wasConnected := c.connected
	c.conn = nil
	c.connected = false
	// a server-initiated disconnect is final
	retry := !c.closed && c.opts.Reconnect && reason != "io server disconnect"
	c.reconnecting = retry
	c.mu.Unlock()

	if wasConnected {
		c.log.Info("socket disconnected", zap.String("reason", reason))
		payload, _ := json.Marshal(reason)
		c.dispatch(EventDisconnect, payload)
	}
	if retry {
		go c.reconnect()
	}
}

func (c *Client) reconnect() {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.BackoffMin
	eb.MaxInterval = c.opts.BackoffMax
	eb.RandomizationFactor = 0.5
	eb.MaxElapsedTime = 0

	var b backoff.BackOff = eb
	if c.opts.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(c.opts.MaxAttempts))
	}
	b = backoff.WithContext(b, c.ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := c.connect(c.ctx)
		if errors.Is(err, errClosed) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.log.Debug("reconnect attempt failed", zap.Int("attempt", attempt), zap.Duration("retryIn", wait), zap.Error(err))
	}
	err := backoff.RetryNotify(op, b, notify)
	if err == nil {
		return
	}
	c.mu.Lock()
	c.reconnecting = false
	c.mu.Unlock()
	if !errors.Is(err, errClosed) {
		c.log.Warn("giving up reconnecting", zap.Int("attempts", attempt), zap.Error(err))
	}
}

func (c *Client) write(conn *websocket.Conn, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return errors.Wrap(err, "socket write")
	}
	return nil
}

// close is safe to call repeatedly.
func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	wasConnected := c.connected
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		_ = c.write(conn, encodeDisconnect())
		conn.Close()
	}
	if wasConnected {
		c.log.Info("socket disconnected", zap.String("reason", "io client disconnect"))
		payload, _ := json.Marshal("io client disconnect")
		c.dispatch(EventDisconnect, payload)
	}
}

type subscription struct {
	client *Client
	event  string
	id     uint64
	once   sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.client.off(s.event, s.id) })
}
