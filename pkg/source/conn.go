package source

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types exchanged with the browser.
const (
	// MessageHashChange is sent by the page when its location hash changes.
	MessageHashChange = "hashchange"

	// MessageNavigate is sent to the page to change its location hash.
	MessageNavigate = "navigate"
)

// Message is the JSON envelope of the bridge protocol.
type Message struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("source: connection closed")

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithReadTimeout closes the connection when the page is silent for d.
// Zero disables the deadline.
func WithReadTimeout(d time.Duration) ConnOption {
	return func(c *Conn) {
		c.readTimeout = d
	}
}

// WithWriteTimeout bounds each write to the page.
func WithWriteTimeout(d time.Duration) ConnOption {
	return func(c *Conn) {
		c.writeTimeout = d
	}
}

// WithLogger sets the connection logger.
func WithLogger(logger *slog.Logger) ConnOption {
	return func(c *Conn) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Conn is a path source backed by a browser over a WebSocket.
type Conn struct {
	conn         *websocket.Conn
	logger       *slog.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu   sync.RWMutex
	path string

	writeMu sync.Mutex
	subs    subscribers

	closeOnce sync.Once
	done      chan struct{}
}

// NewConn wraps conn. initial is the page's hash at connect time.
func NewConn(conn *websocket.Conn, initial string, opts ...ConnOption) *Conn {
	c := &Conn{
		conn:         conn,
		logger:       slog.Default().With("component", "source"),
		writeTimeout: 10 * time.Second,
		path:         initial,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the page's current hash.
func (c *Conn) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// SetPath navigates the page to path and notifies subscribers if it changed.
func (c *Conn) SetPath(path string) {
	if !c.update(path) {
		return
	}
	if err := c.Send(Message{Type: MessageNavigate, Path: path}); err != nil {
		c.logger.Warn("navigate failed", "path", path, "error", err)
	}
	c.subs.notify()
}

// Subscribe registers fn for change notifications.
func (c *Conn) Subscribe(fn func()) func() {
	return c.subs.add(fn)
}

// Send writes v to the page as JSON.
func (c *Conn) Send(v any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteJSON(v)
}

// ReadLoop reads page messages until the connection closes. Hash changes
// notify subscribers on the calling goroutine. A normal close returns nil.
func (c *Conn) ReadLoop() error {
	defer c.Close()

	for {
		if c.readTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				return nil
			}
			select {
			case <-c.done:
				return nil
			default:
			}
			c.logger.Error("read error", "error", err)
			return err
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("message decode error", "error", err)
			continue
		}

		switch msg.Type {
		case MessageHashChange:
			if c.update(msg.Path) {
				c.subs.notify()
			}
		default:
			c.logger.Warn("unknown message type", "type", msg.Type)
		}
	}
}

// Done is closed when the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		deadline := time.Now().Add(time.Second)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

func (c *Conn) update(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == path {
		return false
	}
	c.path = path
	return true
}
