// internal/transport/channel.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/crabul/engine"
)

// ErrNotOpen is returned by Send when the channel has no open socket. The
// command is dropped.
var ErrNotOpen = errors.New("channel not open")

// State is the lifecycle of a Channel.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateOpen:
		return "Open"
	case StateClosed:
		return "Closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Options configure a Channel.
type Options struct {
	Host         string        // host[:port] of the game server
	Secure       bool          // use wss instead of ws
	DialTimeout  time.Duration // default 10s
	WriteTimeout time.Duration // default 5s
	ReadLimit    int64         // max inbound frame size, default 64 KiB
	FrameBuffer  int           // inbound frame queue length, default 64
	HTTPClient   *http.Client  // optional, for tests
}

func (o *Options) setDefaults() {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	if o.FrameBuffer <= 0 {
		o.FrameBuffer = 64
	}
}

// Endpoint returns the server path for creating a room ("" code) or
// joining one.
func Endpoint(roomCode string) string {
	if roomCode == "" {
		return "connect"
	}
	return "connect/" + url.PathEscape(roomCode)
}

// Channel is the single bidirectional connection to the game server.
// Inbound text frames are delivered in order on Frames(); outbound
// commands go through Send. At most one socket is open at a time.
type Channel struct {
	ID   string // Connection ID for log correlation.
	opts Options

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	cancel context.CancelFunc
	frames chan []byte
}

// New creates a disconnected channel.
func New(opts Options) *Channel {
	opts.setDefaults()
	return &Channel{ID: uuid.New().String(), opts: opts}
}

// URL builds scheme://host/endpoint?name=playerName.
func (c *Channel) URL(endpoint, playerName string) string {
	scheme := "ws"
	if c.opts.Secure {
		scheme = "wss"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     c.opts.Host,
		Path:     "/" + endpoint,
		RawQuery: url.Values{"name": {playerName}}.Encode(),
	}
	return u.String()
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Frames returns the inbound frame stream of the current connection. It
// is closed when that connection ends.
func (c *Channel) Frames() <-chan []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Connect opens a socket to endpoint as playerName. Any socket already
// connecting or open is closed first.
func (c *Channel) Connect(ctx context.Context, endpoint, playerName string) error {
	c.mu.Lock()
	prev, stopPrev := c.detachLocked()
	c.state = StateConnecting
	frames := make(chan []byte, c.opts.FrameBuffer)
	c.frames = frames
	c.mu.Unlock()
	if prev != nil {
		log.Warnf("Channel %s: closing previous socket before reconnecting.", c.ID)
	}
	c.closeConn(prev, stopPrev, "reconnecting")

	target := c.URL(endpoint, playerName)
	dialCtx, cancelDial := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancelDial()

	conn, _, err := websocket.Dial(dialCtx, target, &websocket.DialOptions{HTTPClient: c.opts.HTTPClient})
	if err != nil {
		c.mu.Lock()
		if c.frames == frames {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		close(frames)
		return fmt.Errorf("dial %s: %w", target, err)
	}
	conn.SetReadLimit(c.opts.ReadLimit)

	readCtx, cancelRead := context.WithCancel(context.Background())
	c.mu.Lock()
	if c.frames != frames {
		// A concurrent Connect superseded this one.
		c.mu.Unlock()
		cancelRead()
		conn.Close(websocket.StatusNormalClosure, "superseded")
		close(frames)
		return fmt.Errorf("dial %s: superseded by a newer connection", target)
	}
	c.conn = conn
	c.cancel = cancelRead
	c.state = StateOpen
	c.mu.Unlock()

	log.Infof("Channel %s: connected to %s.", c.ID, target)
	go c.readLoop(readCtx, conn, frames)
	return nil
}

// readLoop forwards text frames until the socket ends, then marks the
// channel closed and closes frames.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn, frames chan<- []byte) {
	defer close(frames)
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch status := websocket.CloseStatus(err); {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				log.Infof("Channel %s: closed by server (%d).", c.ID, status)
			case ctx.Err() != nil:
				log.Debugf("Channel %s: read loop stopped.", c.ID)
			default:
				log.Warnf("Channel %s: read error: %v", c.ID, err)
			}
			c.markClosed(conn)
			return
		}
		if typ != websocket.MessageText {
			log.Debugf("Channel %s: ignoring %v frame (%d bytes).", c.ID, typ, len(data))
			continue
		}
		select {
		case frames <- data:
		case <-ctx.Done():
			c.markClosed(conn)
			return
		}
	}
}

func (c *Channel) markClosed(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	c.conn = nil
	c.state = StateClosed
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Send writes one command frame. While not open the command is dropped
// with a warning and ErrNotOpen is returned.
func (c *Channel) Send(ctx context.Context, cmd engine.Command) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()

	if state != StateOpen || conn == nil {
		log.Warnf("Channel %s: dropping command %q, channel is %s.", c.ID, cmd, state)
		return ErrNotOpen
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, []byte(cmd)); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	log.Debugf("Channel %s: sent %q", c.ID, cmd)
	return nil
}

// Close closes the socket, if any. It is safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	conn, stop := c.detachLocked()
	if c.state != StateDisconnected {
		c.state = StateClosed
	}
	c.mu.Unlock()
	c.closeConn(conn, stop, "client closing")
	return nil
}

// detachLocked forgets the current socket, returning it and the cancel
// func of its read loop for the caller to close outside the lock.
// Assumes lock is held by caller.
func (c *Channel) detachLocked() (*websocket.Conn, context.CancelFunc) {
	conn, cancel := c.conn, c.cancel
	c.conn, c.cancel = nil, nil
	return conn, cancel
}

// closeConn performs the close handshake, then stops the read loop.
func (c *Channel) closeConn(conn *websocket.Conn, stop context.CancelFunc, reason string) {
	if conn != nil {
		if err := conn.Close(websocket.StatusNormalClosure, reason); err != nil {
			log.Debugf("Channel %s: close: %v", c.ID, err)
		}
	}
	if stop != nil {
		stop()
	}
}
