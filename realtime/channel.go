// Package realtime maintains the push connection that feeds partial session
// updates into the snapshot store, reconnecting with linear backoff and
// degrading after the retry budget is spent.
package realtime

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/novapay/checkout/logger"
	"github.com/novapay/checkout/metrics"
	"github.com/novapay/checkout/store"
	"github.com/novapay/checkout/types"
)

// State of the channel's connection machine.
type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	defaultBaseDelay  = 2 * time.Second
	defaultMaxRetries = 3
)

// Config tunes the channel. Zero values fall back to the defaults the
// upstream checkout uses: 2s base delay, 3 retries.
type Config struct {
	// Full websocket URL, wss://<host>/ws/<identifier>.
	URL string

	// BaseDelay is multiplied by the retry ordinal: the n-th retry waits
	// n * BaseDelay.
	BaseDelay time.Duration

	// MaxRetries bounds consecutive failed attempts before the channel
	// closes and flags itself degraded.
	MaxRetries int

	// Dialer overrides the websocket dialer (tests).
	Dialer *websocket.Dialer
}

// Channel is the realtime push connection for one order. Inbound frames
// are parsed as partial session updates and merged into the store;
// malformed frames are dropped. No outbound frames are ever sent.
type Channel struct {
	cfg   Config
	store *store.Store
	log   logger.Logger
	rec   metrics.Recorder

	state int32 // State, atomic

	mu      sync.Mutex
	conn    *websocket.Conn
	timer   *time.Timer
	retries int
	closed  bool

	degraded    atomic.Bool
	degradeOnce sync.Once
}

func New(cfg Config, st *store.Store, log logger.Logger, rec metrics.Recorder) *Channel {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Channel{
		cfg:   cfg,
		store: st,
		log:   log,
		rec:   rec,
		state: int32(StateConnecting),
	}
}

// Start opens the connection asynchronously.
func (c *Channel) Start() {
	go c.connect()
}

func (c *Channel) connect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	attempt := uuid.NewString()
	atomic.StoreInt32(&c.state, int32(StateConnecting))
	c.log.Debug("dialing realtime channel", map[string]any{
		"url":     c.cfg.URL,
		"attempt": attempt,
	})

	conn, resp, err := c.cfg.Dialer.Dial(c.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.log.Warn("realtime dial failed", map[string]any{
			"attempt": attempt,
			"error":   err.Error(),
		})
		c.scheduleRetry()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.retries = 0
	c.mu.Unlock()

	atomic.StoreInt32(&c.state, int32(StateConnected))
	c.log.Info("realtime channel connected", map[string]any{"attempt": attempt})

	c.readLoop(conn)
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			c.log.Warn("realtime channel dropped", map[string]any{"error": err.Error()})
			c.scheduleRetry()
			return
		}

		var update types.PaymentUpdate
		if err := json.Unmarshal(frame, &update); err != nil {
			// Malformed push payloads are non-fatal; drop and keep reading.
			c.rec.IncCounter(metrics.EventFrameDropped, nil)
			c.log.Warn("dropping malformed frame", map[string]any{"error": err.Error()})
			continue
		}

		c.store.Merge(update)
	}
}

// scheduleRetry books the next reconnect attempt, or closes the channel
// with the degraded flag once the budget is spent.
func (c *Channel) scheduleRetry() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if c.retries >= c.cfg.MaxRetries {
		retries := c.retries
		c.mu.Unlock()
		atomic.StoreInt32(&c.state, int32(StateClosed))
		c.degradeOnce.Do(func() {
			c.degraded.Store(true)
			c.rec.IncCounter(metrics.EventChannelDegraded, nil)
			c.log.Error("realtime channel degraded, data may be stale", map[string]any{
				"retries": retries,
			})
		})
		return
	}

	c.retries++
	delay := c.cfg.BaseDelay * time.Duration(c.retries)
	c.timer = time.AfterFunc(delay, c.connect)
	c.mu.Unlock()

	c.rec.IncCounter(metrics.EventReconnect, nil)
	c.log.Info("realtime reconnect scheduled", map[string]any{
		"retry": c.retries,
		"delay": delay.String(),
	})
}

// Close tears the channel down: the pending retry timer is cleared and the
// active connection closed without triggering another reconnect.
// Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	atomic.StoreInt32(&c.state, int32(StateClosed))
	if conn != nil {
		conn.Close()
	}
	c.log.Debug("realtime channel closed", nil)
}

// State returns the current connection state.
func (c *Channel) State() State {
	return State(atomic.LoadInt32(&c.state))
}

// Degraded reports whether the retry budget was exhausted; session data
// may be stale but the session itself is not aborted.
func (c *Channel) Degraded() bool {
	return c.degraded.Load()
}
