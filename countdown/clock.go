// Package countdown derives the remaining payment window from a session's
// deadline and forces the terminal Expired transition when it runs out.
package countdown

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/novapay/checkout/logger"
	"github.com/novapay/checkout/metrics"
	"github.com/novapay/checkout/store"
	"github.com/novapay/checkout/types"
)

// Clock ticks once per second against the store's deadline. It never
// mutates the deadline itself; its only write is the single forced
// Expired merge when the remaining time reaches zero.
type Clock struct {
	store    *store.Store
	interval time.Duration
	onExpire func()

	log logger.Logger
	rec metrics.Recorder
	now func() time.Time

	remaining int64 // seconds, atomic

	mu      sync.Mutex
	armed   bool
	stopc   chan struct{}
	stopped sync.Once
	expired sync.Once
}

// New builds a clock over the store. onExpire is invoked exactly once,
// after the forced Expired transition, so the caller can navigate away.
func New(st *store.Store, onExpire func(), log logger.Logger, rec metrics.Recorder) *Clock {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if onExpire == nil {
		onExpire = func() {}
	}
	return &Clock{
		store:    st,
		interval: time.Second,
		onExpire: onExpire,
		log:      log,
		rec:      rec,
		now:      time.Now,
		stopc:    make(chan struct{}),
	}
}

// Start arms the clock against the current deadline, or subscribes to the
// store so a deadline arriving in a later merge arms it. With no deadline
// the clock stays inert.
func (c *Clock) Start() {
	if snap, ok := c.store.Read(); ok && snap.ExpiredTime != nil {
		c.arm(*snap.ExpiredTime)
		return
	}

	c.store.Subscribe(func(snap types.PaymentSession) {
		if snap.ExpiredTime != nil {
			c.arm(*snap.ExpiredTime)
		}
	})
}

// arm starts the ticking goroutine. The deadline never changes once set,
// so arming is one-shot.
func (c *Clock) arm(deadline time.Time) {
	c.mu.Lock()
	if c.armed {
		c.mu.Unlock()
		return
	}
	c.armed = true
	c.mu.Unlock()

	atomic.StoreInt64(&c.remaining, secondsUntil(c.now(), deadline))
	c.log.Debug("countdown armed", map[string]any{
		"deadline":  deadline,
		"remaining": c.Remaining(),
	})

	go c.run(deadline)
}

func (c *Clock) run(deadline time.Time) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopc:
			return
		case <-ticker.C:
			rem := secondsUntil(c.now(), deadline)
			atomic.StoreInt64(&c.remaining, rem)
			if rem <= 0 {
				c.expire()
				return
			}
		}
	}
}

func (c *Clock) expire() {
	c.expired.Do(func() {
		status := types.StatusExpired
		c.store.Merge(types.PaymentUpdate{Status: &status})
		c.rec.IncCounter(metrics.EventSessionExpired, nil)
		c.log.Info("payment window expired", nil)
		c.onExpire()
	})
	c.Stop()
}

// Remaining returns the remaining payment window in whole seconds.
// It is non-increasing over ticks and never negative.
func (c *Clock) Remaining() int64 {
	return atomic.LoadInt64(&c.remaining)
}

// Stop halts ticking. Idempotent; safe to call on an inert clock.
func (c *Clock) Stop() {
	c.stopped.Do(func() {
		close(c.stopc)
	})
}

func secondsUntil(now, deadline time.Time) int64 {
	rem := deadline.Sub(now) / time.Second
	if rem < 0 {
		return 0
	}
	return int64(rem)
}
