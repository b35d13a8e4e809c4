// Package checkout implements a payment-session synchronization engine: it
// reconciles a REST snapshot of a payment order with partial updates pushed
// over a realtime channel, drives the expiry countdown, and exposes the
// normalized settlement instructions to the QR and wallet channels.
package checkout

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/novapay/checkout/api"
	"github.com/novapay/checkout/countdown"
	"github.com/novapay/checkout/logger"
	"github.com/novapay/checkout/metrics"
	"github.com/novapay/checkout/realtime"
	"github.com/novapay/checkout/settlement"
	"github.com/novapay/checkout/store"
	"github.com/novapay/checkout/types"
	"github.com/novapay/checkout/utils"
	"github.com/novapay/checkout/wallet"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultBaseDelay = 2 * time.Second
)

// Engine is the entry point. It owns the REST client and the shared
// collaborators, and opens one Session per payment order.
type Engine struct {
	cfg      *types.Config
	api      *api.Client
	httpc    *http.Client
	provider wallet.Provider
	nav      types.Navigator
	dialer   *websocket.Dialer
	log      logger.Logger
	rec      metrics.Recorder
}

// New validates the configuration and builds an engine. Defaults: 30s REST
// timeout, 3 reconnect retries with a 2s base delay, zap logging at the
// configured level, metrics only when enabled.
func New(cfg *types.Config, opts ...Option) (*Engine, error) {
	if err := utils.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultTimeout
	}
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = defaultRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultBaseDelay
	}

	e := &Engine{
		cfg: cfg,
		nav: types.NoopNavigator{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logger.NewZapLogger(cfg.LogLevel)
	}
	if e.rec == nil {
		if cfg.EnableMetrics {
			e.rec = metrics.NewPrometheusRecorder()
		} else {
			e.rec = metrics.NoopRecorder{}
		}
	}
	if e.httpc == nil {
		e.httpc = &http.Client{Timeout: cfg.DefaultTimeout}
	}
	e.api = api.New(cfg.APIBaseURL, e.httpc, e.log)

	return e, nil
}

// Currencies fetches the supported settlement currencies.
func (e *Engine) Currencies(ctx context.Context) ([]types.Currency, error) {
	return e.api.Currencies(ctx)
}

// CreateOrder creates a new payment order.
func (e *Engine) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.PaymentSession, error) {
	return e.api.CreateOrder(ctx, req)
}

// Open fetches the order snapshot and starts a live session: the snapshot
// store is initialized, the realtime channel connected and the countdown
// armed. The caller owns the returned session and must Close it.
func (e *Engine) Open(ctx context.Context, identifier string) (*Session, error) {
	start := time.Now()
	snapshot, err := e.api.OrderInfo(ctx, identifier)
	if err != nil {
		return nil, err
	}
	e.rec.ObserveLatency("snapshot_fetch", time.Since(start), nil)

	st := store.New(e.log, e.rec)
	if err := st.Initialize(*snapshot); err != nil {
		return nil, err
	}

	transactor := wallet.NewTransactor(e.provider, e.nav, e.log, e.rec)

	channel := realtime.New(realtime.Config{
		URL:        wsURL(e.cfg.WSBaseURL, identifier),
		BaseDelay:  e.cfg.RetryBaseDelay,
		MaxRetries: e.cfg.RetryCount,
		Dialer:     e.dialer,
	}, st, e.log, e.rec)
	channel.Start()

	clock := countdown.New(st, func() {
		e.nav.PaymentFailed(identifier)
	}, e.log, e.rec)
	clock.Start()

	e.log.Info("session opened", map[string]any{"identifier": identifier})

	return &Session{
		identifier: identifier,
		store:      st,
		channel:    channel,
		clock:      clock,
		selector:   settlement.New(transactor),
		transactor: transactor,
	}, nil
}

// Session is one live payment order: the authoritative snapshot plus the
// collaborators keeping it current. All reads go through the store.
type Session struct {
	identifier string
	store      *store.Store
	channel    *realtime.Channel
	clock      *countdown.Clock
	selector   *settlement.Selector
	transactor *wallet.Transactor

	closeOnce sync.Once
}

// Identifier returns the order identifier.
func (s *Session) Identifier() string {
	return s.identifier
}

// Snapshot returns the current session snapshot.
func (s *Session) Snapshot() types.PaymentSession {
	snap, _ := s.store.Read()
	return snap
}

// Subscribe registers fn for synchronous notification on every merge.
func (s *Session) Subscribe(fn func(types.PaymentSession)) {
	s.store.Subscribe(fn)
}

// Remaining returns the remaining payment window in whole seconds.
func (s *Session) Remaining() int64 {
	return s.clock.Remaining()
}

// Degraded reports whether the realtime channel gave up reconnecting;
// the snapshot may be stale.
func (s *Session) Degraded() bool {
	return s.channel.Degraded()
}

// SelectChannel switches between the QR and wallet settlement channels.
func (s *Session) SelectChannel(mode settlement.Mode) error {
	return s.selector.Select(mode)
}

// PaymentURI returns the value to encode in the QR channel.
func (s *Session) PaymentURI() (string, error) {
	return settlement.PaymentURI(s.Snapshot())
}

// ConnectWallet requests account access from the wallet provider.
func (s *Session) ConnectWallet(ctx context.Context) (account, chainID string, err error) {
	return s.transactor.Connect(ctx)
}

// Pay settles the order over the wallet channel.
func (s *Session) Pay(ctx context.Context) (string, error) {
	return s.selector.Pay(ctx, s.Snapshot())
}

// Close tears the session down: the realtime channel is closed without
// further reconnects and the countdown stopped. A wallet transaction
// already submitted is abandoned, not cancelled; it resolves on its own.
// Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.channel.Close()
		s.clock.Stop()
	})
}

func wsURL(base, identifier string) string {
	base = trimTrailingSlash(base)
	return base + "/ws/" + identifier
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
