// Package store holds the single authoritative PaymentSession for an order
// and exposes the merge operation every other component mutates it through.
package store

import (
	"sync"

	"github.com/novapay/checkout/logger"
	"github.com/novapay/checkout/metrics"
	"github.com/novapay/checkout/types"
	"github.com/novapay/checkout/utils"
)

// Store owns one PaymentSession. All writers are serialized through its
// mutex; readers get copies. Subscribers are notified synchronously after
// every successful Initialize or Merge.
type Store struct {
	mu   sync.RWMutex
	sess *types.PaymentSession
	subs []func(types.PaymentSession)

	log logger.Logger
	rec metrics.Recorder
}

func New(log logger.Logger, rec metrics.Recorder) *Store {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Store{log: log, rec: rec}
}

// Initialize sets the session from a full snapshot, normalizing the deposit
// address. The identifier is fixed here; a second Initialize is rejected.
func (s *Store) Initialize(snapshot types.PaymentSession) error {
	s.mu.Lock()

	if s.sess != nil {
		s.mu.Unlock()
		return &types.CheckoutError{
			Code:    types.ErrConfig,
			Message: "store already initialized for order " + s.sess.Identifier,
		}
	}

	if snapshot.Address != "" {
		snapshot.Address = utils.NormalizeAddress(snapshot.Address)
	}

	s.sess = &snapshot
	snap := *s.sess
	subs := append([]func(types.PaymentSession){}, s.subs...)
	s.mu.Unlock()

	s.log.Debug("session initialized", map[string]any{
		"identifier": snap.Identifier,
		"status":     snap.Status.String(),
	})
	s.rec.IncCounter(metrics.EventSnapshotFetched, nil)

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// Merge applies a field-wise partial update: fields present in the update
// replace the current value, absent fields are untouched. Merge is a no-op
// when the store is uninitialized or the current status is terminal.
// The resulting snapshot is returned either way.
func (s *Store) Merge(update types.PaymentUpdate) types.PaymentSession {
	s.mu.Lock()

	if s.sess == nil {
		s.mu.Unlock()
		return types.PaymentSession{}
	}

	if s.sess.Status.IsTerminal() {
		snap := *s.sess
		s.mu.Unlock()
		s.rec.IncCounter(metrics.EventMergeRejected, nil)
		s.log.Debug("merge rejected, session is terminal", map[string]any{
			"identifier": snap.Identifier,
			"status":     snap.Status.String(),
		})
		return snap
	}

	s.apply(update)
	snap := *s.sess
	subs := append([]func(types.PaymentSession){}, s.subs...)
	s.mu.Unlock()

	s.rec.IncCounter(metrics.EventMergeApplied, nil)
	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// apply copies the carried fields onto the session. Caller holds the lock.
func (s *Store) apply(u types.PaymentUpdate) {
	if u.FiatAmount != nil {
		s.sess.FiatAmount = *u.FiatAmount
	}
	if u.Fiat != nil {
		s.sess.Fiat = *u.Fiat
	}
	if u.InputCurrency != nil {
		s.sess.InputCurrency = *u.InputCurrency
	}
	if u.CryptoAmount != nil {
		amount := *u.CryptoAmount
		s.sess.CryptoAmount = &amount
	}
	if u.Address != nil && *u.Address != "" {
		s.sess.Address = utils.NormalizeAddress(*u.Address)
	}
	if u.TagMemo != nil {
		s.sess.TagMemo = *u.TagMemo
	}
	if u.Status != nil {
		if u.Status.Known() {
			s.sess.Status = *u.Status
		} else {
			s.log.Warn("dropping unknown status code", map[string]any{
				"identifier": s.sess.Identifier,
				"status":     u.Status.String(),
			})
		}
	}
	// The deadline is fixed at session creation; a deadline that is
	// already set is never overwritten.
	if u.ExpiredTime != nil && s.sess.ExpiredTime == nil {
		t := *u.ExpiredTime
		s.sess.ExpiredTime = &t
	}
	if u.MerchantDevice != nil {
		s.sess.MerchantDevice = *u.MerchantDevice
	}
	if u.Notes != nil {
		s.sess.Notes = *u.Notes
	}
	if u.PaymentURI != nil {
		s.sess.PaymentURI = *u.PaymentURI
	}
}

// Read returns a copy of the current snapshot. ok is false before
// Initialize has succeeded.
func (s *Store) Read() (snapshot types.PaymentSession, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return types.PaymentSession{}, false
	}
	return *s.sess, true
}

// Subscribe registers fn to be called synchronously with the resulting
// snapshot after every successful Initialize or Merge. Subscriptions live
// as long as the store; the store is torn down with its session.
func (s *Store) Subscribe(fn func(types.PaymentSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
