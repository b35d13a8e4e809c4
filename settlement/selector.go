// Package settlement exposes the two mutually exclusive settlement
// channels over a payment session: a QR-encoded payment URI and a direct
// wallet transaction.
package settlement

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/novapay/checkout/types"
	"github.com/novapay/checkout/wallet"
)

// Mode selects how the payer settles the order.
type Mode string

const (
	ModeQR     Mode = "qr"
	ModeWallet Mode = "wallet"
)

// Selector holds the active settlement mode. It carries no session state
// of its own; both channels render the same snapshot.
type Selector struct {
	mu         sync.Mutex
	mode       Mode
	transactor *wallet.Transactor
}

// New builds a selector in QR mode, the default presentation.
func New(transactor *wallet.Transactor) *Selector {
	return &Selector{
		mode:       ModeQR,
		transactor: transactor,
	}
}

// Select switches the active settlement channel.
func (s *Selector) Select(mode Mode) error {
	if mode != ModeQR && mode != ModeWallet {
		return fmt.Errorf("unknown settlement mode %q", mode)
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

// Mode returns the active settlement channel.
func (s *Selector) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// PaymentURI produces the value to encode in the QR channel: the session's
// own payment URI when the backend provided one, otherwise a constructed
// <currency>:<address>?amount=<required> URI. It requires the settlement
// address to be known.
func PaymentURI(sess types.PaymentSession) (string, error) {
	if sess.Address == "" {
		return "", &types.CheckoutError{
			Code:    types.ErrProvider,
			Message: "order has no settlement address yet",
		}
	}

	if sess.PaymentURI != "" {
		return sess.PaymentURI, nil
	}

	uri := strings.ToLower(sess.InputCurrency) + ":" + sess.Address
	if sess.CryptoAmount != nil {
		uri += "?amount=" + sess.CryptoAmount.String()
	}
	return uri, nil
}

// Pay settles over the wallet channel. It refuses when the selector is in
// QR mode; the two channels are mutually exclusive.
func (s *Selector) Pay(ctx context.Context, sess types.PaymentSession) (string, error) {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	if mode != ModeWallet {
		return "", fmt.Errorf("wallet payment requested while in %q mode", mode)
	}
	if s.transactor == nil {
		return "", &types.CheckoutError{
			Code:    types.ErrWalletUnavailable,
			Message: "no wallet provider available, please install one",
		}
	}
	return s.transactor.Pay(ctx, sess)
}
