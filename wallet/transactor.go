package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novapay/checkout/logger"
	"github.com/novapay/checkout/metrics"
	"github.com/novapay/checkout/types"
)

// Transactor drives the wallet settlement channel for one session. It is
// the only component that issues requests against the shared provider
// handle.
type Transactor struct {
	provider Provider
	nav      types.Navigator
	log      logger.Logger
	rec      metrics.Recorder

	mu      sync.Mutex
	account string
	chainID string
}

func NewTransactor(provider Provider, nav types.Navigator, log logger.Logger, rec metrics.Recorder) *Transactor {
	if nav == nil {
		nav = types.NoopNavigator{}
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Transactor{
		provider: provider,
		nav:      nav,
		log:      log,
		rec:      rec,
	}
}

// Connect requests account access from the provider and records the active
// account and chain. It fails with WALLET_UNAVAILABLE when no provider
// capability is present and USER_REJECTED when the payer declines.
func (t *Transactor) Connect(ctx context.Context) (account, chainID string, err error) {
	if t.provider == nil {
		return "", "", &types.CheckoutError{
			Code:    types.ErrWalletUnavailable,
			Message: "no wallet provider available, please install one",
		}
	}

	accounts, err := t.provider.RequestAccounts(ctx)
	if err != nil {
		return "", "", mapProviderError("wallet connection failed", err)
	}
	if len(accounts) == 0 {
		return "", "", &types.CheckoutError{
			Code:    types.ErrWalletUnavailable,
			Message: "wallet returned no accounts",
		}
	}

	chain, err := t.provider.ChainID(ctx)
	if err != nil {
		return "", "", mapProviderError("chain id query failed", err)
	}

	t.mu.Lock()
	t.account = accounts[0]
	t.chainID = chain
	t.mu.Unlock()

	t.provider.OnAccountsChanged(func(accounts []string) {
		t.mu.Lock()
		if len(accounts) > 0 {
			t.account = accounts[0]
		} else {
			t.account = ""
		}
		t.mu.Unlock()
	})
	t.provider.OnChainChanged(func(chainID string) {
		t.mu.Lock()
		t.chainID = chainID
		t.mu.Unlock()
	})

	t.log.Info("wallet connected", map[string]any{
		"account": accounts[0],
		"chain":   chain,
	})
	return accounts[0], chain, nil
}

// Account returns the connected account, if any.
func (t *Transactor) Account() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.account, t.account != ""
}

// Pay checks balance sufficiency and submits a transfer of exactly the
// session's required crypto amount to its settlement address. The balance
// check happens before any transaction is constructed, so an underfunded
// account never produces a doomed submission.
//
// On acceptance it navigates to the completed view. This is the only path
// that infers completion locally, without a corroborating status push; a
// later push that disagrees is not reconciled here.
func (t *Transactor) Pay(ctx context.Context, sess types.PaymentSession) (string, error) {
	t.mu.Lock()
	account := t.account
	t.mu.Unlock()

	if account == "" {
		return "", &types.CheckoutError{
			Code:    types.ErrWalletUnavailable,
			Message: "wallet is not connected",
		}
	}
	if sess.Address == "" || sess.CryptoAmount == nil {
		return "", &types.CheckoutError{
			Code:    types.ErrProvider,
			Message: "order has no settlement address or amount yet",
		}
	}

	required, err := WeiFromDecimal(*sess.CryptoAmount)
	if err != nil {
		return "", &types.CheckoutError{
			Code:    types.ErrProvider,
			Message: fmt.Sprintf("invalid required amount: %v", err),
		}
	}

	balance, err := t.provider.BalanceAt(ctx, account)
	if err != nil {
		return "", mapProviderError("balance query failed", err)
	}

	if balance.Cmp(required) < 0 {
		t.log.Warn("insufficient funds", map[string]any{
			"account":  account,
			"balance":  balance.String(),
			"required": required.String(),
		})
		return "", &types.CheckoutError{
			Code:    types.ErrInsufficientFunds,
			Message: "insufficient funds to cover the required amount",
		}
	}

	start := time.Now()
	txHash, err := t.provider.SendTransfer(ctx, account, sess.Address, required)
	if err != nil {
		return "", mapProviderError("transaction failed", err)
	}

	t.rec.IncCounter(metrics.EventWalletSubmission, nil)
	t.rec.ObserveLatency("wallet_submit", time.Since(start), nil)
	t.log.Info("transfer accepted", map[string]any{
		"identifier": sess.Identifier,
		"tx":         txHash,
	})

	t.nav.PaymentCompleted(sess.Identifier)
	return txHash, nil
}

// WeiFromDecimal converts a crypto amount with 18 decimal places to wei.
// Sub-wei precision is truncated.
func WeiFromDecimal(amount decimal.Decimal) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}
	return amount.Shift(18).BigInt(), nil
}

// mapProviderError translates provider failures into the wallet error
// taxonomy with a human-readable message.
func mapProviderError(op string, err error) *types.CheckoutError {
	switch {
	case errors.Is(err, ErrUserRejected):
		return &types.CheckoutError{
			Code:    types.ErrUserRejected,
			Message: "transaction cancelled by the user",
		}
	case strings.Contains(strings.ToLower(err.Error()), "insufficient funds"):
		return &types.CheckoutError{
			Code:    types.ErrInsufficientFunds,
			Message: "insufficient funds to cover the required amount",
		}
	default:
		return &types.CheckoutError{
			Code:    types.ErrProvider,
			Message: fmt.Sprintf("%s: %v", op, err),
		}
	}
}
