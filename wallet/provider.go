// Package wallet prepares and submits the on-chain settlement transaction
// through an externally supplied signing provider.
package wallet

import (
	"context"
	"errors"
	"math/big"
)

// ErrUserRejected is the cancellation signal a Provider returns when the
// payer declines an account request or a transaction prompt. The
// transactor maps it to the USER_REJECTED error code.
var ErrUserRejected = errors.New("user rejected the request")

// Provider abstracts the external wallet capability: account access, chain
// identity, balance reads and value-transfer submission. SendTransfer must
// not return before the network has accepted the transaction; it does not
// wait for any confirmation depth.
type Provider interface {
	// RequestAccounts asks the signer for account access and returns the
	// available account addresses, the active one first.
	RequestAccounts(ctx context.Context) ([]string, error)

	// ChainID returns the active chain identifier in 0x-hex form.
	ChainID(ctx context.Context) (string, error)

	// BalanceAt returns the on-chain balance of address, in wei.
	BalanceAt(ctx context.Context, address string) (*big.Int, error)

	// SendTransfer submits a plain value transfer and returns the
	// transaction hash once the network has accepted it.
	SendTransfer(ctx context.Context, from, to string, amountWei *big.Int) (string, error)

	// OnAccountsChanged registers a callback for account switches.
	OnAccountsChanged(fn func(accounts []string))

	// OnChainChanged registers a callback for chain switches.
	OnChainChanged(fn func(chainID string))
}
