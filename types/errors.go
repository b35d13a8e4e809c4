package types

import "errors"

// CheckoutError is the typed error surfaced by the engine.
type CheckoutError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *CheckoutError) Error() string {
	return e.Message
}

// Common error codes
const (
	// REST failure; surfaced to the caller, no automatic retry.
	ErrFetch = "FETCH_ERROR"

	// Realtime failure; retried internally, then surfaced as degraded.
	ErrChannel = "CHANNEL_ERROR"

	// Malformed push payload; dropped, non-fatal.
	ErrParse = "PARSE_ERROR"

	// Wallet provider capability missing or not connected.
	ErrWalletUnavailable = "WALLET_UNAVAILABLE"

	// The payer cancelled the wallet interaction.
	ErrUserRejected = "USER_REJECTED"

	// Balance is below the required amount; nothing was submitted.
	ErrInsufficientFunds = "INSUFFICIENT_FUNDS"

	// Generic wallet submission failure.
	ErrProvider = "PROVIDER_ERROR"

	ErrConfig = "CONFIG_ERROR"
)

// ErrorCode extracts the checkout error code from err, or "" when err is
// not a CheckoutError.
func ErrorCode(err error) string {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsCode reports whether err carries the given checkout error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
