package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency describes one settlement currency supported by the payments API.
// Immutable once fetched; amount bounds are fiat-denominated.
type Currency struct {
	// Unique currency identifier (e.g. "BTC_TEST", "ETH").
	Symbol string `json:"symbol" validate:"required"`

	// Human readable name.
	Name string `json:"name" validate:"required"`

	// Minimum order amount accepted for this currency.
	MinAmount decimal.Decimal `json:"min_amount"`

	// Maximum order amount accepted for this currency.
	MaxAmount decimal.Decimal `json:"max_amount"`

	// Icon URL, if the API provides one.
	Image string `json:"image,omitempty"`

	// Chain the currency settles on.
	Blockchain string `json:"blockchain"`
}

// PaymentSession is the authoritative snapshot of one payment order.
// It is created from the first successful snapshot fetch and afterwards
// mutated only through the snapshot store's merge operation.
type PaymentSession struct {
	// Opaque order identifier. Set exactly once, never changes.
	Identifier string `json:"identifier"`

	// Amount the merchant charged, in fiat.
	FiatAmount decimal.Decimal `json:"fiat_amount"`

	// Fiat currency code (e.g. "EUR").
	Fiat string `json:"fiat"`

	// Settlement currency chosen by the payer.
	InputCurrency string `json:"input_currency"`

	// Exact crypto amount the payer must transfer. Absent until the
	// backend has fixed the rate.
	CryptoAmount *decimal.Decimal `json:"crypto_amount,omitempty"`

	// Deposit address, normalized to its 0x transaction form.
	Address string `json:"address,omitempty"`

	// Destination tag / memo for chains that require one.
	TagMemo string `json:"tag_memo,omitempty"`

	// Current order state.
	Status PaymentStatus `json:"status"`

	// Deadline after which the order expires. Fixed at creation; once
	// non-nil it is never overwritten with a different value.
	ExpiredTime *time.Time `json:"expired_time,omitempty"`

	// Merchant display name.
	MerchantDevice string `json:"merchant_device,omitempty"`

	// Free-form order concept supplied at creation.
	Notes string `json:"notes"`

	CreatedAt *time.Time `json:"created_at,omitempty"`

	// Ready-made payment URI, when the backend provides one.
	PaymentURI string `json:"payment_uri,omitempty"`
}

// PaymentUpdate is the partial form of a session pushed over the realtime
// channel. Every field is a pointer: nil means the update does not carry
// the field and the store keeps its current value.
type PaymentUpdate struct {
	FiatAmount     *decimal.Decimal `json:"fiat_amount,omitempty"`
	Fiat           *string          `json:"fiat,omitempty"`
	InputCurrency  *string          `json:"input_currency,omitempty"`
	CryptoAmount   *decimal.Decimal `json:"crypto_amount,omitempty"`
	Address        *string          `json:"address,omitempty"`
	TagMemo        *string          `json:"tag_memo,omitempty"`
	Status         *PaymentStatus   `json:"status,omitempty"`
	ExpiredTime    *time.Time       `json:"expired_time,omitempty"`
	MerchantDevice *string          `json:"merchant_device,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	PaymentURI     *string          `json:"payment_uri,omitempty"`
}

// CreateOrderRequest is the payload for creating a new payment order.
// It is encoded as a multipart form, matching the upstream API.
type CreateOrderRequest struct {
	// Amount the payer owes, in fiat.
	ExpectedOutputAmount decimal.Decimal `json:"expected_output_amount"`

	// Settlement currency symbol.
	InputCurrency string `json:"input_currency" validate:"required"`

	// Order concept shown to the payer.
	Notes string `json:"notes"`

	// Merchant redirect URLs.
	MerchantURLOK      string `json:"merchant_urlok,omitempty" validate:"omitempty,url"`
	MerchantURLKO      string `json:"merchant_urlko,omitempty" validate:"omitempty,url"`
	MerchantURLStandby string `json:"merchant_url_standby,omitempty" validate:"omitempty,url"`

	// Fiat currency. Defaults to EUR.
	Fiat string `json:"fiat,omitempty"`

	// Checkout language. Defaults to ES.
	Language string `json:"language,omitempty"`
}

// Config carries global engine configuration.
type Config struct {
	// Base URL of the payments REST API (e.g. "https://payments.example.com/api").
	APIBaseURL string `json:"apiBaseUrl" validate:"required,url"`

	// Base URL of the realtime push endpoint (e.g. "wss://payments.example.com").
	WSBaseURL string `json:"wsBaseUrl" validate:"required"`

	// Timeout applied to REST calls. Defaults to 30s.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`

	// Reconnect budget for the realtime channel. Defaults to 3.
	RetryCount int `json:"retryCount,omitempty" validate:"min=0"`

	// Base reconnect delay; the n-th retry waits n times this. Defaults to 2s.
	RetryBaseDelay time.Duration `json:"retryBaseDelay,omitempty"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`
}

// Navigator is the navigation collaborator the engine drives when a session
// reaches a locally observable outcome: a successful wallet submission or
// an expired countdown.
type Navigator interface {
	PaymentCompleted(identifier string)
	PaymentFailed(identifier string)
}

// NoopNavigator ignores every navigation request.
type NoopNavigator struct{}

func (NoopNavigator) PaymentCompleted(string) {}
func (NoopNavigator) PaymentFailed(string)    {}
