package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/novapay/checkout/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateAmount checks that an amount string is a valid, non-negative decimal.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// AmountWithinBounds reports whether amount falls inside the currency's
// configured min/max order bounds.
func AmountWithinBounds(amount decimal.Decimal, currency types.Currency) bool {
	return amount.GreaterThanOrEqual(currency.MinAmount) &&
		amount.LessThanOrEqual(currency.MaxAmount)
}

// ValidateConfig validates engine configuration using struct tags.
func ValidateConfig(cfg *types.Config) error {
	if cfg == nil {
		return &types.CheckoutError{
			Code:    types.ErrConfig,
			Message: "config is required",
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return &types.CheckoutError{
			Code:    types.ErrConfig,
			Message: fmt.Sprintf("invalid config: %v", err),
		}
	}

	return nil
}

// ValidateCreateOrder validates an order creation request using struct tags.
func ValidateCreateOrder(req *types.CreateOrderRequest) error {
	if err := validate.Struct(req); err != nil {
		return &types.CheckoutError{
			Code:    types.ErrConfig,
			Message: fmt.Sprintf("invalid order request: %v", err),
		}
	}

	if req.ExpectedOutputAmount.IsNegative() || req.ExpectedOutputAmount.IsZero() {
		return &types.CheckoutError{
			Code:    types.ErrConfig,
			Message: "expected_output_amount must be greater than 0",
		}
	}

	return nil
}
