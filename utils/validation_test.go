package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/novapay/checkout/types"
)

func TestValidateAmount(t *testing.T) {
	dec, err := ValidateAmount("12.50")
	require.NoError(t, err)
	require.True(t, dec.Equal(decimal.NewFromFloat(12.5)))

	_, err = ValidateAmount("")
	require.Error(t, err)

	_, err = ValidateAmount("not-a-number")
	require.Error(t, err)

	_, err = ValidateAmount("-1")
	require.Error(t, err)
}

func TestAmountWithinBounds(t *testing.T) {
	currency := types.Currency{
		Symbol:    "ETH_TEST",
		Name:      "Ethereum",
		MinAmount: decimal.NewFromInt(10),
		MaxAmount: decimal.NewFromInt(5000),
	}

	require.True(t, AmountWithinBounds(decimal.NewFromInt(10), currency))
	require.True(t, AmountWithinBounds(decimal.NewFromInt(5000), currency))
	require.False(t, AmountWithinBounds(decimal.NewFromInt(9), currency))
	require.False(t, AmountWithinBounds(decimal.NewFromInt(5001), currency))
}

func TestValidateConfig(t *testing.T) {
	err := ValidateConfig(nil)
	require.True(t, types.IsCode(err, types.ErrConfig))

	err = ValidateConfig(&types.Config{WSBaseURL: "wss://payments.example.com"})
	require.True(t, types.IsCode(err, types.ErrConfig))

	err = ValidateConfig(&types.Config{
		APIBaseURL: "https://payments.example.com/api",
		WSBaseURL:  "wss://payments.example.com",
	})
	require.NoError(t, err)
}

func TestValidateCreateOrder(t *testing.T) {
	err := ValidateCreateOrder(&types.CreateOrderRequest{
		ExpectedOutputAmount: decimal.NewFromInt(20),
		InputCurrency:        "ETH_TEST",
	})
	require.NoError(t, err)

	err = ValidateCreateOrder(&types.CreateOrderRequest{
		ExpectedOutputAmount: decimal.NewFromInt(20),
	})
	require.True(t, types.IsCode(err, types.ErrConfig))

	err = ValidateCreateOrder(&types.CreateOrderRequest{
		InputCurrency: "ETH_TEST",
	})
	require.True(t, types.IsCode(err, types.ErrConfig))
}
