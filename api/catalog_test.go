package api

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/novapay/checkout/types"
)

func catalog() []types.Currency {
	return []types.Currency{
		{Symbol: "BTC_TEST", Name: "Bitcoin Test", MinAmount: decimal.RequireFromString("0.01"), MaxAmount: decimal.NewFromInt(1000)},
		{Symbol: "BCH_TEST", Name: "Bitcoin Cash Test", MinAmount: decimal.NewFromInt(1), MaxAmount: decimal.NewFromInt(500)},
		{Symbol: "ETH", Name: "Ethereum", MinAmount: decimal.NewFromInt(50), MaxAmount: decimal.NewFromInt(5000)},
	}
}

func TestFilterByAmount(t *testing.T) {
	got := FilterByAmount(catalog(), decimal.NewFromInt(700))
	require.Len(t, got, 2)
	require.Equal(t, "BTC_TEST", got[0].Symbol)
	require.Equal(t, "ETH", got[1].Symbol)

	require.Empty(t, FilterByAmount(catalog(), decimal.RequireFromString("0.001")))
}

func TestSearchCurrencies(t *testing.T) {
	got := SearchCurrencies(catalog(), "bitcoin")
	require.Len(t, got, 2)

	got = SearchCurrencies(catalog(), "eth")
	require.Len(t, got, 1)
	require.Equal(t, "ETH", got[0].Symbol)

	require.Len(t, SearchCurrencies(catalog(), "  "), 3)
	require.Empty(t, SearchCurrencies(catalog(), "doge"))
}
