package api

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/novapay/checkout/types"
	"github.com/novapay/checkout/utils"
)

// FilterByAmount keeps the currencies whose order bounds admit the amount.
func FilterByAmount(currencies []types.Currency, amount decimal.Decimal) []types.Currency {
	out := make([]types.Currency, 0, len(currencies))
	for _, c := range currencies {
		if utils.AmountWithinBounds(amount, c) {
			out = append(out, c)
		}
	}
	return out
}

// SearchCurrencies keeps the currencies whose name or symbol contains the
// term, case-insensitively. An empty term keeps everything.
func SearchCurrencies(currencies []types.Currency, term string) []types.Currency {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return currencies
	}
	out := make([]types.Currency, 0, len(currencies))
	for _, c := range currencies {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Symbol), term) {
			out = append(out, c)
		}
	}
	return out
}
