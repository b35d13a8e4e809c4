package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/novapay/checkout/types"
)

func TestCurrencies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/currencies", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"symbol":"BTC_TEST","name":"Bitcoin Test","min_amount":"0.01","max_amount":"1000","blockchain":"BTC_TEST"},
			{"symbol":"ETH","name":"Ethereum","min_amount":"1","max_amount":"5000","blockchain":"ETH"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	currencies, err := c.Currencies(context.Background())
	require.NoError(t, err)
	require.Len(t, currencies, 2)
	require.Equal(t, "BTC_TEST", currencies[0].Symbol)
	require.True(t, currencies[1].MaxAmount.Equal(decimal.NewFromInt(5000)))
}

func TestCurrenciesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	_, err := c.Currencies(context.Background())
	require.True(t, types.IsCode(err, types.ErrFetch))

	var checkoutErr *types.CheckoutError
	require.ErrorAs(t, err, &checkoutErr)
	data, ok := checkoutErr.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, data["status"])
}

func TestCreateOrderPostsMultipartForm(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		form = make(map[string]string)
		for name, values := range r.MultipartForm.Value {
			form[name] = values[0]
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.PaymentSession{
			Identifier:    "order-1",
			InputCurrency: "BCH_TEST",
			Status:        types.StatusNotReady,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	order, err := c.CreateOrder(context.Background(), types.CreateOrderRequest{
		ExpectedOutputAmount: decimal.RequireFromString("25.50"),
		InputCurrency:        "BCH_TEST",
		Notes:                "coffee",
	})
	require.NoError(t, err)
	require.Equal(t, "order-1", order.Identifier)

	require.Equal(t, "25.5", form["expected_output_amount"])
	require.Equal(t, "BCH_TEST", form["input_currency"])
	require.Equal(t, "coffee", form["notes"])
	require.Equal(t, "EUR", form["fiat"])
	require.Equal(t, "ES", form["language"])
	require.NotContains(t, form, "merchant_urlok")
}

func TestCreateOrderRejectsInvalidRequest(t *testing.T) {
	c := New("http://unused.invalid", nil, nil)

	_, err := c.CreateOrder(context.Background(), types.CreateOrderRequest{
		ExpectedOutputAmount: decimal.NewFromInt(10),
	})
	require.Error(t, err, "missing currency")

	_, err = c.CreateOrder(context.Background(), types.CreateOrderRequest{
		ExpectedOutputAmount: decimal.Zero,
		InputCurrency:        "BCH_TEST",
	})
	require.Error(t, err, "zero amount")
}

func TestOrderInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/info/order-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"identifier":"order-1","status":"PE","address":"bchtest:qq0tal","crypto_amount":0.042}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	order, err := c.OrderInfo(context.Background(), "order-1")
	require.NoError(t, err)
	require.Equal(t, "order-1", order.Identifier)
	require.Equal(t, types.StatusPending, order.Status)
	require.Equal(t, "0.042", order.CryptoAmount.String())
}

func TestOrderInfoUnwrapsSingleElementArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"identifier":"order-1","status":"AC"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	order, err := c.OrderInfo(context.Background(), "order-1")
	require.NoError(t, err)
	require.Equal(t, "order-1", order.Identifier)
	require.Equal(t, types.StatusActive, order.Status)
}

func TestOrderInfoRequiresIdentifier(t *testing.T) {
	c := New("http://unused.invalid", nil, nil)
	_, err := c.OrderInfo(context.Background(), "")
	require.True(t, types.IsCode(err, types.ErrFetch))
}
