// Package api is the REST client for the payments backend: currency
// catalog, order creation and order snapshots.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/novapay/checkout/logger"
	"github.com/novapay/checkout/types"
	"github.com/novapay/checkout/utils"
)

const (
	defaultFiat     = "EUR"
	defaultLanguage = "ES"
)

// Client talks to the payments REST API. Failures surface as FETCH_ERROR;
// this layer never retries on its own.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     logger.Logger
}

// New builds a client for the given base URL. httpc may be nil, in which
// case a client with a 30s timeout is used.
func New(baseURL string, httpc *http.Client, log logger.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   httpc,
		log:     log,
	}
}

// Currencies fetches the supported settlement currencies.
func (c *Client) Currencies(ctx context.Context) ([]types.Currency, error) {
	body, err := c.get(ctx, "/currencies")
	if err != nil {
		return nil, err
	}

	var currencies []types.Currency
	if err := json.Unmarshal(body, &currencies); err != nil {
		return nil, fetchError("decode currencies response", 0, err)
	}

	c.log.Debug("currencies fetched", map[string]any{"count": len(currencies)})
	return currencies, nil
}

// CreateOrder creates a payment order from a multipart form payload and
// returns the created order descriptor. Fiat and language default to EUR
// and ES when left empty.
func (c *Client) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.PaymentSession, error) {
	if err := utils.ValidateCreateOrder(&req); err != nil {
		return nil, err
	}

	if req.Fiat == "" {
		req.Fiat = defaultFiat
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := map[string]string{
		"expected_output_amount": req.ExpectedOutputAmount.String(),
		"input_currency":         req.InputCurrency,
		"notes":                  req.Notes,
		"merchant_urlok":         req.MerchantURLOK,
		"merchant_urlko":         req.MerchantURLKO,
		"merchant_url_standby":   req.MerchantURLStandby,
		"fiat":                   req.Fiat,
		"language":               req.Language,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := form.WriteField(name, value); err != nil {
			return nil, fetchError("encode order form", 0, err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fetchError("encode order form", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders/", &buf)
	if err != nil {
		return nil, fetchError("build order request", 0, err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	body, err := c.do(httpReq, "create order")
	if err != nil {
		return nil, err
	}

	order, err := decodeSession(body)
	if err != nil {
		return nil, fetchError("decode order response", 0, err)
	}

	c.log.Info("order created", map[string]any{
		"identifier": order.Identifier,
		"currency":   order.InputCurrency,
	})
	return order, nil
}

// OrderInfo fetches the full session snapshot for an identifier.
func (c *Client) OrderInfo(ctx context.Context, identifier string) (*types.PaymentSession, error) {
	if identifier == "" {
		return nil, fetchError("order identifier is required", 0, nil)
	}

	body, err := c.get(ctx, "/orders/info/"+identifier)
	if err != nil {
		return nil, err
	}

	order, err := decodeSession(body)
	if err != nil {
		return nil, fetchError("decode order info response", 0, err)
	}

	c.log.Debug("order info fetched", map[string]any{
		"identifier": order.Identifier,
		"status":     order.Status.String(),
	})
	return order, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fetchError("build request", 0, err)
	}
	return c.do(req, "GET "+path)
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fetchError(op, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchError(op, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("api request failed", map[string]any{
			"op":     op,
			"status": resp.StatusCode,
		})
		return nil, fetchError(op, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return body, nil
}

// decodeSession tolerates the upstream quirk of wrapping a single order in
// a one-element array.
func decodeSession(body []byte) (*types.PaymentSession, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []types.PaymentSession
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("empty order response")
		}
		return &list[0], nil
	}

	var order types.PaymentSession
	if err := json.Unmarshal(trimmed, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func fetchError(op string, status int, err error) *types.CheckoutError {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	e := &types.CheckoutError{
		Code:    types.ErrFetch,
		Message: msg,
	}
	if status != 0 {
		e.Data = map[string]interface{}{"status": status}
	}
	return e
}
