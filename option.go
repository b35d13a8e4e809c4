package checkout

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/novapay/checkout/logger"
	"github.com/novapay/checkout/metrics"
	"github.com/novapay/checkout/types"
	"github.com/novapay/checkout/wallet"
)

type Option func(*Engine)

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(e *Engine) {
		e.rec = r
	}
}

// WithNavigator sets the navigation collaborator notified on completion
// and expiry.
func WithNavigator(nav types.Navigator) Option {
	return func(e *Engine) {
		e.nav = nav
	}
}

// WithWalletProvider supplies the external wallet capability used by the
// wallet settlement channel. Without one, wallet payments fail with
// WALLET_UNAVAILABLE while the QR channel keeps working.
func WithWalletProvider(p wallet.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithHTTPClient overrides the HTTP client backing the REST calls.
func WithHTTPClient(httpc *http.Client) Option {
	return func(e *Engine) {
		e.httpc = httpc
	}
}

// WithDialer overrides the websocket dialer for the realtime channel.
func WithDialer(d *websocket.Dialer) Option {
	return func(e *Engine) {
		e.dialer = d
	}
}
