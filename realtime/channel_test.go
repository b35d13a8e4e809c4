package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/novapay/checkout/store"
	"github.com/novapay/checkout/types"
)

var upgrader = websocket.Upgrader{}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(nil, nil)
	require.NoError(t, st.Initialize(types.PaymentSession{
		Identifier: "order-1",
		Status:     types.StatusPending,
	}))
	return st
}

// wsServer serves one upgrade per request and hands the connection to fn.
func wsServer(t *testing.T, fn func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fn(conn)
	}))
}

func wsTarget(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestChannelMergesFrames(t *testing.T) {
	hold := make(chan struct{})
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"status":"AC","crypto_amount":0.042}`)))
		<-hold
	})
	defer srv.Close()
	defer close(hold)

	st := newStore(t)
	c := New(Config{URL: wsTarget(srv)}, st, nil, nil)
	c.Start()
	defer c.Close()

	require.Eventually(t, func() bool {
		snap, _ := st.Read()
		return snap.Status == types.StatusActive && snap.CryptoAmount != nil
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, StateConnected, c.State())
	require.False(t, c.Degraded())
}

func TestChannelDropsMalformedFrames(t *testing.T) {
	hold := make(chan struct{})
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"status":"AC"}`)))
		<-hold
	})
	defer srv.Close()
	defer close(hold)

	st := newStore(t)
	c := New(Config{URL: wsTarget(srv)}, st, nil, nil)
	c.Start()
	defer c.Close()

	// The malformed frame is dropped and the channel keeps reading.
	require.Eventually(t, func() bool {
		snap, _ := st.Read()
		return snap.Status == types.StatusActive
	}, 2*time.Second, 5*time.Millisecond)
}

func TestChannelBackoffBound(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "no websocket here", http.StatusBadRequest)
	}))
	defer srv.Close()

	st := newStore(t)
	c := New(Config{
		URL:        wsTarget(srv),
		BaseDelay:  5 * time.Millisecond,
		MaxRetries: 3,
	}, st, nil, nil)
	c.Start()
	defer c.Close()

	require.Eventually(t, func() bool {
		return c.Degraded()
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, StateClosed, c.State())

	// Initial attempt plus three retries, then nothing further.
	require.Equal(t, int32(4), atomic.LoadInt32(&attempts))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(4), atomic.LoadInt32(&attempts))
}

func TestChannelCloseStopsReconnects(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "no websocket here", http.StatusBadRequest)
	}))
	defer srv.Close()

	st := newStore(t)
	c := New(Config{
		URL:        wsTarget(srv),
		BaseDelay:  50 * time.Millisecond,
		MaxRetries: 3,
	}, st, nil, nil)
	c.Start()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) >= 1
	}, 2*time.Second, time.Millisecond)

	c.Close()
	c.Close() // idempotent

	// An attempt already past the closed check may still land; wait it
	// out, then verify the count has frozen.
	time.Sleep(150 * time.Millisecond)
	seen := atomic.LoadInt32(&attempts)
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, seen, atomic.LoadInt32(&attempts))
	require.Equal(t, StateClosed, c.State())
	require.False(t, c.Degraded())
}

func TestChannelCloseDuringConnection(t *testing.T) {
	hold := make(chan struct{})
	srv := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		<-hold
	})
	defer srv.Close()
	defer close(hold)

	st := newStore(t)
	c := New(Config{URL: wsTarget(srv)}, st, nil, nil)
	c.Start()

	require.Eventually(t, func() bool {
		return c.State() == StateConnected
	}, 2*time.Second, time.Millisecond)

	c.Close()
	require.Equal(t, StateClosed, c.State())
	require.False(t, c.Degraded())
}
