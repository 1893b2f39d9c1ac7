package webapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"barbot/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	srv, err := NewServer(ServerConfig{
		Store: st,
		Status: func() Status {
			return Status{Symbol: "BTCUSDT", Interval: "1h", Mode: "TESTNET", Watermark: 1700000000000}
		},
	})
	require.NoError(t, err)
	return srv, st
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(srv, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
}

func TestStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(srv, "/api/status")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "BTCUSDT", gjson.Get(body, "symbol").String())
	assert.Equal(t, int64(1700000000000), gjson.Get(body, "watermark").Int())
}

func TestTradesEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	require.NoError(t, st.AppendTrade(context.Background(), store.TradeRecord{
		Timestamp: time.Now(),
		Symbol:    "BTCUSDT",
		Strategy:  "volume_surge",
		Side:      "BUY",
		Price:     50000,
		Quantity:  0.006,
		Notional:  300,
		OrderID:   "42",
	}))

	w := get(srv, "/api/trades?limit=10")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Equal(t, int64(1), gjson.Get(body, "trades.#").Int())
	assert.Equal(t, "volume_surge", gjson.Get(body, "trades.0.strategy").String())
}

func TestSignalsEndpointEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(srv, "/api/signals")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "signals.#").Int())
}
