package trader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbot/internal/gateway/exchange"
	"barbot/internal/market"
	"barbot/internal/notifier"
	"barbot/internal/risk"
	"barbot/internal/store"
	"barbot/internal/strategy"
)

type stubGateway struct {
	position   *market.PositionSnapshot
	lotStep    string
	status     exchange.OrderStatus
	placed     []exchange.OrderRequest
	statusGets int
	stepGets   int
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) GetCandles(context.Context, string, string, int) ([]market.Candle, error) {
	return nil, nil
}

func (g *stubGateway) GetPosition(context.Context, string) (*market.PositionSnapshot, error) {
	return g.position, nil
}

func (g *stubGateway) PlaceOrder(_ context.Context, req exchange.OrderRequest) (*exchange.OrderAck, error) {
	g.placed = append(g.placed, req)
	return &exchange.OrderAck{OrderID: "42"}, nil
}

func (g *stubGateway) GetOrderStatus(context.Context, string, string) (*exchange.OrderStatus, error) {
	g.statusGets++
	st := g.status
	return &st, nil
}

func (g *stubGateway) GetLotStep(context.Context, string) (string, error) {
	g.stepGets++
	return g.lotStep, nil
}

func (g *stubGateway) SetLeverage(context.Context, string, int) error { return nil }

type spyNotifier struct {
	texts []string
}

func (n *spyNotifier) SendText(text string) error {
	n.texts = append(n.texts, text)
	return nil
}

func newTestCoordinator(t *testing.T, gw *stubGateway, spy *spyNotifier, sizer *risk.Sizer) (*Coordinator, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	c := NewCoordinator(gw, st, sizer, spy, "BTCUSDT", 3*time.Second)
	c.sleep = func(time.Duration) {}
	return c, st
}

func TestTruncateToStep(t *testing.T) {
	got, err := TruncateToStep(0.00567, "0.001")
	require.NoError(t, err)
	assert.Equal(t, "0.005", got)

	got, err = TruncateToStep(0.0004, "0.001")
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	got, err = TruncateToStep(1.25, "0.25")
	require.NoError(t, err)
	assert.Equal(t, "1.25", got)

	_, err = TruncateToStep(1, "abc")
	assert.Error(t, err)

	_, err = TruncateToStep(1, "0")
	assert.Error(t, err)
}

func TestOpenLongSkippedWhenHolding(t *testing.T) {
	gw := &stubGateway{lotStep: "0.001", position: &market.PositionSnapshot{Symbol: "BTCUSDT", Amount: 0.5}}
	c, _ := newTestCoordinator(t, gw, &spyNotifier{}, risk.NewSizer(100, 1))

	sig := strategy.Signal{Strategy: "toggle", Action: strategy.ActionOpenLong, RefPrice: 50000, At: time.Now()}
	require.NoError(t, c.Process(context.Background(), sig, gw.position))
	assert.Empty(t, gw.placed)
}

func TestCloseSkippedWhenFlat(t *testing.T) {
	gw := &stubGateway{lotStep: "0.001"}
	c, _ := newTestCoordinator(t, gw, &spyNotifier{}, risk.NewSizer(100, 1))

	sig := strategy.Signal{Strategy: "toggle", Action: strategy.ActionClose, RefPrice: 50000, At: time.Now()}
	require.NoError(t, c.Process(context.Background(), sig, nil))
	assert.Empty(t, gw.placed)
}

func TestOpenLongDispatchAndReconcile(t *testing.T) {
	gw := &stubGateway{
		lotStep: "0.001",
		status:  exchange.OrderStatus{Status: "FILLED", ExecutedQty: 0.006, CumQuote: 300},
	}
	spy := &spyNotifier{}
	c, st := newTestCoordinator(t, gw, spy, risk.NewSizer(100, 3))

	sig := strategy.Signal{Strategy: "volume_surge", Action: strategy.ActionOpenLong, Reason: "放量阳线", RefPrice: 50000, At: time.Now()}
	require.NoError(t, c.Process(context.Background(), sig, nil))

	// 100 × 3 / 50000 = 0.006，步长 0.001 截断后不变
	require.Len(t, gw.placed, 1)
	assert.Equal(t, exchange.SideBuy, gw.placed[0].Side)
	assert.Equal(t, "0.006", gw.placed[0].Quantity)
	assert.False(t, gw.placed[0].ReduceOnly)
	assert.Equal(t, 1, gw.statusGets, "宽限期后只查证一次")

	trades, err := st.RecentTrades(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "volume_surge", trades[0].Strategy)
	assert.Equal(t, "BUY", trades[0].Side)
	assert.InDelta(t, 50000.0, trades[0].Price, 1e-9)
	require.Len(t, spy.texts, 1)
	assert.Contains(t, spy.texts[0], "volume_surge")
}

func TestCloseUsesPositionAmountReduceOnly(t *testing.T) {
	gw := &stubGateway{
		lotStep:  "0.001",
		position: &market.PositionSnapshot{Symbol: "BTCUSDT", Amount: 0.0057},
		status:   exchange.OrderStatus{Status: "FILLED", ExecutedQty: 0.005, CumQuote: 250},
	}
	c, _ := newTestCoordinator(t, gw, &spyNotifier{}, risk.NewSizer(100, 1))

	sig := strategy.Signal{Strategy: "toggle", Action: strategy.ActionClose, RefPrice: 50000, At: time.Now()}
	require.NoError(t, c.Process(context.Background(), sig, gw.position))
	require.Len(t, gw.placed, 1)
	assert.Equal(t, exchange.SideSell, gw.placed[0].Side)
	assert.Equal(t, "0.005", gw.placed[0].Quantity)
	assert.True(t, gw.placed[0].ReduceOnly)
}

func TestUnfilledOrderNotRecorded(t *testing.T) {
	gw := &stubGateway{
		lotStep: "0.001",
		status:  exchange.OrderStatus{Status: "EXPIRED", ExecutedQty: 0},
	}
	spy := &spyNotifier{}
	c, st := newTestCoordinator(t, gw, spy, risk.NewSizer(100, 3))

	sig := strategy.Signal{Strategy: "toggle", Action: strategy.ActionOpenLong, RefPrice: 50000, At: time.Now()}
	require.NoError(t, c.Process(context.Background(), sig, nil))
	require.Len(t, gw.placed, 1)

	trades, err := st.RecentTrades(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, trades, "未成交不记账")
	assert.Empty(t, spy.texts, "未成交不推送")
}

func TestLotStepCachedAfterFirstLookup(t *testing.T) {
	gw := &stubGateway{
		lotStep: "0.001",
		status:  exchange.OrderStatus{Status: "FILLED", ExecutedQty: 0.006, CumQuote: 300},
	}
	c, _ := newTestCoordinator(t, gw, &spyNotifier{}, risk.NewSizer(100, 3))

	sig := strategy.Signal{Strategy: "toggle", Action: strategy.ActionOpenLong, RefPrice: 50000, At: time.Now()}
	require.NoError(t, c.Process(context.Background(), sig, nil))
	require.NoError(t, c.Process(context.Background(), sig, nil))
	assert.Equal(t, 1, gw.stepGets)
}

func TestQuantityZeroAfterTruncationSkipsOrder(t *testing.T) {
	gw := &stubGateway{lotStep: "0.001"}
	c, _ := newTestCoordinator(t, gw, &spyNotifier{}, risk.NewSizer(20, 1))

	// 20 / 90000 ≈ 0.00022，按 0.001 截断为零
	sig := strategy.Signal{Strategy: "toggle", Action: strategy.ActionOpenLong, RefPrice: 90000, At: time.Now()}
	require.NoError(t, c.Process(context.Background(), sig, nil))
	assert.Empty(t, gw.placed)
}

var _ notifier.TextNotifier = (*spyNotifier)(nil)
