package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbot/internal/market"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// 文件库必须真的跑在 WAL 模式下，否则 Web API 的读会阻塞周期的写。
func TestFileStoreUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trading.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var mode string
	require.NoError(t, s.db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", strings.ToLower(mode))

	var busy int
	require.NoError(t, s.db.Raw("PRAGMA busy_timeout").Scan(&busy).Error)
	assert.Equal(t, 5000, busy)
}

func TestUpsertCandlesIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := market.Candle{OpenTime: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
	require.NoError(t, s.UpsertCandles(ctx, "BTCUSDT", "1h", []market.Candle{first}))

	// 同一主键重写，应覆盖而不是新增
	second := first
	second.Close = 1.8
	second.Volume = 20
	require.NoError(t, s.UpsertCandles(ctx, "BTCUSDT", "1h", []market.Candle{second}))

	rows, err := s.QueryCandles(ctx, "BTCUSDT", "1h", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.8, rows[0].Close)
	assert.Equal(t, 20.0, rows[0].Volume)
}

func TestQueryCandlesAscendingWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var batch []market.Candle
	for i := int64(0); i < 5; i++ {
		batch = append(batch, market.Candle{OpenTime: 1000 + i*3600_000, Close: float64(i)})
	}
	require.NoError(t, s.UpsertCandles(ctx, "BTCUSDT", "1h", batch))

	rows, err := s.QueryCandles(ctx, "BTCUSDT", "1h", 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// 取最近 3 根且升序
	assert.Equal(t, batch[2].OpenTime, rows[0].OpenTime)
	assert.Equal(t, batch[4].OpenTime, rows[2].OpenTime)
	assert.True(t, rows[0].OpenTime < rows[1].OpenTime && rows[1].OpenTime < rows[2].OpenTime)
}

func TestUpsertMetricsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := market.MetricPoint{OpenTime: 500, Symbol: market.SymbolGlobal, Metric: "fear_greed", Value: 40}
	require.NoError(t, s.UpsertMetrics(ctx, []market.MetricPoint{p}))
	p.Value = 55
	require.NoError(t, s.UpsertMetrics(ctx, []market.MetricPoint{p}))

	rows, err := s.QueryMetricsFrom(ctx, market.SymbolGlobal, "fear_greed", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 55.0, rows[0].Value)
}

func TestQueryMetricsCarryIn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	points := []market.MetricPoint{
		{OpenTime: 100, Symbol: market.SymbolGlobal, Metric: "fear_greed", Value: 10},
		{OpenTime: 200, Symbol: market.SymbolGlobal, Metric: "fear_greed", Value: 20},
		{OpenTime: 900, Symbol: market.SymbolGlobal, Metric: "fear_greed", Value: 90},
	}
	require.NoError(t, s.UpsertMetrics(ctx, points))

	// startTime 落在 200 与 900 之间：应带上 200 这行 carry-in
	rows, err := s.QueryMetricsFrom(ctx, market.SymbolGlobal, "fear_greed", 500)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(200), rows[0].OpenTime)
	assert.Equal(t, int64(900), rows[1].OpenTime)

	// startTime 之前没有任何数据：只回窗口内的
	rows, err = s.QueryMetricsFrom(ctx, market.SymbolGlobal, "fear_greed", 50)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestAuditAppends(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendSignal(ctx, SignalRecord{Strategy: "toggle", Symbol: "BTCUSDT", Action: "OPEN_LONG", Price: 90000, Reason: "test"}))
	require.NoError(t, s.AppendTrade(ctx, TradeRecord{Symbol: "BTCUSDT", Strategy: "toggle", Side: "BUY", Price: 90001, Quantity: 0.002, Notional: 180, OrderID: "42"}))
	require.NoError(t, s.AppendSnapshot(ctx, SnapshotRecord{RefPrice: 90000, Positions: []market.PositionSnapshot{{Symbol: "BTCUSDT", Amount: 0.002}}}))

	trades, err := s.RecentTrades(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "42", trades[0].OrderID)

	signals, err := s.RecentSignals(ctx, 10)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "OPEN_LONG", signals[0].Action)
}
