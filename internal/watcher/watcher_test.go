package watcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barbot/internal/gateway/exchange"
	"barbot/internal/market"
)

type scriptedGateway struct {
	exchange.Gateway
	batches [][]market.Candle
	calls   int
}

func (g *scriptedGateway) GetCandles(context.Context, string, string, int) ([]market.Candle, error) {
	if g.calls >= len(g.batches) {
		return nil, nil
	}
	batch := g.batches[g.calls]
	g.calls++
	return batch, nil
}

func bars(openTimes ...int64) []market.Candle {
	out := make([]market.Candle, len(openTimes))
	for i, ts := range openTimes {
		out[i] = market.Candle{OpenTime: ts, Close: float64(ts)}
	}
	return out
}

func TestPollDetectsNewClosedBar(t *testing.T) {
	gw := &scriptedGateway{batches: [][]market.Candle{
		bars(1000, 2000), // 1000 已收盘，2000 还在走
		bars(1000, 2000), // 未推进水位前重复上报同一根
		bars(2000, 3000),
	}}
	w := New(gw, "BTCUSDT", "1h")
	ctx := context.Background()

	bar, err := w.Poll(ctx)
	require.NoError(t, err)
	require.NotNil(t, bar)
	assert.Equal(t, int64(1000), bar.ClosedTime)

	// 没推水位：同一根 bar 再次可见（至少一次语义）
	bar, err = w.Poll(ctx)
	require.NoError(t, err)
	require.NotNil(t, bar)
	assert.Equal(t, int64(1000), bar.ClosedTime)

	w.Advance(1000)
	bar, err = w.Poll(ctx)
	require.NoError(t, err)
	require.NotNil(t, bar)
	assert.Equal(t, int64(2000), bar.ClosedTime)
}

func TestPollNoBarCases(t *testing.T) {
	gw := &scriptedGateway{batches: [][]market.Candle{
		nil,        // 交易所没回数据
		bars(1000), // 只有一根，无法判定收盘
	}}
	w := New(gw, "BTCUSDT", "1h")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		bar, err := w.Poll(ctx)
		require.NoError(t, err)
		assert.Nil(t, bar)
	}
}

func TestWatermarkMonotonic(t *testing.T) {
	w := New(nil, "BTCUSDT", "1h")
	w.Advance(5000)
	w.Advance(3000) // 回拨无效
	assert.Equal(t, int64(5000), w.Watermark())

	gw := &scriptedGateway{batches: [][]market.Candle{bars(4000, 5000)}}
	w2 := New(gw, "BTCUSDT", "1h")
	w2.Advance(4000)
	bar, err := w2.Poll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, bar) // 旧 bar 不再上报
}
