// Package watcher 负责收盘检测：盯住指定交易对的 K 线流，发现新收盘的 bar 时上报。
package watcher

import (
	"context"

	"barbot/internal/gateway/exchange"
	"barbot/internal/market"
)

// NewBar 表示一根刚收盘、尚未处理过的 K 线。
type NewBar struct {
	ClosedTime int64 // 该根 K 线的 open_time，作为处理水位
	Candle     market.Candle
}

// Watcher 持有本进程唯一的处理水位。水位只在 ETL 完成后由调用方推进，
// 中途崩溃会让同一根 bar 在重启后重新处理（至少一次，靠幂等写入收敛）。
type Watcher struct {
	gateway  exchange.Gateway
	symbol   string
	interval string

	lastProcessed int64
}

func New(gateway exchange.Gateway, symbol, interval string) *Watcher {
	return &Watcher{gateway: gateway, symbol: symbol, interval: interval}
}

// Poll 拉取最近两根 K 线：最后一根仍在走，倒数第二根是最近收盘的。
// 只有当收盘 bar 的 open_time 超过水位时才算新 bar；其余情况返回 nil。
func (w *Watcher) Poll(ctx context.Context) (*NewBar, error) {
	candles, err := w.gateway.GetCandles(ctx, w.symbol, w.interval, 2)
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, nil
	}
	closed := candles[len(candles)-2]
	if closed.OpenTime <= w.lastProcessed {
		return nil, nil
	}
	return &NewBar{ClosedTime: closed.OpenTime, Candle: closed}, nil
}

// Advance 把水位推到 ts。水位单调不减。
func (w *Watcher) Advance(ts int64) {
	if ts > w.lastProcessed {
		w.lastProcessed = ts
	}
}

func (w *Watcher) Watermark() int64 { return w.lastProcessed }
