// Package datasource 聚合低频外部信号源。
// 每个源独立刷新：单个源失败只影响自己，绝不阻塞 K 线落库或其它源。
package datasource

import (
	"context"

	"barbot/internal/market"
)

// Source 产出通用标量指标行（{open_time, symbol, metric, value}）。
// 返回空切片是合法的无事发生，不算错误。
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]market.MetricPoint, error)
}

// CandleSource 产出 K 线形状的外部序列（如美股日线），落入 K 线表而非指标表。
type CandleSource interface {
	Name() string
	Symbol() string
	Interval() string
	FetchCandles(ctx context.Context) ([]market.Candle, error)
}
