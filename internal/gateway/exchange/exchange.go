// Package exchange 定义交易所网关的统一契约。
// 实盘与模拟（paper）实现共用同一接口，上层编排逻辑不感知差异。
package exchange

import (
	"context"

	"barbot/internal/market"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type Gateway interface {
	Name() string

	// GetCandles 返回按 open_time 升序排列的最近 limit 根 K 线，末尾一根可能尚未收盘。
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error)

	// GetPosition 返回当前持仓，空仓时返回 nil。
	GetPosition(ctx context.Context, symbol string) (*market.PositionSnapshot, error)

	// PlaceOrder 发送市价单，只负责提交，成交与否由 GetOrderStatus 查证。
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderAck, error)

	// GetOrderStatus 按订单号查询最终成交结果。
	GetOrderStatus(ctx context.Context, orderID, symbol string) (*OrderStatus, error)

	// GetLotStep 返回该交易对的最小数量步长（LOT_SIZE），原样透传交易所的十进制字符串。
	GetLotStep(ctx context.Context, symbol string) (string, error)

	SetLeverage(ctx context.Context, symbol string, leverage int) error
}

// OrderRequest 的数量采用已按步长修正过的十进制字符串，与交易所线上格式一致。
type OrderRequest struct {
	Symbol     string
	Side       Side
	Quantity   string
	ReduceOnly bool
}

type OrderAck struct {
	OrderID string
}

// OrderStatus 是一次查证读回的结果。AvgPrice = CumQuote / ExecutedQty。
type OrderStatus struct {
	Status      string
	ExecutedQty float64
	CumQuote    float64
}

// AvgPrice 返回平均成交价，未成交时为 0。
func (s *OrderStatus) AvgPrice() float64 {
	if s == nil || s.ExecutedQty <= 0 {
		return 0
	}
	return s.CumQuote / s.ExecutedQty
}
