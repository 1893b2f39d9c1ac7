// Package paper 是纸面交易网关：订单全部在内存账本里成交，绝不触网下单。
// 行情读取委托给真实数据网关，保证策略看到的始终是真实 K 线。
package paper

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"barbot/internal/faults"
	"barbot/internal/gateway/exchange"
	"barbot/internal/logger"
	"barbot/internal/market"
)

const defaultLotStep = "0.001"

type Gateway struct {
	data exchange.Gateway // 行情委托对象，可为 nil（测试场景）

	mu        sync.Mutex
	positions map[string]float64
	entries   map[string]float64
	marks     map[string]float64
	leverage  map[string]int
	orders    map[string]exchange.OrderStatus
}

func New(data exchange.Gateway) *Gateway {
	logger.Infof("[paper] 模拟网关已启用，所有订单均为虚拟成交")
	return &Gateway{
		data:      data,
		positions: make(map[string]float64),
		entries:   make(map[string]float64),
		marks:     make(map[string]float64),
		leverage:  make(map[string]int),
		orders:    make(map[string]exchange.OrderStatus),
	}
}

func (g *Gateway) Name() string { return "paper" }

func (g *Gateway) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if g.data == nil {
		return nil, faults.New(faults.KindConnectivity, "paper.get_candles", nil)
	}
	candles, err := g.data.GetCandles(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	if len(candles) > 0 {
		g.mu.Lock()
		g.marks[symbol] = candles[len(candles)-1].Close
		g.mu.Unlock()
	}
	return candles, nil
}

func (g *Gateway) GetPosition(_ context.Context, symbol string) (*market.PositionSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amt := g.positions[symbol]
	if amt == 0 {
		return nil, nil
	}
	entry := g.entries[symbol]
	lev := g.leverage[symbol]
	if lev <= 0 {
		lev = 1
	}
	return &market.PositionSnapshot{
		Symbol:        symbol,
		Amount:        amt,
		EntryPrice:    entry,
		UnrealizedPnL: (g.marks[symbol] - entry) * amt,
		Leverage:      lev,
	}, nil
}

func (g *Gateway) PlaceOrder(_ context.Context, req exchange.OrderRequest) (*exchange.OrderAck, error) {
	qty, err := strconv.ParseFloat(req.Quantity, 64)
	if err != nil || qty <= 0 {
		return nil, faults.New(faults.KindExecution, "paper.place_order", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	mark := g.marks[req.Symbol]
	current := g.positions[req.Symbol]
	filled := qty
	switch req.Side {
	case exchange.SideBuy:
		// 加权平均入场价
		total := current + qty
		if total != 0 {
			g.entries[req.Symbol] = (g.entries[req.Symbol]*current + mark*qty) / total
		}
		g.positions[req.Symbol] = total
	case exchange.SideSell:
		if req.ReduceOnly {
			// 平仓不越界做空
			if qty > current {
				filled = current
			}
			g.positions[req.Symbol] = current - filled
		} else {
			g.positions[req.Symbol] = current - qty
		}
		if g.positions[req.Symbol] == 0 {
			delete(g.entries, req.Symbol)
		}
	}

	id := uuid.NewString()[:8]
	g.orders[id] = exchange.OrderStatus{
		Status:      "FILLED",
		ExecutedQty: filled,
		CumQuote:    filled * mark,
	}
	logger.Infof("[paper] 虚拟成交 %s %s qty=%v 持仓=%v", req.Side, req.Symbol, filled, g.positions[req.Symbol])
	return &exchange.OrderAck{OrderID: id}, nil
}

func (g *Gateway) GetOrderStatus(_ context.Context, orderID, _ string) (*exchange.OrderStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.orders[orderID]
	if !ok {
		return nil, faults.New(faults.KindDataIntegrity, "paper.get_order_status", nil)
	}
	return &status, nil
}

func (g *Gateway) GetLotStep(ctx context.Context, symbol string) (string, error) {
	if g.data != nil {
		if step, err := g.data.GetLotStep(ctx, symbol); err == nil {
			return step, nil
		}
	}
	return defaultLotStep, nil
}

func (g *Gateway) SetLeverage(_ context.Context, symbol string, leverage int) error {
	g.mu.Lock()
	g.leverage[symbol] = leverage
	g.mu.Unlock()
	logger.Infof("[paper] 杠杆记录为 %dx（%s）", leverage, symbol)
	return nil
}

// SetMark 直接设置标记价，供测试注入成交价。
func (g *Gateway) SetMark(symbol string, price float64) {
	g.mu.Lock()
	g.marks[symbol] = price
	g.mu.Unlock()
}

var _ exchange.Gateway = (*Gateway)(nil)
