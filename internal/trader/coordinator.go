package trader

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"barbot/internal/faults"
	"barbot/internal/gateway/exchange"
	"barbot/internal/logger"
	"barbot/internal/market"
	"barbot/internal/notifier"
	"barbot/internal/risk"
	"barbot/internal/store"
	"barbot/internal/strategy"
)

// Coordinator 把策略信号落实为订单：过滤、定量、下单、宽限期后查证、记账、推送。
type Coordinator struct {
	gateway exchange.Gateway
	store   *store.Store
	sizer   *risk.Sizer
	notify  notifier.TextNotifier
	symbol  string
	grace   time.Duration

	lotStep string // 首次查询后缓存

	sleep func(time.Duration) // 测试可替换
}

func NewCoordinator(gateway exchange.Gateway, st *store.Store, sizer *risk.Sizer, notify notifier.TextNotifier, symbol string, grace time.Duration) *Coordinator {
	if notify == nil {
		notify = notifier.Noop{}
	}
	if grace <= 0 {
		grace = 3 * time.Second
	}
	return &Coordinator{
		gateway: gateway,
		store:   st,
		sizer:   sizer,
		notify:  notify,
		symbol:  symbol,
		grace:   grace,
		sleep:   time.Sleep,
	}
}

// Process 处理一条信号。position 是本周期开头读到的共享快照，
// 同一周期内即便先前的信号已成交也不回头重读，过滤判断一律以它为准。
func (c *Coordinator) Process(ctx context.Context, sig strategy.Signal, position *market.PositionSnapshot) error {
	c.auditSignal(ctx, sig)

	switch sig.Action {
	case strategy.ActionOpenLong:
		if !position.Flat() {
			logger.Infof("[%s] 已有持仓，跳过开仓信号", sig.Strategy)
			return nil
		}
		return c.execute(ctx, sig, exchange.SideBuy, c.sizer.Quantity(sig.RefPrice), false)
	case strategy.ActionClose:
		if position.Flat() {
			logger.Infof("[%s] 当前空仓，跳过平仓信号", sig.Strategy)
			return nil
		}
		return c.execute(ctx, sig, exchange.SideSell, math.Abs(position.Amount), true)
	default:
		logger.Warnf("[%s] 未知信号动作 %s，忽略", sig.Strategy, sig.Action)
		return nil
	}
}

func (c *Coordinator) execute(ctx context.Context, sig strategy.Signal, side exchange.Side, rawQty float64, reduceOnly bool) error {
	step, err := c.stepSize(ctx)
	if err != nil {
		return err
	}
	qty, err := TruncateToStep(rawQty, step)
	if err != nil {
		return &faults.Fault{Kind: faults.KindExecution, Op: "数量修正", Err: err}
	}
	if qty == "0" {
		logger.Warnf("[%s] 数量 %.8f 按步长 %s 截断后为零，放弃下单", sig.Strategy, rawQty, step)
		return nil
	}

	ack, err := c.gateway.PlaceOrder(ctx, exchange.OrderRequest{
		Symbol:     c.symbol,
		Side:       side,
		Quantity:   qty,
		ReduceOnly: reduceOnly,
	})
	if err != nil {
		return &faults.Fault{Kind: faults.KindExecution, Op: "下单", Err: err}
	}
	logger.Infof("[%s] 订单已提交 id=%s side=%s qty=%s，%s 后查证", sig.Strategy, ack.OrderID, side, qty, c.grace)

	// 市价单给交易所留一个撮合宽限期，然后只读一次最终状态
	c.sleep(c.grace)
	status, err := c.gateway.GetOrderStatus(ctx, ack.OrderID, c.symbol)
	if err != nil {
		return &faults.Fault{Kind: faults.KindReconciliation, Op: "订单查证", Err: fmt.Errorf("订单 %s: %w", ack.OrderID, err)}
	}
	if status.ExecutedQty <= 0 {
		logger.Warnf("[%s] 订单 %s 未成交 status=%s，不记账", sig.Strategy, ack.OrderID, status.Status)
		return nil
	}

	avg := status.AvgPrice()
	rec := store.TradeRecord{
		Timestamp: time.Now(),
		Symbol:    c.symbol,
		Strategy:  sig.Strategy,
		Side:      string(side),
		Price:     avg,
		Quantity:  status.ExecutedQty,
		Notional:  status.CumQuote,
		OrderID:   ack.OrderID,
	}
	if err := c.store.AppendTrade(ctx, rec); err != nil {
		logger.Errorf("成交记录写入失败 order=%s: %v", ack.OrderID, err)
	}
	logger.Infof("[%s] 成交 side=%s qty=%.8f avg=%.2f order=%s", sig.Strategy, side, status.ExecutedQty, avg, ack.OrderID)

	msg := notifier.TradeMessage{
		Symbol:    c.symbol,
		Side:      string(side),
		Strategy:  sig.Strategy,
		Reason:    sig.Reason,
		Quantity:  strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.8f", status.ExecutedQty), "0"), "."),
		AvgPrice:  avg,
		OrderID:   ack.OrderID,
		Timestamp: time.Now(),
	}
	if err := c.notify.SendText(msg.RenderMarkdown()); err != nil {
		logger.Warnf("成交通知发送失败: %v", err)
	}
	return nil
}

func (c *Coordinator) stepSize(ctx context.Context) (string, error) {
	if c.lotStep != "" {
		return c.lotStep, nil
	}
	step, err := c.gateway.GetLotStep(ctx, c.symbol)
	if err != nil {
		return "", &faults.Fault{Kind: faults.KindConnectivity, Op: "步长查询", Err: err}
	}
	c.lotStep = step
	return step, nil
}

func (c *Coordinator) auditSignal(ctx context.Context, sig strategy.Signal) {
	err := c.store.AppendSignal(ctx, store.SignalRecord{
		Timestamp: sig.At,
		Strategy:  sig.Strategy,
		Symbol:    c.symbol,
		Action:    string(sig.Action),
		Price:     sig.RefPrice,
		Reason:    sig.Reason,
	})
	if err != nil {
		logger.Warnf("信号记录写入失败: %v", err)
	}
}
