// Package binance 基于 go-binance SDK 实现 exchange.Gateway。
package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	"barbot/internal/faults"
	"barbot/internal/gateway/exchange"
	"barbot/internal/market"
)

const maxHistoryLimit = 1500

const TestnetBaseURL = "https://testnet.binancefuture.com"

type Config struct {
	APIKey    string
	APISecret string
	// BaseURL 为空时连主网，测试网传入 TestnetBaseURL。
	BaseURL     string
	HTTPTimeout time.Duration
}

type Gateway struct {
	client *futures.Client
}

func New(cfg Config) *Gateway {
	client := futures.NewClient(cfg.APIKey, cfg.APISecret)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		client.BaseURL = base
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &Gateway{client: client}
}

func (g *Gateway) Name() string { return "binance" }

func (g *Gateway) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	kls, err := g.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "binance.get_candles", err)
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
		})
	}
	return out, nil
}

func (g *Gateway) GetPosition(ctx context.Context, symbol string) (*market.PositionSnapshot, error) {
	risks, err := g.client.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "binance.get_position", err)
	}
	for _, p := range risks {
		if p == nil || p.Symbol != symbol {
			continue
		}
		leverage, _ := strconv.Atoi(strings.TrimSpace(p.Leverage))
		if leverage <= 0 {
			leverage = 1
		}
		return &market.PositionSnapshot{
			Symbol:        p.Symbol,
			Amount:        parseFloat(p.PositionAmt),
			EntryPrice:    parseFloat(p.EntryPrice),
			UnrealizedPnL: parseFloat(p.UnRealizedProfit),
			Leverage:      leverage,
		}, nil
	}
	return nil, nil
}

func (g *Gateway) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (*exchange.OrderAck, error) {
	svc := g.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Type(futures.OrderTypeMarket).
		Quantity(req.Quantity)
	if req.ReduceOnly {
		svc = svc.ReduceOnly(true)
	}
	resp, err := svc.Do(ctx)
	if err != nil {
		return nil, faults.New(faults.KindExecution, "binance.place_order", err)
	}
	return &exchange.OrderAck{OrderID: strconv.FormatInt(resp.OrderID, 10)}, nil
}

func (g *Gateway) GetOrderStatus(ctx context.Context, orderID, symbol string) (*exchange.OrderStatus, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return nil, faults.New(faults.KindDataIntegrity, "binance.get_order_status", fmt.Errorf("无效订单号 %q: %w", orderID, err))
	}
	order, err := g.client.NewGetOrderService().Symbol(symbol).OrderID(id).Do(ctx)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "binance.get_order_status", err)
	}
	return &exchange.OrderStatus{
		Status:      string(order.Status),
		ExecutedQty: parseFloat(order.ExecutedQuantity),
		CumQuote:    parseFloat(order.CumQuote),
	}, nil
}

func (g *Gateway) GetLotStep(ctx context.Context, symbol string) (string, error) {
	info, err := g.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return "", faults.New(faults.KindConnectivity, "binance.get_lot_step", err)
	}
	for i := range info.Symbols {
		s := &info.Symbols[i]
		if s.Symbol != symbol {
			continue
		}
		if f := s.LotSizeFilter(); f != nil && f.StepSize != "" {
			return f.StepSize, nil
		}
	}
	return "", faults.New(faults.KindDataIntegrity, "binance.get_lot_step",
		fmt.Errorf("exchangeInfo 里找不到 %s 的 LOT_SIZE", symbol))
}

func (g *Gateway) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	_, err := g.client.NewChangeLeverageService().Symbol(symbol).Leverage(leverage).Do(ctx)
	if err != nil {
		return faults.New(faults.KindConnectivity, "binance.set_leverage", err)
	}
	return nil
}

// FundingRateHistory 返回资金费率历史，供 funding_rate 数据源使用。
// 行情端口，不属于 exchange.Gateway 下单契约。
func (g *Gateway) FundingRateHistory(ctx context.Context, symbol string, limit int) ([]market.MetricPoint, error) {
	if limit <= 0 {
		limit = 100
	}
	rates, err := g.client.NewFundingRateService().Symbol(symbol).Limit(limit).Do(ctx)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "binance.funding_rate", err)
	}
	out := make([]market.MetricPoint, 0, len(rates))
	for _, r := range rates {
		if r == nil {
			continue
		}
		out = append(out, market.MetricPoint{
			OpenTime: r.FundingTime,
			Symbol:   r.Symbol,
			Metric:   "funding_rate",
			Value:    parseFloat(r.FundingRate),
		})
	}
	return out, nil
}

func parseFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return val
}

var _ exchange.Gateway = (*Gateway)(nil)
