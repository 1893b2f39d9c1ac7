package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"barbot/internal/faults"
	"barbot/internal/market"
)

const alphaVantageEndpoint = "https://www.alphavantage.co/query"

// USStockSource 抓取 Alpha Vantage 的美股日线（compact = 最近 100 根）。
// 产出的是 K 线而非标量指标，落入 K 线表，不参与对齐。
type USStockSource struct {
	apiKey string
	symbol string
	client *http.Client
}

func NewUSStockSource(apiKey, symbol string) *USStockSource {
	return &USStockSource{
		apiKey: apiKey,
		symbol: symbol,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *USStockSource) Name() string     { return "us_stock_" + s.symbol }
func (s *USStockSource) Symbol() string   { return s.symbol }
func (s *USStockSource) Interval() string { return "1d" }

func (s *USStockSource) FetchCandles(ctx context.Context) ([]market.Candle, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", s.symbol)
	q.Set("outputsize", "compact")
	q.Set("apikey", s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, alphaVantageEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "us_stock.fetch", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "us_stock.fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, faults.New(faults.KindConnectivity, "us_stock.fetch", fmt.Errorf("unexpected status %s", resp.Status))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.New(faults.KindDataIntegrity, "us_stock.read", err)
	}
	if note := gjson.GetBytes(body, "Note"); note.Exists() {
		// 免费额度（每天 25 次）用尽时 Alpha Vantage 返回 200 + Note
		return nil, faults.New(faults.KindDataIntegrity, "us_stock.decode", fmt.Errorf("额度受限: %s", note.String()))
	}
	series := gjson.GetBytes(body, `Time Series (Daily)`)
	if !series.Exists() {
		return nil, faults.New(faults.KindDataIntegrity, "us_stock.decode", fmt.Errorf("响应缺少日线序列"))
	}
	var candles []market.Candle
	series.ForEach(func(key, bar gjson.Result) bool {
		date, err := time.Parse("2006-01-02", key.String())
		if err != nil {
			return true
		}
		// 美股收盘约在 UTC 20:00-21:00，统一把日期拨到当日 16 点（UTC）之后再落库
		openTime := date.UTC().Add(16 * time.Hour).UnixMilli()
		candles = append(candles, market.Candle{
			OpenTime: openTime,
			Open:     bar.Get("1. open").Float(),
			High:     bar.Get("2. high").Float(),
			Low:      bar.Get("3. low").Float(),
			Close:    bar.Get("4. close").Float(),
			Volume:   bar.Get("5. volume").Float(),
		})
		return true
	})
	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime < candles[j].OpenTime })
	return candles, nil
}
