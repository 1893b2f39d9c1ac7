package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"barbot/internal/faults"
	"barbot/internal/logger"
	"barbot/internal/market"
)

const fredEndpoint = "https://api.stlouisfed.org/fred/series/observations"

// fredSeries 把 FRED 序列号映射到本地指标名。
var fredSeries = map[string]string{
	"WALCL": "fed_assets", // 联准会总资产
	"GS10":  "yield_10y",
	"GS2":   "yield_2y",
}

// FredSource 抓取圣路易斯联储的宏观序列，更新频率以天/周计。
type FredSource struct {
	apiKey string
	client *http.Client
}

func NewFredSource(apiKey string) *FredSource {
	return &FredSource{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *FredSource) Name() string { return "fred_macro" }

func (s *FredSource) Fetch(ctx context.Context, limit int) ([]market.MetricPoint, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []market.MetricPoint
	for seriesID, metric := range fredSeries {
		points, err := s.fetchSeries(ctx, seriesID, metric, limit)
		if err != nil {
			// 单个序列失败不拖累其它序列
			logger.Warnf("FRED 序列 %s 抓取失败: %v", seriesID, err)
			continue
		}
		out = append(out, points...)
	}
	return out, nil
}

func (s *FredSource) fetchSeries(ctx context.Context, seriesID, metric string, limit int) ([]market.MetricPoint, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", s.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", strconv.Itoa(limit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fredEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "fred.fetch", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "fred.fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, faults.New(faults.KindConnectivity, "fred.fetch", fmt.Errorf("unexpected status %s", resp.Status))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.New(faults.KindDataIntegrity, "fred.read", err)
	}
	observations := gjson.GetBytes(body, "observations")
	if !observations.Exists() {
		return nil, faults.New(faults.KindDataIntegrity, "fred.decode", fmt.Errorf("响应缺少 observations 字段"))
	}
	var points []market.MetricPoint
	observations.ForEach(func(_, obs gjson.Result) bool {
		raw := strings.TrimSpace(obs.Get("value").String())
		if raw == "" || raw == "." { // FRED 用 "." 表示缺值
			return true
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return true
		}
		date, err := time.Parse("2006-01-02", obs.Get("date").String())
		if err != nil {
			return true
		}
		points = append(points, market.MetricPoint{
			OpenTime: date.UTC().UnixMilli(),
			Symbol:   market.SymbolUSMacro,
			Metric:   metric,
			Value:    value,
		})
		return true
	})
	return points, nil
}
