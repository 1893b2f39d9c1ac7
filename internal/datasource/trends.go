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
	"golang.org/x/time/rate"

	"barbot/internal/faults"
	"barbot/internal/market"
)

const (
	trendsExploreEndpoint  = "https://trends.google.com/trends/api/explore"
	trendsTimelineEndpoint = "https://trends.google.com/trends/api/widgetdata/multiline"
)

// TrendsSource 抓取 Google 搜索热度（过去 7 天的小时级数据）。
// Google 对这个私有接口限流很凶，内置限速器压到约每 5 分钟一次。
type TrendsSource struct {
	keyword string
	client  *http.Client
	limiter *rate.Limiter

	lastPoints []market.MetricPoint
}

func NewTrendsSource(keyword string) *TrendsSource {
	return &TrendsSource{
		keyword: keyword,
		client:  &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Every(5*time.Minute), 1),
	}
}

func (s *TrendsSource) Name() string { return "google_trends" }

func (s *TrendsSource) Fetch(ctx context.Context, _ int) ([]market.MetricPoint, error) {
	if !s.limiter.Allow() {
		// 限速窗口内直接回放上次结果，upsert 幂等所以无害
		return s.lastPoints, nil
	}
	widget, err := s.explore(ctx)
	if err != nil {
		return nil, err
	}
	points, err := s.timeline(ctx, widget)
	if err != nil {
		return nil, err
	}
	s.lastPoints = points
	return points, nil
}

type trendsWidget struct {
	token   string
	request string
}

// explore 第一步：换取 widget token。
func (s *TrendsSource) explore(ctx context.Context) (*trendsWidget, error) {
	reqJSON := fmt.Sprintf(`{"comparisonItem":[{"keyword":%q,"geo":"","time":"now 7-d"}],"category":0,"property":""}`, s.keyword)
	q := url.Values{}
	q.Set("hl", "en-US")
	q.Set("tz", "0")
	q.Set("req", reqJSON)
	body, err := s.get(ctx, trendsExploreEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var widget *trendsWidget
	gjson.GetBytes(body, "widgets").ForEach(func(_, w gjson.Result) bool {
		if w.Get("id").String() != "TIMESERIES" {
			return true
		}
		widget = &trendsWidget{
			token:   w.Get("token").String(),
			request: w.Get("request").Raw,
		}
		return false
	})
	if widget == nil || widget.token == "" {
		return nil, faults.New(faults.KindDataIntegrity, "trends.explore", fmt.Errorf("响应里没有 TIMESERIES widget"))
	}
	return widget, nil
}

// timeline 第二步：用 token 拉时间序列。
func (s *TrendsSource) timeline(ctx context.Context, widget *trendsWidget) ([]market.MetricPoint, error) {
	q := url.Values{}
	q.Set("hl", "en-US")
	q.Set("tz", "0")
	q.Set("token", widget.token)
	q.Set("req", widget.request)
	body, err := s.get(ctx, trendsTimelineEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var points []market.MetricPoint
	gjson.GetBytes(body, "default.timelineData").ForEach(func(_, item gjson.Result) bool {
		sec, err := strconv.ParseInt(item.Get("time").String(), 10, 64)
		if err != nil {
			return true
		}
		values := item.Get("value").Array()
		if len(values) == 0 {
			return true
		}
		points = append(points, market.MetricPoint{
			OpenTime: sec * 1000,
			Symbol:   market.SymbolGlobal,
			Metric:   "google_trends",
			Value:    values[0].Float(),
		})
		return true
	})
	if len(points) == 0 {
		return nil, faults.New(faults.KindDataIntegrity, "trends.timeline", fmt.Errorf("timelineData 为空"))
	}
	return points, nil
}

func (s *TrendsSource) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "trends.fetch", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "trends.fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, faults.New(faults.KindConnectivity, "trends.fetch", fmt.Errorf("被限流 (429)"))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, faults.New(faults.KindConnectivity, "trends.fetch", fmt.Errorf("unexpected status %s", resp.Status))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.New(faults.KindDataIntegrity, "trends.read", err)
	}
	// Google 会在 JSON 前面垫一行反爬前缀
	if idx := strings.IndexByte(string(body), '\n'); idx >= 0 && strings.HasPrefix(string(body), ")]}'") {
		body = body[idx+1:]
	}
	return body, nil
}
