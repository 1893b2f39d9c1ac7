package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"barbot/internal/faults"
	"barbot/internal/market"
)

const fearGreedEndpoint = "https://api.alternative.me/fng/"

// FearGreedSource 抓取 Alternative.me 的加密恐慌贪婪指数（0-100）。
type FearGreedSource struct {
	endpoint string
	client   *http.Client
}

func NewFearGreedSource() *FearGreedSource {
	return &FearGreedSource{
		endpoint: fearGreedEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *FearGreedSource) Name() string { return "fear_greed" }

type fearGreedResponse struct {
	Data []struct {
		Value     string `json:"value"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error interface{} `json:"error"`
	} `json:"metadata"`
}

func (s *FearGreedSource) Fetch(ctx context.Context, limit int) ([]market.MetricPoint, error) {
	if limit <= 0 {
		limit = 100
	}
	url := fmt.Sprintf("%s?limit=%d", s.endpoint, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "fear_greed.fetch", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, faults.New(faults.KindConnectivity, "fear_greed.fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, faults.New(faults.KindConnectivity, "fear_greed.fetch", fmt.Errorf("unexpected status %s", resp.Status))
	}
	var payload fearGreedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, faults.New(faults.KindDataIntegrity, "fear_greed.decode", err)
	}
	if payload.Metadata.Error != nil {
		return nil, faults.New(faults.KindDataIntegrity, "fear_greed.decode", fmt.Errorf("api error: %v", payload.Metadata.Error))
	}
	points := make([]market.MetricPoint, 0, len(payload.Data))
	for _, item := range payload.Data {
		value, err := strconv.ParseFloat(strings.TrimSpace(item.Value), 64)
		if err != nil {
			continue
		}
		sec, err := strconv.ParseInt(strings.TrimSpace(item.Timestamp), 10, 64)
		if err != nil {
			continue
		}
		points = append(points, market.MetricPoint{
			OpenTime: sec * 1000, // API 给秒，存毫秒
			Symbol:   market.SymbolGlobal,
			Metric:   "fear_greed",
			Value:    value,
		})
	}
	return points, nil
}
