package datasource

import (
	"context"

	"barbot/internal/market"
)

// FundingProvider 由行情网关实现（始终连主网的数据端口）。
type FundingProvider interface {
	FundingRateHistory(ctx context.Context, symbol string, limit int) ([]market.MetricPoint, error)
}

// FundingRateSource 把交易所的资金费率历史接成通用指标源。
type FundingRateSource struct {
	provider FundingProvider
	symbol   string
}

func NewFundingRateSource(provider FundingProvider, symbol string) *FundingRateSource {
	return &FundingRateSource{provider: provider, symbol: symbol}
}

func (s *FundingRateSource) Name() string { return "funding_rate" }

func (s *FundingRateSource) Fetch(ctx context.Context, limit int) ([]market.MetricPoint, error) {
	return s.provider.FundingRateHistory(ctx, s.symbol, limit)
}
