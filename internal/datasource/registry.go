package datasource

import (
	"barbot/internal/config"
	"barbot/internal/logger"
)

// Registered 把源和它的抓取条数绑在一起。
type Registered struct {
	Source Source
	Limit  int
}

// Build 按配置静态注册数据源，不做任何运行时扫描。
// 返回标量指标源列表与 K 线形源列表（后者只落库不对齐）。
func Build(cfg config.SourcesConfig, symbol string, funding FundingProvider) ([]Registered, []CandleSource) {
	var sources []Registered
	var candleSources []CandleSource

	if cfg.FearGreed.Enabled {
		sources = append(sources, Registered{Source: NewFearGreedSource(), Limit: cfg.FearGreed.Limit})
	}
	if cfg.FundingRate.Enabled && funding != nil {
		sources = append(sources, Registered{Source: NewFundingRateSource(funding, symbol), Limit: cfg.FundingRate.Limit})
	}
	if cfg.Fred.Enabled {
		sources = append(sources, Registered{Source: NewFredSource(cfg.Fred.APIKey), Limit: cfg.Fred.Limit})
	}
	if cfg.Trends.Enabled {
		sources = append(sources, Registered{Source: NewTrendsSource(cfg.Trends.Keyword)})
	}
	if cfg.USStock.Enabled {
		candleSources = append(candleSources, NewUSStockSource(cfg.USStock.APIKey, cfg.USStock.Symbol))
	}

	names := make([]string, 0, len(sources)+len(candleSources))
	for _, r := range sources {
		names = append(names, r.Source.Name())
	}
	for _, c := range candleSources {
		names = append(names, c.Name())
	}
	logger.Infof("已载入外部数据源: %v", names)
	return sources, candleSources
}
