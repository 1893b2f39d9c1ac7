package config

const (
	ModeTestnet = "TESTNET"
	ModeMainnet = "MAINNET"
)

// 默认值常量
const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultSymbol         = "BTCUSDT"
	defaultInterval       = "1h"
	defaultPollSeconds    = 10
	defaultSnapshotWindow = 200
	defaultWarmupLimit    = 1500
	defaultRiskAmount     = 20
	defaultRiskLeverage   = 1
	defaultHTTPTimeout    = 15
	defaultStorePath      = "data/trading.db"
	defaultGraceSeconds   = 3
	defaultWebListen      = ":9980"
	defaultSourceLimit    = 100
	defaultFredLimit      = 5
	defaultTrendsKeyword  = "Bitcoin"
	defaultUSStockSymbol  = "QQQ"
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.System.Mode == "" {
		c.System.Mode = ModeTestnet
	}
	if c.Trading.Symbol == "" {
		c.Trading.Symbol = defaultSymbol
	}
	if c.Trading.Interval == "" {
		c.Trading.Interval = defaultInterval
	}
	if c.Trading.PollIntervalSeconds <= 0 {
		c.Trading.PollIntervalSeconds = defaultPollSeconds
	}
	if c.Trading.SnapshotWindow <= 0 {
		c.Trading.SnapshotWindow = defaultSnapshotWindow
	}
	if c.Trading.WarmupLimit <= 0 {
		c.Trading.WarmupLimit = defaultWarmupLimit
	}
	if c.Risk.FixedAmount <= 0 {
		c.Risk.FixedAmount = defaultRiskAmount
	}
	if c.Risk.Leverage <= 0 {
		c.Risk.Leverage = defaultRiskLeverage
	}
	if c.Binance.TimeoutSeconds <= 0 {
		c.Binance.TimeoutSeconds = defaultHTTPTimeout
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Executor.GraceSeconds <= 0 {
		c.Executor.GraceSeconds = defaultGraceSeconds
	}
	if c.Web.Listen == "" {
		c.Web.Listen = defaultWebListen
	}
	if c.Sources.FearGreed.Limit <= 0 {
		c.Sources.FearGreed.Limit = defaultSourceLimit
	}
	if c.Sources.FundingRate.Limit <= 0 {
		c.Sources.FundingRate.Limit = defaultSourceLimit
	}
	if c.Sources.Fred.Limit <= 0 {
		c.Sources.Fred.Limit = defaultFredLimit
	}
	if c.Sources.Trends.Keyword == "" {
		c.Sources.Trends.Keyword = defaultTrendsKeyword
	}
	if c.Sources.USStock.Symbol == "" {
		c.Sources.USStock.Symbol = defaultUSStockSymbol
	}
}
