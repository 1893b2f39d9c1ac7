package config

// Config 是 barbot 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	System   SystemConfig   `toml:"system"`
	Trading  TradingConfig  `toml:"trading"`
	Risk     RiskConfig     `toml:"risk"`
	Binance  BinanceConfig  `toml:"binance"`
	Store    StoreConfig    `toml:"store"`
	Notify   NotifyConfig   `toml:"notify"`
	Sources  SourcesConfig  `toml:"sources"`
	Executor ExecutorConfig `toml:"executor"`
	Web      WebConfig      `toml:"web"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
}

// SystemConfig 决定交易端连到哪里。
// mode 为 TESTNET 时下单走测试网；paper_trading 为 true 时完全不触网，使用模拟网关。
// 行情端始终连主网，测试网的历史数据不适合喂给策略。
type SystemConfig struct {
	Mode         string `toml:"mode"`
	PaperTrading bool   `toml:"paper_trading"`
}

type TradingConfig struct {
	Symbol              string   `toml:"symbol"`
	Interval            string   `toml:"interval"`
	Strategies          []string `toml:"strategies"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	SnapshotWindow      int      `toml:"snapshot_window"`
	WarmupLimit         int      `toml:"warmup_limit"`
}

// RiskConfig 是固定名义本金的仓位策略：每次开仓投入 fixed_amount × leverage。
type RiskConfig struct {
	FixedAmount float64 `toml:"fixed_amount"`
	Leverage    int     `toml:"leverage"`
}

type BinanceConfig struct {
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	TestnetKey     string `toml:"testnet_api_key"`
	TestnetSecret  string `toml:"testnet_api_secret"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

type SourcesConfig struct {
	FearGreed   FearGreedSourceConfig `toml:"fear_greed"`
	FundingRate FundingSourceConfig   `toml:"funding_rate"`
	Fred        FredSourceConfig      `toml:"fred"`
	Trends      TrendsSourceConfig    `toml:"google_trends"`
	USStock     USStockSourceConfig   `toml:"us_stock"`
}

type FearGreedSourceConfig struct {
	Enabled bool `toml:"enabled"`
	Limit   int  `toml:"limit"`
}

type FundingSourceConfig struct {
	Enabled bool `toml:"enabled"`
	Limit   int  `toml:"limit"`
}

type FredSourceConfig struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	Limit   int    `toml:"limit"`
}

type TrendsSourceConfig struct {
	Enabled bool   `toml:"enabled"`
	Keyword string `toml:"keyword"`
}

type USStockSourceConfig struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	Symbol  string `toml:"symbol"`
}

type ExecutorConfig struct {
	GraceSeconds int `toml:"grace_seconds"`
}

type WebConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}
