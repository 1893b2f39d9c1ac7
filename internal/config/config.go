package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"barbot/internal/market"
)

// Load 读取 YAML 配置，套用默认值并做启动期校验。
// 校验失败属于致命配置错误：进程不应进入主循环。
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	cfg.fillFromEnv()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fillFromEnv 用环境变量补齐文件里留空的敏感字段。
func (c *Config) fillFromEnv() {
	fill := func(dst *string, key string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = strings.TrimSpace(os.Getenv(key))
		}
	}
	fill(&c.Binance.APIKey, "BINANCE_API_KEY")
	fill(&c.Binance.APISecret, "BINANCE_SECRET_KEY")
	fill(&c.Binance.TestnetKey, "TESTNET_API_KEY")
	fill(&c.Binance.TestnetSecret, "TESTNET_SECRET_KEY")
	fill(&c.Notify.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	fill(&c.Notify.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	fill(&c.Sources.Fred.APIKey, "FRED_API_KEY")
	fill(&c.Sources.USStock.APIKey, "ALPHA_VANTAGE_KEY")
}

func validate(c *Config) error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol 不能为空")
	}
	if _, ok := market.ParseIntervalDuration(c.Trading.Interval); !ok {
		return fmt.Errorf("trading.interval 无效: %q", c.Trading.Interval)
	}
	if len(c.Trading.Strategies) == 0 {
		return fmt.Errorf("trading.strategies 至少需要一个策略")
	}
	if c.Risk.FixedAmount <= 0 {
		return fmt.Errorf("risk.fixed_amount 必须大于 0")
	}
	if c.Risk.Leverage < 1 {
		return fmt.Errorf("risk.leverage 必须不小于 1")
	}
	mode := strings.ToUpper(strings.TrimSpace(c.System.Mode))
	if mode != ModeTestnet && mode != ModeMainnet {
		return fmt.Errorf("system.mode 必须是 %s 或 %s", ModeTestnet, ModeMainnet)
	}
	c.System.Mode = mode
	if !c.System.PaperTrading {
		if mode == ModeTestnet && (c.Binance.TestnetKey == "" || c.Binance.TestnetSecret == "") {
			return fmt.Errorf("测试网密钥缺失（TESTNET_API_KEY / TESTNET_SECRET_KEY）")
		}
		if mode == ModeMainnet && (c.Binance.APIKey == "" || c.Binance.APISecret == "") {
			return fmt.Errorf("主网密钥缺失（BINANCE_API_KEY / BINANCE_SECRET_KEY）")
		}
	}
	if c.Sources.Fred.Enabled && c.Sources.Fred.APIKey == "" {
		return fmt.Errorf("sources.fred 已启用但缺少 FRED_API_KEY")
	}
	if c.Sources.USStock.Enabled && c.Sources.USStock.APIKey == "" {
		return fmt.Errorf("sources.us_stock 已启用但缺少 ALPHA_VANTAGE_KEY")
	}
	return nil
}
