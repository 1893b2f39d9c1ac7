package app

import (
	"fmt"
	"time"

	"barbot/internal/align"
	"barbot/internal/config"
	"barbot/internal/datasource"
	binancegw "barbot/internal/gateway/binance"
	"barbot/internal/gateway/exchange"
	"barbot/internal/gateway/paper"
	"barbot/internal/logger"
	"barbot/internal/notifier"
	"barbot/internal/risk"
	"barbot/internal/store"
	"barbot/internal/strategy"
	"barbot/internal/trader"
	"barbot/internal/watcher"
	"barbot/internal/webapi"
)

// New 根据配置手工装配全部依赖（不启动）。
func New(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("打开存储失败: %w", err)
	}

	timeout := time.Duration(cfg.Binance.TimeoutSeconds) * time.Second
	// 行情永远来自主网，测试网的历史 K 线不适合喂给策略
	dataGW := binancegw.New(binancegw.Config{
		APIKey:      cfg.Binance.APIKey,
		APISecret:   cfg.Binance.APISecret,
		HTTPTimeout: timeout,
	})

	var tradeGW exchange.Gateway
	switch {
	case cfg.System.PaperTrading:
		tradeGW = paper.New(dataGW)
	case cfg.System.Mode == config.ModeTestnet:
		tradeGW = binancegw.New(binancegw.Config{
			APIKey:      cfg.Binance.TestnetKey,
			APISecret:   cfg.Binance.TestnetSecret,
			BaseURL:     binancegw.TestnetBaseURL,
			HTTPTimeout: timeout,
		})
	default:
		tradeGW = dataGW
	}
	logger.Infof("交易端网关: %s (mode=%s paper=%v)", tradeGW.Name(), cfg.System.Mode, cfg.System.PaperTrading)

	symbol := cfg.Trading.Symbol
	interval := cfg.Trading.Interval

	sources, candleSources := datasource.Build(cfg.Sources, symbol, dataGW)
	aligner := align.New(st, symbol, interval, cfg.Trading.SnapshotWindow,
		align.DefaultMetricSpecs(symbol), sources, candleSources)

	units, err := strategy.Build(cfg.Trading.Strategies)
	if err != nil {
		return nil, err
	}

	var notify notifier.TextNotifier = notifier.Noop{}
	if cfg.Notify.Telegram.Enabled {
		notify = notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}

	sizer := risk.NewSizer(cfg.Risk.FixedAmount, cfg.Risk.Leverage)
	grace := time.Duration(cfg.Executor.GraceSeconds) * time.Second

	a := &App{
		cfg:         cfg,
		cfgPath:     cfgPath,
		store:       st,
		dataGW:      dataGW,
		tradeGW:     tradeGW,
		watch:       watcher.New(dataGW, symbol, interval),
		aligner:     aligner,
		engine:      strategy.NewEngine(units),
		oracle:      trader.NewOracle(tradeGW, st, symbol),
		coordinator: trader.NewCoordinator(tradeGW, st, sizer, notify, symbol, grace),
		notify:      notify,
	}

	if cfg.Web.Enabled {
		web, err := webapi.NewServer(webapi.ServerConfig{
			Addr:   cfg.Web.Listen,
			Store:  st,
			Status: a.status,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		a.web = web
	}
	return a, nil
}
