// Package app 负责应用级编排：加载配置→初始化依赖→启动交易循环与 Web API。
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"barbot/internal/align"
	"barbot/internal/config"
	"barbot/internal/gateway/exchange"
	"barbot/internal/logger"
	"barbot/internal/notifier"
	"barbot/internal/store"
	"barbot/internal/strategy"
	"barbot/internal/trader"
	"barbot/internal/watcher"
	"barbot/internal/webapi"
)

type App struct {
	cfg     *config.Config
	cfgPath string
	store   *store.Store

	dataGW  exchange.Gateway // 行情端，始终连主网
	tradeGW exchange.Gateway // 交易端，按 mode / paper_trading 决定

	watch       *watcher.Watcher
	aligner     *align.Aligner
	engine      *strategy.Engine
	oracle      *trader.Oracle
	coordinator *trader.Coordinator
	notify      notifier.TextNotifier
	web         *webapi.Server

	mu        sync.Mutex
	lastCycle time.Time
	cycles    int64
}

// Run 启动 Web API 与交易主循环，任一侧出错即整体退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app 未初始化")
	}
	config.Watch(a.cfgPath, logger.SetLevel)

	group, ctx := errgroup.WithContext(ctx)
	if a.web != nil {
		group.Go(func() error {
			logger.Infof("Web API 监听 %s", a.web.Addr())
			if err := a.web.Start(ctx); err != nil {
				return fmt.Errorf("web api: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		defer a.store.Close()
		return a.runLoop(ctx)
	})
	return group.Wait()
}

func (a *App) status() webapi.Status {
	a.mu.Lock()
	last := a.lastCycle
	cycles := a.cycles
	a.mu.Unlock()
	return webapi.Status{
		Symbol:     a.cfg.Trading.Symbol,
		Interval:   a.cfg.Trading.Interval,
		Mode:       a.mode(),
		Strategies: a.cfg.Trading.Strategies,
		Watermark:  a.watch.Watermark(),
		LastCycle:  last,
		Cycles:     cycles,
	}
}

func (a *App) mode() string {
	if a.cfg.System.PaperTrading {
		return "PAPER"
	}
	return a.cfg.System.Mode
}

func (a *App) markCycle() {
	a.mu.Lock()
	a.lastCycle = time.Now()
	a.cycles++
	a.mu.Unlock()
}
