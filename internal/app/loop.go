package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"barbot/internal/faults"
	"barbot/internal/logger"
	"barbot/internal/notifier"
)

const (
	connectivityBackoff = 30 * time.Second
	panicBackoff        = 30 * time.Second
)

// runLoop 是交易主循环：启动预热后按轮询间隔检测新收盘 K 线。
// 除 ctx 取消外循环永不退出，单周期的任何错误都只影响本周期。
func (a *App) runLoop(ctx context.Context) error {
	if err := a.bootstrap(ctx); err != nil {
		return fmt.Errorf("启动预热失败: %w", err)
	}

	poll := time.Duration(a.cfg.Trading.PollIntervalSeconds) * time.Second
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	logger.Infof("进入交易循环 symbol=%s interval=%s poll=%s", a.cfg.Trading.Symbol, a.cfg.Trading.Interval, poll)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("收到退出信号，交易循环结束")
			return nil
		case <-ticker.C:
		}
		if backoff := a.safeCycle(ctx); backoff > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
		}
	}
}

// bootstrap 完成开仓前的一次性准备：设杠杆、回填历史 K 线与外部指标、策略预热。
func (a *App) bootstrap(ctx context.Context) error {
	symbol := a.cfg.Trading.Symbol
	interval := a.cfg.Trading.Interval

	if err := a.tradeGW.SetLeverage(ctx, symbol, a.cfg.Risk.Leverage); err != nil {
		// 杠杆设置失败不拦启动，交易所侧可能已是目标值
		logger.Warnf("设置杠杆失败 leverage=%d: %v", a.cfg.Risk.Leverage, err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		candles, err := a.dataGW.GetCandles(gctx, symbol, interval, a.cfg.Trading.WarmupLimit)
		if err != nil {
			return fmt.Errorf("历史 K 线回填失败: %w", err)
		}
		if len(candles) > 0 {
			// 末尾一根尚未收盘，不入库
			closed := candles[:len(candles)-1]
			if err := a.store.UpsertCandles(gctx, symbol, interval, closed); err != nil {
				return err
			}
			if len(closed) > 0 {
				a.watch.Advance(closed[len(closed)-1].OpenTime)
			}
			logger.Infof("历史 K 线回填完成: %d 根", len(closed))
		}
		return nil
	})
	group.Go(func() error {
		// 外部源失败只降级，不拦启动
		a.aligner.RefreshSources(gctx)
		return nil
	})
	if err := group.Wait(); err != nil {
		return err
	}

	history, err := a.aligner.BuildSnapshot(ctx, a.cfg.Trading.SnapshotWindow)
	if err != nil {
		return fmt.Errorf("预热快照构建失败: %w", err)
	}
	a.engine.WarmUpAll(history)
	logger.Infof("策略预热完成: %d 根 K 线, 策略=%v", history.Len(), a.cfg.Trading.Strategies)

	boot := notifier.BootMessage(symbol, interval, a.cfg.Trading.Strategies, a.mode())
	if err := a.notify.SendText(boot); err != nil {
		logger.Warnf("启动通知发送失败: %v", err)
	}
	return nil
}

// safeCycle 执行一个检测周期，返回需要额外退避的时长（0 表示按正常节奏）。
// panic 被就地吞掉并延长退避，循环本身不会死。
func (a *App) safeCycle(ctx context.Context) (backoff time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("交易周期 panic: %v\n%s", r, debug.Stack())
			backoff = panicBackoff
		}
	}()
	err := a.cycle(ctx)
	switch {
	case err == nil:
		return 0
	case faults.IsConnectivity(err):
		logger.Warnf("连接故障，退避 %s 后重试: %v", connectivityBackoff, err)
		return connectivityBackoff
	default:
		logger.Errorf("周期执行失败 (%s): %v", faults.KindOf(err), err)
		return 0
	}
}

// cycle 是一个完整的检测周期：收盘检测 → ETL 对齐 → 持仓读取 → 策略评估 → 信号执行。
func (a *App) cycle(ctx context.Context) error {
	bar, err := a.watch.Poll(ctx)
	if err != nil {
		return err
	}
	if bar == nil {
		return nil
	}
	trace := uuid.NewString()[:8]
	logger.Infof("[%s] 检测到新收盘 K 线 open_time=%d", trace, bar.ClosedTime)

	snap, err := a.aligner.Run(ctx, bar)
	if err != nil {
		// 水位不动，下个周期重做整根 bar
		return err
	}
	a.watch.Advance(bar.ClosedTime)

	// 整个周期只读一次持仓，所有信号共享这份快照
	position, err := a.oracle.Snapshot(ctx, snap.Last().Close)
	if err != nil {
		return err
	}

	signals := a.engine.Evaluate(snap)
	if len(signals) > 0 {
		logger.Infof("[%s] 本周期产生 %d 条信号", trace, len(signals))
	}
	for _, sig := range signals {
		if err := a.coordinator.Process(ctx, sig, position); err != nil {
			logger.Errorf("[%s] 信号执行失败 [%s/%s] (%s): %v", trace, sig.Strategy, sig.Action, faults.KindOf(err), err)
		}
	}
	a.markCycle()
	return nil
}
