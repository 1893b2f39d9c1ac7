// Package align 实现 ETL：落库新收盘的 K 线、刷新外部指标，
// 再用向后 as-of join 把多频序列拼成策略可用的快照。
package align

import (
	"context"
	"fmt"
	"sort"
	"time"

	"barbot/internal/datasource"
	"barbot/internal/faults"
	"barbot/internal/logger"
	"barbot/internal/market"
	"barbot/internal/pkg/circuit"
	"barbot/internal/store"
	"barbot/internal/watcher"
)

// 窗口起点再往前多看一天，保证窗口第一根 K 线也能找到可回看的指标值。
const lookbackBuffer = 24 * time.Hour

// 连续失败 3 次的源熔断半小时，期间整列走回退值。
const (
	sourceBreakThreshold = 3
	sourceBreakCooldown  = 30 * time.Minute
)

type Aligner struct {
	store         *store.Store
	sources       []datasource.Registered
	candleSources []datasource.CandleSource
	breakers      map[string]*circuit.Breaker

	symbol   string
	interval string
	window   int
	specs    []MetricSpec
}

func New(st *store.Store, symbol, interval string, window int, specs []MetricSpec,
	sources []datasource.Registered, candleSources []datasource.CandleSource) *Aligner {
	breakers := make(map[string]*circuit.Breaker, len(sources)+len(candleSources))
	for _, reg := range sources {
		breakers[reg.Source.Name()] = circuit.NewBreaker(reg.Source.Name(), sourceBreakThreshold, sourceBreakCooldown)
	}
	for _, cs := range candleSources {
		breakers[cs.Name()] = circuit.NewBreaker(cs.Name(), sourceBreakThreshold, sourceBreakCooldown)
	}
	return &Aligner{
		store:         st,
		sources:       sources,
		candleSources: candleSources,
		breakers:      breakers,
		symbol:        symbol,
		interval:      interval,
		window:        window,
		specs:         specs,
	}
}

// Run 处理一根新收盘的 bar：先落库，再刷新外部数据，最后重建对齐快照。
// 水位推进由调用方在 Run 成功返回后执行。
func (a *Aligner) Run(ctx context.Context, bar *watcher.NewBar) (*Snapshot, error) {
	logger.Infof("[ETL] 处理新 K 线: %s", time.UnixMilli(bar.ClosedTime).UTC().Format(time.RFC3339))
	if err := a.store.UpsertCandles(ctx, a.symbol, a.interval, []market.Candle{bar.Candle}); err != nil {
		return nil, fmt.Errorf("K 线落库失败: %w", err)
	}
	a.RefreshSources(ctx)
	return a.BuildSnapshot(ctx, a.window)
}

// RefreshSources 逐个刷新外部源。单源失败只记日志，不影响其它源，也不影响本周期；
// 连续失败的源会被熔断一段时间，期间直接跳过。
func (a *Aligner) RefreshSources(ctx context.Context) {
	for _, reg := range a.sources {
		name := reg.Source.Name()
		if !a.breakers[name].Allow() {
			logger.Debugf("数据源 [%s] 熔断中，跳过", name)
			continue
		}
		points, err := reg.Source.Fetch(ctx, reg.Limit)
		if err != nil {
			a.breakers[name].Failure()
			logger.Warnf("外部数据更新失败 [%s] (%s): %v", name, faults.KindOf(err), err)
			continue
		}
		a.breakers[name].Success()
		if len(points) == 0 {
			continue // 空结果是无事发生，不算错误
		}
		if err := a.store.UpsertMetrics(ctx, points); err != nil {
			logger.Errorf("指标落库失败 [%s]: %v", name, err)
		}
	}
	for _, cs := range a.candleSources {
		name := cs.Name()
		if !a.breakers[name].Allow() {
			logger.Debugf("数据源 [%s] 熔断中，跳过", name)
			continue
		}
		candles, err := cs.FetchCandles(ctx)
		if err != nil {
			a.breakers[name].Failure()
			logger.Warnf("外部数据更新失败 [%s] (%s): %v", name, faults.KindOf(err), err)
			continue
		}
		a.breakers[name].Success()
		if len(candles) == 0 {
			continue
		}
		if err := a.store.UpsertCandles(ctx, cs.Symbol(), cs.Interval(), candles); err != nil {
			logger.Errorf("K 线落库失败 [%s]: %v", name, err)
		}
	}
}

// BuildSnapshot 读回最近 limit 根 K 线并对齐所有注册指标。
func (a *Aligner) BuildSnapshot(ctx context.Context, limit int) (*Snapshot, error) {
	candles, err := a.store.QueryCandles(ctx, a.symbol, a.interval, limit)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, faults.New(faults.KindDataIntegrity, "align.build", fmt.Errorf("K 线表为空"))
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime < candles[j].OpenTime })

	rows := make([]Row, len(candles))
	for i, c := range candles {
		rows[i] = Row{Candle: c, Metrics: make(map[string]float64, len(a.specs))}
	}
	windowStart := candles[0].OpenTime - lookbackBuffer.Milliseconds()

	for _, spec := range a.specs {
		points, err := a.store.QueryMetricsFrom(ctx, spec.Symbol, spec.Name, windowStart)
		if err != nil {
			logger.Warnf("指标读取失败 [%s]: %v，整列使用回退值", spec.Name, err)
			points = nil
		}
		values := asofJoin(candles, points, spec.Fallback)
		for i := range rows {
			rows[i].Metrics[spec.Name] = values[i]
		}
	}
	return &Snapshot{Symbol: a.symbol, Interval: a.interval, Rows: rows}, nil
}

// asofJoin 对每根 K 线取 open_time 不晚于它的最近一条指标值（向后查找 / forward-fill）。
// 不回看任何晚于 K 线 open_time 的指标行：这是防前视的核心不变量。
// K 线早于全部指标数据时使用回退值。
func asofJoin(candles []market.Candle, points []market.MetricPoint, fallback float64) []float64 {
	sort.Slice(points, func(i, j int) bool { return points[i].OpenTime < points[j].OpenTime })
	out := make([]float64, len(candles))
	j := -1
	for i, c := range candles {
		for j+1 < len(points) && points[j+1].OpenTime <= c.OpenTime {
			j++
		}
		if j >= 0 {
			out[i] = points[j].Value
		} else {
			out[i] = fallback
		}
	}
	return out
}
