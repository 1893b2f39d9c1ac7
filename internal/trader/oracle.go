// Package trader 负责周期内的持仓读取与信号执行：
// 每周期只向交易所读一次持仓，随后的所有信号共享这份快照。
package trader

import (
	"context"
	"time"

	"barbot/internal/faults"
	"barbot/internal/gateway/exchange"
	"barbot/internal/logger"
	"barbot/internal/market"
	"barbot/internal/store"
)

// Oracle 每周期拉取一次持仓并落快照审计。
type Oracle struct {
	gateway exchange.Gateway
	store   *store.Store
	symbol  string
}

func NewOracle(gateway exchange.Gateway, st *store.Store, symbol string) *Oracle {
	return &Oracle{gateway: gateway, store: st, symbol: symbol}
}

// Snapshot 读取当前持仓（空仓返回 nil），并以 refPrice 追加一条资产快照。
// 快照写库失败只记审计缺口，不影响返回值。
func (o *Oracle) Snapshot(ctx context.Context, refPrice float64) (*market.PositionSnapshot, error) {
	pos, err := o.gateway.GetPosition(ctx, o.symbol)
	if err != nil {
		return nil, &faults.Fault{Kind: faults.KindConnectivity, Op: "持仓查询", Err: err}
	}
	rec := store.SnapshotRecord{Timestamp: time.Now(), RefPrice: refPrice}
	if pos != nil {
		rec.UnrealizedPnL = pos.UnrealizedPnL
		rec.Positions = []market.PositionSnapshot{*pos}
	}
	if err := o.store.AppendSnapshot(ctx, rec); err != nil {
		logger.Warnf("资产快照写入失败: %v", err)
	}
	return pos, nil
}
