package strategy

import (
	"time"

	"barbot/internal/align"
	"barbot/internal/logger"
)

// Engine 按注册顺序持有策略单元并逐个评估。
type Engine struct {
	units []Strategy
}

func NewEngine(units []Strategy) *Engine {
	return &Engine{units: units}
}

// WarmUpAll 启动时调用一次，history 不含仍在走的那根 bar。
func (e *Engine) WarmUpAll(history *align.Snapshot) {
	if history.Len() == 0 {
		logger.Warnf("无历史数据，跳过热机")
		return
	}
	logger.Infof("开始策略热机（%d 根 K 线）...", history.Len())
	for _, unit := range e.units {
		unit.WarmUp(history)
	}
	logger.Infof("热机完成")
}

// Evaluate 在一个周期内依次评估全部单元：先 Update 再 GenerateSignal，
// 严格按注册顺序，每单元一次，绝不重入。
func (e *Engine) Evaluate(snapshot *align.Snapshot) []Signal {
	last := snapshot.Last()
	if last == nil {
		return nil
	}
	now := time.Now()
	var signals []Signal
	for _, unit := range e.units {
		unit.Update(snapshot)
		sig := unit.GenerateSignal()
		if sig == nil {
			continue
		}
		sig.Strategy = unit.Name()
		sig.RefPrice = last.Close
		sig.At = now
		signals = append(signals, *sig)
	}
	return signals
}
