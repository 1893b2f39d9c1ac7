// Package strategy 定义策略单元契约与信号引擎。
// 策略只看对齐后的快照，产出意图；仓位过滤与下单是 trader 的事。
package strategy

import (
	"time"

	"barbot/internal/align"
)

type Action string

const (
	ActionOpenLong Action = "OPEN_LONG"
	ActionClose    Action = "CLOSE"
)

// Signal 是一次策略发声。Strategy / RefPrice / At 由引擎统一补齐。
type Signal struct {
	Strategy string
	Action   Action
	Reason   string
	RefPrice float64
	At       time.Time
}

// Strategy 是策略单元的能力集合。
// WarmUp 在启动时用最长历史调用一次，把滚动窗口等内部状态先垫起来；
// 之后每个新 bar 周期依次调用 Update 和 GenerateSignal，且每周期每单元只调一遍。
type Strategy interface {
	Name() string
	WarmUp(history *align.Snapshot)
	Update(snapshot *align.Snapshot)
	GenerateSignal() *Signal
}
