package strategy

import "barbot/internal/align"

// Toggle 每根 bar 交替发开仓/平仓，用于实盘链路的冒烟验证，不看任何数据。
type Toggle struct {
	nextIsLong bool
}

func NewToggle() *Toggle {
	return &Toggle{nextIsLong: true}
}

func (t *Toggle) Name() string           { return "toggle" }
func (t *Toggle) WarmUp(*align.Snapshot) {}
func (t *Toggle) Update(*align.Snapshot) {}

func (t *Toggle) GenerateSignal() *Signal {
	if t.nextIsLong {
		t.nextIsLong = false
		return &Signal{Action: ActionOpenLong, Reason: "链路自测 [开仓]"}
	}
	t.nextIsLong = true
	return &Signal{Action: ActionClose, Reason: "链路自测 [平仓]"}
}
