package market

// PositionSnapshot 是某一时刻从交易所读回的持仓。
// 本进程不持久化它，每个周期开始时重新拉取一次并只读使用。
type PositionSnapshot struct {
	Symbol        string  `json:"symbol"`
	Amount        float64 `json:"amount"` // 带符号的仓位数量，0 为空仓
	EntryPrice    float64 `json:"entry_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	Leverage      int     `json:"leverage"`
}

// Flat 返回是否空仓。
func (p *PositionSnapshot) Flat() bool {
	return p == nil || p.Amount == 0
}
