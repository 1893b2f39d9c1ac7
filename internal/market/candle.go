package market

// Candle 是一根已定型或进行中的 K 线。时间戳均为毫秒。
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// MetricPoint 是一条外部指标读数，按 (OpenTime, Symbol, Metric) 唯一。
// 恐慌贪婪指数、资金费率、宏观收益率、搜索热度共用这一形状。
type MetricPoint struct {
	OpenTime int64   `json:"open_time"`
	Symbol   string  `json:"symbol"`
	Metric   string  `json:"metric"`
	Value    float64 `json:"value"`
}

// 全局指标（不区分交易对）统一挂在这些符号下。
const (
	SymbolGlobal  = "GLOBAL"
	SymbolUSMacro = "US_MACRO"
)
