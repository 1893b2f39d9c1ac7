package align

import "barbot/internal/market"

// MetricSpec 声明一个参与对齐的指标：去哪个符号域查、查不到历史时用什么回退值。
type MetricSpec struct {
	Name     string
	Symbol   string
	Fallback float64
}

// DefaultMetricSpecs 返回标准对齐集合。
// 恐慌贪婪指数缺数据时回退到中性 50，费率类与宏观类回退 0。
func DefaultMetricSpecs(symbol string) []MetricSpec {
	return []MetricSpec{
		{Name: "fear_greed", Symbol: market.SymbolGlobal, Fallback: 50},
		{Name: "funding_rate", Symbol: symbol, Fallback: 0},
		{Name: "fed_assets", Symbol: market.SymbolUSMacro, Fallback: 0},
		{Name: "google_trends", Symbol: market.SymbolGlobal, Fallback: 0},
	}
}

// Row 是快照中的一行：一根 K 线加上每个注册指标对齐后的标量。
type Row struct {
	market.Candle
	Metrics map[string]float64
}

// Snapshot 是每个周期现场重建的策略视图，不落库。
type Snapshot struct {
	Symbol   string
	Interval string
	Rows     []Row
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

func (s *Snapshot) Last() *Row {
	if s.Len() == 0 {
		return nil
	}
	return &s.Rows[len(s.Rows)-1]
}

func (s *Snapshot) Closes() []float64 {
	out := make([]float64, s.Len())
	for i := range s.Rows {
		out[i] = s.Rows[i].Close
	}
	return out
}

func (s *Snapshot) Volumes() []float64 {
	out := make([]float64, s.Len())
	for i := range s.Rows {
		out[i] = s.Rows[i].Volume
	}
	return out
}

func (s *Snapshot) Highs() []float64 {
	out := make([]float64, s.Len())
	for i := range s.Rows {
		out[i] = s.Rows[i].High
	}
	return out
}

func (s *Snapshot) Lows() []float64 {
	out := make([]float64, s.Len())
	for i := range s.Rows {
		out[i] = s.Rows[i].Low
	}
	return out
}

// Metric 返回某指标按行对齐后的序列，未注册的指标返回 nil。
func (s *Snapshot) Metric(name string) []float64 {
	if s.Len() == 0 {
		return nil
	}
	if _, ok := s.Rows[0].Metrics[name]; !ok {
		return nil
	}
	out := make([]float64, s.Len())
	for i := range s.Rows {
		out[i] = s.Rows[i].Metrics[name]
	}
	return out
}
