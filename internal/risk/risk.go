// Package risk 实现固定名义本金的仓位策略：不看波动率，每次开仓投入固定金额乘以杠杆。
package risk

// Sizer 把参考价换算成下单数量。
type Sizer struct {
	fixedAmount float64 // 每次开仓投入的计价货币金额
	leverage    int
}

func NewSizer(fixedAmount float64, leverage int) *Sizer {
	if leverage < 1 {
		leverage = 1
	}
	return &Sizer{fixedAmount: fixedAmount, leverage: leverage}
}

// Quantity 返回未按步长修正的原始数量：固定金额 × 杠杆 ÷ 参考价。
func (s *Sizer) Quantity(refPrice float64) float64 {
	if refPrice <= 0 {
		return 0
	}
	notional := s.fixedAmount * float64(s.leverage)
	return notional / refPrice
}

func (s *Sizer) Leverage() int { return s.leverage }
