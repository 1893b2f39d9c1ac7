package trader

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TruncateToStep 把原始数量按交易所步长向下截断，返回线上格式的十进制字符串。
// 只截不进：宁可少买一个步长，也不能超出风控给定的名义金额。
func TruncateToStep(quantity float64, step string) (string, error) {
	stepDec, err := decimal.NewFromString(step)
	if err != nil {
		return "", fmt.Errorf("步长格式非法 %q: %w", step, err)
	}
	if stepDec.Sign() <= 0 {
		return "", fmt.Errorf("步长必须为正: %s", step)
	}
	qty := decimal.NewFromFloat(quantity)
	if qty.Sign() <= 0 {
		return "0", nil
	}
	steps := qty.Div(stepDec).Floor()
	return steps.Mul(stepDec).String(), nil
}
