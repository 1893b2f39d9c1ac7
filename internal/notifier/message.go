package notifier

import (
	"fmt"
	"strings"
	"time"
)

const maxMessageLen = 3800

// TradeMessage 描述一次成交推送的内容。
type TradeMessage struct {
	Symbol    string
	Side      string
	Strategy  string
	Reason    string
	Quantity  string
	AvgPrice  float64
	OrderID   string
	Timestamp time.Time
}

// RenderMarkdown 生成 Telegram Markdown 文本，超长自动裁剪。
func (m TradeMessage) RenderMarkdown() string {
	icon := "🟢 开仓成交"
	if m.Side == "SELL" {
		icon = "🔴 平仓成交"
	}
	var b strings.Builder
	b.WriteString(icon + "\n\n")
	b.WriteString("```\n")
	b.WriteString(fmt.Sprintf("- 合约: %s\n", m.Symbol))
	b.WriteString(fmt.Sprintf("- 策略: %s\n", m.Strategy))
	if reason := strings.TrimSpace(m.Reason); reason != "" {
		b.WriteString(fmt.Sprintf("- 依据: %s\n", sanitize(reason)))
	}
	b.WriteString(fmt.Sprintf("- 数量: %s\n", m.Quantity))
	if m.AvgPrice > 0 {
		b.WriteString(fmt.Sprintf("- 均价: %.2f\n", m.AvgPrice))
	}
	b.WriteString(fmt.Sprintf("- 订单: %s\n", m.OrderID))
	b.WriteString("```\n\n")
	if !m.Timestamp.IsZero() {
		b.WriteString("时间：" + m.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	body := strings.TrimSpace(b.String())
	if len(body) > maxMessageLen {
		body = body[:maxMessageLen] + "..."
	}
	return body
}

// BootMessage 进程启动时推送的摘要。
func BootMessage(symbol, interval string, strategies []string, mode string) string {
	return fmt.Sprintf("🤖 交易机器人已启动\n\n```\n- 合约: %s\n- 周期: %s\n- 策略: %s\n- 模式: %s\n```",
		symbol, interval, strings.Join(strategies, ", "), mode)
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "```", "'''")
	return s
}
