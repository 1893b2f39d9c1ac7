// Package notifier 负责把交易事件推送到外部渠道。
package notifier

// TextNotifier 最小文本通知接口，调用方不感知具体渠道。
type TextNotifier interface {
	SendText(text string) error
}

// Noop 在未配置任何渠道时占位。
type Noop struct{}

func (Noop) SendText(string) error { return nil }
