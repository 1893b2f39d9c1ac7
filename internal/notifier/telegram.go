package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	telegramAPIBase = "https://api.telegram.org"
	telegramTimeout = 15 * time.Second

	// 失败重试 3 次，间隔线性递增（1s、2s、3s）
	telegramMaxAttempts = 3
	telegramRetryStep   = time.Second
)

// Telegram 通知器：开平仓成交、启动与异常事件推送至指定群/频道。
type Telegram struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  telegramAPIBase,
		client:   &http.Client{Timeout: telegramTimeout},
	}
}

// SendText 发送 Markdown 文本消息。
func (t *Telegram) SendText(text string) error {
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("Telegram 配置不完整")
	}
	body, _ := json.Marshal(map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})

	var lastErr error
	for attempt := 1; attempt <= telegramMaxAttempts; attempt++ {
		if lastErr = t.post(body); lastErr == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * telegramRetryStep)
	}
	return lastErr
}

func (t *Telegram) post(body []byte) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telegram status=%d", resp.StatusCode)
	}
	return nil
}
