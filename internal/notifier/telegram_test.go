package notifier

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSendTextRequiresConfig(t *testing.T) {
	tg := NewTelegram("", "")
	assert.Error(t, tg.SendText("hi"))
}

func TestSendTextRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "chat-1", gjson.GetBytes(body, "chat_id").String())
		assert.Equal(t, "Markdown", gjson.GetBytes(body, "parse_mode").String())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram("token", "chat-1")
	tg.apiBase = srv.URL
	require.NoError(t, tg.SendText("测试消息"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendTextGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tg := NewTelegram("token", "chat-1")
	tg.apiBase = srv.URL
	err := tg.SendText("测试消息")
	require.Error(t, err)
	assert.Equal(t, int32(telegramMaxAttempts), calls.Load())
}
