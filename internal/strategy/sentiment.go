package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"barbot/internal/align"
)

const (
	sentimentFearEntry = 25.0 // 极度恐慌阈值
	sentimentGreedExit = 75.0 // 极度贪婪阈值
	sentimentTrendSMA  = 50
)

// SentimentTrend 逆向做多：市场极度恐慌但价格仍站在趋势均线上方时开多，
// 情绪翻到极度贪婪时离场。吃的是 fear_greed 对齐列。
type SentimentTrend struct {
	snapshot *align.Snapshot
	holding  bool
}

func NewSentimentTrend() *SentimentTrend {
	return &SentimentTrend{}
}

func (s *SentimentTrend) Name() string { return "sentiment_trend" }

func (s *SentimentTrend) WarmUp(history *align.Snapshot) {
	s.snapshot = history
}

func (s *SentimentTrend) Update(snapshot *align.Snapshot) {
	s.snapshot = snapshot
}

func (s *SentimentTrend) GenerateSignal() *Signal {
	snap := s.snapshot
	if snap.Len() < sentimentTrendSMA+1 {
		return nil
	}
	fng := snap.Metric("fear_greed")
	if fng == nil {
		return nil
	}
	lastFng := fng[len(fng)-1]
	closes := snap.Closes()
	sma := talib.Sma(closes, sentimentTrendSMA)
	lastSMA := sma[len(sma)-1]
	lastClose := closes[len(closes)-1]

	if s.holding {
		if lastFng >= sentimentGreedExit {
			s.holding = false
			return &Signal{
				Action: ActionClose,
				Reason: fmt.Sprintf("情绪过热 F&G=%.0f", lastFng),
			}
		}
		return nil
	}
	if lastFng <= sentimentFearEntry && lastClose > lastSMA {
		s.holding = true
		return &Signal{
			Action: ActionOpenLong,
			Reason: fmt.Sprintf("极度恐慌 F&G=%.0f 且价格站上 SMA%d", lastFng, sentimentTrendSMA),
		}
	}
	return nil
}
