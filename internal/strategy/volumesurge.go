package strategy

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"barbot/internal/align"
)

const (
	volumeSurgeWindow     = 20
	volumeSurgeMultiplier = 2.5
	volumeSurgeRSIPeriod  = 14
	volumeSurgeRSIExit    = 72.0
)

// VolumeSurge 在放量阳线时开多，RSI 过热时平仓。
type VolumeSurge struct {
	snapshot *align.Snapshot
	holding  bool
}

func NewVolumeSurge() *VolumeSurge {
	return &VolumeSurge{}
}

func (s *VolumeSurge) Name() string { return "volume_surge" }

func (s *VolumeSurge) WarmUp(history *align.Snapshot) {
	s.snapshot = history
}

func (s *VolumeSurge) Update(snapshot *align.Snapshot) {
	s.snapshot = snapshot
}

func (s *VolumeSurge) GenerateSignal() *Signal {
	snap := s.snapshot
	if snap.Len() < volumeSurgeWindow+1 {
		return nil
	}
	volumes := snap.Volumes()
	closes := snap.Closes()
	last := snap.Last()

	volSMA := talib.Sma(volumes, volumeSurgeWindow)
	avg := volSMA[len(volSMA)-1]
	rsi := talib.Rsi(closes, volumeSurgeRSIPeriod)
	lastRSI := rsi[len(rsi)-1]

	if s.holding {
		if lastRSI >= volumeSurgeRSIExit {
			s.holding = false
			return &Signal{
				Action: ActionClose,
				Reason: fmt.Sprintf("RSI(%d)=%.1f 过热", volumeSurgeRSIPeriod, lastRSI),
			}
		}
		return nil
	}
	if avg > 0 && last.Volume > volumeSurgeMultiplier*avg && last.Close > last.Open {
		s.holding = true
		return &Signal{
			Action: ActionOpenLong,
			Reason: fmt.Sprintf("放量阳线 vol=%.0f > %.1fx均量%.0f", last.Volume, volumeSurgeMultiplier, avg),
		}
	}
	return nil
}
