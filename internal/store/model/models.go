package model

import (
	"gorm.io/datatypes"
)

// CandleModel 以 (symbol, interval, open_time) 为主键，重复写入按键覆盖。
type CandleModel struct {
	Symbol    string  `gorm:"column:symbol;primaryKey"`
	Interval  string  `gorm:"column:interval;primaryKey"`
	OpenTime  int64   `gorm:"column:open_time;primaryKey"`
	Open      float64 `gorm:"column:open"`
	High      float64 `gorm:"column:high"`
	Low       float64 `gorm:"column:low"`
	Close     float64 `gorm:"column:close"`
	Volume    float64 `gorm:"column:volume"`
	CloseTime int64   `gorm:"column:close_time"`
}

func (CandleModel) TableName() string { return "market_data" }

// MetricModel 是通用的外部指标行，按 (open_time, symbol, metric) 唯一。
type MetricModel struct {
	OpenTime int64   `gorm:"column:open_time;primaryKey"`
	Symbol   string  `gorm:"column:symbol;primaryKey"`
	Metric   string  `gorm:"column:metric;primaryKey"`
	Value    float64 `gorm:"column:value"`
}

func (MetricModel) TableName() string { return "external_data" }

// TradeModel 只记录确认成交的订单（executed_qty > 0）。
type TradeModel struct {
	ID        int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp int64   `gorm:"column:timestamp"`
	Symbol    string  `gorm:"column:symbol;index"`
	Strategy  string  `gorm:"column:strategy"`
	Side      string  `gorm:"column:side"`
	Price     float64 `gorm:"column:price"`
	Quantity  float64 `gorm:"column:quantity"`
	Notional  float64 `gorm:"column:notional"`
	OrderID   string  `gorm:"column:order_id"`
}

func (TradeModel) TableName() string { return "trades" }

// SignalModel 逐条留痕策略信号，用于事后核对策略准确率。
type SignalModel struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp   int64   `gorm:"column:timestamp"`
	Strategy    string  `gorm:"column:strategy"`
	Symbol      string  `gorm:"column:symbol"`
	Action      string  `gorm:"column:action"`
	SignalPrice float64 `gorm:"column:signal_price"`
	Reason      string  `gorm:"column:reason"`
}

func (SignalModel) TableName() string { return "signals" }

// SnapshotModel 每个周期追加一行资产快照，用于画资金曲线。
type SnapshotModel struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp     int64          `gorm:"column:timestamp"`
	RefPrice      float64        `gorm:"column:ref_price"`
	UnrealizedPnL float64        `gorm:"column:unrealized_pnl"`
	Positions     datatypes.JSON `gorm:"column:positions_json;type:TEXT"`
}

func (SnapshotModel) TableName() string { return "snapshots" }
