// Package store 实现时序存储：K 线与外部指标的幂等写入、审计表的追加写。
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"barbot/internal/market"
)

type Store struct {
	db *gorm.DB
}

// Open 打开（必要时创建）sqlite 库并完成迁移。path 传 ":memory:" 时使用内存库（测试用）。
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: 数据库路径不能为空")
	}
	var dsn string
	inMemory := path == ":memory:"
	if inMemory {
		dsn = "file::memory:?cache=shared"
	} else {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		// mattn/go-sqlite3 的连接参数写法（gorm 的 sqlite 驱动底层是它）
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&cache=shared", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&candleModel{},
		&metricModel{},
		&tradeModel{},
		&signalModel{},
		&snapshotModel{},
	); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if inMemory {
		sqlDB.SetMaxOpenConns(1)
	} else {
		// SQLite + WAL：给 Web API 的只读查询留一点并行度，同时压低锁竞争。
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertCandles 按 (symbol, interval, open_time) 幂等写入：同键覆盖，绝不产生重复行。
func (s *Store) UpsertCandles(ctx context.Context, symbol, interval string, rows []market.Candle) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]candleModel, 0, len(rows))
	for _, c := range rows {
		models = append(models, candleModel{
			Symbol:    symbol,
			Interval:  interval,
			OpenTime:  c.OpenTime,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
			CloseTime: c.CloseTime,
		})
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "open_time"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"open", "high", "low", "close", "volume", "close_time",
			}),
		}).
		Create(&models).Error
}

// QueryCandles 返回最近 limit 根 K 线，按 open_time 升序。
func (s *Store) QueryCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 200
	}
	var models []candleModel
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND interval = ?", symbol, interval).
		Order("open_time DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]market.Candle, len(models))
	for i, m := range models {
		// 倒序读出，翻回升序
		out[len(models)-1-i] = market.Candle{
			OpenTime:  m.OpenTime,
			CloseTime: m.CloseTime,
			Open:      m.Open,
			High:      m.High,
			Low:       m.Low,
			Close:     m.Close,
			Volume:    m.Volume,
		}
	}
	return out, nil
}

// UpsertMetrics 按 (open_time, symbol, metric) 幂等写入外部指标。
func (s *Store) UpsertMetrics(ctx context.Context, points []market.MetricPoint) error {
	if len(points) == 0 {
		return nil
	}
	models := make([]metricModel, 0, len(points))
	for _, p := range points {
		models = append(models, metricModel{
			OpenTime: p.OpenTime,
			Symbol:   p.Symbol,
			Metric:   p.Metric,
			Value:    p.Value,
		})
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "open_time"}, {Name: "symbol"}, {Name: "metric"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models).Error
}

// QueryMetricsFrom 返回 startTime 起的指标行（升序），并额外带上 startTime 之前
// 最近的一行作为 carry-in，使窗口最前端的 K 线也有可回看的值。
func (s *Store) QueryMetricsFrom(ctx context.Context, symbol, metric string, startTime int64) ([]market.MetricPoint, error) {
	effectiveStart := startTime
	var carry metricModel
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND metric = ? AND open_time < ?", symbol, metric, startTime).
		Order("open_time DESC").
		First(&carry).Error
	switch {
	case err == nil:
		effectiveStart = carry.OpenTime
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 窗口前没有历史，从 startTime 开始
	default:
		return nil, err
	}
	var models []metricModel
	err = s.db.WithContext(ctx).
		Where("symbol = ? AND metric = ? AND open_time >= ?", symbol, metric, effectiveStart).
		Order("open_time ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]market.MetricPoint, len(models))
	for i, m := range models {
		out[i] = market.MetricPoint{OpenTime: m.OpenTime, Symbol: m.Symbol, Metric: m.Metric, Value: m.Value}
	}
	return out, nil
}

// TradeRecord 是一笔已确认成交。
type TradeRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Strategy  string    `json:"strategy"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Notional  float64   `json:"notional"`
	OrderID   string    `json:"order_id"`
}

func (s *Store) AppendTrade(ctx context.Context, rec TradeRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return s.db.WithContext(ctx).Create(&tradeModel{
		Timestamp: ts.UnixMilli(),
		Symbol:    rec.Symbol,
		Strategy:  rec.Strategy,
		Side:      rec.Side,
		Price:     rec.Price,
		Quantity:  rec.Quantity,
		Notional:  rec.Notional,
		OrderID:   rec.OrderID,
	}).Error
}

// SignalRecord 是一次策略发声。
type SignalRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Strategy  string    `json:"strategy"`
	Symbol    string    `json:"symbol"`
	Action    string    `json:"action"`
	Price     float64   `json:"price"`
	Reason    string    `json:"reason"`
}

func (s *Store) AppendSignal(ctx context.Context, rec SignalRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return s.db.WithContext(ctx).Create(&signalModel{
		Timestamp:   ts.UnixMilli(),
		Strategy:    rec.Strategy,
		Symbol:      rec.Symbol,
		Action:      rec.Action,
		SignalPrice: rec.Price,
		Reason:      rec.Reason,
	}).Error
}

// SnapshotRecord 是每周期一次的资产快照。
type SnapshotRecord struct {
	Timestamp     time.Time                 `json:"timestamp"`
	RefPrice      float64                   `json:"ref_price"`
	UnrealizedPnL float64                   `json:"unrealized_pnl"`
	Positions     []market.PositionSnapshot `json:"positions"`
}

func (s *Store) AppendSnapshot(ctx context.Context, rec SnapshotRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	raw, err := json.Marshal(rec.Positions)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&snapshotModel{
		Timestamp:     ts.UnixMilli(),
		RefPrice:      rec.RefPrice,
		UnrealizedPnL: rec.UnrealizedPnL,
		Positions:     datatypes.JSON(raw),
	}).Error
}

// RecentTrades 给 Web API 用的倒序读。
func (s *Store) RecentTrades(ctx context.Context, limit int) ([]TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []tradeModel
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]TradeRecord, len(models))
	for i, m := range models {
		out[i] = TradeRecord{
			Timestamp: time.UnixMilli(m.Timestamp),
			Symbol:    m.Symbol,
			Strategy:  m.Strategy,
			Side:      m.Side,
			Price:     m.Price,
			Quantity:  m.Quantity,
			Notional:  m.Notional,
			OrderID:   m.OrderID,
		}
	}
	return out, nil
}

func (s *Store) RecentSignals(ctx context.Context, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []signalModel
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]SignalRecord, len(models))
	for i, m := range models {
		out[i] = SignalRecord{
			Timestamp: time.UnixMilli(m.Timestamp),
			Strategy:  m.Strategy,
			Symbol:    m.Symbol,
			Action:    m.Action,
			Price:     m.SignalPrice,
			Reason:    m.Reason,
		}
	}
	return out, nil
}
