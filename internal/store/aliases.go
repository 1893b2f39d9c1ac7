package store

import storemodel "barbot/internal/store/model"

type candleModel = storemodel.CandleModel
type metricModel = storemodel.MetricModel
type tradeModel = storemodel.TradeModel
type signalModel = storemodel.SignalModel
type snapshotModel = storemodel.SnapshotModel
