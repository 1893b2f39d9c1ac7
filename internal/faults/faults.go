// Package faults 定义周期内部的错误分类。
// 调用方用显式的错误种类决定隔离、跳过还是退避，而不是靠异常穿透。
package faults

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindConnectivity 交易所或外部 API 不可达，本周期提前结束，延长退避后重试。
	KindConnectivity
	// KindDataIntegrity 某个数据源返回空或畸形数据，跳过该来源，下游使用回退默认值。
	KindDataIntegrity
	// KindExecution 订单被交易所拒绝，不落库，对仓位视为无事发生。
	KindExecution
	// KindReconciliation 宽限期后查询成交量为零，按 UNFILLED 记录，不重试。
	KindReconciliation
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindDataIntegrity:
		return "data_integrity"
	case KindExecution:
		return "execution"
	case KindReconciliation:
		return "reconciliation"
	default:
		return "unknown"
	}
}

// Fault 把底层错误和分类捆在一起，支持 errors.Is/As 链。
type Fault struct {
	Kind Kind
	Op   string
	Err  error
}

func New(kind Kind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

func (f *Fault) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Op, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", f.Op, f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// KindOf 返回错误链上第一个 Fault 的分类，没有则返回 KindUnknown。
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

func IsConnectivity(err error) bool { return KindOf(err) == KindConnectivity }
