package strategy

import (
	"fmt"

	"barbot/internal/logger"
)

// 静态注册表：名字到构造器的映射，不做运行时模块扫描。
var registry = map[string]func() Strategy{
	"toggle":          func() Strategy { return NewToggle() },
	"volume_surge":    func() Strategy { return NewVolumeSurge() },
	"sentiment_trend": func() Strategy { return NewSentimentTrend() },
}

// Build 按配置里的名字实例化策略，顺序即评估顺序。未知名字是启动期错误。
func Build(names []string) ([]Strategy, error) {
	units := make([]Strategy, 0, len(names))
	for _, name := range names {
		ctor, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("未知策略 %q", name)
		}
		units = append(units, ctor())
	}
	mounted := make([]string, len(units))
	for i, u := range units {
		mounted[i] = u.Name()
	}
	logger.Infof("已挂载策略: %v", mounted)
	return units, nil
}
