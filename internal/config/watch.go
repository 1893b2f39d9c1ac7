package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"barbot/internal/logger"
)

// Watch 监听配置文件变更，目前只热生效 app.log_level，其余字段需要重启。
func Watch(path string, onLevel func(level string)) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		logger.Warnf("配置监听初始化失败: %v", err)
		return
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			logger.Warnf("配置重载失败 (%s): %v", evt.Name, err)
			return
		}
		level := strings.TrimSpace(v.GetString("app.log_level"))
		if level == "" {
			return
		}
		logger.Infof("检测到配置变更，日志级别切换为 %s", level)
		if onLevel != nil {
			onLevel(level)
		}
	})
	v.WatchConfig()
}
