package conf

import (
	"strings"

	"github.com/cloudwego/kitex/pkg/klog"
	"github.com/gogogo1024/cultura/internal/common"
)

// InitLogger installs the zap logger and aligns klog, which the registry
// and tracing providers log through.
func InitLogger(cfg *Config) {
	if cfg == nil {
		common.InitLogger("info", "")
		return
	}
	common.InitLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	klog.SetLevel(parseLevel(cfg.Server.LogLevel))
}

func parseLevel(l string) klog.Level {
	switch strings.ToLower(l) {
	case "debug":
		return klog.LevelDebug
	case "warn":
		return klog.LevelWarn
	case "error":
		return klog.LevelError
	case "fatal":
		return klog.LevelFatal
	default:
		return klog.LevelInfo
	}
}
