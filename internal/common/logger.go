package common

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Project metadata surfaced in response headers and logs.
const (
	ProjectName    = "cultura"
	ProjectVersion = "0.2.0"
)

var Logger *zap.Logger

// InitLogger installs a production zap logger at the given level. When file is
// set, output is appended there instead of stderr. Calling it again is a no-op.
func InitLogger(level, file string) {
	if Logger != nil {
		return
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	if fn := strings.TrimSpace(file); fn != "" {
		if dir := filepath.Dir(fn); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		cfg.OutputPaths = []string{fn}
		cfg.ErrorOutputPaths = []string{fn}
	}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	Logger = l.With(zap.String("service", ProjectName))
	hlog.SetLevel(hertzLevel(level))
}

// L returns the global logger, or a no-op logger before InitLogger ran.
func L() *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}

func parseLevel(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func hertzLevel(l string) hlog.Level {
	switch strings.ToLower(l) {
	case "debug":
		return hlog.LevelDebug
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}
