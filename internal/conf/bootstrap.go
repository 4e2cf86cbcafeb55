package conf

import (
	"context"

	"github.com/gogogo1024/cultura/common/mtl"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/observability"
	"go.uber.org/zap"
)

type RuntimeHooks struct{ Shutdown func(context.Context) }

// InitRuntime wires the metrics endpoint (with optional consul registration)
// and tracing. With an OTLP endpoint spans are exported, otherwise a local
// provider keeps span creation cheap.
func InitRuntime(ctx context.Context, cfg *Config) *RuntimeHooks {
	var shutdowns []func(context.Context) error

	if cfg.Server.MetricsAddr != "" {
		var regAddr string
		if len(cfg.Registry.RegistryAddress) > 0 {
			regAddr = cfg.Registry.RegistryAddress[0]
		}
		r, info := mtl.InitMetrics(common.ProjectName, cfg.Server.MetricsAddr, regAddr)
		if r != nil && info != nil {
			shutdowns = append(shutdowns, func(context.Context) error {
				return r.Deregister(info)
			})
		}
	}

	if cfg.Server.OtelEndpoint != "" {
		p := mtl.InitTracing(common.ProjectName, cfg.Server.OtelEndpoint)
		shutdowns = append(shutdowns, p.Shutdown)
	} else if closer, err := observability.InitTracing(common.ProjectName); err == nil {
		shutdowns = append(shutdowns, closer)
	} else {
		common.L().Warn("tracing init failed", zap.Error(err))
	}

	common.L().Info("runtime init complete",
		zap.String("env", cfg.Env),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
		zap.Bool("otlp", cfg.Server.OtelEndpoint != ""),
	)
	return &RuntimeHooks{Shutdown: func(c context.Context) {
		for _, fn := range shutdowns {
			_ = fn(c)
		}
	}}
}
