package main

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	prom "github.com/hertz-contrib/monitor-prometheus"
	"go.uber.org/zap"

	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/conf"
	"github.com/gogogo1024/cultura/internal/observability"
	router "github.com/gogogo1024/cultura/services/gateway/internal/router"
)

const (
	headerContentType    = "Content-Type"
	contentTypeTextPlain = "text/plain; charset=utf-8"
)

func main() {
	cfg, err := conf.Load()
	if err != nil {
		panic(err)
	}
	conf.InitLogger(cfg)
	ctx := context.Background()
	hooks := conf.InitRuntime(ctx, cfg)

	deps, closeDeps, err := NewDeps(ctx, cfg)
	if err != nil {
		common.L().Fatal("dependency init failed", zap.Error(err))
	}
	h := BuildServer(cfg, deps)
	h.OnShutdown = append(h.OnShutdown, func(c context.Context) {
		closeDeps()
		hooks.Shutdown(c)
	})
	common.L().Info("gateway listening", zap.String("addr", cfg.Server.Address), zap.String("store", deps.Backend))
	h.Spin()
}

// BuildServer assembles the Hertz server with all routes for reuse in tests.
func BuildServer(cfg *conf.Config, d router.Deps) *server.Hertz {
	opts := []server.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithExitWaitTime(2 * time.Second),
	}
	if cfg.Server.PromAddr != "" {
		opts = append(opts, server.WithTracer(prom.NewServerTracer(cfg.Server.PromAddr, "/metrics", prom.WithEnableGoCollector(true))))
	}
	h := server.Default(opts...)
	h.Use(common.Middlewares()...)
	// domain metrics snapshot kept apart from the prometheus namespace
	h.GET(router.PathMetricsDomain, func(c context.Context, ctx *app.RequestContext) {
		ctx.Response.Header.Set(headerContentType, contentTypeTextPlain)
		ctx.Write([]byte(observability.Snapshot()))
	})
	router.RegisterAll(h, d)
	return h
}
