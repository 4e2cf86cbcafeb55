package mtl

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/cloudwego/kitex/pkg/registry"
	"github.com/gogogo1024/cultura/internal/common"
	"github.com/gogogo1024/cultura/internal/observability"
	consul "github.com/kitex-contrib/registry-consul"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var Registry *prometheus.Registry

// InitMetrics creates a dedicated prometheus registry holding go, process and
// upstream assistant collectors and serves it on metricsAddr under /metrics.
// When registryAddr is set the endpoint is registered in consul as the
// "prometheus" service tagged with serviceName; the caller deregisters on exit.
func InitMetrics(serviceName, metricsAddr, registryAddr string) (registry.Registry, *registry.Info) {
	if metricsAddr == "" {
		return nil, nil
	}
	listenAddr := metricsAddr
	if !strings.Contains(listenAddr, ":") {
		listenAddr = ":" + listenAddr
	}
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observability.RegisterCollectors(Registry)

	var r registry.Registry
	var info *registry.Info
	if registryAddr != "" {
		r, info = registerConsul(serviceName, listenAddr, registryAddr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(listenAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.L().Error("metrics http server error", zap.Error(err))
		}
	}()
	common.L().Info("metrics server listening",
		zap.String("addr", listenAddr),
		zap.String("service", serviceName),
		zap.Bool("consul_registered", info != nil),
	)
	return r, info
}

func registerConsul(serviceName, listenAddr, registryAddr string) (registry.Registry, *registry.Info) {
	reg, err := consul.NewConsulRegister(registryAddr)
	if err != nil {
		common.L().Warn("consul register (metrics) init failed", zap.Error(err))
		return nil, nil
	}
	tcpAddr, err := net.ResolveTCPAddr("tcp", listenAddr)
	if err != nil {
		common.L().Warn("resolve metrics addr failed", zap.Error(err))
		return nil, nil
	}
	info := &registry.Info{ServiceName: "prometheus", Addr: tcpAddr, Weight: 1, Tags: map[string]string{"service": serviceName}}
	if err := reg.Register(info); err != nil {
		common.L().Warn("consul register metrics failed", zap.Error(err))
		return nil, nil
	}
	return reg, info
}
