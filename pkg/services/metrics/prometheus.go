package metrics

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xseed-project/xseed-token/pkg/config"
	"go.uber.org/zap"
)

// NewPrometheusService creates a service exposing the default Prometheus
// registry (token supply gauges included) at any path of cfg addresses.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	return newHandlerService("Prometheus", promhttp.Handler(), cfg, log)
}
