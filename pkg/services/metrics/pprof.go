package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/xseed-project/xseed-token/pkg/config"
	"go.uber.org/zap"
)

// NewPprofService creates a service with runtime profiling endpoints under
// /debug/pprof/.
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	return newHandlerService("Pprof", pprofHandler(), cfg, log)
}

func pprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
