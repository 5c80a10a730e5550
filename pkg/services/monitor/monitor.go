/*
Package monitor implements a service periodically checking that the token
owner still holds the whole supply and exporting the result as Prometheus
metrics.
*/
package monitor

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/xseed-project/xseed-token/pkg/config"
	"github.com/xseed-project/xseed-token/pkg/supply"
	"go.uber.org/zap"
)

// Service is the supply monitoring service.
type Service struct {
	reader   supply.OwnerReader
	owner    util.Uint160
	interval time.Duration
	log      *zap.Logger

	started  atomic.Bool
	shutdown atomic.Bool
	quit     chan struct{}
	done    chan struct{}
}

// New creates a monitor for the token available via r. If owner is a zero
// hash, the owner is requested from the contract on every round.
func New(cfg config.Monitor, r supply.OwnerReader, owner util.Uint160, log *zap.Logger) *Service {
	return &Service{
		reader:   r,
		owner:    owner,
		interval: cfg.Interval,
		log:      log.With(zap.String("service", "SupplyMonitor")),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns the service name.
func (s *Service) Name() string {
	return "SupplyMonitor"
}

// Start runs the first check immediately and then repeats it every interval
// until Shutdown is called. The service can't be restarted after Shutdown.
func (s *Service) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("starting service", zap.Duration("interval", s.interval))
	go s.run()
}

// Shutdown stops the service and waits for the current check to finish.
func (s *Service) Shutdown() {
	if !s.started.Load() || !s.shutdown.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("shutting down service")
	close(s.quit)
	<-s.done
	_ = s.log.Sync()
}

func (s *Service) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_, _ = s.Check()
	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			_, _ = s.Check()
		}
	}
}

// Check performs a single supply check, updates metrics and logs the result.
func (s *Service) Check() (*supply.Report, error) {
	var (
		rep *supply.Report
		err error
	)
	if s.owner.Equals(util.Uint160{}) {
		rep, err = supply.CheckOwner(s.reader)
	} else {
		rep, err = supply.Check(s.reader, s.owner)
	}

	switch {
	case err == nil:
		updateReportMetrics(rep)
		s.log.Debug("supply check passed",
			zap.String("owner", address.Uint160ToString(rep.Owner)),
			zap.Stringer("supply", rep.TotalSupply))
	case errors.Is(err, supply.ErrMismatch):
		updateReportMetrics(rep)
		checkFailures.WithLabelValues(reasonMismatch).Inc()
		s.log.Error("owner balance doesn't match total supply",
			zap.String("owner", address.Uint160ToString(rep.Owner)),
			zap.Stringer("balance", rep.Balance),
			zap.Stringer("supply", rep.TotalSupply))
	default:
		resetReportMetrics()
		checkFailures.WithLabelValues(reasonError).Inc()
		s.log.Warn("supply check failed", zap.Error(err))
	}
	return rep, err
}
