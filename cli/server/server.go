package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/urfave/cli/v2"
	"github.com/xseed-project/xseed-token/cli/options"
	"github.com/xseed-project/xseed-token/pkg/services/metrics"
	"github.com/xseed-project/xseed-token/pkg/services/monitor"
	"github.com/xseed-project/xseed-token/pkg/xseed"
	"go.uber.org/zap"
)

var errNoConfig = errors.New("no configuration file specified, use '--" + options.ConfigFile.Name + "' flag")

// NewCommands returns 'monitor' command.
func NewCommands() []*cli.Command {
	flags := []cli.Flag{
		options.ConfigFile,
		options.Debug,
		&cli.StringFlag{
			Name:  "hash",
			Usage: "XSeedToken contract hash (LE) or address (overrides configuration)",
		},
		&cli.StringFlag{
			Name:  "owner",
			Usage: "Account expected to hold the whole supply (overrides configuration)",
		},
	}
	flags = append(flags, options.RPC...)
	return []*cli.Command{{
		Name:      "monitor",
		Usage:     "Periodically check the owner balance and export Prometheus metrics",
		UsageText: "xseed monitor --config-file file [-d] [-r endpoint] [--hash contract] [--owner address]",
		Action:    startMonitor,
		Flags:     flags,
	}}
}

func newGraceContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func startMonitor(ctx *cli.Context) error {
	if !ctx.IsSet(options.ConfigFile.Name) {
		return cli.Exit(errNoConfig, 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	a := cfg.ApplicationConfiguration

	hash, err := a.Token.ScriptHash()
	if err != nil {
		return cli.Exit(err, 1)
	}
	owner, err := a.Token.OwnerHash()
	if err != nil {
		return cli.Exit(err, 1)
	}

	log, _, err := options.HandleLoggingParams(ctx.Bool(options.Debug.Name), a)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer func() { _ = log.Sync() }()

	grace, cancel := newGraceContext(ctx.Context)
	defer cancel()

	c, exitErr := options.GetRPCClient(grace, a.RPC)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	prometheus := metrics.NewPrometheusService(a.Prometheus, log)
	pprof := metrics.NewPprofService(a.Pprof, log)
	mon := monitor.New(a.Monitor, xseed.NewReader(invoker.New(c, nil), hash), owner, log)

	if err := prometheus.Start(); err != nil {
		return cli.Exit(fmt.Errorf("failed to start Prometheus service: %w", err), 1)
	}
	defer prometheus.ShutDown()
	if err := pprof.Start(); err != nil {
		return cli.Exit(fmt.Errorf("failed to start Pprof service: %w", err), 1)
	}
	defer pprof.ShutDown()

	mon.Start()
	log.Info("monitoring token", zap.String("contract", hash.StringLE()))

	<-grace.Done()
	log.Info("shutting down")
	mon.Shutdown()
	return nil
}
