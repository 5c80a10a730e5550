package query

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli/v2"
	"github.com/xseed-project/xseed-token/cli/options"
	"github.com/xseed-project/xseed-token/pkg/supply"
	"github.com/xseed-project/xseed-token/pkg/xseed"
)

// NewCommands returns 'check' command.
func NewCommands() []*cli.Command {
	checkFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "hash",
			Usage: "XSeedToken contract hash (LE) or address (overrides configuration)",
		},
		&cli.StringFlag{
			Name:  "owner",
			Usage: "Account expected to hold the whole supply, taken from the contract if not set (overrides configuration)",
		},
		options.ConfigFile,
	}
	checkFlags = append(checkFlags, options.RPC...)
	return []*cli.Command{{
		Name:      "check",
		Usage:     "Check that the owner balance equals the total supply",
		UsageText: "xseed check -r endpoint --hash <contract> [--owner <address>] [--config-file file]",
		Action:    checkSupply,
		Flags:     checkFlags,
	}}
}

func checkSupply(ctx *cli.Context) error {
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

	gctx, cancel := options.GetTimeoutContext(ctx, a.RPC)
	defer cancel()

	c, exitErr := options.GetRPCClient(gctx, a.RPC)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	r := xseed.NewReader(invoker.New(c, nil), hash)
	symbol, err := r.Symbol()
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to get symbol: %w", err), 1)
	}
	decimals, err := r.Decimals()
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to get decimals: %w", err), 1)
	}

	var rep *supply.Report
	if owner.Equals(util.Uint160{}) {
		rep, err = supply.CheckOwner(r)
	} else {
		rep, err = supply.Check(r, owner)
	}
	if rep != nil {
		dumpReport(ctx.App.Writer, rep, symbol, decimals)
	}
	if err != nil {
		if errors.Is(err, supply.ErrMismatch) {
			return cli.Exit(err, 1)
		}
		return cli.Exit(fmt.Errorf("supply check failed: %w", err), 1)
	}
	return nil
}

func dumpReport(w io.Writer, rep *supply.Report, symbol string, decimals int) {
	status := "OK"
	if !rep.Matches() {
		status = "MISMATCH"
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Owner:\t%s\n", address.Uint160ToString(rep.Owner))
	_, _ = fmt.Fprintf(tw, "Total supply:\t%s %s\n", fixedn.ToString(rep.TotalSupply, decimals), symbol)
	_, _ = fmt.Fprintf(tw, "Owner balance:\t%s %s\n", fixedn.ToString(rep.Balance, decimals), symbol)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", status)
	_ = tw.Flush()
}
