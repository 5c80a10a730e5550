package smartcontract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	nsc "github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest/standard"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/urfave/cli/v2"
	"github.com/xseed-project/xseed-token/cli/options"
	"github.com/xseed-project/xseed-token/pkg/xseed"
)

// tokenDecimals is used to format amounts in the deployment report.
const tokenDecimals = 8

var (
	errNoInput        = errors.New("no input file was found, specify an input file with the '--in' or '-i' flag")
	errNoConfFile     = errors.New("no config file was found, specify a config file with the '--config' or '-c' flag")
	errNoManifestFile = errors.New("no manifest file was found, specify manifest file with '--manifest' or '-m' flag")
)

// NewCommands returns 'contract' command.
func NewCommands() []*cli.Command {
	deployFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "in",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    "Input file for the smart contract (*.nef)",
		},
		&cli.StringFlag{
			Name:     "manifest",
			Aliases:  []string{"m"},
			Required: true,
			Usage:    "Manifest input file (*.manifest.json)",
		},
		&cli.BoolFlag{
			Name:  "await",
			Usage: "Wait for the transaction to be included in a block and check the initial mint",
		},
		options.ConfigFile,
	}
	deployFlags = append(deployFlags, options.RPC...)
	deployFlags = append(deployFlags, options.Wallet...)
	return []*cli.Command{{
		Name:  "contract",
		Usage: "Compile and deploy XSeedToken contract",
		Subcommands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "Compile the contract to NEF and manifest files",
				UsageText: "xseed contract compile -i path [-c xseed.yml] [-o out.nef] [-m out.manifest.json] [--no-standards]",
				Action:    contractCompile,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "in",
						Aliases: []string{"i"},
						Usage:   "Input contract package directory or file",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Configuration input file (*.yml)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output of the compiled contract",
					},
					&cli.StringFlag{
						Name:    "manifest",
						Aliases: []string{"m"},
						Usage:   "Emit contract manifest (*.manifest.json) file into separate file using configuration input file (*.yml)",
					},
					&cli.BoolFlag{
						Name:  "no-standards",
						Usage: "Do not check compliance with supported standards",
					},
				},
			},
			{
				Name:      "deploy",
				Usage:     "Deploy the contract (.nef + .manifest.json) to the network",
				UsageText: "xseed contract deploy -r endpoint -w wallet [-a address] -i contract.nef -m contract.manifest.json [--await]",
				Action:    contractDeploy,
				Flags:     deployFlags,
			},
		},
	}}
}

func contractCompile(ctx *cli.Context) error {
	src := ctx.String("in")
	if len(src) == 0 {
		return cli.Exit(errNoInput, 1)
	}
	confFile := ctx.String("config")
	if len(confFile) == 0 {
		confFile = defaultConfigPath(src)
		if _, err := os.Stat(confFile); err != nil {
			return cli.Exit(errNoConfFile, 1)
		}
	}
	out := ctx.String("out")
	if len(out) == 0 {
		out = strings.TrimSuffix(filepath.Clean(src), ".go") + ".nef"
	}
	manifestFile := ctx.String("manifest")
	if len(manifestFile) == 0 {
		manifestFile = strings.TrimSuffix(out, ".nef") + ".manifest.json"
	}

	conf, err := nsc.ParseContractConfig(confFile)
	if err != nil {
		return cli.Exit(err, 1)
	}
	o := &compiler.Options{
		Name:                       conf.Name,
		SourceURL:                  conf.SourceURL,
		ContractEvents:             conf.Events,
		DeclaredNamedTypes:         conf.NamedTypes,
		ContractSupportedStandards: conf.SupportedStandards,
		SafeMethods:                conf.SafeMethods,
		Overloads:                  conf.Overloads,
		NoStandardCheck:            ctx.Bool("no-standards"),
	}
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}

	ne, di, err := compiler.CompileWithOptions(src, nil, o)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to compile: %w", err), 1)
	}
	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create manifest: %w", err), 1)
	}

	nefData, err := ne.Bytes()
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to serialize NEF: %w", err), 1)
	}
	mData, err := json.Marshal(m)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to marshal manifest: %w", err), 1)
	}
	if err := os.WriteFile(out, nefData, 0644); err != nil {
		return cli.Exit(fmt.Errorf("can't write NEF file: %w", err), 1)
	}
	if err := os.WriteFile(manifestFile, mData, 0644); err != nil {
		return cli.Exit(fmt.Errorf("can't write manifest file: %w", err), 1)
	}

	fmt.Fprintf(ctx.App.Writer, "NEF: %s\nManifest: %s\nChecksum: %d\n", out, manifestFile, ne.Checksum)
	return nil
}

// defaultConfigPath returns the compiler configuration expected next to the
// contract: xseed.yml in the package directory or <name>.yml for a single
// source file.
func defaultConfigPath(src string) string {
	if strings.HasSuffix(src, ".go") {
		return strings.TrimSuffix(src, ".go") + ".yml"
	}
	return filepath.Join(src, "xseed.yml")
}

// readNEFAndManifest reads and checks deployment artifacts.
func readNEFAndManifest(nefPath, manifestPath string) (*nef.File, *manifest.Manifest, error) {
	if len(nefPath) == 0 {
		return nil, nil, errNoInput
	}
	if len(manifestPath) == 0 {
		return nil, nil, errNoManifestFile
	}
	nefData, err := os.ReadFile(nefPath)
	if err != nil {
		return nil, nil, fmt.Errorf("can't read NEF file: %w", err)
	}
	nefFile, err := nef.FileFromBytes(nefData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore NEF file: %w", err)
	}

	mData, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("can't read manifest file: %w", err)
	}
	m := new(manifest.Manifest)
	err = json.Unmarshal(mData, m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore manifest file: %w", err)
	}
	if err := standard.Check(m, manifest.NEP17StandardName); err != nil {
		return nil, nil, fmt.Errorf("manifest is not NEP-17 compliant: %w", err)
	}
	return &nefFile, m, nil
}

func contractDeploy(ctx *cli.Context) error {
	nefFile, m, err := readNEFAndManifest(ctx.String("in"), ctx.String("manifest"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	acc, w, err := options.GetAccFromContext(ctx)
	if err != nil {
		return cli.Exit(fmt.Errorf("can't get sender address: %w", err), 1)
	}
	defer w.Close()

	gctx, cancel := options.GetTimeoutContext(ctx, cfg.ApplicationConfiguration.RPC)
	defer cancel()

	c, exitErr := options.GetRPCClient(gctx, cfg.ApplicationConfiguration.RPC)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	act, err := actor.NewSimple(c, acc)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create actor: %w", err), 1)
	}
	txHash, vub, err := management.New(act).Deploy(nefFile, m, nil)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to deploy: %w", err), 1)
	}

	hash := state.CreateContractHash(act.Sender(), nefFile.Checksum, m.Name)
	fmt.Fprintf(ctx.App.Writer, "Contract: %s\nTransaction: %s\n", hash.StringLE(), txHash.StringLE())
	if !ctx.Bool("await") {
		return nil
	}

	aer, err := act.Wait(txHash, vub, nil)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to await deployment: %w", err), 1)
	}
	if aer.VMState != vmstate.Halt {
		return cli.Exit(fmt.Errorf("deployment failed: %s", aer.FaultException), 1)
	}
	evs, err := xseed.TransferEvents(hash, aer.Events)
	if err != nil {
		return cli.Exit(err, 1)
	}
	for _, ev := range evs {
		fmt.Fprintf(ctx.App.Writer, "Minted: %s to %s\n",
			fixedn.ToString(ev.Amount, tokenDecimals), address.Uint160ToString(ev.To))
	}
	return nil
}
