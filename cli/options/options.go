/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/urfave/cli/v2"
	"github.com/xseed-project/xseed-token/cli/input"
	"github.com/xseed-project/xseed-token/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimeout is the default timeout used for RPC requests.
	DefaultTimeout = config.DefaultRPCTimeout
	// DefaultAwaitableTimeout is the default timeout used for RPC requests that
	// require transaction awaiting. It is set to the approximate time of three
	// Neo N3 mainnet blocks accepting.
	DefaultAwaitableTimeout = 3 * 15 * time.Second
)

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// Wallet is a set of flags used for wallet operations.
var Wallet = []cli.Flag{
	&cli.StringFlag{
		Name:    "wallet",
		Aliases: []string{"w"},
		Usage:   "Wallet to use to get the key for transaction signing; conflicts with --wallet-config flag",
	},
	&cli.StringFlag{
		Name:  "wallet-config",
		Usage: "Path to wallet config to use to get the key for transaction signing; conflicts with --wallet flag",
	},
	&cli.StringFlag{
		Name:    "address",
		Aliases: []string{"a"},
		Usage:   "Address to use as transaction signee (and gas source), wallet default is used if not set",
	},
}

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	&cli.StringFlag{
		Name:    RPCEndpointFlag,
		Aliases: []string{"r"},
		Usage:   "RPC node address (overrides configuration)",
	},
	&cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"s"},
		Value:   DefaultTimeout,
		Usage:   "Timeout for the operation",
	},
}

// ConfigFile is a flag for commands that use the configuration file.
var ConfigFile = &cli.StringFlag{
	Name:  "config-file",
	Usage: "Path to the configuration file",
}

// Debug is a flag for commands that allow debug logging.
var Debug = &cli.BoolFlag{
	Name:    "debug",
	Aliases: []string{"d"},
	Usage:   "Enable debug logging (LOTS of output, overrides configuration)",
}

var (
	errNoEndpoint             = errors.New("no RPC endpoint specified, use option '--" + RPCEndpointFlag + "' or '-r'")
	errNoWallet               = errors.New("no wallet parameter found, specify it with the '--wallet' or '-w' flag or specify wallet config file with the '--wallet-config' flag")
	errConflictingWalletFlags = errors.New("--wallet flag conflicts with --wallet-config flag, please, provide one of them to specify wallet location")
)

// GetTimeoutContext returns a context.Context limited by the RPC timeout of
// the given configuration (which already includes the '--timeout' flag value).
// Commands awaiting transactions get at least DefaultAwaitableTimeout unless
// the timeout is set explicitly with the flag.
func GetTimeoutContext(ctx *cli.Context, cfg config.RPC) (context.Context, func()) {
	dur := cfg.Timeout
	if dur <= 0 {
		dur = DefaultTimeout
	}
	if !ctx.IsSet("timeout") && ctx.Bool("await") && dur < DefaultAwaitableTimeout {
		dur = DefaultAwaitableTimeout
	}
	return context.WithTimeout(ctx.Context, dur)
}

// GetConfigFromContext loads the configuration file if it's given and applies
// command line overrides to it.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg = config.Default()
		err error
	)
	if path := ctx.String(ConfigFile.Name); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	a := &cfg.ApplicationConfiguration
	if ctx.IsSet(RPCEndpointFlag) {
		a.RPC.Endpoint = ctx.String(RPCEndpointFlag)
	}
	if ctx.IsSet("timeout") {
		a.RPC.Timeout = ctx.Duration("timeout")
	}
	if ctx.IsSet("hash") {
		a.Token.Hash = ctx.String("hash")
	}
	if ctx.IsSet("owner") {
		a.Token.Owner = ctx.String("owner")
	}
	return cfg, a.Validate()
}

// GetRPCClient returns an RPC client instance for the given configuration.
// The client lives as long as gctx, each request is limited by the
// configured timeout.
func GetRPCClient(gctx context.Context, cfg config.RPC) (*rpcclient.Client, cli.ExitCoder) {
	if len(cfg.Endpoint) == 0 {
		return nil, cli.Exit(errNoEndpoint, 1)
	}
	c, err := rpcclient.New(gctx, cfg.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.Timeout,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, cli.Exit(err, 1)
	}
	err = c.Init()
	if err != nil {
		c.Close()
		return nil, cli.Exit(fmt.Errorf("failed to initialize RPC client: %w", err), 1)
	}
	return c, nil
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}

// GetAccFromContext returns account and wallet from context. If address is not set, default address is used.
// The wallet is only returned (and must be closed by the caller) if there is no error.
func GetAccFromContext(ctx *cli.Context) (*wallet.Account, *wallet.Wallet, error) {
	var addr util.Uint160

	wPath := ctx.String("wallet")
	walletConfigPath := ctx.String("wallet-config")
	if len(wPath) != 0 && len(walletConfigPath) != 0 {
		return nil, nil, errConflictingWalletFlags
	}
	if len(wPath) == 0 && len(walletConfigPath) == 0 {
		return nil, nil, errNoWallet
	}
	var pass *string
	if len(walletConfigPath) != 0 {
		cfg, err := ReadWalletConfig(walletConfigPath)
		if err != nil {
			return nil, nil, err
		}
		wPath = cfg.Path
		pass = &cfg.Password
	}

	wall, err := wallet.NewWalletFromFile(wPath)
	if err != nil {
		return nil, nil, err
	}
	if addrFlag := ctx.String("address"); addrFlag != "" {
		addr, err = address.StringToUint160(addrFlag)
		if err != nil {
			wall.Close()
			return nil, nil, fmt.Errorf("invalid address: %w", err)
		}
	} else {
		addr = wall.GetChangeAddress()
		if addr.Equals(util.Uint160{}) {
			wall.Close()
			return nil, nil, errors.New("can't get default address")
		}
	}

	acc, err := GetUnlockedAccount(wall, addr, pass)
	if err != nil {
		wall.Close()
		return nil, nil, err
	}
	return acc, wall, nil
}

// GetUnlockedAccount returns account from wallet, address and uses pass to unlock specified account if given.
// If the password is not given, then it is requested from user.
func GetUnlockedAccount(wall *wallet.Wallet, addr util.Uint160, pass *string) (*wallet.Account, error) {
	acc := wall.GetAccount(addr)
	if acc == nil {
		return nil, fmt.Errorf("wallet contains no account for '%s'", address.Uint160ToString(addr))
	}

	if acc.CanSign() || acc.EncryptedWIF == "" {
		return acc, nil
	}

	if pass == nil {
		rawPass, err := input.ReadPassword(
			fmt.Sprintf("Enter account %s password > ", address.Uint160ToString(addr)))
		if err != nil {
			return nil, fmt.Errorf("error reading password: %w", err)
		}
		trimmed := strings.TrimRight(rawPass, "\n")
		pass = &trimmed
	}
	err := acc.Decrypt(*pass, wall.Scrypt)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// WalletConfig is the wallet config file format: the path to the wallet and
// the password for its accounts.
type WalletConfig struct {
	Path     string `yaml:"Path"`
	Password string `yaml:"Password"`
}

// ReadWalletConfig reads wallet config from the given path.
func ReadWalletConfig(configPath string) (*WalletConfig, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read wallet config: %w", err)
	}

	cfg := &WalletConfig{}

	err = yaml.Unmarshal(configData, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet config YAML: %w", err)
	}
	return cfg, nil
}
