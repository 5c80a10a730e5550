package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/xseed-project/xseed-token/pkg/config"
	"go.uber.org/zap/zapcore"
)

// runWith runs action with all common flags set up and the given arguments.
func runWith(t *testing.T, action cli.ActionFunc, args ...string) {
	flags := []cli.Flag{
		ConfigFile,
		Debug,
		&cli.StringFlag{Name: "hash"},
		&cli.StringFlag{Name: "owner"},
		&cli.BoolFlag{Name: "await"},
	}
	flags = append(flags, RPC...)
	flags = append(flags, Wallet...)
	app := cli.NewApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Flags = flags
	app.Action = action
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
}

func TestGetConfigFromContext(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			cfg, err := GetConfigFromContext(ctx)
			require.NoError(t, err)
			require.Equal(t, config.Default(), cfg)
			return nil
		})
	})
	t.Run("file with overrides", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			cfg, err := GetConfigFromContext(ctx)
			require.NoError(t, err)
			a := cfg.ApplicationConfiguration
			require.Equal(t, "http://127.0.0.1:10332", a.RPC.Endpoint)
			require.Equal(t, 3*time.Second, a.RPC.Timeout)
			require.Equal(t, "NbrUYaZgyhSkNoRo9ugRyEMdUZxrhkNaWB", a.Token.Owner)
			require.Equal(t, "0x5b81bc0ca7ec0a0c5b5e3e1aa4bd4b2a5c5fa7e3", a.Token.Hash)
			require.True(t, a.Prometheus.Enabled)
			return nil
		}, "--config-file", "../../config/xseed.yml",
			"-r", "http://127.0.0.1:10332",
			"-s", "3s",
			"--owner", "NbrUYaZgyhSkNoRo9ugRyEMdUZxrhkNaWB")
	})
	t.Run("missing file", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			_, err := GetConfigFromContext(ctx)
			require.ErrorContains(t, err, "unable to read config")
			return nil
		}, "--config-file", filepath.Join(t.TempDir(), "none.yml"))
	})
	t.Run("bad timeout", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			_, err := GetConfigFromContext(ctx)
			require.ErrorContains(t, err, "non-positive RPC timeout")
			return nil
		}, "-s", "-1s")
	})
}

func TestGetTimeoutContext(t *testing.T) {
	dir := t.TempDir()
	longTimeout := filepath.Join(dir, "long.yml")
	require.NoError(t, os.WriteFile(longTimeout, []byte("ApplicationConfiguration:\n  RPC:\n    Timeout: 30s\n"), 0644))
	longerTimeout := filepath.Join(dir, "longer.yml")
	require.NoError(t, os.WriteFile(longerTimeout, []byte("ApplicationConfiguration:\n  RPC:\n    Timeout: 1m\n"), 0644))

	check := func(t *testing.T, expected time.Duration, args ...string) {
		runWith(t, func(ctx *cli.Context) error {
			cfg, err := GetConfigFromContext(ctx)
			require.NoError(t, err)
			start := time.Now()
			gctx, cancel := GetTimeoutContext(ctx, cfg.ApplicationConfiguration.RPC)
			defer cancel()
			dl, ok := gctx.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, start.Add(expected), dl, time.Second)
			return nil
		}, args...)
	}
	t.Run("default", func(t *testing.T) { check(t, DefaultTimeout) })
	t.Run("await", func(t *testing.T) { check(t, DefaultAwaitableTimeout, "--await") })
	t.Run("explicit", func(t *testing.T) { check(t, 5*time.Second, "--await", "-s", "5s") })
	t.Run("config", func(t *testing.T) { check(t, 30*time.Second, "--config-file", longTimeout) })
	t.Run("config with await", func(t *testing.T) {
		check(t, DefaultAwaitableTimeout, "--config-file", longTimeout, "--await")
	})
	t.Run("long config with await", func(t *testing.T) {
		check(t, time.Minute, "--config-file", longerTimeout, "--await")
	})
	t.Run("flag overrides config", func(t *testing.T) {
		check(t, 3*time.Second, "--config-file", longTimeout, "-s", "3s")
	})
	t.Run("zero", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			start := time.Now()
			gctx, cancel := GetTimeoutContext(ctx, config.RPC{})
			defer cancel()
			dl, ok := gctx.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, start.Add(DefaultTimeout), dl, time.Second)
			return nil
		})
	})
}

func TestGetRPCClientNoEndpoint(t *testing.T) {
	runWith(t, func(ctx *cli.Context) error {
		_, err := GetRPCClient(ctx.Context, config.RPC{Timeout: time.Second})
		require.ErrorContains(t, err, errNoEndpoint.Error())
		require.Equal(t, 1, err.ExitCode())
		return nil
	})
}

func TestHandleLoggingParams(t *testing.T) {
	t.Run("default level", func(t *testing.T) {
		log, lvl, err := HandleLoggingParams(false, config.ApplicationConfiguration{})
		require.NoError(t, err)
		require.NotNil(t, log)
		require.Equal(t, zapcore.InfoLevel, lvl.Level())
	})
	t.Run("configured level", func(t *testing.T) {
		_, lvl, err := HandleLoggingParams(false, config.ApplicationConfiguration{LogLevel: "warn"})
		require.NoError(t, err)
		require.Equal(t, zapcore.WarnLevel, lvl.Level())
	})
	t.Run("debug overrides", func(t *testing.T) {
		_, lvl, err := HandleLoggingParams(true, config.ApplicationConfiguration{LogLevel: "error"})
		require.NoError(t, err)
		require.Equal(t, zapcore.DebugLevel, lvl.Level())
	})
	t.Run("bad level", func(t *testing.T) {
		_, _, err := HandleLoggingParams(false, config.ApplicationConfiguration{LogLevel: "loud"})
		require.ErrorContains(t, err, "log setting")
	})
	t.Run("log file", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "logs", "xseed.log")
		log, _, err := HandleLoggingParams(false, config.ApplicationConfiguration{LogPath: logPath})
		require.NoError(t, err)
		log.Info("hello")
		require.NoError(t, log.Sync())
		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		require.Contains(t, string(data), "INFO\thello")
	})
}

func TestGetAccFromContextErrors(t *testing.T) {
	t.Run("no wallet", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			_, _, err := GetAccFromContext(ctx)
			require.ErrorIs(t, err, errNoWallet)
			return nil
		})
	})
	t.Run("conflicting flags", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			_, _, err := GetAccFromContext(ctx)
			require.ErrorIs(t, err, errConflictingWalletFlags)
			return nil
		}, "--wallet", "w.json", "--wallet-config", "w.yml")
	})
	t.Run("missing wallet", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			_, _, err := GetAccFromContext(ctx)
			require.Error(t, err)
			return nil
		}, "--wallet", filepath.Join(t.TempDir(), "none.json"))
	})
	t.Run("no default address", func(t *testing.T) {
		walletPath := filepath.Join(t.TempDir(), "empty.json")
		w, err := wallet.NewWallet(walletPath)
		require.NoError(t, err)
		require.NoError(t, w.Save())
		w.Close()

		runWith(t, func(ctx *cli.Context) error {
			acc, wall, err := GetAccFromContext(ctx)
			require.ErrorContains(t, err, "can't get default address")
			require.Nil(t, acc)
			require.Nil(t, wall)
			return nil
		}, "--wallet", walletPath)
	})
	t.Run("unknown address", func(t *testing.T) {
		walletPath := filepath.Join(t.TempDir(), "empty.json")
		w, err := wallet.NewWallet(walletPath)
		require.NoError(t, err)
		require.NoError(t, w.Save())
		w.Close()

		runWith(t, func(ctx *cli.Context) error {
			acc, wall, err := GetAccFromContext(ctx)
			require.ErrorContains(t, err, "wallet contains no account")
			require.Nil(t, acc)
			require.Nil(t, wall)
			return nil
		}, "--wallet", walletPath, "--address", "NbrUYaZgyhSkNoRo9ugRyEMdUZxrhkNaWB")
	})
	t.Run("bad password", func(t *testing.T) {
		dir := t.TempDir()
		walletPath := filepath.Join(dir, "wallet.json")
		w, err := wallet.NewWallet(walletPath)
		require.NoError(t, err)
		acc, err := wallet.NewAccount()
		require.NoError(t, err)
		require.NoError(t, acc.Encrypt("right", w.Scrypt))
		w.AddAccount(acc)
		require.NoError(t, w.Save())
		w.Close()

		configPath := filepath.Join(dir, "wallet.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("Path: "+walletPath+"\nPassword: wrong\n"), 0644))

		runWith(t, func(ctx *cli.Context) error {
			acc, wall, err := GetAccFromContext(ctx)
			require.Error(t, err)
			require.Nil(t, acc)
			require.Nil(t, wall)
			return nil
		}, "--wallet-config", configPath)
	})
	t.Run("missing wallet config", func(t *testing.T) {
		runWith(t, func(ctx *cli.Context) error {
			_, _, err := GetAccFromContext(ctx)
			require.ErrorContains(t, err, "unable to read wallet config")
			return nil
		}, "--wallet-config", filepath.Join(t.TempDir(), "none.yml"))
	})
}

func TestReadWalletConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte("Path: /tmp/wallet.json\nPassword: pass\n"), 0644))
	cfg, err := ReadWalletConfig(good)
	require.NoError(t, err)
	require.Equal(t, &WalletConfig{Path: "/tmp/wallet.json", Password: "pass"}, cfg)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("Path: [\n"), 0644))
	_, err = ReadWalletConfig(bad)
	require.ErrorContains(t, err, "failed to unmarshal wallet config YAML")
}
