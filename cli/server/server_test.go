package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runMonitor(t *testing.T, args ...string) error {
	app := cli.NewApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Commands = NewCommands()
	return app.Run(append([]string{"xseed", "monitor"}, args...))
}

func writeConfig(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "xseed.yml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestMonitorErrors(t *testing.T) {
	t.Run("no config", func(t *testing.T) {
		require.ErrorContains(t, runMonitor(t), "no configuration file specified")
	})
	t.Run("bad config", func(t *testing.T) {
		path := writeConfig(t, "ApplicationConfiguration:\n  Unknown: true\n")
		require.Error(t, runMonitor(t, "--config-file", path))
	})
	t.Run("no hash", func(t *testing.T) {
		path := writeConfig(t, "ApplicationConfiguration:\n  LogLevel: info\n")
		require.ErrorContains(t, runMonitor(t, "--config-file", path), "no token contract hash")
	})
	t.Run("bad log level", func(t *testing.T) {
		path := writeConfig(t, "ApplicationConfiguration:\n  LogLevel: loud\n  Token:\n    Hash: \"0x5b81bc0ca7ec0a0c5b5e3e1aa4bd4b2a5c5fa7e3\"\n")
		require.ErrorContains(t, runMonitor(t, "--config-file", path), "log setting")
	})
	t.Run("no endpoint", func(t *testing.T) {
		path := writeConfig(t, "ApplicationConfiguration:\n  Token:\n    Hash: \"0x5b81bc0ca7ec0a0c5b5e3e1aa4bd4b2a5c5fa7e3\"\n")
		require.ErrorContains(t, runMonitor(t, "--config-file", path), "no RPC endpoint specified")
	})
}
