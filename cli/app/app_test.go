package app

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xseed-project/xseed-token/pkg/config"
)

func TestVersion(t *testing.T) {
	config.Version = "0.1.0-test"
	buf := bytes.NewBuffer(nil)
	ctl := New()
	ctl.Writer = buf
	require.NoError(t, ctl.Run([]string{"xseed", "--version"}))
	require.Equal(t, "XSeed\nVersion: 0.1.0-test\nGoVersion: "+runtime.Version()+"\n", buf.String())
}

func TestCommands(t *testing.T) {
	ctl := New()
	names := make([]string, 0, len(ctl.Commands))
	for _, c := range ctl.Commands {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"contract", "check", "monitor"}, names)
}
