/*
Package testcli contains an in-process chain with an RPC server and helpers to
run and check xseed commands against it. It's only intended for CLI tests.
*/
package testcli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/core"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/network"
	"github.com/nspcc-dev/neo-go/pkg/services/rpcsrv"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/xseed-project/xseed-token/cli/app"
	"go.uber.org/zap"
)

const (
	// ContractPath is the token contract location relative to cli/* packages.
	ContractPath = "../../contracts/xseed"

	walletPass = "one"
)

// Executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type Executor struct {
	// Executor is a single-node chain with a validator holding all GAS.
	*neotest.Executor
	// CLI is a cli application to test.
	CLI *cli.App
	// RPC is an RPC server to query.
	RPC *rpcsrv.Server
	// NetSrv is a network server behind the RPC server.
	NetSrv *network.Server
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
}

// NewExecutor creates a new chain with an RPC server and an xseed CLI
// instance writing into the buffers of the Executor.
func NewExecutor(t *testing.T) *Executor {
	bc, validator := chain.NewSingle(t)
	e := &Executor{
		Executor: neotest.NewExecutor(t, bc, validator, validator),
		CLI:      app.New(),
		Out:      bytes.NewBuffer(nil),
		Err:      bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	e.RPC, e.NetSrv = newRPCServer(t, bc)
	t.Cleanup(func() {
		cli.OsExiter = os.Exit
	})
	return e
}

func newRPCServer(t *testing.T, bc *core.Blockchain) (*rpcsrv.Server, *network.Server) {
	cfg := config.Config{
		ProtocolConfiguration: bc.GetConfig().ProtocolConfiguration,
		ApplicationConfiguration: config.ApplicationConfiguration{
			P2P: config.P2P{
				Addresses: []string{"localhost:0"},
			},
			RPC: config.RPC{
				BasicService: config.BasicService{
					Enabled:   true,
					Addresses: []string{"localhost:0"},
				},
				MaxGasInvoke: fixedn.Fixed8FromInt64(1000),
			},
		},
	}
	serverConfig, err := network.NewServerConfig(cfg)
	require.NoError(t, err)
	netSrv, err := network.NewServer(serverConfig, bc, bc.GetStateSyncModule(), zap.NewNop())
	require.NoError(t, err)
	go netSrv.Start()
	t.Cleanup(netSrv.Shutdown)

	errCh := make(chan error, 2)
	rpcServer := rpcsrv.New(bc, cfg.ApplicationConfiguration.RPC, netSrv, nil, zap.NewNop(), errCh)
	rpcServer.Start()
	t.Cleanup(rpcServer.Shutdown)
	return &rpcServer, netSrv
}

// Endpoint returns the RPC server endpoint to pass to commands.
func (e *Executor) Endpoint() string {
	return "http://" + e.RPC.Addresses()[0]
}

// NewWalletAccount creates a wallet with a single account holding the given
// amount of GAS. It returns the account (with the private key available) and
// the path to the wallet config file for '--wallet-config'.
func (e *Executor) NewWalletAccount(t *testing.T, gas int64) (*wallet.Account, string) {
	acc, err := wallet.NewAccount()
	require.NoError(t, err)

	dir := t.TempDir()
	walletPath := filepath.Join(dir, "wallet.json")
	w, err := wallet.NewWallet(walletPath)
	require.NoError(t, err)
	require.NoError(t, acc.Encrypt(walletPass, w.Scrypt))
	w.AddAccount(acc)
	require.NoError(t, w.Save())
	w.Close()

	configPath := filepath.Join(dir, "wallet.yml")
	configData := fmt.Sprintf("Path: %q\nPassword: %q\n", walletPath, walletPass)
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))

	gasInvoker := e.ValidatorInvoker(e.NativeHash(t, nativenames.Gas))
	gasInvoker.Invoke(t, true, "transfer", e.Validator.ScriptHash(), acc.ScriptHash(), gas*100_000_000, nil)
	return acc, configPath
}

// CompileToken compiles the token contract into a temporary directory and
// returns paths to the NEF and manifest files.
func (e *Executor) CompileToken(t *testing.T) (string, string) {
	dir := t.TempDir()
	nefPath := filepath.Join(dir, "xseed.nef")
	manifestPath := filepath.Join(dir, "xseed.manifest.json")
	e.Run(t, "xseed", "contract", "compile",
		"--in", ContractPath,
		"--out", nefPath,
		"--manifest", manifestPath)
	return nefPath, manifestPath
}

// DeployToken deploys the token with 'contract deploy --await' from a new
// account and returns the contract hash and the owner account.
func (e *Executor) DeployToken(t *testing.T) (util.Uint160, *wallet.Account) {
	acc, walletConfig := e.NewWalletAccount(t, 1000)
	nefPath, manifestPath := e.CompileToken(t)
	e.RunAwaiting(t, "xseed", "contract", "deploy",
		"--rpc-endpoint", e.Endpoint(),
		"--wallet-config", walletConfig,
		"--in", nefPath,
		"--manifest", manifestPath,
		"--await")
	line := e.GetNextLine(t)
	h, err := util.Uint160DecodeStringLE(strings.TrimPrefix(line, "Contract: "))
	require.NoError(t, err, line)
	return h, acc
}

// PersistMempool adds a new block with all verified mempooled transactions
// if there are any.
func (e *Executor) PersistMempool(t testing.TB) {
	txes := e.Chain.GetMemPool().GetVerifiedTransactions()
	if len(txes) != 0 {
		e.AddNewBlock(t, txes...)
	}
}

// RunAwaiting runs the command while packing incoming transactions into
// blocks, it's needed for commands waiting for their transactions.
func (e *Executor) RunAwaiting(t *testing.T, args ...string) {
	var (
		stop = make(chan struct{})
		done = make(chan struct{})
	)
	go func() {
		defer close(done)
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.PersistMempool(t)
			}
		}
	}()
	defer func() {
		close(stop)
		<-done
	}()
	e.Run(t, args...)
}

// GetNextLine returns the next line from the command output.
func (e *Executor) GetNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

// CheckNextLine checks that the next output line matches the expected regexp.
func (e *Executor) CheckNextLine(t *testing.T, expected string) {
	line := e.GetNextLine(t)
	require.Regexp(t, expected, line)
}

// CheckEOF checks that the whole output was read.
func (e *Executor) CheckEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		select {
		case ch <- code:
		default:
		}
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *Executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *Executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...), e.Err.String())
	checkExit(t, ch, 0)
}

func (e *Executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	return e.CLI.Run(args)
}
