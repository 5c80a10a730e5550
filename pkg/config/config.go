package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultRPCTimeout is the default timeout of a single RPC request.
	DefaultRPCTimeout = 10 * time.Second
	// DefaultMonitorInterval is the default period of supply checks.
	DefaultMonitorInterval = 15 * time.Second
)

// Version is the version of the tool, set at build time.
var Version string

// ErrNoContractHash is returned when the configuration has no token hash.
var ErrNoContractHash = errors.New("no token contract hash configured")

// Config is the top-level configuration of the tool.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load reads the configuration from the given YAML file, fills in default
// values and validates the result.
func Load(path string) (Config, error) {
	configData, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return LoadBytes(configData)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			RPC: RPC{
				Timeout: DefaultRPCTimeout,
			},
			Monitor: Monitor{
				Interval: DefaultMonitorInterval,
			},
		},
	}
}

// LoadBytes is the same as Load, but it takes YAML contents directly. Empty
// contents result in the default configuration.
func LoadBytes(configData []byte) (Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Validate checks the configuration for consistency. An empty token section is
// allowed since the hash can be given via command line.
func (a ApplicationConfiguration) Validate() error {
	if a.RPC.Timeout <= 0 {
		return fmt.Errorf("non-positive RPC timeout: %s", a.RPC.Timeout)
	}
	if a.Monitor.Interval <= 0 {
		return fmt.Errorf("non-positive monitor interval: %s", a.Monitor.Interval)
	}
	if a.Token.Hash != "" {
		if _, err := a.Token.ScriptHash(); err != nil {
			return err
		}
	}
	if a.Token.Owner != "" {
		if _, err := a.Token.OwnerHash(); err != nil {
			return err
		}
	}
	return nil
}

// ScriptHash decodes the token contract hash. Both "0x"-prefixed and plain
// LE hex strings are accepted, as well as Neo addresses.
func (t Token) ScriptHash() (util.Uint160, error) {
	if t.Hash == "" {
		return util.Uint160{}, ErrNoContractHash
	}
	return parseHash(t.Hash)
}

// OwnerHash decodes the owner address. Zero hash with no error is returned if
// the owner is not set, it's then fetched from the contract.
func (t Token) OwnerHash() (util.Uint160, error) {
	if t.Owner == "" {
		return util.Uint160{}, nil
	}
	h, err := parseHash(t.Owner)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("bad owner: %w", err)
	}
	return h, nil
}

func parseHash(s string) (util.Uint160, error) {
	if h, err := util.Uint160DecodeStringLE(trimHexPrefix(s)); err == nil {
		return h, nil
	}
	h, err := address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%q is neither a hash nor an address", s)
	}
	return h, nil
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
