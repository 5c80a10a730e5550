package config

import "time"

// ApplicationConfiguration contains settings of the tool and its services.
type ApplicationConfiguration struct {
	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`

	RPC        RPC          `yaml:"RPC"`
	Token      Token        `yaml:"Token"`
	Monitor    Monitor      `yaml:"Monitor"`
	Prometheus BasicService `yaml:"Prometheus"`
	Pprof      BasicService `yaml:"Pprof"`
}

// RPC describes the node to connect to.
type RPC struct {
	Endpoint string        `yaml:"Endpoint"`
	Timeout  time.Duration `yaml:"Timeout"`
}

// Token identifies the XSeedToken contract instance.
type Token struct {
	// Hash is the contract script hash (LE hex string or address).
	Hash string `yaml:"Hash"`
	// Owner is the account expected to hold the whole supply. It's taken
	// from the contract if not set.
	Owner string `yaml:"Owner"`
}

// Monitor contains supply monitor settings.
type Monitor struct {
	Interval time.Duration `yaml:"Interval"`
}
