// Package config holds the identity CLI settings: defaults, then
// TASKERID_* environment variables, then the global flags in front of the
// subcommand.
package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the identity CLI.
//
// Fields:
//   - ServerURL: base URL of the JSON API.
//   - GRPCAddr: host:port of the gRPC endpoint.
//   - Transport: "http" or "grpc".
//   - Timeout: per-call deadline.
//   - Token: access token used by whoami when -token is not given.
type Config struct {
	ServerURL string        `env:"TASKERID_SERVER_URL"`
	GRPCAddr  string        `env:"TASKERID_GRPC_ADDRESS"`
	Transport string        `env:"TASKERID_TRANSPORT"`
	Timeout   time.Duration `env:"TASKERID_TIMEOUT"`
	Token     string        `env:"TASKERID_TOKEN"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.GRPCAddr = "127.0.0.1:50051"
	c.Transport = TransportHTTP
	c.Timeout = 10 * time.Second
}

func (c *Config) Validate() error {
	if c.Transport != TransportHTTP && c.Transport != TransportGRPC {
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Load applies defaults, environ (nil means the process environment) and the
// global flags in args. It returns the arguments left after the flags,
// starting with the subcommand.
func Load(args []string, environ map[string]string, stderr io.Writer) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, nil, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("taskerid-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "JSON API base URL")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "gRPC address and port")
	fs.StringVar(&cfg.Transport, "p", cfg.Transport, "transport: http or grpc")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-call timeout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}
