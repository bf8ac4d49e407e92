package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/taskerid/internal/flagx"
	"github.com/dmitrijs2005/taskerid/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config, read from JSON or YAML.
// Durations accept "3h" strings or integer nanoseconds. Keys left out of the
// file keep their current value.
type FileConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC            string          `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                 string          `json:"database_dsn" yaml:"database_dsn"`
	RedisURL                    string          `json:"redis_url" yaml:"redis_url"`
	JWT                         FileJWTConfig   `json:"jwt" yaml:"jwt"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	LoginAttemptsLimit          *int            `json:"login_attempts_limit" yaml:"login_attempts_limit"`
	LoginAttemptsWindow         *timex.Duration `json:"login_attempts_window" yaml:"login_attempts_window"`
	LogLevel                    string          `json:"log_level" yaml:"log_level"`
}

type FileJWTConfig struct {
	Secret        string `json:"secret" yaml:"secret"`
	ValidIssuer   string `json:"valid_issuer" yaml:"valid_issuer"`
	ValidAudience string `json:"valid_audience" yaml:"valid_audience"`
}

// parseFile overlays the file named by -c/-config, if any. Files ending in
// .yaml or .yml are YAML, anything else is JSON.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func decodeFile(path string, data []byte) (*FileConfig, error) {
	fc := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, fc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, fc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	return fc, nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.RedisURL, fc.RedisURL)
	setString(&c.JWT.Secret, fc.JWT.Secret)
	setString(&c.JWT.ValidIssuer, fc.JWT.ValidIssuer)
	setString(&c.JWT.ValidAudience, fc.JWT.ValidAudience)
	setString(&c.LogLevel, fc.LogLevel)

	if fc.AccessTokenValidityDuration != nil {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.LoginAttemptsLimit != nil {
		c.LoginAttemptsLimit = *fc.LoginAttemptsLimit
	}
	if fc.LoginAttemptsWindow != nil {
		c.LoginAttemptsWindow = fc.LoginAttemptsWindow.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
