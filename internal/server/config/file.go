package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/personauth/internal/flagx"
	"github.com/dmitrijs2005/personauth/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for file decoding. Pointer fields distinguish a
// key that is absent from one set to its zero value, so a partial file only
// overrides what it names.
type FileConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   *string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	AuthRequired                *bool           `json:"auth_required" yaml:"auth_required"`
	BcryptCost                  *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	LogFormat                   *string         `json:"log_format" yaml:"log_format"`
	LogLevel                    *string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the file given with -c/-config onto config. Files ending
// in .yaml or .yml are decoded as YAML, anything else as JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(config *Config) {
	if fc.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *fc.EndpointAddrHTTP
	}
	if fc.DatabaseDSN != nil {
		config.DatabaseDSN = *fc.DatabaseDSN
	}
	if fc.SecretKey != nil {
		config.SecretKey = *fc.SecretKey
	}
	if fc.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.AuthRequired != nil {
		config.AuthRequired = *fc.AuthRequired
	}
	if fc.BcryptCost != nil {
		config.BcryptCost = *fc.BcryptCost
	}
	if fc.LogFormat != nil {
		config.LogFormat = *fc.LogFormat
	}
	if fc.LogLevel != nil {
		config.LogLevel = *fc.LogLevel
	}
}
