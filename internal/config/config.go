// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
)

// Config is the top-level vecserve configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Search SearchConfig `mapstructure:"search"`
	Client ClientConfig `mapstructure:"client"`
}

// ServerConfig controls where and how the server listens.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// PollInterval bounds the accept wait so cancellation is observed
	// promptly even when no connections arrive.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// SearchConfig controls search defaults.
type SearchConfig struct {
	DefaultTopK int `mapstructure:"default_top_k"`
}

// ClientConfig controls the CLI client's connection behavior.
type ClientConfig struct {
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Addr returns the host:port address the server binds to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix VECSERVE_).
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, vecerr.Errorf(vecerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// SetDefaults registers the default value for every config key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 50051)
	v.SetDefault("server.poll_interval", "1s")
	v.SetDefault("search.default_top_k", 5)
	v.SetDefault("client.dial_timeout", "2s")
	v.SetDefault("client.request_timeout", "30s")
}

// SetupEnv binds environment variables with the VECSERVE_ prefix to config
// keys (dots become underscores, e.g. VECSERVE_SERVER_PORT).
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("VECSERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate checks the configuration for logical errors. It returns a slice
// of all validation errors found, collecting all issues rather than stopping
// at the first one.
func (c *Config) Validate() []error {
	var errs []error

	if c.Server.Host == "" {
		errs = append(errs, vecerr.New(vecerr.CodeConfigValidateInvalidValue, "config: server.host must not be empty"))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue,
			"config: server.port must be between 1 and 65535, got %d",
			c.Server.Port,
		))
	}

	if c.Server.PollInterval <= 0 {
		errs = append(errs, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue,
			"config: server.poll_interval must be greater than 0, got %s",
			c.Server.PollInterval,
		))
	}

	if c.Search.DefaultTopK <= 0 {
		errs = append(errs, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue,
			"config: search.default_top_k must be greater than 0, got %d",
			c.Search.DefaultTopK,
		))
	}

	if c.Client.DialTimeout <= 0 {
		errs = append(errs, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue,
			"config: client.dial_timeout must be greater than 0, got %s",
			c.Client.DialTimeout,
		))
	}

	if c.Client.RequestTimeout <= 0 {
		errs = append(errs, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue,
			"config: client.request_timeout must be greater than 0, got %s",
			c.Client.RequestTimeout,
		))
	}

	return errs
}
