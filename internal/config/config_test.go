// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vecserve-dev/vecserve/internal/config"
	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 50051, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Server.PollInterval)
	assert.Equal(t, 5, cfg.Search.DefaultTopK)
	assert.Equal(t, 2*time.Second, cfg.Client.DialTimeout)
	assert.Equal(t, 30*time.Second, cfg.Client.RequestTimeout)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecserve.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 6000
  poll_interval: 250ms
search:
  default_top_k: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.PollInterval)
	assert.Equal(t, 3, cfg.Search.DefaultTopK)
	// Untouched sections keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Client.RequestTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VECSERVE_SERVER_PORT", "9100")
	t.Setenv("VECSERVE_SERVER_HOST", "127.0.0.1")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, vecerr.HasCode(err, vecerr.CodeConfigLoadReadFailure))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Host = ""
	cfg.Server.Port = 0
	cfg.Server.PollInterval = 0
	cfg.Search.DefaultTopK = 0
	cfg.Client.DialTimeout = 0
	cfg.Client.RequestTimeout = 0

	errs := cfg.Validate()
	assert.Len(t, errs, 6)
}

func TestValidatePortRange(t *testing.T) {
	tests := []struct {
		name string
		port int
		ok   bool
	}{
		{"min", 1, true},
		{"default", 50051, true},
		{"max", 65535, true},
		{"zero", 0, false},
		{"negative", -1, false},
		{"too large", 65536, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			require.NoError(t, err)
			cfg.Server.Port = tt.port

			errs := cfg.Validate()
			if tt.ok {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:50051", cfg.Addr())

	cfg.Server.Host = "::1"
	cfg.Server.Port = 8080
	assert.Equal(t, "[::1]:8080", cfg.Addr())
}

func TestDefaultConfigYAMLIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vecserve.yaml")
	require.NoError(t, os.WriteFile(path, config.DefaultConfigYAML, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 50051, cfg.Server.Port)
}
