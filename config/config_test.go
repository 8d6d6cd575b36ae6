// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := Load("", "")
	require.NoError(err)
	require.Equal(Default(), cfg)
	require.Equal(logging.Info, cfg.Level())

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), filepath.Join(t.TempDir(), ".env"))
	require.NoError(err)
	require.Equal(Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	require := require.New(t)

	path := write(t, "config.yaml", `
logLevel: debug
rpcAddress: 0.0.0.0:8080
chain:
  concurrency: 8
  fetchWorkers: 2
  validityWindow: 30000
pebble:
  sync: false
stream:
  maxMessageWait: 50ms
`)
	cfg, err := Load(path, "")
	require.NoError(err)
	require.Equal(logging.Debug, cfg.Level())
	require.Equal("0.0.0.0:8080", cfg.RPCAddress)
	require.Equal(8, cfg.Chain.Concurrency)
	require.Equal(2, cfg.Chain.FetchWorkers)
	require.Equal(int64(30_000), cfg.Chain.ValidityWindow)
	require.False(cfg.Pebble.Sync)
	require.Equal(50*time.Millisecond, cfg.Stream.MaxMessageWait)
	require.Equal(Default().DatabaseDir, cfg.DatabaseDir)

	_, err = Load(write(t, "bad.yaml", "unknownField: 1\n"), "")
	require.Error(err)
}

func TestLoadEnv(t *testing.T) {
	require := require.New(t)

	path := write(t, "config.yaml", "logLevel: debug\nchain:\n  concurrency: 8\n")
	t.Setenv(EnvPrefix+"CONCURRENCY", "3")
	t.Setenv(EnvPrefix+"ALLOWED_ORIGINS", "http://a,http://b")
	envFile := write(t, ".env", EnvPrefix+"LOG_LEVEL=warn\n"+EnvPrefix+"DATABASE_DIR=/tmp/weighted\n")
	t.Cleanup(func() {
		os.Unsetenv(EnvPrefix + "LOG_LEVEL")
		os.Unsetenv(EnvPrefix + "DATABASE_DIR")
	})

	cfg, err := Load(path, envFile)
	require.NoError(err)
	require.Equal(logging.Warn, cfg.Level())
	require.Equal("/tmp/weighted", cfg.DatabaseDir)
	require.Equal(3, cfg.Chain.Concurrency)
	require.Equal([]string{"http://a", "http://b"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name:   "zero concurrency",
			modify: func(c *Config) { c.Chain.Concurrency = 0 },
			err:    ErrInvalidConcurrency,
		},
		{
			name:   "no signature workers",
			modify: func(c *Config) { c.Chain.VerifyWorkers = 0 },
			err:    ErrInvalidConcurrency,
		},
		{
			name:   "negative window",
			modify: func(c *Config) { c.Chain.ValidityWindow = -1 },
			err:    ErrInvalidWindow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.err)
		})
	}

	cfg := Default()
	cfg.LogLevel = "loud"
	require.Error(t, cfg.Validate())
}

func TestApplyEnvInvalid(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) {
		if k == EnvPrefix+"FETCH_WORKERS" {
			return "many", true
		}
		return "", false
	})
	require.ErrorIs(t, err, ErrInvalidEnv)
}
