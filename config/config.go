// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads node settings from YAML, a .env file and
// WEIGHTEDVM_ environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/pebble"
	"github.com/ava-labs/weightedvm/pubsub"
)

const EnvPrefix = "WEIGHTEDVM_"

var (
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
	ErrInvalidWindow      = errors.New("validity window must be positive")
	ErrInvalidEnv         = errors.New("invalid environment variable")
)

type Config struct {
	LogLevel       string              `yaml:"logLevel"`
	LogDir         string              `yaml:"logDir"`
	DatabaseDir    string              `yaml:"databaseDir"`
	GenesisPath    string              `yaml:"genesisPath"`
	RPCAddress     string              `yaml:"rpcAddress"`
	AllowedOrigins []string            `yaml:"allowedOrigins"`
	Chain          chain.Config        `yaml:"chain"`
	Pebble         pebble.Config       `yaml:"pebble"`
	Stream         pubsub.ServerConfig `yaml:"stream"`
}

func Default() Config {
	return Config{
		LogLevel:       logging.Info.String(),
		LogDir:         ".weightedvm/logs",
		DatabaseDir:    ".weightedvm/db",
		GenesisPath:    "genesis.json",
		RPCAddress:     "127.0.0.1:9650",
		AllowedOrigins: []string{"*"},
		Chain:          chain.NewDefaultConfig(),
		Pebble:         pebble.NewDefaultConfig(),
		Stream:         pubsub.NewDefaultServerConfig(),
	}
}

// Load reads [path] over the defaults, then applies the variables of
// [envFile] and the process environment. Missing files are skipped; an
// empty [path] means defaults only.
func Load(path string, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("%w: unable to parse %s", err, path)
			}
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":    &c.LogLevel,
		"LOG_DIR":      &c.LogDir,
		"DATABASE_DIR": &c.DatabaseDir,
		"GENESIS_PATH": &c.GenesisPath,
		"RPC_ADDRESS":  &c.RPCAddress,
	}
	for k, dst := range strs {
		if v, ok := lookup(EnvPrefix + k); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = strings.Split(v, ",")
	}
	ints := map[string]*int{
		"CONCURRENCY":    &c.Chain.Concurrency,
		"FETCH_WORKERS":  &c.Chain.FetchWorkers,
		"VERIFY_WORKERS": &c.Chain.VerifyWorkers,
	}
	for k, dst := range ints {
		v, ok := lookup(EnvPrefix + k)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, k, v)
		}
		*dst = n
	}
	if v, ok := lookup(EnvPrefix + "VALIDITY_WINDOW"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sVALIDITY_WINDOW=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.Chain.ValidityWindow = n
	}
	if v, ok := lookup(EnvPrefix + "PEBBLE_SYNC"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sPEBBLE_SYNC=%q", ErrInvalidEnv, EnvPrefix, v)
		}
		c.Pebble.Sync = b
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := logging.ToLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Chain.Concurrency <= 0 || c.Chain.FetchWorkers <= 0 || c.Chain.VerifyWorkers <= 0 {
		return fmt.Errorf(
			"%w: concurrency=%d fetchWorkers=%d verifyWorkers=%d",
			ErrInvalidConcurrency,
			c.Chain.Concurrency,
			c.Chain.FetchWorkers,
			c.Chain.VerifyWorkers,
		)
	}
	if c.Chain.ValidityWindow <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, c.Chain.ValidityWindow)
	}
	return nil
}

// Level is the parsed log level. Call after [Validate].
func (c *Config) Level() logging.Level {
	level, _ := logging.ToLevel(c.LogLevel)
	return level
}
