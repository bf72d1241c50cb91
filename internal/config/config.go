// Package config assembles the daemon configuration: struct defaults,
// overlaid by a yaml config file, then MNEMOD_* environment variables, then
// command-line flags. The merged result is validated before use.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/mnemo/mnemod/internal/srs"
	"github.com/mnemo/mnemod/internal/web"
)

// envPrefix is stripped from environment variables; "__" nests keys, so
// MNEMOD_SESSION__LIMIT becomes session.limit.
const envPrefix = "MNEMOD_"

// Config is the full daemon configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `koanf:"listen" validate:"required,hostname_port"`
	// DBPath is the sqlite database file.
	DBPath string `koanf:"db_path" validate:"required"`
	// Sources are card content sources: local directories or git URLs.
	Sources []string `koanf:"sources"`
	// ReposDir is where git sources are checked out.
	ReposDir string `koanf:"repos_dir" validate:"required"`
	// SyncInterval is the cadence of the background source sync.
	// Zero disables the job.
	SyncInterval time.Duration `koanf:"sync_interval" validate:"min=0"`

	Session   web.SessionConfig `koanf:"session"`
	Scheduler srs.Config        `koanf:"scheduler"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Listen:       ":8080",
		DBPath:       "mnemod.db",
		ReposDir:     "repos",
		SyncInterval: time.Hour,
		Session: web.SessionConfig{
			Limit:         srs.DefaultSessionLimit,
			NewPerSession: 5,
		},
		Scheduler: srs.DefaultConfig(),
	}
}

// Load merges defaults, the yaml file at path (skipped when absent), the
// environment, and flags, and validates the result.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("checking config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", "."), value
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
