// Package config loads and saves the packprefs configuration file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/thoreinstein/packprefs/internal/names"
	"github.com/thoreinstein/packprefs/internal/paths"
	"github.com/thoreinstein/packprefs/pkg/fileutil"
)

// EnvPrefix prefixes environment overrides, e.g. PACKPREFS_DRY_RUN_DEFAULT.
const EnvPrefix = "PACKPREFS"

// filePerm keeps the config private; it records local paths.
const filePerm = 0o600

// Config represents the persisted configuration.
type Config struct {
	// LastPrefixPath is the prefix used by the previous run.
	LastPrefixPath string `mapstructure:"last_prefix_path" toml:"last_prefix_path" yaml:"last_prefix_path"`
	// LastSettingsDir is the settings directory used by the previous run.
	LastSettingsDir string `mapstructure:"last_settings_dir" toml:"last_settings_dir" yaml:"last_settings_dir"`
	// DryRunDefault makes sync preview unless --dry-run=false is given.
	DryRunDefault bool `mapstructure:"dry_run_default" toml:"dry_run_default" yaml:"dry_run_default"`
	// NameLookup configures character name resolution.
	NameLookup NameLookup `mapstructure:"name_lookup" toml:"name_lookup" yaml:"name_lookup"`
	// CharacterNames caches resolved names keyed by decimal character ID.
	CharacterNames map[string]string `mapstructure:"character_names" toml:"character_names" yaml:"character_names"`
}

// NameLookup configures the remote name lookup.
type NameLookup struct {
	Enabled        bool   `mapstructure:"enabled" toml:"enabled" yaml:"enabled"`
	Endpoint       string `mapstructure:"endpoint" toml:"endpoint" yaml:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		NameLookup: NameLookup{
			Enabled:        true,
			Endpoint:       names.DefaultEndpoint,
			TimeoutSeconds: int(names.DefaultTimeout.Seconds()),
		},
		CharacterNames: map[string]string{},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("last_prefix_path", d.LastPrefixPath)
	v.SetDefault("last_settings_dir", d.LastSettingsDir)
	v.SetDefault("dry_run_default", d.DryRunDefault)
	v.SetDefault("name_lookup.enabled", d.NameLookup.Enabled)
	v.SetDefault("name_lookup.endpoint", d.NameLookup.Endpoint)
	v.SetDefault("name_lookup.timeout_seconds", d.NameLookup.TimeoutSeconds)

	return v
}

// Load reads the configuration file.
// If path is empty the default location is used and a missing file yields the
// defaults. A missing file at an explicit path is an error.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = paths.ConfigFile()
	}

	v := newViper()

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat config file %s", path)
		}
		if explicit {
			return nil, errors.Wrapf(ErrNotFound, "%s", path)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if cfg.CharacterNames == nil {
		cfg.CharacterNames = map[string]string{}
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return cfg, errors.Mark(errors.Join(errs...), ErrInvalid)
	}

	return cfg, nil
}

// Save writes cfg to path as TOML, creating the directory if needed.
// If path is empty the default location is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = paths.ConfigFile()
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}

	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	if err := fileutil.AtomicWriteFile(path, data, filePerm); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

// CachedName returns the cached display name for a character ID.
func (c *Config) CachedName(id uint64) (string, bool) {
	name, ok := c.CharacterNames[strconv.FormatUint(id, 10)]
	return name, ok
}

// CacheNames adds resolved names to the cache. Existing entries are replaced.
func (c *Config) CacheNames(resolved map[uint64]string) {
	if c.CharacterNames == nil {
		c.CharacterNames = make(map[string]string, len(resolved))
	}
	for id, name := range resolved {
		c.CharacterNames[strconv.FormatUint(id, 10)] = name
	}
}

// NameCache returns the cache keyed by numeric ID. Keys that do not parse are
// left out.
func (c *Config) NameCache() map[uint64]string {
	out := make(map[uint64]string, len(c.CharacterNames))
	for key, name := range c.CharacterNames {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		out[id] = name
	}
	return out
}
