package config

import (
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Settable keys, as used by "config get" and "config set".
const (
	KeyLastPrefixPath     = "last_prefix_path"
	KeyLastSettingsDir    = "last_settings_dir"
	KeyDryRunDefault      = "dry_run_default"
	KeyNameLookupEnabled  = "name_lookup.enabled"
	KeyNameLookupEndpoint = "name_lookup.endpoint"
	KeyNameLookupTimeout  = "name_lookup.timeout_seconds"
)

var keys = []string{
	KeyLastPrefixPath,
	KeyLastSettingsDir,
	KeyDryRunDefault,
	KeyNameLookupEnabled,
	KeyNameLookupEndpoint,
	KeyNameLookupTimeout,
}

// Keys returns the settable keys in display order.
func Keys() []string {
	return slices.Clone(keys)
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyLastPrefixPath:
		return c.LastPrefixPath, nil
	case KeyLastSettingsDir:
		return c.LastSettingsDir, nil
	case KeyDryRunDefault:
		return strconv.FormatBool(c.DryRunDefault), nil
	case KeyNameLookupEnabled:
		return strconv.FormatBool(c.NameLookup.Enabled), nil
	case KeyNameLookupEndpoint:
		return c.NameLookup.Endpoint, nil
	case KeyNameLookupTimeout:
		return strconv.Itoa(c.NameLookup.TimeoutSeconds), nil
	}
	return "", errors.Wrapf(ErrUnknownKey, "%q", key)
}

// Set parses value and assigns it to key. The result is not validated.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyLastPrefixPath:
		c.LastPrefixPath = value
	case KeyLastSettingsDir:
		c.LastSettingsDir = value
	case KeyDryRunDefault:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(ErrInvalidValue, "%s: %q is not a boolean", key, value)
		}
		c.DryRunDefault = b
	case KeyNameLookupEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(ErrInvalidValue, "%s: %q is not a boolean", key, value)
		}
		c.NameLookup.Enabled = b
	case KeyNameLookupEndpoint:
		c.NameLookup.Endpoint = value
	case KeyNameLookupTimeout:
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(ErrInvalidValue, "%s: %q is not an integer", key, value)
		}
		c.NameLookup.TimeoutSeconds = n
	default:
		return errors.Wrapf(ErrUnknownKey, "%q", key)
	}
	return nil
}
