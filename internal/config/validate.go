package config

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for configuration.
var (
	// ErrNotFound indicates an explicitly requested config file does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrInvalid indicates the loaded configuration failed validation.
	ErrInvalid = errors.New("invalid configuration")

	// ErrUnknownKey indicates a key not listed by Keys.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue indicates a value that cannot be parsed for its key.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	for field, path := range map[string]string{
		KeyLastPrefixPath:  cfg.LastPrefixPath,
		KeyLastSettingsDir: cfg.LastSettingsDir,
	} {
		if err := validatePath(path); err != nil {
			errs = append(errs, &FieldError{Field: field, Value: path, Err: err})
		}
	}

	if cfg.NameLookup.TimeoutSeconds < 1 {
		errs = append(errs, &FieldError{
			Field: KeyNameLookupTimeout,
			Value: strconv.Itoa(cfg.NameLookup.TimeoutSeconds),
			Err:   errors.Wrap(ErrInvalidValue, "must be at least 1"),
		})
	}

	if cfg.NameLookup.Enabled {
		if err := validateEndpoint(cfg.NameLookup.Endpoint); err != nil {
			errs = append(errs, &FieldError{Field: KeyNameLookupEndpoint, Value: cfg.NameLookup.Endpoint, Err: err})
		}
	}

	for key := range cfg.CharacterNames {
		if _, err := strconv.ParseUint(key, 10, 64); err != nil {
			errs = append(errs, &FieldError{
				Field: "character_names",
				Value: key,
				Err:   errors.Wrap(ErrInvalidValue, "key is not a character ID"),
			})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "not set")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	if !filepath.IsAbs(path) {
		return errors.Wrap(ErrInvalidPath, "must be absolute")
	}

	return nil
}

func validateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(ErrInvalidValue, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Wrap(ErrInvalidValue, "endpoint must be an http or https URL")
	}
	if u.Host == "" {
		return errors.Wrap(ErrInvalidValue, "endpoint has no host")
	}
	return nil
}

// FieldError represents an error for a specific configuration field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
