// Package cli provides helpers shared by the packprefs commands: opening a
// session from global flags and detecting interactive terminals.
package cli

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/term"

	"github.com/thoreinstein/packprefs/internal/app"
	"github.com/thoreinstein/packprefs/internal/config"
	"github.com/thoreinstein/packprefs/internal/errors"
	"github.com/thoreinstein/packprefs/internal/logging"
	"github.com/thoreinstein/packprefs/internal/names"
)

// SessionOptions carries the global flags that shape a session.
type SessionOptions struct {
	// ConfigPath overrides the config file location.
	ConfigPath string
	// Dir selects a settings directory directly.
	Dir string
	// Prefix selects a prefix whose first settings directory is used.
	Prefix string
	// Logger receives session logs. Defaults to a discard logger.
	Logger *slog.Logger
}

// IsInteractive reports whether r is a terminal. Tests replace it.
var IsInteractive = func(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// LoadConfig loads the configuration and maps failures to exit errors.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, config.ErrNotFound) {
		return nil, errors.NewUserError(err, "Check the --config path, or omit it to use the default location")
	}
	return nil, errors.NewConfigError(err)
}

// NewApp builds an App from cfg, enabling name lookup when configured.
func NewApp(cfg *config.Config, opts SessionOptions) *app.App {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscard()
	}

	appOpts := []app.Option{
		app.WithLogger(logger),
		app.WithConfigPath(opts.ConfigPath),
	}
	if cfg.NameLookup.Enabled {
		appOpts = append(appOpts, app.WithResolver(names.NewClient(
			names.WithEndpoint(cfg.NameLookup.Endpoint),
			names.WithTimeout(time.Duration(cfg.NameLookup.TimeoutSeconds)*time.Second),
			names.WithLogger(logger),
		)))
	}
	return app.New(cfg, appOpts...)
}

// OpenSession loads the configuration, builds an App and locates the
// settings directory.
func OpenSession(opts SessionOptions) (*app.App, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := NewApp(cfg, opts)
	if _, err := a.Locate(opts.Dir, opts.Prefix); err != nil {
		if errors.Is(err, app.ErrNoSettingsDir) {
			return nil, errors.NewUserError(err,
				"Start the game client, or pass --dir <settings_Default> or --prefix <drive_c>")
		}
		return nil, errors.NewSystemError(err, "")
	}
	return a, nil
}
