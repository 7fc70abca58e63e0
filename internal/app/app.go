// Package app wires discovery, classification, name lookup, backups and sync
// into the operations the CLI exposes.
//
// An App holds the session state of one run: the chosen prefix and settings
// directory, the classified files and the resolved character names. It reads
// and updates the configuration passed to New but only persists it when
// SaveConfig is called.
package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packprefs/internal/backup"
	"github.com/thoreinstein/packprefs/internal/config"
	"github.com/thoreinstein/packprefs/internal/discovery"
	"github.com/thoreinstein/packprefs/internal/logging"
	"github.com/thoreinstein/packprefs/internal/settings"
	"github.com/thoreinstein/packprefs/internal/syncer"
)

// Sentinel errors for orchestration.
var (
	// ErrNoSettingsDir indicates no settings directory could be located.
	ErrNoSettingsDir = errors.New("no settings directory found")

	// ErrNoSource indicates a sync was requested without a source.
	ErrNoSource = errors.New("no source selected")

	// ErrNoTargets indicates a sync has nothing to write to.
	ErrNoTargets = errors.New("no targets selected")

	// ErrSourceNotFound indicates the requested source ID has no file.
	ErrSourceNotFound = errors.New("source file not found")
)

// Discoverer finds prefixes of running game clients.
type Discoverer interface {
	Prefixes() ([]string, error)
}

// NameResolver looks up character names that are not already cached.
type NameResolver interface {
	ResolveUncached(ctx context.Context, ids []uint64, cache map[uint64]string) (map[uint64]string, error)
}

// Snapshotter manages settings directory snapshots.
type Snapshotter interface {
	Create(settingsDir string) (string, error)
	List(settingsDir string) ([]string, error)
	Restore(backupPath, settingsDir string) (string, error)
	Prune(settingsDir string, keep int) ([]string, error)
	Resolve(settingsDir, nameOrPath string) (string, error)
	Describe(path string) (backup.Snapshot, error)
}

// App is one packprefs session.
type App struct {
	cfg        *config.Config
	configPath string

	discoverer Discoverer
	resolver   NameResolver
	backups    Snapshotter
	engine     *syncer.Engine
	logger     *slog.Logger

	prefix      string
	settingsDir string
	files       []settings.File
	names       map[uint64]string
}

// Option configures an App.
type Option func(*App)

// WithDiscoverer sets the prefix discoverer.
func WithDiscoverer(d Discoverer) Option {
	return func(a *App) { a.discoverer = d }
}

// WithResolver sets the name resolver. A nil resolver disables lookups.
func WithResolver(r NameResolver) Option {
	return func(a *App) { a.resolver = r }
}

// WithSnapshotter sets the backup manager.
func WithSnapshotter(s Snapshotter) Option {
	return func(a *App) {
		if s != nil {
			a.backups = s
		}
	}
}

// WithConfigPath sets where SaveConfig writes. Empty means the default path.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an App around cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		cfg:    cfg,
		logger: logging.NewDiscard(),
		names:  make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.discoverer == nil {
		a.discoverer = discovery.NewScanner(discovery.WithLogger(a.logger))
	}
	if a.backups == nil {
		a.backups = backup.NewManager(backup.WithLogger(a.logger))
	}
	a.engine = syncer.New(syncer.WithLogger(a.logger))
	return a
}

// Config returns the configuration the session reads and updates.
func (a *App) Config() *config.Config { return a.cfg }

// Prefix returns the selected prefix, if any.
func (a *App) Prefix() string { return a.prefix }

// SettingsDir returns the selected settings directory, if any.
func (a *App) SettingsDir() string { return a.settingsDir }

// Files returns the classified files of the selected directory.
func (a *App) Files() []settings.File { return a.files }

// SaveConfig persists the configuration.
func (a *App) SaveConfig() error {
	return config.Save(a.cfg, a.configPath)
}

// Install is a prefix with the settings directories found under it.
type Install struct {
	Prefix       string   `json:"prefix" yaml:"prefix"`
	SettingsDirs []string `json:"settings_dirs" yaml:"settings_dirs"`
	// Detected is false when the prefix came from the configuration.
	Detected bool `json:"detected" yaml:"detected"`
}

// Scan returns the prefixes of running clients and their settings
// directories. When nothing is running, the last used prefix is returned if it
// still exists.
func (a *App) Scan() ([]Install, error) {
	a.logger.Info("scanning for game processes")

	prefixes, err := a.discoverer.Prefixes()
	if err != nil {
		return nil, errors.Wrap(err, "scanning processes")
	}

	detected := true
	if len(prefixes) == 0 {
		a.logger.Info("no running game clients found")
		if last := a.cfg.LastPrefixPath; last != "" && discovery.IsPrefix(last) {
			a.logger.Info("using last known prefix", "prefix", last)
			prefixes = []string{last}
			detected = false
		}
	} else {
		a.logger.Info("found game clients", "count", len(prefixes))
	}

	installs := make([]Install, 0, len(prefixes))
	for _, p := range prefixes {
		dirs, err := discovery.SettingsDirs(p)
		if err != nil {
			return installs, errors.Wrapf(err, "finding settings in %s", p)
		}
		installs = append(installs, Install{Prefix: p, SettingsDirs: dirs, Detected: detected})
	}
	return installs, nil
}

// Locate chooses the settings directory for this session.
//
// Precedence: dir, then the first settings directory under prefix, then the
// first one found by Scan, then the last used directory from the
// configuration. The choice is recorded in the configuration.
func (a *App) Locate(dir, prefix string) (string, error) {
	switch {
	case dir != "":
		p, _ := discovery.ExtractPrefix([]string{dir})
		return a.useDir(p, dir)

	case prefix != "":
		dirs, err := discovery.SettingsDirs(prefix)
		if err != nil {
			return "", err
		}
		if len(dirs) == 0 {
			return "", errors.Wrapf(ErrNoSettingsDir, "under %s", prefix)
		}
		return a.useDir(prefix, dirs[0])
	}

	installs, err := a.Scan()
	if err != nil {
		a.logger.Warn("scan failed", "error", err)
	}
	for _, in := range installs {
		if len(in.SettingsDirs) > 0 {
			return a.useDir(in.Prefix, in.SettingsDirs[0])
		}
	}

	if last := a.cfg.LastSettingsDir; last != "" && isDir(last) {
		a.logger.Info("using last settings directory", "dir", last)
		return a.useDir(a.cfg.LastPrefixPath, last)
	}

	return "", ErrNoSettingsDir
}

func (a *App) useDir(prefix, dir string) (string, error) {
	if !isDir(dir) {
		return "", errors.Wrapf(ErrNoSettingsDir, "%s is not a directory", dir)
	}
	a.prefix = prefix
	a.settingsDir = dir
	if prefix != "" {
		a.cfg.LastPrefixPath = prefix
	}
	a.cfg.LastSettingsDir = dir
	a.logger.Debug("selected settings directory", "dir", dir, "prefix", prefix)
	return dir, nil
}

// Load classifies the selected settings directory.
func (a *App) Load() error {
	if a.settingsDir == "" {
		return ErrNoSettingsDir
	}

	files, err := settings.Classify(a.settingsDir)
	if err != nil {
		return err
	}
	a.files = files

	chars, users := settings.Count(files)
	a.logger.Info("loaded settings files", "characters", chars, "users", users)
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
