package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packprefs/internal/backup"
	"github.com/thoreinstein/packprefs/internal/config"
	"github.com/thoreinstein/packprefs/internal/paths"
	"github.com/thoreinstein/packprefs/internal/settings"
)

// manySnapshots is the snapshot count above which pruning is suggested.
const manySnapshots = 20

// ConfigCheck loads and validates the configuration file.
type ConfigCheck struct {
	path string
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a check for the config file at path. An empty path
// means the default location.
func NewConfigCheck(path string) *ConfigCheck {
	return &ConfigCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string { return "config-file" }

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string { return "config" }

// Run executes the check.
func (c *ConfigCheck) Run() *CheckResult {
	path := c.path
	if path == "" {
		path = paths.ConfigFile()
	}
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": path},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) && c.path == "" {
		result.Status = SeverityInfo
		result.Message = "no config file, using defaults"
		return result
	}

	_, err := config.Load(c.path)
	switch {
	case err == nil:
		result.Status = SeverityPass
		result.Message = "config file is valid"
	case errors.Is(err, config.ErrInvalid):
		result.Status = SeverityError
		result.Message = err.Error()
		result.FixHint = "packprefs config set <key> <value>, or edit with: packprefs config edit"
	default:
		result.Status = SeverityError
		result.Message = err.Error()
		result.FixHint = "check the --config path"
	}
	return result
}

// Discoverer finds prefixes of running game clients.
type Discoverer interface {
	Prefixes() ([]string, error)
}

// ProcessCheck verifies that running game clients can be discovered.
type ProcessCheck struct {
	discoverer Discoverer
}

var _ Check = (*ProcessCheck)(nil)

// NewProcessCheck creates a process discovery check.
func NewProcessCheck(d Discoverer) *ProcessCheck {
	return &ProcessCheck{discoverer: d}
}

// Name returns the unique identifier for this check.
func (c *ProcessCheck) Name() string { return "process-scan" }

// Category returns the grouping for this check.
func (c *ProcessCheck) Category() string { return "discovery" }

// Run executes the check.
func (c *ProcessCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	prefixes, err := c.discoverer.Prefixes()
	switch {
	case err != nil:
		result.Status = SeverityWarning
		result.Message = "cannot read the process table: " + err.Error()
		result.FixHint = "pass --dir <settings_Default> or --prefix <drive_c>"
	case len(prefixes) == 0:
		result.Status = SeverityInfo
		result.Message = "no running game clients"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("found %d running game prefixes", len(prefixes))
		result.Details = map[string]any{"prefixes": prefixes}
	}
	return result
}

// SettingsDirCheck verifies the located settings directory and its files.
type SettingsDirCheck struct {
	dir string
}

var _ Check = (*SettingsDirCheck)(nil)

// NewSettingsDirCheck creates a check for dir. An empty dir means none was
// located.
func NewSettingsDirCheck(dir string) *SettingsDirCheck {
	return &SettingsDirCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *SettingsDirCheck) Name() string { return "settings-dir" }

// Category returns the grouping for this check.
func (c *SettingsDirCheck) Category() string { return "settings" }

// Run executes the check.
func (c *SettingsDirCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.dir == "" {
		result.Status = SeverityWarning
		result.Message = "no settings directory located"
		result.FixHint = "start the game client, or pass --dir <settings_Default>"
		return result
	}
	result.Details = map[string]any{"dir": c.dir}

	if info, err := os.Stat(c.dir); err != nil || !info.IsDir() {
		result.Status = SeverityError
		result.Message = "settings directory does not exist"
		result.FixHint = "packprefs scan"
		return result
	}

	files, err := settings.Classify(c.dir)
	if err != nil {
		result.Status = SeverityError
		result.Message = err.Error()
		return result
	}

	chars, users := settings.Count(files)
	result.Details["characters"] = chars
	result.Details["accounts"] = users
	if chars+users == 0 {
		result.Status = SeverityWarning
		result.Message = "settings directory has no core_char_ or core_user_ files"
		result.FixHint = "log in with each character once so the client writes its settings"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d character and %d account files", chars, users)
	return result
}

// BackupCheck verifies that snapshots can be written next to the settings
// directory.
type BackupCheck struct {
	dir     string
	backups *backup.Manager
}

var _ Check = (*BackupCheck)(nil)

// NewBackupCheck creates a snapshot location check for the settings
// directory dir.
func NewBackupCheck(dir string, m *backup.Manager) *BackupCheck {
	if m == nil {
		m = backup.NewManager()
	}
	return &BackupCheck{dir: dir, backups: m}
}

// Name returns the unique identifier for this check.
func (c *BackupCheck) Name() string { return "backup-location" }

// Category returns the grouping for this check.
func (c *BackupCheck) Category() string { return "backup" }

// Run executes the check.
func (c *BackupCheck) Run() *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.dir == "" {
		result.Status = SeverityInfo
		result.Message = "skipped, no settings directory"
		return result
	}

	parent := filepath.Dir(filepath.Clean(c.dir))
	result.Details = map[string]any{"parent": parent}

	probe, err := os.CreateTemp(parent, ".packprefs-doctor-*")
	if err != nil {
		result.Status = SeverityError
		result.Message = "cannot create snapshots: " + err.Error()
		result.FixHint = "chmod u+w " + parent
		return result
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	snapshots, err := c.backups.List(c.dir)
	if err != nil {
		result.Status = SeverityWarning
		result.Message = "cannot list snapshots: " + err.Error()
		return result
	}
	result.Details["snapshots"] = len(snapshots)

	if len(snapshots) > manySnapshots {
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("%d snapshots on disk", len(snapshots))
		result.FixHint = "packprefs backup prune"
		return result
	}

	result.Status = SeverityPass
	result.Message = fmt.Sprintf("snapshot location is writable (%d snapshots)", len(snapshots))
	return result
}

// NameLookupCheck reports how character names are resolved.
type NameLookupCheck struct {
	cfg *config.Config
}

var _ Check = (*NameLookupCheck)(nil)

// NewNameLookupCheck creates a check reporting the name lookup settings.
func NewNameLookupCheck(cfg *config.Config) *NameLookupCheck {
	return &NameLookupCheck{cfg: cfg}
}

// Name returns the unique identifier for this check.
func (c *NameLookupCheck) Name() string { return "name-lookup" }

// Category returns the grouping for this check.
func (c *NameLookupCheck) Category() string { return "config" }

// Run executes the check.
func (c *NameLookupCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityInfo,
		Details:  map[string]any{"cached_names": len(c.cfg.CharacterNames)},
	}

	if !c.cfg.NameLookup.Enabled {
		result.Message = "name lookup disabled, characters are shown by ID"
		return result
	}

	result.Status = SeverityPass
	result.Message = "name lookup enabled"
	result.Details["endpoint"] = c.cfg.NameLookup.Endpoint
	result.Details["timeout_seconds"] = c.cfg.NameLookup.TimeoutSeconds
	return result
}
