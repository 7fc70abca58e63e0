package app

import (
	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packprefs/internal/backup"
)

// CreateBackup snapshots the selected settings directory.
func (a *App) CreateBackup() (string, error) {
	if a.settingsDir == "" {
		return "", ErrNoSettingsDir
	}
	return a.backups.Create(a.settingsDir)
}

// Backups lists snapshots of the selected settings directory, newest first.
func (a *App) Backups() ([]string, error) {
	if a.settingsDir == "" {
		return nil, ErrNoSettingsDir
	}
	return a.backups.List(a.settingsDir)
}

// RestoreBackup restores path into the selected settings directory and
// reloads the files. The safety snapshot path is returned even on failure.
func (a *App) RestoreBackup(path string) (string, error) {
	if a.settingsDir == "" {
		return "", ErrNoSettingsDir
	}

	safety, err := a.backups.Restore(path, a.settingsDir)
	if err != nil {
		if safety != "" {
			a.logger.Error("restore failed; current settings were saved first", "safety_backup", safety)
		}
		return safety, err
	}
	a.logger.Info("backup restored", "from", path, "safety_backup", safety)

	if err := a.Load(); err != nil {
		return safety, errors.Wrap(err, "reloading settings after restore")
	}
	return safety, nil
}

// PruneBackups keeps the newest keep snapshots and removes the rest.
func (a *App) PruneBackups(keep int) ([]string, error) {
	if a.settingsDir == "" {
		return nil, ErrNoSettingsDir
	}
	return a.backups.Prune(a.settingsDir, keep)
}

// ResolveBackup maps a snapshot name or path to a path. An empty name means
// the newest snapshot.
func (a *App) ResolveBackup(nameOrPath string) (string, error) {
	if a.settingsDir == "" {
		return "", ErrNoSettingsDir
	}
	return a.backups.Resolve(a.settingsDir, nameOrPath)
}

// DescribeBackups lists snapshots with their timestamps and file counts,
// newest first.
func (a *App) DescribeBackups() ([]backup.Snapshot, error) {
	paths, err := a.Backups()
	if err != nil {
		return nil, err
	}

	out := make([]backup.Snapshot, 0, len(paths))
	for _, p := range paths {
		s, err := a.backups.Describe(p)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}
