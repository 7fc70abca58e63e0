package backup

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packprefs/internal/logging"
)

// Manager creates, lists, restores and prunes settings directory snapshots.
// Snapshots are siblings of the settings directory they copy.
type Manager struct {
	clock  Clock
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used to name snapshots.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger for snapshot operations.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		clock:  RealClock{},
		logger: logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create copies settingsDir into a new sibling snapshot directory and returns
// its path.
//
// The copy is not transactional: a failure partway leaves a partial snapshot
// on disk and returns the error.
func (m *Manager) Create(settingsDir string) (string, error) {
	settingsDir = filepath.Clean(settingsDir)
	parent, err := parentOf(settingsDir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(settingsDir)
	if err != nil {
		return "", errors.Wrapf(err, "stat %s", settingsDir)
	}
	if !info.IsDir() {
		return "", errors.Newf("%s is not a directory", settingsDir)
	}

	dst, err := m.reserve(parent, Name(settingsDir, m.clock.Now()))
	if err != nil {
		return "", err
	}

	n, err := copyTree(settingsDir, dst)
	if err != nil {
		return dst, errors.Wrapf(err, "copying %s to %s", settingsDir, dst)
	}

	m.logger.Info("created backup", "path", dst, "files", n)
	return dst, nil
}

// reserve creates the snapshot directory, adding a "-NN" suffix when a
// snapshot was already taken within the same second.
func (m *Manager) reserve(parent, name string) (string, error) {
	for i := 0; i <= maxSameSecond; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%02d", name, i)
		}
		path := filepath.Join(parent, candidate)

		err := os.Mkdir(path, 0o755)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", errors.Wrap(err, "creating backup directory")
		}
	}
	return "", errors.Wrapf(ErrBackupExists, "%s", name)
}

// List returns the snapshot paths of settingsDir, newest first.
func (m *Manager) List(settingsDir string) ([]string, error) {
	settingsDir = filepath.Clean(settingsDir)
	parent, err := parentOf(settingsDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", parent)
	}

	prefix := Prefix(settingsDir)
	var backups []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(parent, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		backups = append(backups, path)
	}

	// Fixed-width timestamps make reverse lexicographic order newest first.
	slices.Sort(backups)
	slices.Reverse(backups)

	return backups, nil
}

// Latest returns the newest snapshot of settingsDir.
func (m *Manager) Latest(settingsDir string) (string, error) {
	backups, err := m.List(settingsDir)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", ErrNoBackupsFound
	}
	return backups[0], nil
}

// Describe reports the name, timestamp and file count of a snapshot.
func (m *Manager) Describe(path string) (Snapshot, error) {
	s := Snapshot{
		Name: filepath.Base(path),
		Path: path,
	}
	if t, ok := ParseTime(s.Name); ok {
		s.CreatedAt = t
	}

	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			s.Files++
		}
		return nil
	})
	if err != nil {
		return s, errors.Wrapf(err, "reading backup %s", path)
	}
	return s, nil
}

// Resolve maps a snapshot name or path to the snapshot path for settingsDir.
func (m *Manager) Resolve(settingsDir, nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return m.Latest(settingsDir)
	}
	if strings.ContainsRune(nameOrPath, filepath.Separator) {
		return filepath.Clean(nameOrPath), nil
	}

	if !strings.HasPrefix(nameOrPath, Prefix(settingsDir)) {
		return "", errors.Wrapf(ErrNotABackup, "%s is not a backup of %s", nameOrPath, filepath.Base(settingsDir))
	}

	parent, err := parentOf(filepath.Clean(settingsDir))
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, nameOrPath), nil
}

// Restore replaces the contents of settingsDir with the contents of backupPath.
//
// A snapshot of the current contents is taken first so the restore can itself
// be undone; its path is returned even when a later step fails. The directory
// is then emptied and refilled from backupPath. This is not atomic: a failure
// after the delete step leaves settingsDir partially restored, and the safety
// snapshot is the recovery path.
func (m *Manager) Restore(backupPath, settingsDir string) (string, error) {
	backupPath = filepath.Clean(backupPath)
	settingsDir = filepath.Clean(settingsDir)

	if backupPath == settingsDir {
		return "", errors.Wrapf(ErrNotABackup, "%s is the settings directory", backupPath)
	}
	if within(settingsDir, backupPath) {
		return "", errors.Wrapf(ErrNotABackup, "%s contains the settings directory", backupPath)
	}
	if within(backupPath, settingsDir) {
		return "", errors.Wrapf(ErrNotABackup, "%s is inside the settings directory", backupPath)
	}
	info, err := os.Stat(backupPath)
	if err != nil {
		return "", errors.Wrapf(err, "stat backup %s", backupPath)
	}
	if !info.IsDir() {
		return "", errors.Wrapf(ErrNotABackup, "%s", backupPath)
	}

	safety, err := m.Create(settingsDir)
	if err != nil {
		return safety, errors.Wrap(err, "backing up current settings before restore")
	}

	entries, err := os.ReadDir(settingsDir)
	if err != nil {
		return safety, errors.Wrapf(err, "reading %s", settingsDir)
	}
	for _, entry := range entries {
		path := filepath.Join(settingsDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return safety, errors.Wrapf(err, "removing %s", path)
		}
	}

	n, err := copyTree(backupPath, settingsDir)
	if err != nil {
		return safety, errors.Wrapf(err, "restoring %s into %s", backupPath, settingsDir)
	}

	m.logger.Info("restored backup", "from", backupPath, "files", n, "safety", safety)
	return safety, nil
}

// within reports whether path is dir or lies below it. Both are compared
// after resolving symlinks where they exist.
func within(path, dir string) bool {
	rel, err := filepath.Rel(realPath(dir), realPath(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func realPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

// Prune removes all but the newest keep snapshots of settingsDir and returns
// the removed paths. Snapshots are only ever removed on explicit request.
func (m *Manager) Prune(settingsDir string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, errors.New("keep must be non-negative")
	}

	backups, err := m.List(settingsDir)
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}

	var removed []string
	for _, path := range backups[keep:] {
		if err := os.RemoveAll(path); err != nil {
			return removed, errors.Wrapf(err, "removing backup %s", path)
		}
		m.logger.Debug("pruned backup", "path", path)
		removed = append(removed, path)
	}

	return removed, nil
}

// parentOf returns the directory that holds snapshots of settingsDir.
func parentOf(settingsDir string) (string, error) {
	parent := filepath.Dir(settingsDir)
	if parent == settingsDir || filepath.Base(settingsDir) == "." {
		return "", errors.Wrapf(ErrNoParent, "%s", settingsDir)
	}
	return parent, nil
}
