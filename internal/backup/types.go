package backup

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Naming of snapshot directories: {settings_dir_name}_backup_{YYYYMMDD_HHMMSS}.
const (
	// NameSeparator sits between the settings directory name and the timestamp.
	NameSeparator = "_backup_"

	// TimestampLayout is zero-padded so lexicographic order equals chronological order.
	TimestampLayout = "20060102_150405"

	// maxSameSecond bounds the "-NN" suffixes tried when a name is taken.
	maxSameSecond = 99
)

// DefaultKeep is the prune retention used when none is given.
const DefaultKeep = 5

// Sentinel errors for backup operations.
var (
	// ErrNoParent indicates the settings directory has no parent to hold snapshots.
	ErrNoParent = errors.New("settings directory has no parent")

	// ErrNoBackupsFound indicates no snapshots exist for the settings directory.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupExists indicates every candidate snapshot name for this second is taken.
	ErrBackupExists = errors.New("backup already exists")

	// ErrNotABackup indicates the restore source is not a snapshot directory.
	ErrNotABackup = errors.New("not a backup directory")

	// ErrSymlinkLoop indicates a directory symlink that would make a copy
	// recurse into itself.
	ErrSymlinkLoop = errors.New("symlink loop")
)

// Clock abstracts time retrieval so snapshot names are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual local time.
type RealClock struct{}

// Now returns time.Now.
func (RealClock) Now() time.Time { return time.Now() }

// Snapshot describes a snapshot directory on disk.
type Snapshot struct {
	// Name is the directory name, e.g. settings_Default_backup_20260123_100712.
	Name string `json:"name"`
	// Path is the absolute snapshot location.
	Path string `json:"path"`
	// CreatedAt is parsed from the name in local time; zero if unparseable.
	CreatedAt time.Time `json:"created_at"`
	// Files is the number of regular files in the snapshot.
	Files int `json:"files"`
}

// Prefix returns the name prefix shared by every snapshot of settingsDir.
func Prefix(settingsDir string) string {
	return filepath.Base(filepath.Clean(settingsDir)) + NameSeparator
}

// Name returns the snapshot directory name for settingsDir at t.
func Name(settingsDir string, t time.Time) string {
	return Prefix(settingsDir) + t.Format(TimestampLayout)
}

// ParseTime extracts the timestamp from a snapshot name.
// A same-second suffix such as "-01" is ignored.
func ParseTime(name string) (time.Time, bool) {
	idx := strings.LastIndex(name, NameSeparator)
	if idx < 0 {
		return time.Time{}, false
	}
	stamp := name[idx+len(NameSeparator):]
	if len(stamp) < len(TimestampLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(TimestampLayout, stamp[:len(TimestampLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
