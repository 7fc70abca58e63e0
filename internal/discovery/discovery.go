// Package discovery finds game prefixes and settings directories on the local
// machine.
//
// A prefix is the Wine/Proton "drive_c" directory a running game client was
// launched from. Settings directories live at a fixed layout beneath it.
package discovery

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/procfs"

	"github.com/thoreinstein/packprefs/internal/logging"
)

// DriveC is the directory that terminates a prefix path.
const DriveC = "drive_c"

// SettingsDirName is the name of the per-install settings directory.
const SettingsDirName = "settings_Default"

// executables are matched case-insensitively against process command lines.
var executables = []string{"eve-online.exe", "exefile.exe"}

// installRoot is the path below a prefix that holds one directory per install.
var installRoot = []string{"users", "steamuser", "AppData", "Local", "CCP", "EVE"}

// Scanner locates prefixes from running processes.
type Scanner struct {
	procRoot string
	logger   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithProcRoot sets the proc filesystem mount point. Defaults to /proc.
func WithProcRoot(root string) Option {
	return func(s *Scanner) {
		s.procRoot = root
	}
}

// WithLogger sets the scanner logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScanner creates a Scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		procRoot: procfs.DefaultMountPoint,
		logger:   logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prefixes returns the distinct prefixes of running game clients, sorted.
// Processes that exit mid-scan or whose command line cannot be read are
// skipped.
func (s *Scanner) Prefixes() ([]string, error) {
	fs, err := procfs.NewFS(s.procRoot)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.procRoot)
	}

	procs, err := fs.AllProcs()
	if err != nil {
		return nil, errors.Wrap(err, "listing processes")
	}

	var prefixes []string
	for _, p := range procs {
		args, err := p.CmdLine()
		if err != nil || len(args) == 0 {
			continue
		}
		if !isGameClient(args) {
			continue
		}
		prefix, ok := ExtractPrefix(args)
		if !ok {
			continue
		}
		s.logger.Debug("found game process", "pid", p.PID, "prefix", prefix)
		prefixes = append(prefixes, prefix)
	}

	slices.Sort(prefixes)
	return slices.Compact(prefixes), nil
}

func isGameClient(args []string) bool {
	line := strings.ToLower(strings.Join(args, " "))
	for _, exe := range executables {
		if strings.Contains(line, exe) {
			return true
		}
	}
	return false
}

// ExtractPrefix returns the leading part of the first argument that contains
// "drive_c" (any case), up to and including that segment.
//
//	/home/u/Games/Eve/drive_c/eve/exefile.exe -> /home/u/Games/Eve/drive_c
func ExtractPrefix(args []string) (string, bool) {
	for _, arg := range args {
		if i := indexFold(arg, DriveC); i >= 0 {
			return arg[:i+len(DriveC)], true
		}
	}
	return "", false
}

// indexFold is strings.Index with ASCII case folding. Offsets refer to s
// itself, which lowering the string first would not guarantee.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

// InstallRoot returns the directory holding per-install folders for prefix.
func InstallRoot(prefix string) string {
	return filepath.Join(append([]string{prefix}, installRoot...)...)
}

// SettingsDirs returns every settings_Default directory under prefix, sorted.
// A prefix without the install layout yields no directories and no error.
func SettingsDirs(prefix string) ([]string, error) {
	root := InstallRoot(prefix)

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", root)
	}

	var dirs []string
	for _, entry := range entries {
		candidate := filepath.Join(root, entry.Name(), SettingsDirName)
		info, err := os.Stat(candidate)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, candidate)
	}

	slices.Sort(dirs)
	return dirs, nil
}

// IsPrefix reports whether path looks like a prefix: an existing directory
// whose base name is drive_c.
func IsPrefix(path string) bool {
	if !strings.EqualFold(filepath.Base(filepath.Clean(path)), DriveC) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
