package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

// stepClock returns successive times one second apart, starting at start.
type stepClock struct {
	next time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

func fixedClock(t time.Time) *stepClock { return &stepClock{next: t} }

func tickingClock(t time.Time) *stepClock { return &stepClock{next: t, step: time.Second} }

var t0 = time.Date(2026, 1, 23, 10, 7, 12, 0, time.Local)

// newSettingsDir creates <tmp>/EVE/settings_Default with the given files.
func newSettingsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "EVE", "settings_Default")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, dir, files)
	return dir
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// readTree returns relative path → content for every regular file under dir.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	got := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		got[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func assertTree(t *testing.T, dir string, want map[string]string) {
	t.Helper()
	got := readTree(t, dir)
	if len(got) != len(want) {
		t.Errorf("tree %s has %d files, want %d: %v", dir, len(got), len(want), got)
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("%s = %q, want %q", name, got[name], content)
		}
	}
}

func TestName(t *testing.T) {
	got := Name("/x/EVE/settings_Default", t0)
	if got != "settings_Default_backup_20260123_100712" {
		t.Errorf("Name() = %q", got)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"settings_Default_backup_20260123_100712", t0, true},
		{"settings_Default_backup_20260123_100712-03", t0, true},
		{"settings_Default_backup_2026", time.Time{}, false},
		{"settings_Default", time.Time{}, false},
		{"settings_Default_backup_notatimestamp", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.name)
			if ok != tt.ok {
				t.Fatalf("ParseTime() ok = %v, want %v", ok, tt.ok)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreate_CopiesTree(t *testing.T) {
	files := map[string]string{
		"core_char_200.dat": "A",
		"core_user_.dat":    "U",
		"notes.txt":         "keep me",
		"sub/nested.dat":    "N",
	}
	dir := newSettingsDir(t, files)
	m := NewManager(WithClock(fixedClock(t0)))

	path, err := m.Create(dir)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := filepath.Join(filepath.Dir(dir), "settings_Default_backup_20260123_100712")
	if path != want {
		t.Errorf("Create() = %q, want %q", path, want)
	}
	assertTree(t, path, files)
	assertTree(t, dir, files)
}

func TestCreate_EmptyDirectory(t *testing.T) {
	dir := newSettingsDir(t, nil)
	m := NewManager(WithClock(fixedClock(t0)))

	path, err := m.Create(dir)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("snapshot directory missing: %v", err)
	}
	assertTree(t, path, map[string]string{})
}

func TestCreate_SameSecondGetsSuffix(t *testing.T) {
	dir := newSettingsDir(t, map[string]string{"core_char_1.dat": "A"})
	m := NewManager(WithClock(fixedClock(t0)))

	first, err := m.Create(dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Create(dir)
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}

	if first == second {
		t.Fatalf("snapshots collided: %s", first)
	}
	if !strings.HasSuffix(second, "_20260123_100712-01") {
		t.Errorf("second snapshot = %q, want -01 suffix", second)
	}

	list, err := m.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0] != second {
		t.Errorf("List() = %v, want suffixed snapshot first", list)
	}
}

func TestCreate_AllSuffixesTaken(t *testing.T) {
	dir := newSettingsDir(t, nil)
	parent := filepath.Dir(dir)
	base := Name(dir, t0)

	if err := os.Mkdir(filepath.Join(parent, base), 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= maxSameSecond; i++ {
		name := base + "-" + twoDigits(i)
		if err := os.Mkdir(filepath.Join(parent, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	m := NewManager(WithClock(fixedClock(t0)))
	_, err := m.Create(dir)
	if !errors.Is(err, ErrBackupExists) {
		t.Errorf("Create() error = %v, want ErrBackupExists", err)
	}
}

func twoDigits(i int) string {
	return string([]byte{byte('0' + i/10), byte('0' + i%10)})
}

func TestCreate_NoParent(t *testing.T) {
	m := NewManager()

	_, err := m.Create(string(filepath.Separator))
	if !errors.Is(err, ErrNoParent) {
		t.Errorf("Create(/) error = %v, want ErrNoParent", err)
	}
}

func TestCreate_MissingDirectory(t *testing.T) {
	m := NewManager()

	if _, err := m.Create(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing settings directory")
	}
}

func TestCreate_FollowsSymlinkedFile(t *testing.T) {
	dir := newSettingsDir(t, nil)
	outside := filepath.Join(t.TempDir(), "real.dat")
	if err := os.WriteFile(outside, []byte("linked"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(dir, "core_char_5.dat")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	m := NewManager(WithClock(fixedClock(t0)))
	path, err := m.Create(dir)
	if err != nil {
		t.Fatal(err)
	}
	assertTree(t, path, map[string]string{"core_char_5.dat": "linked"})
}

func TestCreate_FollowsSymlinkedDirectory(t *testing.T) {
	dir := newSettingsDir(t, nil)
	outside := t.TempDir()
	writeFiles(t, outside, map[string]string{"a.dat": "1", "sub/b.dat": "2"})
	if err := os.Symlink(outside, filepath.Join(dir, "shared")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	m := NewManager(WithClock(fixedClock(t0)))
	path, err := m.Create(dir)
	if err != nil {
		t.Fatal(err)
	}
	assertTree(t, path, map[string]string{"shared/a.dat": "1", "shared/sub/b.dat": "2"})
}

func TestCreate_SymlinkLoop(t *testing.T) {
	tests := []struct {
		name   string
		link   string
		target string
	}{
		{"parent", "loop", ".."},
		{"self", "self", "."},
		{"grandparent from subdir", "sub/up", "../.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newSettingsDir(t, map[string]string{"core_char_1.dat": "A", "sub/x.dat": "x"})
			if err := os.Symlink(tt.target, filepath.Join(dir, tt.link)); err != nil {
				t.Skipf("symlinks unsupported: %v", err)
			}

			m := NewManager(WithClock(fixedClock(t0)))
			path, err := m.Create(dir)
			if !errors.Is(err, ErrSymlinkLoop) {
				t.Fatalf("Create() error = %v, want ErrSymlinkLoop", err)
			}

			for rel := range readTree(t, path) {
				if depth := strings.Count(rel, "/"); depth > 3 {
					t.Errorf("snapshot recursed into %s", rel)
				}
			}
		})
	}
}

func TestList_NewestFirst(t *testing.T) {
	dir := newSettingsDir(t, map[string]string{"core_char_1.dat": "A"})
	m := NewManager(WithClock(tickingClock(t0)))

	var created []string
	for range 3 {
		p, err := m.Create(dir)
		if err != nil {
			t.Fatal(err)
		}
		created = append(created, p)
	}

	// Unrelated siblings are ignored.
	parent := filepath.Dir(dir)
	if err := os.Mkdir(filepath.Join(parent, "settings_Other_backup_20990101_000000"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "settings_Default_backup_20990101_000000"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := m.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{created[2], created[1], created[0]}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestList_NoBackups(t *testing.T) {
	dir := newSettingsDir(t, nil)
	m := NewManager()

	got, err := m.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}

	if _, err := m.Latest(dir); !errors.Is(err, ErrNoBackupsFound) {
		t.Errorf("Latest() error = %v, want ErrNoBackupsFound", err)
	}
}

func TestList_MissingParent(t *testing.T) {
	m := NewManager()

	if _, err := m.List(filepath.Join(t.TempDir(), "gone", "settings_Default")); err == nil {
		t.Error("expected error when parent does not exist")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	original := map[string]string{
		"core_char_1.dat": "A",
		"core_user_9.dat": "U",
		"sub/x.dat":       "X",
	}
	dir := newSettingsDir(t, original)
	m := NewManager(WithClock(tickingClock(t0)))

	snap, err := m.Create(dir)
	if err != nil {
		t.Fatal(err)
	}

	// Mutate: change one file, add one, remove one.
	writeFiles(t, dir, map[string]string{"core_char_1.dat": "changed", "core_char_2.dat": "new"})
	if err := os.Remove(filepath.Join(dir, "core_user_9.dat")); err != nil {
		t.Fatal(err)
	}
	mutated := readTree(t, dir)

	safety, err := m.Restore(snap, dir)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	assertTree(t, dir, original)
	assertTree(t, safety, mutated)

	list, err := m.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0] != safety {
		t.Errorf("List() = %v, want safety snapshot newest", list)
	}
}

func TestRestore_SameSecondAsSnapshot(t *testing.T) {
	dir := newSettingsDir(t, map[string]string{"core_char_1.dat": "A"})
	m := NewManager(WithClock(fixedClock(t0)))

	snap, err := m.Create(dir)
	if err != nil {
		t.Fatal(err)
	}
	safety, err := m.Restore(snap, dir)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if safety == snap {
		t.Error("safety snapshot overwrote the restored snapshot")
	}
}

func TestRestore_RejectsBadSource(t *testing.T) {
	dir := newSettingsDir(t, map[string]string{"core_char_1.dat": "A"})
	m := NewManager(WithClock(fixedClock(t0)))

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(dir, "nested")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		source     string
		notABackup bool
	}{
		{"settings dir itself", dir, true},
		{"unclean settings dir", dir + string(filepath.Separator) + ".", true},
		{"parent", filepath.Dir(dir), true},
		{"ancestor", filepath.Dir(filepath.Dir(dir)), true},
		{"inside settings dir", nested, true},
		{"regular file", file, true},
		{"missing", filepath.Join(t.TempDir(), "missing"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safety, err := m.Restore(tt.source, dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.notABackup && !errors.Is(err, ErrNotABackup) {
				t.Errorf("error = %v, want ErrNotABackup", err)
			}
			if safety != "" {
				t.Errorf("safety snapshot created for rejected source: %s", safety)
			}
		})
	}
	if err := os.RemoveAll(nested); err != nil {
		t.Fatal(err)
	}

	backups, err := m.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want no snapshots", backups)
	}

	assertTree(t, dir, map[string]string{"core_char_1.dat": "A"})
}

func TestPrune(t *testing.T) {
	dir := newSettingsDir(t, map[string]string{"core_char_1.dat": "A"})
	m := NewManager(WithClock(tickingClock(t0)))

	for range 4 {
		if _, err := m.Create(dir); err != nil {
			t.Fatal(err)
		}
	}
	before, err := m.List(dir)
	if err != nil {
		t.Fatal(err)
	}

	removed, err := m.Prune(dir, 1)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if len(removed) != 3 {
		t.Fatalf("Prune() removed %d, want 3", len(removed))
	}

	after, err := m.List(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 1 || after[0] != before[0] {
		t.Errorf("after prune = %v, want only %s", after, before[0])
	}

	removed, err = m.Prune(dir, DefaultKeep)
	if err != nil || len(removed) != 0 {
		t.Errorf("Prune() under limit = %v, %v", removed, err)
	}

	if _, err := m.Prune(dir, -1); err == nil {
		t.Error("expected error for negative keep")
	}
}

func TestDescribe(t *testing.T) {
	dir := newSettingsDir(t, map[string]string{"a.dat": "1", "sub/b.dat": "2"})
	m := NewManager(WithClock(fixedClock(t0)))

	path, err := m.Create(dir)
	if err != nil {
		t.Fatal(err)
	}
	s, err := m.Describe(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Files != 2 {
		t.Errorf("Files = %d, want 2", s.Files)
	}
	if !s.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, t0)
	}
}

func TestResolve(t *testing.T) {
	dir := newSettingsDir(t, map[string]string{"a.dat": "1"})
	m := NewManager(WithClock(fixedClock(t0)))

	path, err := m.Create(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, in := range []string{"", filepath.Base(path), path} {
		got, err := m.Resolve(dir, in)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", in, err)
		}
		if got != path {
			t.Errorf("Resolve(%q) = %q, want %q", in, got, path)
		}
	}
	for _, in := range []string{"..", ".", "other_dir", "settings_Other_backup_20260123_100712"} {
		if _, err := m.Resolve(dir, in); !errors.Is(err, ErrNotABackup) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotABackup", in, err)
		}
	}
}
