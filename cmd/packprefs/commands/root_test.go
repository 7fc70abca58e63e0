package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thoreinstein/packprefs/internal/errors"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// resetFlags restores every flag under c to its default so that state does
// not leak between Execute calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// fixture is a settings directory and a config file in a temp dir.
type fixture struct {
	dir    string
	config string
}

// newFixture creates settings_Default with the named files (contents equal
// to the names) and a config file with name lookup disabled.
func newFixture(t *testing.T, extraConfig string, files ...string) fixture {
	t.Helper()
	root := t.TempDir()

	dir := filepath.Join(root, "settings_Default")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	cfg := filepath.Join(root, "config.toml")
	data := extraConfig + "\n[name_lookup]\nenabled = false\n"
	if err := os.WriteFile(cfg, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return fixture{dir: dir, config: cfg}
}

// args prefixes the global location flags for f.
func (f fixture) args(args ...string) []string {
	return append([]string{"--dir", f.dir, "--config", f.config}, args...)
}

func (f fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// backups returns the snapshot directories next to the settings directory.
func (f fixture) backups(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(f.dir + "_backup_*")
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"sync", "list", "scan", "backup", "config"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestSetupLogging_QuietAndVerbose(t *testing.T) {
	_, err := execute(t, "", "version", "-q", "-v")
	if err == nil {
		t.Fatal("expected error for --quiet with --verbose")
	}
	if code := errors.ExitCode(err); code != errors.ExitUser {
		t.Errorf("ExitCode = %d, want %d", code, errors.ExitUser)
	}
}

func TestSetupLogging_InvalidFormat(t *testing.T) {
	_, err := execute(t, "", "version", "--log-format", "xml")
	if err == nil {
		t.Fatal("expected error for unknown log format")
	}
	if code := errors.ExitCode(err); code != errors.ExitUser {
		t.Errorf("ExitCode = %d, want %d", code, errors.ExitUser)
	}
}

func TestSetupLogging_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "packprefs.log")

	if _, err := execute(t, "", "version", "-v", "--log-file", logPath); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "packprefs version dev") {
		t.Errorf("output = %q, want version line", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("output = %q, want commit line", out)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"default", 0, false},
		{"Default", 0, false},
		{"_", 0, false},
		{"0", 0, false},
		{" 90000001 ", 90000001, false},
		{"18446744073709551615", 18446744073709551615, false},
		{"18446744073709551616", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
