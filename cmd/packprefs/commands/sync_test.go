package commands

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/packprefs/internal/app"
	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/cli/prompt"
	"github.com/thoreinstein/packprefs/internal/errors"
)

var charFiles = []string{
	"core_char_90000001.dat",
	"core_char_90000002.dat",
	"core_char_90000003.dat",
	"core_char__.dat",
	"core_user_1234.dat",
	"core_user_5678.dat",
}

func TestSync_DryRun(t *testing.T) {
	f := newFixture(t, "", charFiles...)

	out, err := execute(t, "", f.args("sync", "--source", "90000001", "--target", "90000002", "--dry-run")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Would copy: core_char_90000002.dat")
	assert.Contains(t, out, "Would sync 1 files")
	assert.Equal(t, "core_char_90000002.dat", f.read(t, "core_char_90000002.dat"))
	assert.Empty(t, f.backups(t))
}

func TestSync_WritesAfterBackup(t *testing.T) {
	f := newFixture(t, "", charFiles...)

	out, err := execute(t, "", f.args("sync", "-s", "90000001", "-t", "90000002,90000003", "--yes")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Synced 2 files")
	assert.Contains(t, out, "Backup:")
	assert.Equal(t, "core_char_90000001.dat", f.read(t, "core_char_90000002.dat"))
	assert.Equal(t, "core_char_90000001.dat", f.read(t, "core_char_90000003.dat"))
	assert.Equal(t, "core_char__.dat", f.read(t, "core_char__.dat"))
	assert.Equal(t, "core_user_1234.dat", f.read(t, "core_user_1234.dat"))
	assert.Len(t, f.backups(t), 1)
}

func TestSync_All(t *testing.T) {
	f := newFixture(t, "", charFiles...)

	out, err := execute(t, "", f.args("sync", "--source", "default", "--all", "--yes")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Synced 3 files")
	for _, name := range []string{"core_char_90000001.dat", "core_char_90000002.dat", "core_char_90000003.dat"} {
		assert.Equal(t, "core_char__.dat", f.read(t, name), name)
	}
	assert.Equal(t, "core_user_1234.dat", f.read(t, "core_user_1234.dat"))
}

func TestSync_UserFiles(t *testing.T) {
	f := newFixture(t, "", charFiles...)

	_, err := execute(t, "", f.args("sync", "--user", "--source", "1234", "--target", "5678", "--yes")...)
	require.NoError(t, err)

	assert.Equal(t, "core_user_1234.dat", f.read(t, "core_user_5678.dat"))
	assert.Equal(t, "core_char_90000002.dat", f.read(t, "core_char_90000002.dat"))
}

func TestSync_UnknownTargetIsSkipped(t *testing.T) {
	f := newFixture(t, "", charFiles...)

	out, err := execute(t, "", f.args("sync", "-s", "90000001", "-t", "90000002", "-t", "42", "--dry-run")...)
	require.NoError(t, err)

	assert.Contains(t, out, "no character file with ID 42")
	assert.Contains(t, out, "Would sync 1 files")
}

func TestSync_RequiresConfirmation(t *testing.T) {
	f := newFixture(t, "", charFiles...)

	_, err := execute(t, "", f.args("sync", "-s", "90000001", "-t", "90000002")...)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	assert.Equal(t, "core_char_90000002.dat", f.read(t, "core_char_90000002.dat"))
	assert.Empty(t, f.backups(t))
}

func TestSync_DryRunDefaultFromConfig(t *testing.T) {
	f := newFixture(t, "dry_run_default = true\n", charFiles...)

	out, err := execute(t, "", f.args("sync", "-s", "90000001", "-t", "90000002", "--yes")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Would sync 1 files")
	assert.Equal(t, "core_char_90000002.dat", f.read(t, "core_char_90000002.dat"))

	out, err = execute(t, "", f.args("sync", "-s", "90000001", "-t", "90000002", "--yes", "--dry-run=false")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Synced 1 files")
	assert.Equal(t, "core_char_90000001.dat", f.read(t, "core_char_90000002.dat"))
}

func TestSync_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"no source", []string{"sync", "--target", "90000002", "--yes"}, app.ErrNoSource},
		{"unknown source", []string{"sync", "--source", "7", "--all", "--yes"}, app.ErrSourceNotFound},
		{"no targets", []string{"sync", "--source", "90000001", "--yes"}, app.ErrNoTargets},
		{"only self as target", []string{"sync", "--source", "90000001", "--target", "90000001", "--yes"}, app.ErrNoTargets},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "", charFiles...)

			_, err := execute(t, "", f.args(tt.args...)...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "error %v is not %v", err, tt.target)
			assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
			assert.Empty(t, f.backups(t))
		})
	}
}

func TestSync_InvalidID(t *testing.T) {
	f := newFixture(t, "", charFiles...)

	_, err := execute(t, "", f.args("sync", "--source", "pilot", "--all", "--yes")...)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

// labelChooser picks items whose label contains the given substrings.
type labelChooser struct {
	source  string
	targets []string
}

func (c labelChooser) ChooseOne(_ string, items []prompt.Item) (int, error) {
	for i, it := range items {
		if strings.Contains(it.Label, c.source) {
			return i, nil
		}
	}
	return -1, prompt.ErrSelectionCancelled
}

func (c labelChooser) ChooseMany(_ string, items []prompt.Item) ([]int, error) {
	var out []int
	for i, it := range items {
		for _, want := range c.targets {
			if strings.Contains(it.Label, want) {
				out = append(out, i)
			}
		}
	}
	return out, nil
}

func stubFuzzy(t *testing.T, c prompt.Chooser) {
	t.Helper()
	orig := newFuzzyChooser
	newFuzzyChooser = func() prompt.Chooser { return c }
	t.Cleanup(func() { newFuzzyChooser = orig })
}

func stubInteractive(t *testing.T, interactive bool) {
	t.Helper()
	orig := cli.IsInteractive
	cli.IsInteractive = func(io.Reader) bool { return interactive }
	t.Cleanup(func() { cli.IsInteractive = orig })
}

func TestSync_InteractiveFuzzy(t *testing.T) {
	f := newFixture(t, "", charFiles...)
	stubFuzzy(t, labelChooser{source: "90000003", targets: []string{"90000001"}})

	out, err := execute(t, "", f.args("sync", "--interactive", "--yes")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Synced 1 files")
	assert.Equal(t, "core_char_90000003.dat", f.read(t, "core_char_90000001.dat"))
	assert.Equal(t, "core_char_90000002.dat", f.read(t, "core_char_90000002.dat"))
}

func TestSync_InteractiveFuzzyCancelled(t *testing.T) {
	f := newFixture(t, "", charFiles...)
	stubFuzzy(t, labelChooser{source: "nobody"})

	_, err := execute(t, "", f.args("sync", "-i", "--yes")...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCancelled))
	assert.Empty(t, f.backups(t))
}

func TestSync_InteractiveFuzzyWithTargetsFlag(t *testing.T) {
	f := newFixture(t, "", charFiles...)
	stubFuzzy(t, labelChooser{source: "90000002"})

	_, err := execute(t, "", f.args("sync", "-i", "--target", "90000003", "--yes")...)
	require.NoError(t, err)
	assert.Equal(t, "core_char_90000002.dat", f.read(t, "core_char_90000003.dat"))
}

func TestSync_NumberedPrompts(t *testing.T) {
	f := newFixture(t, "", "core_char_1.dat", "core_char_2.dat", "core_char_3.dat")
	stubInteractive(t, true)

	// Source [1] is ID 1; targets are then IDs 2 and 3, of which [2] is ID 3.
	out, err := execute(t, "1\n2\ny\n", f.args("sync")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Copy settings from:")
	assert.Contains(t, out, "Overwrite 1 files?")
	assert.Equal(t, "core_char_1.dat", f.read(t, "core_char_3.dat"))
	assert.Equal(t, "core_char_2.dat", f.read(t, "core_char_2.dat"))
	assert.Len(t, f.backups(t), 1)
}

func TestSync_NumberedPromptsDeclined(t *testing.T) {
	f := newFixture(t, "", "core_char_1.dat", "core_char_2.dat")
	stubInteractive(t, true)

	_, err := execute(t, "1\n1\nn\n", f.args("sync")...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCancelled))

	assert.Equal(t, "core_char_2.dat", f.read(t, "core_char_2.dat"))
	assert.Empty(t, f.backups(t))
}
