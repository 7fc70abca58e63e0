package backup

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	bk "github.com/thoreinstein/packprefs/internal/backup"
	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/cli/prompt"
	"github.com/thoreinstein/packprefs/internal/errors"
)

// restoreYes skips the confirmation prompt.
var restoreYes bool

func init() {
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "do not ask for confirmation")
	Cmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [name]",
	Short: "Replace the settings directory with a snapshot",
	Long: `Replace the contents of the settings directory with a snapshot.

Without a name the most recent snapshot is restored. The current contents are
snapshotted first, so a restore can itself be undone.`,
	Example: `  packprefs backup restore
  packprefs backup restore settings_Default_backup_20260123_100712 --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := openSession(cmd)
	if err != nil {
		return err
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	w := cmd.OutOrStdout()
	path, err := a.ResolveBackup(name)
	if err != nil {
		if errors.Is(err, bk.ErrNoBackupsFound) {
			return errors.NewUserError(err, "Create one with: packprefs backup create")
		}
		return errors.NewUserError(err, "Run: packprefs backup list")
	}
	if name == "" {
		fmt.Fprintf(w, "Using most recent backup: %s\n", cyan(filepath.Base(path)))
	}

	if !restoreYes {
		in := cmd.InOrStdin()
		if !cli.IsInteractive(in) {
			return errors.NewUserError(errors.New("refusing to restore without confirmation"),
				"Pass --yes to restore non-interactively")
		}
		question := fmt.Sprintf("Replace %s with %s?", a.SettingsDir(), filepath.Base(path))
		ok, err := prompt.NewSelectorWithIO(in, w).Confirm(question, false)
		if err != nil || !ok {
			return errors.NewUserError(errors.ErrCancelled, "")
		}
	}

	safety, err := a.RestoreBackup(path)
	if err != nil {
		if safety == "" {
			return errors.NewSystemError(err, "Nothing was changed")
		}
		return errors.NewSystemError(err,
			"Your previous settings were saved; undo with: packprefs backup restore "+filepath.Base(safety))
	}

	fmt.Fprintf(w, "%s Restored %s\n", green("✓"), filepath.Base(path))
	fmt.Fprintf(w, "  Previous settings saved to %s\n", gray(filepath.Base(safety)))
	return nil
}
