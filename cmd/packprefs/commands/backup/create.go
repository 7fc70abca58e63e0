package backup

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/packprefs/internal/errors"
)

func init() {
	Cmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the settings directory",
	Long: `Copy the whole settings directory to a new timestamped sibling directory.

Snapshots taken within the same second get a -01, -02, ... suffix.`,
	Example: `  packprefs backup create
  packprefs backup create --dir /path/to/settings_Default`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, _ []string) error {
	a, err := openSession(cmd)
	if err != nil {
		return err
	}

	path, err := a.CreateBackup()
	if err != nil {
		return errors.NewSystemError(err, "Check that the directory above the settings directory is writable")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s Created %s\n", green("✓"), filepath.Base(path))
	fmt.Fprintf(w, "  %s\n", gray(path))
	return nil
}
