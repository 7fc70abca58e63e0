package backup

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	bk "github.com/thoreinstein/packprefs/internal/backup"
	"github.com/thoreinstein/packprefs/internal/errors"
)

// pruneKeep is the number of snapshots to keep.
var pruneKeep int

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", bk.DefaultKeep, "number of most recent snapshots to keep")
	Cmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old snapshots",
	Long:  `Remove all but the most recent snapshots of the settings directory.`,
	Example: `  packprefs backup prune
  packprefs backup prune --keep 1`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if pruneKeep < 0 {
		return errors.NewUserError(errors.Newf("--keep must be 0 or more, got %d", pruneKeep), "")
	}

	a, err := openSession(cmd)
	if err != nil {
		return err
	}

	removed, err := a.PruneBackups(pruneKeep)
	w := cmd.OutOrStdout()
	for _, p := range removed {
		fmt.Fprintf(w, "%s Removed %s\n", green("✓"), filepath.Base(p))
	}
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	if len(removed) == 0 {
		fmt.Fprintln(w, "Nothing to prune")
	}
	return nil
}
