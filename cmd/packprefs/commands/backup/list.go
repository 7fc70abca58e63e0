package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	bk "github.com/thoreinstein/packprefs/internal/backup"
	"github.com/thoreinstein/packprefs/internal/errors"
)

// listJSON enables JSON output format.
var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots of the settings directory",
	Long:  `List snapshots of the settings directory, newest first, with their file counts.`,
	Example: `  packprefs backup list
  packprefs backup list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := openSession(cmd)
	if err != nil {
		return err
	}

	snapshots, err := a.DescribeBackups()
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	return runListWithWriter(cmd.OutOrStdout(), a.SettingsDir(), snapshots)
}

func runListWithWriter(w io.Writer, settingsDir string, snapshots []bk.Snapshot) error {
	if listJSON {
		if snapshots == nil {
			snapshots = []bk.Snapshot{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	}

	if len(snapshots) == 0 {
		fmt.Fprintf(w, "No backups found for %s\n", settingsDir)
		fmt.Fprintln(w, gray("Create one with: packprefs backup create"))
		return nil
	}

	fmt.Fprintf(w, "%s %s\n\n", bold("Backups of"), settingsDir)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCREATED\tFILES")
	for _, s := range snapshots {
		created := "unknown"
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", cyan(s.Name), created, s.Files)
	}
	return tw.Flush()
}
