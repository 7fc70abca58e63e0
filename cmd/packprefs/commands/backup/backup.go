// Package backup provides CLI commands for managing settings snapshots.
package backup

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/flags"
	"github.com/thoreinstein/packprefs/internal/app"
	"github.com/thoreinstein/packprefs/internal/cli"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// Cmd is the root backup command.
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage settings directory snapshots",
	Long: `Manage snapshots of the settings directory.

Every sync that writes to disk first copies the whole settings directory to
a sibling directory named <settings dir>_backup_<YYYYMMDD_HHMMSS>. This
command group lists, restores, creates and prunes those snapshots.`,
	Example: `  # List snapshots, newest first
  packprefs backup list

  # Restore the most recent snapshot
  packprefs backup restore

  # Restore a specific snapshot
  packprefs backup restore settings_Default_backup_20260123_100712

  # Take a snapshot now
  packprefs backup create

  # Remove old snapshots, keeping the 3 most recent
  packprefs backup prune --keep 3

  See Also:
    packprefs backup list    - List snapshots
    packprefs backup restore - Restore a snapshot
    packprefs backup create  - Take a snapshot
    packprefs backup prune   - Remove old snapshots`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// openSession opens a session for cmd from the global flags.
func openSession(cmd *cobra.Command) (*app.App, error) {
	return cli.OpenSession(flags.SessionOptions(cmd.Context()))
}
