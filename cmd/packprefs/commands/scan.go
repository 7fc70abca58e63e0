package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/flags"
	"github.com/thoreinstein/packprefs/internal/app"
	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/errors"
)

// scanJSON holds the value of the --json flag for the scan command.
var scanJSON bool

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find game prefixes and their settings directories",
	Long: `Scan running processes for game clients started under Wine or Proton and
list the settings directories inside each prefix.

When no client is running, the last used prefix is shown if it still exists.`,
	Example: `  packprefs scan
  packprefs scan --json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, _ []string) error {
	opts := flags.SessionOptions(cmd.Context())
	cfg, err := cli.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	installs, err := cli.NewApp(cfg, opts).Scan()
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	return runScanWithWriter(cmd.OutOrStdout(), installs)
}

func runScanWithWriter(w io.Writer, installs []app.Install) error {
	if scanJSON {
		if installs == nil {
			installs = []app.Install{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(installs)
	}

	if len(installs) == 0 {
		fmt.Fprintln(w, "No running game clients found.")
		fmt.Fprintln(w, gray("Start the game, or pass --dir or --prefix to other commands."))
		return nil
	}

	for _, in := range installs {
		header := cyan(in.Prefix)
		if !in.Detected {
			header += " " + gray("(last used)")
		}
		fmt.Fprintln(w, header)

		if len(in.SettingsDirs) == 0 {
			fmt.Fprintln(w, "  "+gray("(no settings directories)"))
			continue
		}
		for _, dir := range in.SettingsDirs {
			fmt.Fprintf(w, "  %s\n", dir)
		}
	}
	return nil
}
