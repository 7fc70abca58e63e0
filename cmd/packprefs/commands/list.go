package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/flags"
	"github.com/thoreinstein/packprefs/internal/app"
	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/errors"
	"github.com/thoreinstein/packprefs/internal/logging"
	"github.com/thoreinstein/packprefs/internal/settings"
)

// listJSON holds the value of the --json flag for the list command.
var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List character and account settings files",
	Long: `List the character and account settings files in the settings directory,
with character names looked up online when name lookup is enabled.

Resolved names are cached in the config file.`,
	Example: `  packprefs list
  packprefs list --dir ~/Games/eve/drive_c/users/steamuser/AppData/Local/CCP/EVE/c_tq/settings_Default
  packprefs list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// listOutput is the JSON shape of the list command.
type listOutput struct {
	SettingsDir string      `json:"settings_dir"`
	Characters  []app.Entry `json:"characters"`
	Accounts    []app.Entry `json:"accounts"`
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := cli.OpenSession(flags.SessionOptions(ctx))
	if err != nil {
		return err
	}
	if err := a.Load(); err != nil {
		return errors.NewSystemError(err, "")
	}

	logger := logging.FromContext(ctx)
	if resolved, total, err := a.ResolveNames(ctx); err != nil {
		logger.Warn("some character names could not be resolved", "resolved", resolved, "total", total)
	}
	if err := a.SaveConfig(); err != nil {
		logger.Warn("failed to save config", "error", err)
	}

	return runListWithWriter(cmd.OutOrStdout(), a)
}

func runListWithWriter(w io.Writer, a *app.App) error {
	out := listOutput{
		SettingsDir: a.SettingsDir(),
		Characters:  a.Selectable(settings.KindCharacter),
		Accounts:    a.Selectable(settings.KindUser),
	}

	if listJSON {
		if out.Characters == nil {
			out.Characters = []app.Entry{}
		}
		if out.Accounts == nil {
			out.Accounts = []app.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "%s %s\n", bold("Settings:"), out.SettingsDir)

	sections := []struct {
		title   string
		entries []app.Entry
	}{
		{"Characters", out.Characters},
		{"Accounts", out.Accounts},
	}
	// Show accounts first when that is where the useful files are.
	if a.PreferredKind() == settings.KindUser {
		sections[0], sections[1] = sections[1], sections[0]
	}

	for _, s := range sections {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s (%d)\n", cyan(s.title), len(s.entries))
		if len(s.entries) == 0 {
			fmt.Fprintln(w, "  "+gray("none"))
			continue
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ID\tNAME\tFILE")
		for _, e := range s.entries {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", formatID(e.File.ID, e.File.IsDefault), e.Label, e.File.Name())
		}
		if err := tw.Flush(); err != nil {
			return errors.Wrap(err, "writing table")
		}
	}
	return nil
}
