package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/flags"
	"github.com/thoreinstein/packprefs/internal/app"
	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/cli/prompt"
	"github.com/thoreinstein/packprefs/internal/errors"
	"github.com/thoreinstein/packprefs/internal/logging"
	"github.com/thoreinstein/packprefs/internal/settings"
)

var (
	syncSource      string
	syncTargets     []string
	syncAll         bool
	syncUser        bool
	syncDryRun      bool
	syncYes         bool
	syncInteractive bool
)

// newFuzzyChooser builds the --interactive chooser. Tests replace it.
var newFuzzyChooser = func() prompt.Chooser { return prompt.NewFuzzy() }

func init() {
	f := syncCmd.Flags()
	f.StringVarP(&syncSource, "source", "s", "",
		"ID of the file to copy from (\"default\" for the template file)")
	f.StringSliceVarP(&syncTargets, "target", "t", nil,
		"ID of a file to overwrite (repeatable, comma-separated)")
	f.BoolVar(&syncAll, "all", false,
		"overwrite every other file of the same kind")
	f.BoolVarP(&syncUser, "user", "u", false,
		"sync account (core_user_) files instead of character files")
	f.BoolVarP(&syncDryRun, "dry-run", "n", false,
		"show what would be copied without writing")
	f.BoolVarP(&syncYes, "yes", "y", false,
		"do not ask for confirmation")
	f.BoolVarP(&syncInteractive, "interactive", "i", false,
		"choose source and targets with a fuzzy finder")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy one settings file over others",
	Long: `Copy the settings of one character (or account) over other files of the
same kind in the settings directory.

Unless --dry-run is given, the whole settings directory is snapshotted
before anything is written, and the sync is aborted if the snapshot fails.
Use "packprefs backup restore" to undo a sync.

Without --source on a terminal, the source and targets are chosen from
numbered lists. --interactive uses a fuzzy finder instead.`,
	Example: `  # Preview
  packprefs sync --source 90000001 --target 90000002 --dry-run

  # Copy to every other character without prompting
  packprefs sync --source 90000001 --all --yes

  # Copy the default account settings to one account
  packprefs sync --user --source default --target 1234567 --yes`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	a, err := cli.OpenSession(flags.SessionOptions(ctx))
	if err != nil {
		return err
	}
	if err := a.Load(); err != nil {
		return errors.NewSystemError(err, "")
	}
	if _, _, err := a.ResolveNames(ctx); err != nil {
		logger.Warn("some character names could not be resolved", "error", err)
	}

	dryRun := a.Config().DryRunDefault
	if cmd.Flags().Changed("dry-run") {
		dryRun = syncDryRun
	}

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	terminal := cli.IsInteractive(in)
	selector := prompt.NewSelectorWithIO(in, out)

	kind := settings.KindCharacter
	if syncUser {
		kind = settings.KindUser
	}

	var req app.SyncRequest
	switch {
	case syncInteractive:
		req, err = chooseRequest(newFuzzyChooser(), a, kind)
	case syncSource == "" && terminal:
		if !cmd.Flags().Changed("user") {
			kind = a.PreferredKind()
		}
		req, err = chooseRequest(selector, a, kind)
	default:
		req, err = flagRequest(kind)
	}
	if err != nil {
		return err
	}

	plan, err := a.Plan(req)
	if err != nil {
		return planError(err)
	}
	printPlan(out, a, plan)

	if !dryRun && !syncYes {
		if !terminal {
			return errors.NewUserError(errors.New("refusing to overwrite settings without confirmation"),
				"Pass --yes to sync non-interactively, or --dry-run to preview")
		}
		ok, err := selector.Confirm(fmt.Sprintf("Overwrite %d files?", len(plan.Targets)), false)
		if err != nil || !ok {
			return errors.NewUserError(errors.ErrCancelled, "")
		}
	}

	report, err := a.Sync(plan, dryRun)
	if err != nil {
		return errors.NewSystemError(err, "Nothing was written. Check that the directory above the settings directory is writable")
	}

	if err := a.SaveConfig(); err != nil {
		logger.Warn("failed to save config", "error", err)
	}

	return printReport(out, report)
}

// flagRequest builds a request from --source, --target and --all.
func flagRequest(kind settings.Kind) (app.SyncRequest, error) {
	if syncSource == "" {
		return app.SyncRequest{}, errors.NewUserError(app.ErrNoSource,
			"Pass --source <id>; run: packprefs list to see IDs")
	}
	source, err := parseID(syncSource)
	if err != nil {
		return app.SyncRequest{}, err
	}

	req := app.SyncRequest{Kind: kind, SourceID: &source, All: syncAll}
	for _, t := range syncTargets {
		id, err := parseID(t)
		if err != nil {
			return app.SyncRequest{}, err
		}
		req.TargetIDs = append(req.TargetIDs, id)
	}
	return req, nil
}

// chooseRequest builds a request by prompting. A --source given alongside
// --interactive still wins; targets are prompted for unless --target or
// --all was given.
func chooseRequest(c prompt.Chooser, a *app.App, kind settings.Kind) (app.SyncRequest, error) {
	entries := a.Selectable(kind)
	if len(entries) == 0 {
		return app.SyncRequest{}, errors.NewUserError(
			errors.Newf("no %s settings files in %s", kind, a.SettingsDir()), "")
	}

	req := app.SyncRequest{Kind: kind, All: syncAll}

	if syncSource != "" {
		id, err := parseID(syncSource)
		if err != nil {
			return req, err
		}
		req.SourceID = &id
	} else {
		idx, err := c.ChooseOne("Copy settings from", items(entries))
		if err != nil {
			return req, selectionError(err)
		}
		id := entries[idx].File.ID
		req.SourceID = &id
	}

	if syncAll || len(syncTargets) > 0 {
		for _, t := range syncTargets {
			id, err := parseID(t)
			if err != nil {
				return req, err
			}
			req.TargetIDs = append(req.TargetIDs, id)
		}
		return req, nil
	}

	var candidates []app.Entry
	for _, e := range entries {
		if e.File.ID != *req.SourceID {
			candidates = append(candidates, e)
		}
	}
	idxs, err := c.ChooseMany("Copy settings to", items(candidates))
	if err != nil {
		return req, selectionError(err)
	}
	for _, i := range idxs {
		req.TargetIDs = append(req.TargetIDs, candidates[i].File.ID)
	}
	return req, nil
}

func items(entries []app.Entry) []prompt.Item {
	out := make([]prompt.Item, len(entries))
	for i, e := range entries {
		out[i] = prompt.Item{
			Label:  fmt.Sprintf("%s (%s)", e.Label, formatID(e.File.ID, e.File.IsDefault)),
			Detail: e.File.Path,
		}
	}
	return out
}

func selectionError(err error) error {
	switch {
	case errors.Is(err, prompt.ErrSelectionCancelled):
		return errors.NewUserError(errors.ErrCancelled, "")
	case errors.Is(err, prompt.ErrNoItems):
		return errors.NewUserError(app.ErrNoTargets, "There is only one settings file of this kind")
	}
	return errors.NewUserError(err, "")
}

func planError(err error) error {
	switch {
	case errors.Is(err, app.ErrNoTargets):
		return errors.NewUserError(err, "Pass --target <id> or --all; run: packprefs list to see IDs")
	case errors.Is(err, app.ErrSourceNotFound), errors.Is(err, app.ErrNoSource):
		return errors.NewUserError(err, "Run: packprefs list to see IDs")
	}
	return errors.NewSystemError(err, "")
}

func printPlan(w io.Writer, a *app.App, plan app.Plan) {
	for _, id := range plan.Unknown {
		fmt.Fprintf(w, "%s no %s file with ID %d\n", yellow("Skipping:"), plan.Source.Kind, id)
	}
	fmt.Fprintf(w, "%s %s %s\n", bold("Source:"), a.DisplayName(plan.Source), gray(plan.Source.Name()))
	fmt.Fprintf(w, "%s\n", bold("Targets:"))
	for _, t := range plan.Targets {
		fmt.Fprintf(w, "  %s %s\n", a.DisplayName(t), gray(t.Name()))
	}
}

func printReport(w io.Writer, report app.Report) error {
	if report.Backup != "" {
		fmt.Fprintf(w, "%s %s\n", bold("Backup:"), report.Backup)
	}

	lines := report.Lines()
	for i, o := range report.Outcomes {
		mark := green("✓")
		if !o.Success {
			mark = red("✗")
		}
		fmt.Fprintf(w, "  %s %s\n", mark, lines[i])
	}
	fmt.Fprintln(w, report.Summary())

	failed := len(report.Outcomes) - report.Succeeded()
	if failed > 0 {
		suggestion := ""
		if report.Backup != "" {
			suggestion = "Undo with: packprefs backup restore " + report.Backup
		}
		return errors.NewSystemError(errors.Newf("%d of %d targets failed", failed, len(report.Outcomes)), suggestion)
	}
	return nil
}
