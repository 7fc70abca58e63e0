package app

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packprefs/internal/settings"
	"github.com/thoreinstein/packprefs/internal/syncer"
)

// SyncRequest selects a source and targets by ID within one kind.
// ID 0 refers to the default file.
type SyncRequest struct {
	Kind      settings.Kind
	SourceID  *uint64
	TargetIDs []uint64
	// All targets every other file of the kind.
	All bool
}

// Plan is a resolved sync: one source file and the files it will overwrite.
type Plan struct {
	Source  settings.File
	Targets []settings.File
	// Unknown lists requested target IDs with no file of the kind.
	Unknown []uint64
}

// Plan resolves req against the loaded files.
//
// Targets are every file of the source's kind whose ID was requested and
// differs from the source ID. Files that share an ID (case variants) are all
// included.
func (a *App) Plan(req SyncRequest) (Plan, error) {
	if req.SourceID == nil {
		return Plan{}, ErrNoSource
	}
	sourceID := *req.SourceID

	source, ok := a.find(req.Kind, sourceID)
	if !ok {
		return Plan{}, errors.Wrapf(ErrSourceNotFound, "%s %d", req.Kind, sourceID)
	}

	wanted := make(map[uint64]bool, len(req.TargetIDs))
	if req.All {
		for _, e := range a.Selectable(req.Kind) {
			wanted[e.File.ID] = true
		}
	}
	for _, id := range req.TargetIDs {
		wanted[id] = true
	}
	delete(wanted, sourceID)

	plan := Plan{Source: source}
	found := make(map[uint64]bool)
	for _, f := range a.files {
		if f.Kind == source.Kind && wanted[f.ID] && f.ID != source.ID {
			plan.Targets = append(plan.Targets, f)
			found[f.ID] = true
		}
	}

	for _, id := range req.TargetIDs {
		if id != sourceID && !found[id] && !slices.Contains(plan.Unknown, id) {
			plan.Unknown = append(plan.Unknown, id)
		}
	}

	if len(plan.Targets) == 0 {
		return plan, ErrNoTargets
	}
	return plan, nil
}

// find returns the file of kind with id. ID 0 names the default template,
// so a default file wins over a literal core_char_0.dat.
func (a *App) find(kind settings.Kind, id uint64) (settings.File, bool) {
	var found settings.File
	ok := false
	for _, f := range a.files {
		if f.Kind != kind || f.ID != id {
			continue
		}
		if id != 0 || f.IsDefault {
			return f, true
		}
		if !ok {
			found, ok = f, true
		}
	}
	return found, ok
}

// Report is the result of a sync.
type Report struct {
	DryRun   bool             `json:"dry_run"`
	Backup   string           `json:"backup,omitempty"`
	Outcomes []syncer.Outcome `json:"outcomes"`
}

// Succeeded counts successful targets.
func (r Report) Succeeded() int {
	return syncer.Succeeded(r.Outcomes)
}

// Summary is the one-line result, e.g. "Synced 3 files".
func (r Report) Summary() string {
	action := "Synced"
	if r.DryRun {
		action = "Would sync"
	}
	return fmt.Sprintf("%s %d files", action, r.Succeeded())
}

// Lines renders one line per outcome: "<message>: <file name>" on success and
// the failure message otherwise.
func (r Report) Lines() []string {
	lines := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Success {
			lines = append(lines, o.Message+": "+filepath.Base(o.Target))
			continue
		}
		lines = append(lines, o.Message)
	}
	return lines
}

// Sync executes plan. Unless dryRun is set the settings directory is
// snapshotted first, and the sync does not start if that fails.
func (a *App) Sync(plan Plan, dryRun bool) (Report, error) {
	report := Report{DryRun: dryRun}

	if plan.Source.Path == "" {
		return report, ErrNoSource
	}
	if len(plan.Targets) == 0 {
		return report, ErrNoTargets
	}
	if a.settingsDir == "" {
		return report, ErrNoSettingsDir
	}

	if !dryRun {
		path, err := a.backups.Create(a.settingsDir)
		if err != nil {
			return report, errors.Wrap(err, "backup failed, sync aborted")
		}
		report.Backup = path
		a.logger.Info("created backup", "name", filepath.Base(path))
	}

	report.Outcomes = a.engine.Sync(plan.Source, plan.Targets, dryRun)
	for _, o := range report.Outcomes {
		if !o.Success {
			a.logger.Warn("target failed", "target", o.Target, "message", o.Message)
		}
	}
	a.logger.Info(report.Summary())

	return report, nil
}
