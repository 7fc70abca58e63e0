// Package syncer copies one settings file over a set of target files.
//
// Each target is replaced atomically: the source bytes are written to a
// sibling ".tmp" file which is then renamed over the target. A failure on one
// target is recorded in its Outcome and does not stop the others.
//
// The engine never takes backups. Callers that write to disk are expected to
// snapshot the settings directory first and abort if that fails.
package syncer

import (
	"fmt"
	"log/slog"

	"github.com/thoreinstein/packprefs/internal/logging"
	"github.com/thoreinstein/packprefs/internal/settings"
	"github.com/thoreinstein/packprefs/pkg/fileutil"
)

// Outcome messages.
const (
	MsgWouldCopy = "Would copy"
	MsgCopied    = "Copied successfully"
	msgFailed    = "Failed: %v"
)

// Outcome is the result of syncing one target.
type Outcome struct {
	Target  string `json:"target"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Engine performs sync operations.
type Engine struct {
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for per-target debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: logging.NewDiscard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync copies source over every target of the same kind and returns one
// Outcome per processed target, in target order. Targets of a different kind
// are skipped without an outcome. With dryRun set nothing is written.
func (e *Engine) Sync(source settings.File, targets []settings.File, dryRun bool) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))

	for _, target := range targets {
		if target.Kind != source.Kind {
			e.logger.Debug("skipping target of different kind",
				"target", target.Path, "kind", target.Kind, "source_kind", source.Kind)
			continue
		}

		if dryRun {
			e.logger.Debug("would copy", "source", source.Path, "target", target.Path)
			outcomes = append(outcomes, Outcome{Target: target.Path, Success: true, Message: MsgWouldCopy})
			continue
		}

		if err := fileutil.AtomicCopyFile(source.Path, target.Path); err != nil {
			e.logger.Debug("copy failed", "target", target.Path, "error", err)
			outcomes = append(outcomes, Outcome{Target: target.Path, Message: fmt.Sprintf(msgFailed, err)})
			continue
		}

		e.logger.Debug("copied", "source", source.Path, "target", target.Path)
		outcomes = append(outcomes, Outcome{Target: target.Path, Success: true, Message: MsgCopied})
	}

	return outcomes
}

// Sync runs a default Engine.
func Sync(source settings.File, targets []settings.File, dryRun bool) []Outcome {
	return New().Sync(source, targets, dryRun)
}

// Succeeded counts successful outcomes.
func Succeeded(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Success {
			n++
		}
	}
	return n
}
