// Package flags provides shared flag accessors for CLI commands.
// This package exists to avoid import cycles between the root command
// and noun subpackages (backup).
package flags

import (
	"context"

	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/logging"
)

// Global holds the values of the persistent root flags.
type Global struct {
	// Dir is the --dir flag.
	Dir string
	// Prefix is the --prefix flag.
	Prefix string
	// ConfigPath is the --config flag.
	ConfigPath string
}

var global Global

// Get returns the current global flag values.
func Get() Global {
	return global
}

// Set stores the global flag values.
// This is used by the root command after parsing, and by tests.
func Set(g Global) {
	global = g
}

// SessionOptions returns session options from the global flags, logging
// through the logger carried on ctx.
func SessionOptions(ctx context.Context) cli.SessionOptions {
	return cli.SessionOptions{
		ConfigPath: global.ConfigPath,
		Dir:        global.Dir,
		Prefix:     global.Prefix,
		Logger:     logging.FromContext(ctx),
	}
}
