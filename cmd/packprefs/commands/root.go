// Package commands implements the CLI commands for packprefs.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/packprefs/cmd"
	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/backup"
	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/flags"
	"github.com/thoreinstein/packprefs/internal/errors"
	"github.com/thoreinstein/packprefs/internal/logging"
)

// debugEnv raises verbosity when no -v flag is given: 1/true for debug, 2 for trace.
const debugEnv = "PACKPREFS_DEBUG"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// Persistent location flags, copied into package flags before each run.
var (
	dirFlag        string
	prefixFlag     string
	configPathFlag string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dirFlag, "dir", "",
		"settings directory to use (skips discovery)")
	pf.StringVar(&prefixFlag, "prefix", "",
		"Wine/Proton prefix (drive_c) to search for settings")
	pf.StringVar(&configPathFlag, "config", "",
		"config file (default: $XDG_CONFIG_HOME/packprefs/config.toml)")
	pf.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	pf.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	pf.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	pf.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("packprefs version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(backup.Cmd)
}

var rootCmd = &cobra.Command{
	Use:   "packprefs",
	Short: "Copy EVE Online settings between characters and accounts",
	Long: `packprefs finds the EVE Online settings directory inside a Wine or Proton
prefix and copies one character's (or account's) settings file over others.

The settings directory is found from running game clients, or given with
--dir or --prefix. Every sync that writes to disk first snapshots the whole
settings directory next to it, and any snapshot can be restored.`,
	Example: `  # Show detected prefixes and settings directories
  packprefs scan

  # List characters and accounts with their IDs
  packprefs list

  # Preview copying one character's settings to two others
  packprefs sync --source 90000001 --target 90000002 --target 90000003 --dry-run

  # Pick source and targets with a fuzzy finder
  packprefs sync --interactive

  See Also: packprefs backup, packprefs config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		flags.Set(flags.Global{
			Dir:        dirFlag,
			Prefix:     prefixFlag,
			ConfigPath: configPathFlag,
		})
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	switch logging.Format(logFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return errors.NewUserError(errors.Newf("invalid log format %q", logFormat), "Use --log-format text or --log-format json")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	primary := logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})

	handlers := []slog.Handler{primary.Handler()}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
