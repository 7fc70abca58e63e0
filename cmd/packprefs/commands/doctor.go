package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/flags"
	"github.com/thoreinstein/packprefs/internal/backup"
	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/config"
	"github.com/thoreinstein/packprefs/internal/discovery"
	"github.com/thoreinstein/packprefs/internal/doctor"
	"github.com/thoreinstein/packprefs/internal/errors"
	"github.com/thoreinstein/packprefs/internal/logging"
)

var (
	doctorJSON bool
	doctorAll  bool
)

// newDoctorDiscoverer builds the process scanner used by doctor. Tests replace it.
var newDoctorDiscoverer = func(l *slog.Logger) doctor.Discoverer {
	return discovery.NewScanner(discovery.WithLogger(l))
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("errors found")

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show passed and informational checks too")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "all")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and settings directory issues",
	Long: `Run diagnostic checks on the packprefs configuration, game process
discovery, the settings directory and the snapshot location.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	opts := flags.SessionOptions(cmd.Context())
	logger := logging.FromContext(cmd.Context())

	// An unreadable config is reported by its check, so continue with defaults.
	cfg, err := config.Load(opts.ConfigPath)
	if cfg == nil {
		cfg = config.Default()
	}
	if err != nil {
		logger.Debug("config did not load cleanly", "error", err)
	}

	var dir string
	if located, err := cli.NewApp(cfg, opts).Locate(opts.Dir, opts.Prefix); err == nil {
		dir = located
	}

	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewConfigCheck(opts.ConfigPath))
	runner.AddCheck(doctor.NewProcessCheck(newDoctorDiscoverer(logger)))
	runner.AddCheck(doctor.NewSettingsDirCheck(dir))
	runner.AddCheck(doctor.NewBackupCheck(dir, backup.NewManager(backup.WithLogger(logger))))
	runner.AddCheck(doctor.NewNameLookupCheck(cfg))

	report := runner.Run()
	if err := outputDoctorReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}

	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !doctorAll && !problem {
			continue
		}
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return green("✓")
	case doctor.SeverityInfo:
		return cyan("ℹ")
	case doctor.SeverityWarning:
		return yellow("⚠")
	case doctor.SeverityError:
		return red("✗")
	default:
		return "?"
	}
}
