// Package logging provides structured logging for the packprefs CLI using slog.
//
// The package supports text and JSON output formats, verbosity-driven levels,
// and a logger carried on the command context. Text output is colorized on a
// terminal and abbreviates paths under the home directory, which keeps
// Wine prefix paths readable.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(1),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("classified settings", "characters", 3, "users", 1)
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
