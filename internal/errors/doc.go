// Package errors provides error handling conventions for the packprefs CLI.
//
// It re-exports the wrapping helpers from github.com/cockroachdb/errors so
// packages only need one errors import, defines sentinel errors shared across
// commands, and provides [ExitError] for mapping failures to process exit codes.
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitUser (1): bad input, missing selection, invalid configuration
//   - ExitSystem (2): I/O failure while classifying, syncing or restoring
//
// # ExitError
//
// [ExitError] carries an exit code and an optional suggestion:
//
//	err := errors.NewUserError(errors.ErrNoSettingsDir, "Pass --dir or start the game first")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
