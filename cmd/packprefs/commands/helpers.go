package commands

import (
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/packprefs/internal/errors"
)

// Terminal styles. fatih/color disables them when stdout is not a terminal
// or NO_COLOR is set.
var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// parseID parses a settings file ID. "default", "_" and "0" select the
// default file.
func parseID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "default", "_", "0":
		return 0, nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.NewUserError(errors.Newf("invalid ID %q", s), "IDs are the numbers shown by: packprefs list")
	}
	return id, nil
}

// formatID renders a file ID for tables.
func formatID(id uint64, isDefault bool) string {
	if isDefault {
		return "default"
	}
	return strconv.FormatUint(id, 10)
}
