package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/packprefs/cmd"
	"github.com/thoreinstein/packprefs/internal/errors"
	"github.com/thoreinstein/packprefs/internal/paths"
)

var (
	genDocOut    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown or man page documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		if genDocOut == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Pass --out <dir>")
		}

		if err := paths.EnsureDir(genDocOut, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		switch genDocFormat {
		case "markdown", "md":
			if err := doc.GenMarkdownTreeCustom(rootCmd, genDocOut, filePrepender, linkHandler); err != nil {
				return errors.Wrap(err, "generating markdown")
			}
		case "man":
			header := &doc.GenManHeader{
				Title:   "PACKPREFS",
				Section: "1",
				Source:  "packprefs " + cmd.Version,
			}
			if err := doc.GenManTree(rootCmd, header, genDocOut); err != nil {
				return errors.Wrap(err, "generating man pages")
			}
		default:
			return errors.NewUserError(errors.Newf("unknown format %q", genDocFormat), "Use --format markdown or --format man")
		}

		fmt.Fprintf(c.OutOrStdout(), "Documentation generated in %s\n", genDocOut)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocOut, "out", "o", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "output format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// packprefs_backup_restore.md -> packprefs backup restore
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s command"
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
