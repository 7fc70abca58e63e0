package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/packprefs/cmd/packprefs/commands/flags"
	"github.com/thoreinstein/packprefs/internal/cli"
	"github.com/thoreinstein/packprefs/internal/config"
	"github.com/thoreinstein/packprefs/internal/editor"
	"github.com/thoreinstein/packprefs/internal/errors"
	"github.com/thoreinstein/packprefs/internal/paths"
)

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change packprefs configuration",
	Long: `Show and change the packprefs configuration file.

Settable keys:
  last_prefix_path             prefix used when no game client is running
  last_settings_dir            settings directory used when nothing else is found
  dry_run_default              make sync preview unless --dry-run=false is given
  name_lookup.enabled          look up character names online
  name_lookup.endpoint         name lookup URL
  name_lookup.timeout_seconds  name lookup timeout

Environment variables such as PACKPREFS_DRY_RUN_DEFAULT override the file.`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print one configuration value",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE:      runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Example: `  packprefs config set dry_run_default true
  packprefs config set name_lookup.enabled false`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in $EDITOR",
	Long: `Open the configuration file in $EDITOR (or $VISUAL, nano, vi), creating it
with default values first if it does not exist. The file is validated after
the editor exits.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func configPath() string {
	if p := flags.Get().ConfigPath; p != "" {
		return p
	}
	return paths.ConfigFile()
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadConfig(flags.Get().ConfigPath)
	if err != nil {
		return err
	}
	return runConfigListWithWriter(cmd.OutOrStdout(), cfg)
}

func runConfigListWithWriter(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return enc.Close()
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(flags.Get().ConfigPath)
	if err != nil {
		return err
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return errors.NewUserError(err, "Run: packprefs config --help to see the keys")
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

// runConfigSet updates one key. An invalid file on disk is still loaded so
// that it can be repaired with set.
func runConfigSet(cmd *cobra.Command, args []string) error {
	path := flags.Get().ConfigPath

	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, config.ErrNotFound):
		cfg = config.Default()
	case errors.Is(err, config.ErrInvalid) && cfg != nil:
	default:
		return errors.NewConfigError(err)
	}

	key, value := args[0], args[1]
	if err := cfg.Set(key, value); err != nil {
		return errors.NewUserError(err, "Run: packprefs config --help to see the keys")
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return errors.NewUserError(errors.Join(errs...), "")
	}

	if err := config.Save(cfg, path); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", green("✓"), key, value)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(config.Default(), path); err != nil {
			return errors.NewSystemError(err, "")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)
	err := editor.Open(path, editor.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	})
	if err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to your editor command")
	}

	if _, err := config.Load(path); err != nil {
		return errors.NewConfigError(err)
	}
	return nil
}
