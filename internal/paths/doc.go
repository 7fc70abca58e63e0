// Package paths resolves where packprefs keeps its own files.
//
// Locations follow the XDG Base Directory Specification through
// github.com/adrg/xdg, so the configuration file lives at
// $XDG_CONFIG_HOME/packprefs/config.toml (~/.config/packprefs/config.toml on
// Linux).
package paths
