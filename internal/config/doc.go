// Package config provides configuration management for the packprefs CLI.
//
// # Configuration File
//
// The default configuration file location is ~/.config/packprefs/config.toml
// (see package paths). The file is TOML:
//
//	last_prefix_path = '/home/me/Games/eve/drive_c'
//	last_settings_dir = '/home/me/Games/eve/drive_c/users/steamuser/AppData/Local/CCP/EVE/c_tq_tranquility/settings_Default'
//	dry_run_default = false
//
//	[name_lookup]
//	enabled = true
//	endpoint = 'https://esi.evetech.net/latest/universe/names/'
//	timeout_seconds = 10
//
//	[character_names]
//	90000001 = 'Alpha Pilot'
//
// # Loading and Saving
//
// [Load] reads through a private Viper instance, so any scalar key can be
// overridden from the environment with the PACKPREFS_ prefix and dots
// replaced by underscores:
//
//	PACKPREFS_NAME_LOOKUP_ENABLED=false packprefs list
//
// [Save] encodes with go-toml and replaces the file atomically. A Config is
// only ever written by an explicit Save call.
//
// # Name Cache
//
// Resolved character names are cached in character_names. Use
// [Config.CachedName], [Config.CacheNames] and [Config.NameCache] rather than
// touching the map, whose keys are decimal strings.
package config
