// Package backup snapshots a settings directory into timestamped sibling
// directories and restores from them.
//
// # Snapshot Layout
//
// Each snapshot is a full recursive copy stored next to the directory it
// copies:
//
//	.../EVE/<install>/
//	├── settings_Default/
//	├── settings_Default_backup_20260123_100712/
//	└── settings_Default_backup_20260123_100712-01/
//
// The timestamp is local time at second resolution. A second snapshot taken
// within the same second gets a "-01" suffix, and so on. Names sort
// lexicographically in creation order, which [Manager.List] relies on to
// return the newest snapshot first.
//
// # Restoring
//
// [Manager.Restore] first snapshots the current contents, then empties the
// settings directory and copies the chosen snapshot in. The operation is not
// atomic. If the copy fails partway the directory is left partially restored
// and the safety snapshot returned by Restore is the way back.
//
// # Retention
//
// Snapshots are never removed automatically. [Manager.Prune] deletes all but
// the newest N on request.
package backup
